// app.go is the top-level Bubble Tea model: a chat transcript above a
// single input line.
//
// Key design decisions:
//   - One turn at a time: while a turn runs the input is disabled and a
//     spinner is shown; the session itself also serializes turns.
//   - F1-F7 send the preset questions through the same path as typed ones.
//   - The transcript is re-rendered from views on every change so toggling
//     the SQL display or resizing applies to earlier answers too.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DachengChen/querymaster/chat"
	"github.com/DachengChen/querymaster/i18n"
	"github.com/DachengChen/querymaster/render"
)

const appVersion = "0.1.0"

// Options configures the chat UI.
type Options struct {
	Lang      i18n.Lang
	RowLimit  int
	Render    render.Options
	Provider  string // shown in the header
	Warehouse string // shown in the header
}

// entry is one transcript item: a question or a rendered answer.
type entry struct {
	user     bool
	question string
	view     render.View
}

// App is the root Bubble Tea model.
type App struct {
	session *chat.Session
	opts    Options
	text    i18n.Strings
	presets []i18n.Preset

	input    textinput.Model
	spinner  spinner.Model
	viewport *Viewport
	entries  []entry

	loading   bool
	showSQL   bool
	statusMsg string
	width     int
	height    int
}

// NewApp creates the chat UI on top of session.
func NewApp(session *chat.Session, opts Options) *App {
	text := i18n.For(opts.Lang)

	input := textinput.New()
	input.Placeholder = text.InputPlaceholder
	input.Prompt = "Ask> "
	input.PromptStyle = StylePrompt
	input.CharLimit = 1000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleSuccess

	a := &App{
		session:  session,
		opts:     opts,
		text:     text,
		presets:  i18n.Presets(opts.Lang),
		input:    input,
		spinner:  sp,
		viewport: NewViewport(80, 20),
	}
	a.refresh()
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = a.width - 10
		// header(1) + border(2) + input(1) + blank(1) + status(1) = 6 lines of chrome
		a.viewport.SetSize(a.width-4, a.height-7)
		a.refresh()
		return a, nil

	case AnswerMsg:
		a.loading = false
		a.statusMsg = ""
		a.entries = append(a.entries, entry{view: render.Build(msg.Result.Envelope, a.opts.Render)})
		if msg.Result.Cached {
			a.statusMsg = "cached answer"
		}
		a.refresh()
		return a, nil

	case StatusMsg:
		a.statusMsg = string(msg)
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return a, tea.Quit
	case "pgup":
		a.viewport.PageUp()
		return a, nil
	case "pgdown":
		a.viewport.PageDown()
		return a, nil
	case "up":
		a.viewport.ScrollUp(1)
		return a, nil
	case "down":
		a.viewport.ScrollDown(1)
		return a, nil
	case "ctrl+s":
		a.showSQL = !a.showSQL
		a.refresh()
		return a, nil
	}

	// Everything below starts or changes a turn.
	if a.loading {
		return a, nil
	}

	switch msg.String() {
	case "enter":
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.input.SetValue("")
		return a, a.ask(question)
	case "ctrl+l":
		a.session.Clear()
		a.entries = nil
		a.statusMsg = a.text.Cleared
		a.refresh()
		return a, nil
	case "f1", "f2", "f3", "f4", "f5", "f6", "f7":
		if p, ok := i18n.FindPreset(a.opts.Lang, strings.ToUpper(msg.String())); ok {
			return a, a.ask(p.Prompt)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// ask records the question and runs the turn in the background.
func (a *App) ask(question string) tea.Cmd {
	a.loading = true
	a.statusMsg = ""
	a.entries = append(a.entries, entry{user: true, question: question})
	a.refresh()

	session := a.session
	run := func() tea.Msg {
		res := session.Ask(context.Background(), question)
		return AnswerMsg{Question: question, Result: res}
	}
	return tea.Batch(a.spinner.Tick, run)
}

// refresh re-renders the transcript into the viewport and scrolls to the
// newest entry.
func (a *App) refresh() {
	a.viewport.SetContent(a.transcript())
	a.viewport.End()
}

func (a *App) transcript() string {
	if len(a.entries) == 0 && !a.loading {
		return a.welcome()
	}

	width := a.viewport.width
	term := render.Terminal{Width: width, ShowSQL: a.showSQL}

	var lines []string
	for _, e := range a.entries {
		if e.user {
			lines = append(lines, StyleUser.Render("You: ")+e.question, "")
			continue
		}
		lines = append(lines, StyleAssistant.Render("QueryMaster:"), render.Draw(term, e.view), "")
	}
	if a.loading {
		lines = append(lines, a.spinner.View()+" "+StyleDimmed.Render(a.text.Thinking))
	}
	return strings.Join(lines, "\n")
}

func (a *App) welcome() string {
	lines := []string{
		StyleTitle.Render(a.text.Title),
		StyleDimmed.Render(a.text.Caption),
		"",
		StyleBold.Render(a.text.PresetsTitle),
	}
	for _, p := range a.presets {
		lines = append(lines, "  "+StyleHelpKey.Render(fmt.Sprintf("%-3s", p.Key))+" "+p.Label)
	}
	return strings.Join(lines, "\n")
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	header := a.renderHeader()

	frameHeight := a.height - 4
	if frameHeight < 0 {
		frameHeight = 0
	}

	var prompt string
	if a.loading {
		prompt = StylePrompt.Render("Ask> ") + StyleDimmed.Render(a.text.Thinking)
	} else {
		prompt = a.input.View()
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, a.viewport.Render(), "", prompt)
	frame := StyleBorder.
		Width(a.width - 2).
		Height(frameHeight).
		Render(inner)

	return header + "\n" + frame + "\n" + a.renderStatusBar()
}

// renderHeader draws a simple text bar: logo + version + backend info.
func (a *App) renderHeader() string {
	left := StyleBold.Render("📊 QueryMaster") + StyleDimmed.Render(" v"+appVersion)

	var info []string
	if a.opts.Provider != "" {
		info = append(info, a.opts.Provider)
	}
	if a.opts.Warehouse != "" {
		info = append(info, a.opts.Warehouse)
	}
	if len(info) > 0 {
		left += StyleSuccess.Render("  ⚡ " + strings.Join(info, " → "))
	}

	right := ""
	if a.showSQL {
		right = StyleDimmed.Render("SQL on")
	}
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (a *App) renderStatusBar() string {
	content := a.statusMsg
	if content == "" {
		content = StyleHelpDesc.Render(a.text.Help)
	}
	return StyleStatusBar.Width(a.width).Render(content)
}
