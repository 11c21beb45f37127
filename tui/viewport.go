// viewport.go provides the scrollable transcript area.
//
// Content arrives already styled and laid out for the viewport width, so
// lines are truncated with lipgloss (ANSI aware) instead of being wrapped.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Viewport is a vertically scrollable text area.
type Viewport struct {
	width   int
	height  int
	content []string // lines of content
	scrollY int      // vertical scroll offset (line index)
}

// NewViewport creates a viewport with the given dimensions.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:  width,
		height: height,
	}
}

// SetContent replaces the viewport content.
func (v *Viewport) SetContent(content string) {
	if content == "" {
		v.content = nil
	} else {
		v.content = strings.Split(content, "\n")
	}
	v.clampScroll()
}

// SetSize updates viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// ScrollUp moves the viewport up by n lines.
func (v *Viewport) ScrollUp(n int) {
	v.scrollY -= n
	v.clampScroll()
}

// ScrollDown moves the viewport down by n lines.
func (v *Viewport) ScrollDown(n int) {
	v.scrollY += n
	v.clampScroll()
}

// PageUp scrolls up by one page.
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height)
}

// PageDown scrolls down by one page.
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height)
}

// Home scrolls to the top.
func (v *Viewport) Home() {
	v.scrollY = 0
}

// End scrolls to the bottom.
func (v *Viewport) End() {
	v.scrollY = v.maxScrollY()
}

// Offset returns the index of the first visible line.
func (v *Viewport) Offset() int { return v.scrollY }

// Render returns the visible portion of the content.
func (v *Viewport) Render() string {
	if len(v.content) == 0 {
		return ""
	}

	end := v.scrollY + v.height
	if end > len(v.content) {
		end = len(v.content)
	}

	clip := lipgloss.NewStyle().MaxWidth(v.width)
	visible := make([]string, 0, v.height+1)
	for _, line := range v.content[v.scrollY:end] {
		visible = append(visible, clip.Render(line))
	}

	// Pad to fill viewport height
	for len(visible) < v.height {
		visible = append(visible, "")
	}

	if indicator := v.scrollIndicator(); indicator != "" {
		visible = append(visible, indicator)
	}
	return strings.Join(visible, "\n")
}

func (v *Viewport) clampScroll() {
	maxY := v.maxScrollY()
	if v.scrollY > maxY {
		v.scrollY = maxY
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

func (v *Viewport) maxScrollY() int {
	max := len(v.content) - v.height
	if max < 0 {
		return 0
	}
	return max
}

func (v *Viewport) scrollIndicator() string {
	total := len(v.content)
	if total <= v.height {
		return ""
	}

	pct := (v.scrollY * 100) / total
	label := fmt.Sprintf(" %d%% (%d/%d)", pct, v.scrollY+1, total)
	rule := v.width - len(label)
	if rule < 0 {
		rule = 0
	}
	return StyleDimmed.Render(strings.Repeat("─", rule) + label)
}
