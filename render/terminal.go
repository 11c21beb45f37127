package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorAccent  = lipgloss.Color("39")
	colorDim     = lipgloss.Color("240")
	colorError   = lipgloss.Color("196")
	colorWarning = lipgloss.Color("214")
	colorSuccess = lipgloss.Color("42")

	styleHeading  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleError    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleWarning  = lipgloss.NewStyle().Foreground(colorWarning)
	styleKPIValue = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	styleKPIBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 2)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleHeader = styleCell.Bold(true).Foreground(colorAccent)
	styleBar    = lipgloss.NewStyle().Foreground(colorAccent)
	styleSQL    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorDim).
			PaddingLeft(1)
)

// Terminal draws views with lipgloss for the interactive UI.
type Terminal struct {
	Width   int
	ShowSQL bool
}

// Render writes the styled view to w.
func (t Terminal) Render(w io.Writer, v View) error {
	_, err := io.WriteString(w, t.String(v)+"\n")
	return err
}

// String returns the styled view.
func (t Terminal) String(v View) string {
	width := t.Width
	if width <= 0 {
		width = 80
	}

	var parts []string
	switch v.Kind {
	case KindClarify:
		parts = append(parts, lipgloss.NewStyle().Width(width).Render(v.Text))
	case KindError:
		parts = append(parts, styleError.Width(width).Render("An error occurred: "+v.Text))
	case KindEmpty:
		parts = append(parts, styleWarning.Render(v.Text))
	case KindKPI:
		parts = append(parts, styleHeading.Render("Key Metric"))
		if v.KPI != nil {
			parts = append(parts, styleKPIBox.Render(
				styleDim.Render(v.KPI.Label)+"\n"+styleKPIValue.Render(v.KPI.Value)))
		}
	case KindTable:
		parts = append(parts, styleHeading.Render("Detailed Data"), t.table(v, width))
		if v.Chart != nil {
			parts = append(parts, "", styleHeading.Render(v.Chart.Title))
			for _, line := range PlotLines(v.Chart, width) {
				parts = append(parts, styleBar.Render(line))
			}
		}
	}

	for _, warn := range v.Warnings {
		parts = append(parts, styleWarning.Render("! "+warn))
	}
	if t.ShowSQL && v.QueryUsed != "" {
		parts = append(parts, "", styleDim.Render("Generated SQL"), styleSQL.Render(v.QueryUsed))
	}
	return strings.Join(parts, "\n")
}

func (t Terminal) table(v View, width int) string {
	headers := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		headers[i] = Humanize(c)
	}

	numeric := numericColumns(v)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers(headers...).
		Rows(v.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col < len(numeric) && numeric[col] {
				return styleCell.Align(lipgloss.Right)
			}
			return styleCell
		})

	out := tbl.String()
	if lipgloss.Width(out) > width {
		out = tbl.Width(width).String()
	}
	return out
}

// numericColumns marks columns whose cells all look like numbers.
func numericColumns(v View) []bool {
	numeric := make([]bool, len(v.Columns))
	for i := range numeric {
		numeric[i] = len(v.Rows) > 0
	}
	for _, row := range v.Rows {
		for i, cell := range row {
			if i >= len(numeric) || !numeric[i] {
				continue
			}
			s := strings.NewReplacer(",", "", "$", "", "%", "", "€", "", "£", "", "R", "").Replace(cell)
			if _, ok := toFloat(s); !ok {
				numeric[i] = false
			}
		}
	}
	return numeric
}
