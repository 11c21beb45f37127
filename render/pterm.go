package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pterm/pterm"

	"github.com/DachengChen/querymaster/envelope"
)

// PTerm draws views for the `ask` command.
type PTerm struct {
	ShowSQL bool
	Width   int
}

func (p PTerm) Render(w io.Writer, v View) error {
	var out strings.Builder

	switch v.Kind {
	case KindClarify:
		out.WriteString(pterm.Info.Sprint(v.Text))
	case KindError:
		out.WriteString(pterm.Error.Sprint("An error occurred: " + v.Text))
	case KindEmpty:
		out.WriteString(pterm.Warning.Sprint(v.Text))
	case KindKPI:
		if v.KPI != nil {
			out.WriteString(pterm.DefaultBox.WithTitle(v.KPI.Label).WithPadding(1).Sprint(pterm.Bold.Sprint(v.KPI.Value)))
		}
	case KindTable:
		data := pterm.TableData{make([]string, len(v.Columns))}
		for i, c := range v.Columns {
			data[0][i] = Humanize(c)
		}
		data = append(data, v.Rows...)
		tbl, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
		if err != nil {
			return err
		}
		out.WriteString(tbl)

		if v.Chart != nil {
			chart, err := p.chart(v.Chart)
			if err != nil {
				return err
			}
			out.WriteString("\n")
			out.WriteString(pterm.DefaultSection.WithLevel(2).Sprint(v.Chart.Title))
			out.WriteString(chart)
		}
	}
	out.WriteString("\n")

	for _, warn := range v.Warnings {
		out.WriteString(pterm.Warning.Sprint(warn) + "\n")
	}
	if p.ShowSQL && v.QueryUsed != "" {
		out.WriteString(pterm.DefaultBox.WithTitle("Generated SQL").Sprint(v.QueryUsed) + "\n")
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func (p PTerm) chart(c *Chart) (string, error) {
	if c.Type != envelope.ChartBar && c.Type != "" {
		width := p.Width
		if width <= 0 {
			width = pterm.GetTerminalWidth()
		}
		return strings.Join(PlotLines(c, width), "\n") + "\n", nil
	}

	// pterm bars are integers; scale small values so they stay visible.
	var maxAbs float64
	for _, pt := range c.Points {
		maxAbs = math.Max(maxAbs, math.Abs(pt.Y))
	}
	scale := 1.0
	if maxAbs > 0 && maxAbs < 100 {
		scale = 100 / maxAbs
	}

	bars := make(pterm.Bars, 0, len(c.Points))
	for _, pt := range c.Points {
		bars = append(bars, pterm.Bar{
			Label: fmt.Sprintf("%s (%s)", pt.Label, groupShortest(round2(pt.Y))),
			Value: int(math.Round(pt.Y * scale)),
		})
	}
	return pterm.DefaultBarChart.WithHorizontal().WithBars(bars).Srender()
}
