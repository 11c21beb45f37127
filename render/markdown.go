package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Markdown writes views as GitHub-flavoured Markdown, for `ask --format
// markdown` and for pasting results into documents.
type Markdown struct {
	ShowSQL bool
}

func (m Markdown) Render(w io.Writer, v View) error {
	var b strings.Builder

	switch v.Kind {
	case KindClarify:
		b.WriteString(v.Text + "\n")
	case KindError:
		fmt.Fprintf(&b, "> **An error occurred:** %s\n", v.Text)
	case KindEmpty:
		fmt.Fprintf(&b, "_%s_\n", v.Text)
	case KindKPI:
		if v.KPI != nil {
			fmt.Fprintf(&b, "#### Key Metric\n\n**%s:** %s\n", v.KPI.Label, v.KPI.Value)
		}
	case KindTable:
		b.WriteString("#### Detailed Data\n\n")
		headers := make([]string, len(v.Columns))
		for i, c := range v.Columns {
			headers[i] = Humanize(c)
		}

		table := tablewriter.NewWriter(&b)
		table.SetAutoWrapText(false)
		table.SetAutoFormatHeaders(false)
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
		table.SetHeader(headers)
		table.AppendBulk(v.Rows)
		table.Render()

		if v.Chart != nil {
			fmt.Fprintf(&b, "\n#### %s\n\n```text\n%s\n```\n", v.Chart.Title, strings.Join(PlotLines(v.Chart, 72), "\n"))
		}
	}

	for _, warn := range v.Warnings {
		fmt.Fprintf(&b, "\n> ⚠ %s\n", warn)
	}
	if m.ShowSQL && v.QueryUsed != "" {
		fmt.Fprintf(&b, "\n<details><summary>View the generated SQL query</summary>\n\n```sql\n%s\n```\n\n</details>\n", v.QueryUsed)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
