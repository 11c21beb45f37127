package render

import (
	"fmt"

	"github.com/DachengChen/querymaster/envelope"
)

// ChartWarning is shown in place of a chart that could not be drawn.
const ChartWarning = "Could not generate a chart for this data."

// Degradation explains why part of a view was dropped. The rest of the
// view is still shown.
type Degradation struct {
	Reason string
}

func (d *Degradation) Error() string {
	return fmt.Sprintf("rendering degraded: %s", d.Reason)
}

// Point is one chart mark. Label is the category for bar, line and pie
// charts; X is only meaningful for scatter charts.
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y"`
}

// Chart is a chart ready to draw.
type Chart struct {
	Type   envelope.ChartType `json:"type"`
	Title  string             `json:"title"`
	XLabel string             `json:"x_label"`
	YLabel string             `json:"y_label"`
	Points []Point            `json:"points"`
}

// BuildChart plots column 0 against column 1. It returns nil, nil when
// chartType is "table", and a *Degradation when the data cannot be
// charted.
func BuildChart(chartType envelope.ChartType, columns []string, rows [][]any) (*Chart, error) {
	if chartType == envelope.ChartTable {
		return nil, nil
	}
	if chartType == "" {
		chartType = envelope.ChartBar
	}
	if len(columns) < 2 {
		return nil, &Degradation{Reason: "a chart needs at least two columns"}
	}

	xName, yName := columns[0], columns[1]
	c := &Chart{
		Type:   chartType,
		Title:  Humanize(yName) + " by " + Humanize(xName),
		XLabel: Humanize(xName),
		YLabel: Humanize(yName),
	}

	for i, row := range rows {
		if len(row) < 2 {
			return nil, &Degradation{Reason: fmt.Sprintf("row %d has %d columns", i, len(row))}
		}
		if row[1] == nil {
			continue
		}
		y, ok := toFloat(row[1])
		if !ok {
			return nil, &Degradation{Reason: fmt.Sprintf("%s value %v is not numeric", yName, row[1])}
		}
		p := Point{Label: plain(row[0]), Y: y}

		switch chartType {
		case envelope.ChartScatter:
			x, ok := toFloat(row[0])
			if !ok {
				return nil, &Degradation{Reason: fmt.Sprintf("%s value %v is not numeric", xName, row[0])}
			}
			p.X = x
		case envelope.ChartPie:
			if y < 0 {
				return nil, &Degradation{Reason: "pie slices cannot be negative"}
			}
		}
		c.Points = append(c.Points, p)
	}

	if len(c.Points) == 0 {
		return nil, &Degradation{Reason: "no plottable values"}
	}
	if chartType == envelope.ChartPie {
		var total float64
		for _, p := range c.Points {
			total += p.Y
		}
		if total == 0 {
			return nil, &Degradation{Reason: "pie total is zero"}
		}
	}
	return c, nil
}

// Shares returns each point's fraction of the total, for pie charts.
func (c *Chart) Shares() []float64 {
	var total float64
	for _, p := range c.Points {
		total += p.Y
	}
	shares := make([]float64, len(c.Points))
	if total == 0 {
		return shares
	}
	for i, p := range c.Points {
		shares[i] = p.Y / total
	}
	return shares
}
