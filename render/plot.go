package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DachengChen/querymaster/envelope"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// PlotLines draws c as plain text lines no wider than width cells.
func PlotLines(c *Chart, width int) []string {
	if c == nil || len(c.Points) == 0 {
		return nil
	}
	if width < 20 {
		width = 20
	}
	switch c.Type {
	case envelope.ChartLine:
		return lineLines(c, width)
	case envelope.ChartPie:
		return shareLines(c, width)
	case envelope.ChartScatter:
		return scatterLines(c, width, 12)
	default:
		return barLines(c, width)
	}
}

func labelWidth(points []Point, limit int) int {
	w := 0
	for _, p := range points {
		if n := lipgloss.Width(p.Label); n > w {
			w = n
		}
	}
	return min(w, limit)
}

func fit(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s + strings.Repeat(" ", w-lipgloss.Width(s))
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// barLines draws one horizontal bar per point, scaled to the largest
// magnitude.
func barLines(c *Chart, width int) []string {
	lw := labelWidth(c.Points, width/3)
	var maxAbs float64
	for _, p := range c.Points {
		maxAbs = math.Max(maxAbs, math.Abs(p.Y))
	}

	values := make([]string, len(c.Points))
	vw := 0
	for i, p := range c.Points {
		values[i] = groupShortest(round2(p.Y))
		vw = max(vw, len(values[i]))
	}

	barMax := width - lw - vw - 3
	if barMax < 1 {
		barMax = 1
	}

	lines := make([]string, 0, len(c.Points))
	for i, p := range c.Points {
		n := 0
		if maxAbs > 0 {
			n = spread(math.Abs(p.Y), 0, maxAbs, barMax+1)
		}
		bar := strings.Repeat("█", n)
		if p.Y < 0 {
			bar = strings.Repeat("░", n)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", fit(p.Label, lw), values[i], bar))
	}
	return lines
}

// Sparkline maps values onto eight block heights.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = spread(v, lo, hi, len(sparkRunes))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// lineLines draws a sparkline followed by the first, lowest, highest and
// last points.
func lineLines(c *Chart, width int) []string {
	values := make([]float64, len(c.Points))
	for i, p := range c.Points {
		values[i] = p.Y
	}
	// Downsample so the sparkline fits.
	if len(values) > width {
		step := float64(len(values)) / float64(width)
		sampled := make([]float64, width)
		for i := range sampled {
			sampled[i] = values[int(float64(i)*step)]
		}
		values = sampled
	}

	lo, hi := 0, 0
	for i, p := range c.Points {
		if p.Y < c.Points[lo].Y {
			lo = i
		}
		if p.Y > c.Points[hi].Y {
			hi = i
		}
	}
	first, last := c.Points[0], c.Points[len(c.Points)-1]
	return []string{
		Sparkline(values),
		fmt.Sprintf("%s: %s  →  %s: %s", first.Label, groupShortest(round2(first.Y)), last.Label, groupShortest(round2(last.Y))),
		fmt.Sprintf("min %s (%s)  max %s (%s)",
			groupShortest(round2(c.Points[lo].Y)), c.Points[lo].Label,
			groupShortest(round2(c.Points[hi].Y)), c.Points[hi].Label),
	}
}

// shareLines draws pie slices as percentage bars.
func shareLines(c *Chart, width int) []string {
	lw := labelWidth(c.Points, width/3)
	barMax := width - lw - 10
	if barMax < 1 {
		barMax = 1
	}
	shares := c.Shares()
	lines := make([]string, len(shares))
	for i, s := range shares {
		n := spread(s, 0, 1, barMax+1)
		lines[i] = fmt.Sprintf("%s %6.2f%% %s", fit(c.Points[i].Label, lw), s*100, strings.Repeat("▇", n))
	}
	return lines
}

// scatterLines plots points on a width x height character grid.
func scatterLines(c *Chart, width, height int) []string {
	minX, maxX := c.Points[0].X, c.Points[0].X
	minY, maxY := c.Points[0].Y, c.Points[0].Y
	for _, p := range c.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	axis := max(len(groupShortest(round2(maxY))), len(groupShortest(round2(minY))))
	cols := width - axis - 2
	if cols < 2 {
		cols = 2
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	scale := func(v, lo, hi float64, n int) int {
		if hi == lo {
			return n / 2
		}
		return spread(v, lo, hi, n)
	}
	for _, p := range c.Points {
		col := scale(p.X, minX, maxX, cols)
		row := height - 1 - scale(p.Y, minY, maxY, height)
		grid[row][col] = '•'
	}

	lines := make([]string, 0, height+2)
	for i, r := range grid {
		label := ""
		switch i {
		case 0:
			label = groupShortest(round2(maxY))
		case height - 1:
			label = groupShortest(round2(minY))
		}
		lines = append(lines, fmt.Sprintf("%*s │%s", axis, label, string(r)))
	}
	lines = append(lines, strings.Repeat(" ", axis+1)+"└"+strings.Repeat("─", cols))
	lo, hi := groupShortest(round2(minX)), groupShortest(round2(maxX))
	gap := cols - len(lo) - len(hi)
	if gap < 1 {
		gap = 1
	}
	lines = append(lines, strings.Repeat(" ", axis+2)+lo+strings.Repeat(" ", gap)+hi)
	return lines
}

// spread maps v in [lo, hi] onto a cell index in [0, n-1]. A span too
// large for float64 is halved first; anything still not a number maps to 0.
func spread(v, lo, hi float64, n int) int {
	if n <= 1 {
		return 0
	}
	span := hi - lo
	if math.IsInf(span, 0) {
		v, lo, span = v/2, lo/2, hi/2-lo/2
	}
	f := math.Round((v - lo) / span * float64(n-1))
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > float64(n-1):
		return n - 1
	}
	return int(f)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
