// Package render turns a final envelope into something a person can read:
// a key metric, a table with a chart, a clarifying question or an error.
//
// Build computes a renderer-independent View. Terminal, PTerm and Markdown
// draw a View; the HTTP API serializes it as JSON.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/DachengChen/querymaster/envelope"
)

// Kind selects the presentation of a result.
type Kind string

const (
	KindKPI     Kind = "kpi"
	KindTable   Kind = "table"
	KindEmpty   Kind = "empty"
	KindClarify Kind = "clarify"
	KindError   Kind = "error"
)

// EmptyNotice is shown for a query that returned no rows.
const EmptyNotice = "The query returned no results."

// Directive is the display decision for one result.
type Directive struct {
	Kind   Kind
	Format envelope.DisplayFormat
	Chart  envelope.ChartType
}

// Decide picks the presentation from the result shape and hints.
// A single row with at most two columns is a key metric; anything larger
// is a table.
func Decide(rows, cols int, format envelope.DisplayFormat, chart envelope.ChartType) Directive {
	if format == "" {
		format = envelope.FormatNumber
	}
	d := Directive{Format: format, Chart: chart}
	switch {
	case rows == 0:
		d.Kind = KindEmpty
	case rows == 1 && cols >= 1 && cols <= 2:
		d.Kind = KindKPI
	default:
		d.Kind = KindTable
		if d.Chart == "" {
			d.Chart = envelope.ChartBar
		}
	}
	return d
}

// KPI is a single labelled value.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// View is everything a renderer needs, already formatted.
type View struct {
	Kind      Kind                   `json:"kind"`
	Text      string                 `json:"text,omitempty"`
	Format    envelope.DisplayFormat `json:"display_format,omitempty"`
	KPI       *KPI                   `json:"kpi,omitempty"`
	Columns   []string               `json:"columns,omitempty"`
	Rows      [][]string             `json:"rows,omitempty"`
	Chart     *Chart                 `json:"chart,omitempty"`
	Warnings  []string               `json:"warnings,omitempty"`
	QueryUsed string                 `json:"query_used,omitempty"`
}

// Options tunes Build.
type Options struct {
	// CurrencySymbol is used for plain "currency"; ISO-suffixed formats
	// such as "currency_eur" pick their own symbol.
	CurrencySymbol string
}

// Renderer draws a View.
type Renderer interface {
	Render(w io.Writer, v View) error
}

// Build computes the view for a final envelope. It never panics; a failure
// while formatting falls back to the raw table with a warning.
func Build(env envelope.Envelope, opts Options) (v View) {
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "$"
	}

	switch env.Action {
	case envelope.ActionClarify:
		return View{Kind: KindClarify, Text: env.Content}
	case envelope.ActionData:
	default:
		return View{Kind: KindError, Text: env.Content}
	}

	defer func() {
		if r := recover(); r != nil {
			v = rawView(env)
			v.Warnings = append(v.Warnings, fmt.Sprintf("display fell back to the raw table: %v", r))
		}
	}()
	return buildData(env, opts)
}

func buildData(env envelope.Envelope, opts Options) View {
	d := Decide(len(env.Rows), len(env.Columns), env.DisplayFormat, env.ChartType)
	v := View{Kind: d.Kind, Format: d.Format, QueryUsed: env.QueryUsed}

	switch d.Kind {
	case KindEmpty:
		v.Text = EmptyNotice
	case KindKPI:
		row := env.Rows[0]
		if len(env.Columns) == 1 {
			v.KPI = &KPI{
				Label: Humanize(env.Columns[0]),
				Value: FormatValue(row[0], d.Format, opts.CurrencySymbol),
			}
		} else {
			v.KPI = &KPI{
				Label: plain(row[0]),
				Value: FormatValue(row[1], d.Format, opts.CurrencySymbol),
			}
		}
	case KindTable:
		v.Columns = append([]string(nil), env.Columns...)
		v.Rows = make([][]string, len(env.Rows))
		for i, row := range env.Rows {
			cells := make([]string, len(row))
			for j, cell := range row {
				if j == 0 {
					cells[j] = plain(cell)
					continue
				}
				cells[j] = FormatCell(cell, d.Format, opts.CurrencySymbol)
			}
			v.Rows[i] = cells
		}

		chart, err := BuildChart(d.Chart, env.Columns, env.Rows)
		if err != nil {
			v.Warnings = append(v.Warnings, ChartWarning)
		}
		v.Chart = chart
	}
	return v
}

func rawView(env envelope.Envelope) View {
	v := View{Kind: KindTable, Columns: env.Columns, QueryUsed: env.QueryUsed}
	for _, row := range env.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		v.Rows = append(v.Rows, cells)
	}
	return v
}

// Safe runs r and converts a panic into an error.
func Safe(r Renderer, w io.Writer, v View) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &Degradation{Reason: fmt.Sprint(p)}
		}
	}()
	return r.Render(w, v)
}

// WithoutChart returns v with its chart replaced by ChartWarning.
func WithoutChart(v View) View {
	if v.Chart == nil {
		return v
	}
	v.Chart = nil
	v.Warnings = append(append([]string(nil), v.Warnings...), ChartWarning)
	return v
}

// Draw renders v with r into a string. If r panics the view is drawn again
// without its chart, and if that fails too only the failure is reported.
func Draw(r Renderer, v View) string {
	var b strings.Builder
	err := Safe(r, &b, v)
	if err != nil {
		b.Reset()
		if Safe(r, &b, WithoutChart(v)) != nil {
			return err.Error()
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
