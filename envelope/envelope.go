// Package envelope defines the structured reply the model is asked to
// return and the parser that recovers it from free-form model text.
//
// The model answers every question with one JSON object:
//
//	{"action": "EXECUTE", "content": "SELECT ...", "display_format": "currency_usd", "chart_type": "bar"}
//
// DATA is never produced by the model; the dispatcher derives it locally
// after a successful EXECUTE.
package envelope

import (
	"encoding/json"
	"strings"
)

// Action is the envelope's verb.
type Action string

const (
	ActionClarify Action = "CLARIFY"
	ActionExecute Action = "EXECUTE"
	ActionError   Action = "ERROR"
	ActionData    Action = "DATA"
)

// DisplayFormat hints how a scalar value should be printed.
type DisplayFormat string

const (
	FormatNumber     DisplayFormat = "number"
	FormatCurrency   DisplayFormat = "currency"
	FormatPercentage DisplayFormat = "percentage"
	FormatText       DisplayFormat = "text"
)

// IsCurrency reports whether f is "currency" or an ISO-suffixed variant
// such as "currency_usd".
func (f DisplayFormat) IsCurrency() bool {
	return f == FormatCurrency || strings.HasPrefix(string(f), string(FormatCurrency)+"_")
}

// CurrencyCode returns the lower-case ISO code of a "currency_xxx" format,
// or "" for plain "currency".
func (f DisplayFormat) CurrencyCode() string {
	if !f.IsCurrency() {
		return ""
	}
	return strings.TrimPrefix(strings.TrimPrefix(string(f), string(FormatCurrency)), "_")
}

// ChartType selects the chart drawn next to a multi-row table.
type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
	ChartTable   ChartType = "table"
)

// Envelope is one model reply, or its locally derived DATA/ERROR form.
type Envelope struct {
	Action        Action        `json:"action"`
	Content       string        `json:"content,omitempty"`
	DisplayFormat DisplayFormat `json:"display_format,omitempty"`
	ChartType     ChartType     `json:"chart_type,omitempty"`

	// Set only on DATA envelopes.
	QueryUsed string   `json:"query_used,omitempty"`
	Columns   []string `json:"columns,omitempty"`
	Rows      [][]any  `json:"rows,omitempty"`
}

// Error returns an ERROR envelope carrying msg.
func Error(msg string) Envelope {
	return Envelope{Action: ActionError, Content: msg}
}

// Marshal serializes the envelope as the opaque record stored in history.
func (e Envelope) Marshal() string {
	data, err := json.Marshal(e)
	if err != nil {
		// Rows hold only normalized scalars, so this only trips on NaN/Inf.
		fallback, _ := json.Marshal(Envelope{Action: e.Action, Content: e.Content, QueryUsed: e.QueryUsed})
		return string(fallback)
	}
	return string(data)
}

// Truncated returns a copy whose Rows slice holds at most limit rows.
// A limit <= 0 keeps all rows.
func (e Envelope) Truncated(limit int) Envelope {
	if limit <= 0 || len(e.Rows) <= limit {
		return e
	}
	e.Rows = e.Rows[:limit]
	return e
}

func normalizeFormat(s string) DisplayFormat {
	f := DisplayFormat(strings.ToLower(strings.TrimSpace(s)))
	switch {
	case f == FormatNumber, f == FormatPercentage, f == FormatText, f.IsCurrency():
		return f
	default:
		return FormatNumber
	}
}

func normalizeChart(s string) ChartType {
	c := ChartType(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ChartBar, ChartLine, ChartPie, ChartScatter, ChartTable:
		return c
	default:
		return ""
	}
}
