package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse matches every *MalformedResponseError via errors.Is.
var ErrMalformedResponse = errors.New("malformed model response")

// MalformedResponseError reports model output that does not contain a
// usable envelope. Raw keeps the complete model text for display.
type MalformedResponseError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedResponse, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// wireEnvelope mirrors the JSON the model writes. Fields are raw so that
// type mistakes can be told apart from missing keys.
type wireEnvelope struct {
	Action        json.RawMessage `json:"action"`
	Content       json.RawMessage `json:"content"`
	DisplayFormat json.RawMessage `json:"display_format"`
	ChartType     json.RawMessage `json:"chart_type"`
}

// ExtractJSON returns the substring between the first '{' and the last '}'
// of text, inclusive. Surrounding prose and Markdown fences are ignored.
// ok is false when either brace is missing or they are out of order.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// Parse extracts and validates the envelope contained in raw model text.
//
// Validation is strict: action must be a non-empty string, content must be
// a string when present, and EXECUTE must carry SQL. Only display_format
// (default "number") and chart_type (default unset, rendered as bar) fall
// back silently.
// Unknown actions are returned as-is; deciding what to do with them is the
// dispatcher's job.
func Parse(raw string) (Envelope, error) {
	candidate, ok := ExtractJSON(raw)
	if !ok {
		return Envelope{}, &MalformedResponseError{Raw: raw, Reason: "no JSON object found"}
	}

	var w wireEnvelope
	if err := json.Unmarshal([]byte(candidate), &w); err != nil {
		return Envelope{}, &MalformedResponseError{Raw: raw, Reason: "invalid JSON", Err: err}
	}

	action, ok := decodeString(w.Action)
	if !ok || strings.TrimSpace(action) == "" {
		return Envelope{}, &MalformedResponseError{Raw: raw, Reason: `missing or non-string "action"`}
	}

	content := ""
	if len(w.Content) > 0 && string(w.Content) != "null" {
		content, ok = decodeString(w.Content)
		if !ok {
			return Envelope{}, &MalformedResponseError{Raw: raw, Reason: `"content" must be a string`}
		}
	}

	env := Envelope{
		Action:  Action(strings.ToUpper(strings.TrimSpace(action))),
		Content: content,
	}
	if s, ok := decodeString(w.DisplayFormat); ok {
		env.DisplayFormat = normalizeFormat(s)
	} else {
		env.DisplayFormat = FormatNumber
	}
	if s, ok := decodeString(w.ChartType); ok {
		env.ChartType = normalizeChart(s)
	}

	if env.Action == ActionExecute && strings.TrimSpace(env.Content) == "" {
		return Envelope{}, &MalformedResponseError{Raw: raw, Reason: "EXECUTE without SQL content"}
	}

	return env, nil
}

func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
