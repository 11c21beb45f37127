// Package chat runs conversation turns: it sends the question and the
// prior turns to the model, executes any SQL the model asks for, memoizes
// the outcome, and keeps per-session history.
package chat

import (
	"github.com/DachengChen/querymaster/ai"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry of the model-facing history. For user turns Payload is
// the question; for model turns it is the serialized envelope.
type Turn struct {
	Role    Role   `json:"role"`
	Payload string `json:"payload"`
}

// History is an append-only list of turns. It is not safe for concurrent
// use; Session guards it.
type History struct {
	turns []Turn
}

// Append adds turns to the end of the history.
func (h *History) Append(turns ...Turn) {
	h.turns = append(h.turns, turns...)
}

// Turns returns a copy of the history.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int { return len(h.turns) }

// Reset drops every turn.
func (h *History) Reset() { h.turns = nil }

// Messages converts turns into provider messages.
func Messages(turns []Turn) []ai.Message {
	msgs := make([]ai.Message, len(turns))
	for i, t := range turns {
		role := ai.RoleUser
		if t.Role == RoleModel {
			role = ai.RoleAssistant
		}
		msgs[i] = ai.Message{Role: role, Content: t.Payload}
	}
	return msgs
}
