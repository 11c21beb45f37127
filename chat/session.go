package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/DachengChen/querymaster/envelope"
	"github.com/DachengChen/querymaster/i18n"
)

// Display log roles.
const (
	MessageUser      = "user"
	MessageAssistant = "assistant"
)

// Message is one line of the conversation as shown to the user.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the state of one conversation: model history, the displayed
// message log and the answer language. Ask and Clear are serialized, so
// only one turn runs at a time.
type Session struct {
	ID   string
	Lang i18n.Lang

	mu         sync.Mutex
	dispatcher *Dispatcher
	history    History
	messages   []Message
	rowLimit   int
}

// NewSession creates an empty session. History records keep at most
// rowLimit result rows per turn; zero keeps all rows.
func NewSession(d *Dispatcher, lang i18n.Lang, rowLimit int) *Session {
	return &Session{
		ID:         uuid.New().String(),
		Lang:       lang,
		dispatcher: d,
		rowLimit:   rowLimit,
	}
}

// Ask runs one turn. The question is localized before it reaches the
// model; the display log keeps it as typed. The returned envelope carries
// every result row even when the history record is truncated. A blank
// question is rejected without touching the session.
func (s *Session) Ask(ctx context.Context, question string) Result {
	if strings.TrimSpace(question) == "" {
		return Result{Envelope: envelope.Error("Please type a question.")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prompt := i18n.Localize(s.Lang, question)
	res := s.dispatcher.Respond(ctx, prompt, s.history.Turns())

	s.history.Append(
		Turn{Role: RoleUser, Payload: prompt},
		Turn{Role: RoleModel, Payload: res.Envelope.Truncated(s.rowLimit).Marshal()},
	)
	s.messages = append(s.messages,
		Message{Role: MessageUser, Content: question},
		Message{Role: MessageAssistant, Content: AssistantText(res.Envelope)},
	)
	return res
}

// Clear empties the model history and the display log together.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Reset()
	s.messages = nil
}

// Messages returns a copy of the display log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// History returns a copy of the model-facing turns.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Turns()
}

// AssistantText is the display log entry for a final envelope.
func AssistantText(env envelope.Envelope) string {
	switch env.Action {
	case envelope.ActionClarify:
		return env.Content
	case envelope.ActionData:
		return "[Displaying data and charts]"
	default:
		return "An error occurred: " + env.Content
	}
}
