// messages.go defines Bubble Tea messages used for async communication.
//
// Turns run in a command goroutine and report back through AnswerMsg, so
// the UI keeps animating the spinner while the model and warehouse work.
package tui

import "github.com/DachengChen/querymaster/chat"

// AnswerMsg is sent when a turn completes.
type AnswerMsg struct {
	Question string
	Result   chat.Result
}

// StatusMsg is a transient status message for the status bar.
type StatusMsg string
