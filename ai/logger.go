// logger.go records every model call through the application logger and
// the model latency histogram. Prompts are logged by size only.
package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/DachengChen/querymaster/applog"
	"github.com/DachengChen/querymaster/metrics"
)

// LogRequest logs an outgoing model request.
func LogRequest(provider string, history []Message, prompt string) {
	applog.Event("ai", "model request",
		slog.String("provider", provider),
		slog.Int("history_turns", len(history)),
		slog.Int("prompt_len", len(prompt)),
	)
}

// LogResponse logs a model reply or failure.
func LogResponse(provider string, response string, dur time.Duration, err error) {
	if err != nil {
		applog.Logger().Error("model request failed",
			slog.String("category", "ai"),
			slog.String("provider", provider),
			slog.Duration("duration", dur),
			slog.Any("error", err),
		)
		return
	}
	applog.Event("ai", "model response",
		slog.String("provider", provider),
		slog.Int("response_len", len(response)),
		slog.Duration("duration", dur),
	)
}

// logged decorates a Provider with request/response logging and latency
// metrics.
type logged struct {
	Provider
}

// WithLogging wraps p so every Complete call is logged and timed.
func WithLogging(p Provider) Provider {
	if _, ok := p.(logged); ok {
		return p
	}
	return logged{Provider: p}
}

func (l logged) Complete(ctx context.Context, system string, history []Message, prompt string) (string, error) {
	name := l.Name()
	LogRequest(name, history, prompt)

	start := time.Now()
	out, err := l.Provider.Complete(ctx, system, history, prompt)
	dur := time.Since(start)

	metrics.ModelCallDuration.WithLabelValues(name).Observe(dur.Seconds())
	LogResponse(name, out, dur, err)
	return out, err
}
