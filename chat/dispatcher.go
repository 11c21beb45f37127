package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DachengChen/querymaster/ai"
	"github.com/DachengChen/querymaster/envelope"
	"github.com/DachengChen/querymaster/metrics"
	"github.com/DachengChen/querymaster/warehouse"
)

// Result is the outcome of one turn.
type Result struct {
	Envelope envelope.Envelope
	Cached   bool
	Duration time.Duration
}

// Options configures a Dispatcher.
type Options struct {
	// System is the instruction sent with every model request.
	System string
	// Cache memoizes final envelopes. Nil disables memoization.
	Cache  *Cache
	Logger *slog.Logger
}

// Dispatcher turns a question into a final CLARIFY, DATA or ERROR envelope.
// It is safe for concurrent use when its provider and warehouse are.
type Dispatcher struct {
	provider  ai.Provider
	warehouse warehouse.Warehouse
	cache     *Cache
	system    string
	log       *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(p ai.Provider, w warehouse.Warehouse, opts Options) *Dispatcher {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		provider:  p,
		warehouse: w,
		cache:     opts.Cache,
		system:    opts.System,
		log:       log,
	}
}

// Respond answers question given the prior turns. It never fails: every
// problem is reported as an ERROR envelope. Identical question and history
// return the memoized envelope without calling the model or the warehouse.
func (d *Dispatcher) Respond(ctx context.Context, question string, history []Turn) Result {
	start := time.Now()

	var key string
	if d.cache != nil {
		key = Key(question, history)
		if env, ok := d.cache.Get(key); ok {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			res := Result{Envelope: env, Cached: true, Duration: time.Since(start)}
			d.record(res)
			return res
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	env, transient := d.resolve(ctx, question, history)
	if d.cache != nil && !transient {
		d.cache.Set(key, env)
	}

	res := Result{Envelope: env, Duration: time.Since(start)}
	d.record(res)
	return res
}

// resolve produces the final envelope for one turn. transient is true when
// the answer came from a failed model or warehouse call rather than from the
// model's reply, so it must not be memoized.
func (d *Dispatcher) resolve(ctx context.Context, question string, history []Turn) (env envelope.Envelope, transient bool) {
	raw, err := d.provider.Complete(ctx, d.system, Messages(history), question)
	if err != nil {
		return envelope.Error(fmt.Sprintf("the language model request failed: %v", err)), true
	}

	env, err = envelope.Parse(raw)
	if err != nil {
		var malformed *envelope.MalformedResponseError
		if errors.As(err, &malformed) {
			return envelope.Error(MalformedMessage(malformed)), false
		}
		return envelope.Error(err.Error()), false
	}

	switch env.Action {
	case envelope.ActionClarify, envelope.ActionError:
		return env, false
	case envelope.ActionExecute:
		return d.execute(ctx, env)
	default:
		return envelope.Error(fmt.Sprintf("The model returned an unsupported action %q.", env.Action)), false
	}
}

// MalformedMessage is the user-facing text for a reply that could not be
// parsed: the raw reply followed by the cause.
func MalformedMessage(e *envelope.MalformedResponseError) string {
	return fmt.Sprintf("The model responded in an unexpected format: '%s' (%s)", e.Raw, e.Reason)
}

func (d *Dispatcher) execute(ctx context.Context, env envelope.Envelope) (envelope.Envelope, bool) {
	sql := warehouse.CleanSQL(env.Content)
	table, err := d.warehouse.Query(ctx, sql)
	if err != nil {
		return envelope.Error(err.Error()), true
	}

	return envelope.Envelope{
		Action:        envelope.ActionData,
		DisplayFormat: env.DisplayFormat,
		ChartType:     env.ChartType,
		QueryUsed:     sql,
		Columns:       table.ColumnNames(),
		Rows:          table.Rows,
	}, false
}

func (d *Dispatcher) record(res Result) {
	action := string(res.Envelope.Action)
	metrics.TurnsTotal.WithLabelValues(action).Inc()

	attrs := []any{
		slog.String("category", "turn"),
		slog.String("action", action),
		slog.Bool("cached", res.Cached),
		slog.Duration("duration", res.Duration),
	}
	if res.Envelope.Action == envelope.ActionData {
		attrs = append(attrs, slog.Int("rows", len(res.Envelope.Rows)))
	}
	if res.Envelope.Action == envelope.ActionError {
		d.log.Warn("turn failed", append(attrs, slog.String("error", res.Envelope.Content))...)
		return
	}
	d.log.Info("turn answered", attrs...)
}
