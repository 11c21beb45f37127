package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/DachengChen/querymaster/envelope"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newDispatcher(p *fakeProvider, w *fakeWarehouse, cache *Cache) *Dispatcher {
	return NewDispatcher(p, w, Options{System: "sys", Cache: cache, Logger: quiet})
}

func TestRespond_ExecuteBecomesData(t *testing.T) {
	p := replyWith("```json\n{\"action\":\"EXECUTE\",\"content\":\"SELECT brand, total_revenue FROM t;\",\"display_format\":\"currency_usd\",\"chart_type\":\"bar\"}\n```")
	w := &fakeWarehouse{table: brandsTable(5)}

	res := newDispatcher(p, w, nil).Respond(context.Background(), "top brands", nil)

	env := res.Envelope
	require.Equal(t, envelope.ActionData, env.Action)
	assert.Equal(t, "SELECT brand, total_revenue FROM t", env.QueryUsed)
	assert.Equal(t, "SELECT brand, total_revenue FROM t", w.lastSQL)
	assert.Equal(t, []string{"brand", "total_revenue"}, env.Columns)
	assert.Len(t, env.Rows, 5)
	assert.Equal(t, envelope.DisplayFormat("currency_usd"), env.DisplayFormat)
	assert.Equal(t, envelope.ChartBar, env.ChartType)
	assert.False(t, res.Cached)
	assert.Equal(t, "sys", p.system)
}

func TestRespond_ClarifyAndModelErrorPassThrough(t *testing.T) {
	w := &fakeWarehouse{}

	res := newDispatcher(replyWith(`{"action":"CLARIFY","content":"Which year?"}`), w, nil).
		Respond(context.Background(), "sales?", nil)
	assert.Equal(t, envelope.Envelope{Action: envelope.ActionClarify, Content: "Which year?", DisplayFormat: envelope.FormatNumber}, res.Envelope)

	res = newDispatcher(replyWith(`{"action":"ERROR","content":"Not in the schema."}`), w, nil).
		Respond(context.Background(), "weather?", nil)
	assert.Equal(t, envelope.ActionError, res.Envelope.Action)
	assert.Equal(t, "Not in the schema.", res.Envelope.Content)

	assert.Zero(t, w.calls)
}

func TestRespond_WarehouseFailureBecomesError(t *testing.T) {
	p := replyWith(`{"action":"EXECUTE","content":"SELECT nope"}`)
	w := &fakeWarehouse{err: errors.New("column nope not found")}

	env := newDispatcher(p, w, nil).Respond(context.Background(), "q", nil).Envelope

	assert.Equal(t, envelope.ActionError, env.Action)
	assert.Contains(t, env.Content, "error executing query on duckdb")
	assert.Contains(t, env.Content, "column nope not found")
}

func TestRespond_UnknownActionBecomesError(t *testing.T) {
	env := newDispatcher(replyWith(`{"action":"DROP","content":"x"}`), &fakeWarehouse{}, nil).
		Respond(context.Background(), "q", nil).Envelope

	assert.Equal(t, envelope.ActionError, env.Action)
	assert.Contains(t, env.Content, `"DROP"`)
}

func TestRespond_ProviderFailureBecomesError(t *testing.T) {
	p := &fakeProvider{err: errors.New("quota exceeded")}
	env := newDispatcher(p, &fakeWarehouse{}, nil).Respond(context.Background(), "q", nil).Envelope

	assert.Equal(t, envelope.ActionError, env.Action)
	assert.Contains(t, env.Content, "quota exceeded")
	assert.False(t, strings.HasPrefix(env.Content, "An error occurred"))
}

func TestRespond_TextWithoutBracesIsError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[^{}]*`).Draw(t, "text")
		w := &fakeWarehouse{}

		env := newDispatcher(replyWith(text), w, nil).Respond(context.Background(), "q", nil).Envelope

		if env.Action != envelope.ActionError {
			t.Fatalf("action = %s, want ERROR", env.Action)
		}
		if env.Content != "The model responded in an unexpected format: '"+text+"' (no JSON object found)" {
			t.Fatalf("content = %q", env.Content)
		}
		if w.calls != 0 {
			t.Fatalf("warehouse called %d times", w.calls)
		}
	})
}

func TestRespond_CacheHitSkipsModelAndWarehouse(t *testing.T) {
	p := replyWith(`{"action":"EXECUTE","content":"SELECT 1"}`)
	w := &fakeWarehouse{table: brandsTable(3)}
	d := newDispatcher(p, w, NewCache(16, time.Hour))

	history := []Turn{{Role: RoleUser, Payload: "hi"}, {Role: RoleModel, Payload: `{"action":"CLARIFY","content":"?"}`}}

	first := d.Respond(context.Background(), "top brands", history)
	second := d.Respond(context.Background(), "top brands", history)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Envelope, second.Envelope)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 1, w.calls)

	// Any difference in question or history is a miss.
	d.Respond(context.Background(), "top brands ", history)
	d.Respond(context.Background(), "top brands", history[:1])
	assert.Equal(t, 3, p.calls)
}

func TestRespond_ModelErrorsAreCached(t *testing.T) {
	replies := map[string]string{
		"weather in Paris?": `{"action":"ERROR","content":"That data is not in the schema."}`,
		"garbled":           `{"content":"SELECT 1"}`,
	}
	p := &fakeProvider{reply: func(prompt string) string { return replies[prompt] }}
	d := newDispatcher(p, &fakeWarehouse{}, NewCache(16, time.Hour))

	first := d.Respond(context.Background(), "weather in Paris?", nil)
	second := d.Respond(context.Background(), "weather in Paris?", nil)
	assert.Equal(t, envelope.ActionError, first.Envelope.Action)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Envelope, second.Envelope)

	first = d.Respond(context.Background(), "garbled", nil)
	second = d.Respond(context.Background(), "garbled", nil)
	assert.Contains(t, first.Envelope.Content, `missing or non-string "action"`)
	assert.True(t, second.Cached)

	assert.Equal(t, 2, p.calls)
}

func TestRespond_TransportFailuresAreNotCached(t *testing.T) {
	p := replyWith(`{"action":"EXECUTE","content":"SELECT 1"}`)
	w := &fakeWarehouse{err: errors.New("timeout")}
	cache := NewCache(16, 0)
	d := newDispatcher(p, w, cache)

	d.Respond(context.Background(), "q", nil)
	d.Respond(context.Background(), "q", nil)
	assert.Equal(t, 2, p.calls)
	assert.Zero(t, cache.Len())

	down := &fakeProvider{err: errors.New("connection refused")}
	d = newDispatcher(down, w, cache)
	d.Respond(context.Background(), "q", nil)
	d.Respond(context.Background(), "q", nil)
	assert.Equal(t, 2, down.calls)
	assert.Zero(t, cache.Len())
}

func TestKey(t *testing.T) {
	h := []Turn{{Role: RoleUser, Payload: "a"}}
	assert.Equal(t, Key("q", h), Key("q", []Turn{{Role: RoleUser, Payload: "a"}}))
	assert.Equal(t, Key("q", nil), Key("q", []Turn{}))
	assert.NotEqual(t, Key("q", h), Key("q", nil))
	assert.NotEqual(t, Key("q", h), Key("q", []Turn{{Role: RoleModel, Payload: "a"}}))
	assert.Len(t, Key("q", nil), 64)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, 0)
	c.Set("a", envelope.Envelope{Action: envelope.ActionClarify, Content: "a"})
	c.Set("b", envelope.Envelope{Action: envelope.ActionClarify, Content: "b"})
	c.Set("c", envelope.Envelope{Action: envelope.ActionClarify, Content: "c"})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	env, ok := c.Get("c")
	require.True(t, ok)
	assert.Equal(t, "c", env.Content)

	c.Purge()
	assert.Zero(t, c.Len())
}
