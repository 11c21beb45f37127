package chat

import (
	"context"
	"sync"

	"github.com/DachengChen/querymaster/ai"
	"github.com/DachengChen/querymaster/warehouse"
)

// fakeProvider replies with reply (or err) and records every call.
type fakeProvider struct {
	mu      sync.Mutex
	reply   func(prompt string) string
	err     error
	calls   int
	history [][]ai.Message
	system  string
}

func replyWith(s string) *fakeProvider {
	return &fakeProvider{reply: func(string) string { return s }}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, system string, history []ai.Message, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.system = system
	f.history = append(f.history, history)
	if f.err != nil {
		return "", f.err
	}
	return f.reply(prompt), nil
}

func (f *fakeProvider) lastHistory() []ai.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[len(f.history)-1]
}

// fakeWarehouse returns table (or err) and counts queries.
type fakeWarehouse struct {
	mu      sync.Mutex
	table   *warehouse.Table
	err     error
	calls   int
	lastSQL string
}

func (w *fakeWarehouse) Query(_ context.Context, sql string) (*warehouse.Table, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	w.lastSQL = sql
	if w.err != nil {
		return nil, &warehouse.QueryExecutionError{Dialect: warehouse.DialectDuckDB, SQL: sql, Err: w.err}
	}
	return w.table, nil
}

func (w *fakeWarehouse) Dialect() warehouse.Dialect { return warehouse.DialectDuckDB }

func (w *fakeWarehouse) Close() error { return nil }

func brandsTable(n int) *warehouse.Table {
	t := &warehouse.Table{Columns: []warehouse.Column{{Name: "brand", Type: "VARCHAR"}, {Name: "total_revenue", Type: "DOUBLE"}}}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, []any{"brand", float64(1000 - i)})
	}
	return t
}
