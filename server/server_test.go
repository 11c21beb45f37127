package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/querymaster/ai"
	"github.com/DachengChen/querymaster/chat"
	"github.com/DachengChen/querymaster/envelope"
	"github.com/DachengChen/querymaster/i18n"
	"github.com/DachengChen/querymaster/render"
	"github.com/DachengChen/querymaster/warehouse"
)

type growthWarehouse struct{ calls atomic.Int32 }

func (w *growthWarehouse) Query(_ context.Context, sql string) (*warehouse.Table, error) {
	w.calls.Add(1)
	return &warehouse.Table{
		Columns: []warehouse.Column{{Name: "revenue_growth_percentage", Type: "DOUBLE"}},
		Rows:    [][]any{{1234.5}},
	}, nil
}

func (w *growthWarehouse) Dialect() warehouse.Dialect { return warehouse.DialectDuckDB }
func (w *growthWarehouse) Close() error               { return nil }

func newTestServer(t *testing.T) (*gin.Engine, *growthWarehouse) {
	t.Helper()
	return newTestServerWith(t, Options{})
}

func newTestServerWith(t *testing.T, opts Options) (*gin.Engine, *growthWarehouse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	wh := &growthWarehouse{}
	d := chat.NewDispatcher(ai.NewPlaceholder("duckdb", ""), wh, chat.Options{
		Cache:  chat.NewCache(16, time.Hour),
		Logger: log,
	})
	opts.Lang, opts.RowLimit, opts.Logger = i18n.English, 50, log
	srv := New(d, opts)
	return srv.Router(), wh
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAsk_PresetReturnsKPIAndIsCached(t *testing.T) {
	r, wh := newTestServer(t)
	id := createSession(t, r)

	var first struct {
		Envelope envelope.Envelope `json:"envelope"`
		View     render.View       `json:"view"`
		Cached   bool              `json:"cached"`
	}
	w := do(t, r, http.MethodPost, "/api/sessions/"+id+"/ask", gin.H{"preset": "revenue-growth"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	assert.Equal(t, envelope.ActionData, first.Envelope.Action)
	assert.Equal(t, render.KindKPI, first.View.Kind)
	require.NotNil(t, first.View.KPI)
	assert.Equal(t, "1,234.50%", first.View.KPI.Value)
	assert.False(t, first.Cached)

	// A fresh session has the same empty history, so the same preset hits the cache.
	other := createSession(t, r)
	w = do(t, r, http.MethodPost, "/api/sessions/"+other+"/ask", gin.H{"preset": "F6"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cached":true`)
	assert.Equal(t, int32(1), wh.calls.Load())
}

func TestAsk_Errors(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/sessions/missing/ask", gin.H{"question": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := createSession(t, r)
	w = do(t, r, http.MethodPost, "/api/sessions/"+id+"/ask", gin.H{"question": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/sessions/"+id+"/ask", gin.H{"preset": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessagesAndClear(t *testing.T) {
	r, _ := newTestServer(t)
	id := createSession(t, r)

	w := do(t, r, http.MethodPost, "/api/sessions/"+id+"/ask", gin.H{"question": "hello there"})
	require.Equal(t, http.StatusOK, w.Code)

	var log struct {
		Messages []chat.Message `json:"messages"`
	}
	w = do(t, r, http.MethodGet, "/api/sessions/"+id+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &log))
	require.Len(t, log.Messages, 2)
	assert.Equal(t, chat.Message{Role: chat.MessageUser, Content: "hello there"}, log.Messages[0])

	w = do(t, r, http.MethodDelete, "/api/sessions/"+id+"/history", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/sessions/"+id+"/messages", nil)
	assert.JSONEq(t, `{"messages":[]}`, w.Body.String())

	w = do(t, r, http.MethodDelete, "/api/sessions/unknown/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPresets(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/presets?lang=pt", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Lang    i18n.Lang     `json:"lang"`
		Presets []i18n.Preset `json:"presets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, i18n.Portuguese, resp.Lang)
	require.Len(t, resp.Presets, 7)
	assert.Equal(t, "Quais são as 5 marcas mais lucrativas?", resp.Presets[1].Prompt)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestServer(t)
	do(t, r, http.MethodGet, "/health", nil)

	w := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "querymaster_http_requests_total")
}

func TestSessions_Expire(t *testing.T) {
	r, _ := newTestServerWith(t, Options{MaxSessions: 1})
	first := createSession(t, r)
	second := createSession(t, r)

	w := do(t, r, http.MethodGet, "/api/sessions/"+first+"/messages", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "oldest session evicted at capacity")
	w = do(t, r, http.MethodGet, "/api/sessions/"+second+"/messages", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	r, _ = newTestServerWith(t, Options{SessionTTL: 20 * time.Millisecond})
	idle := createSession(t, r)
	time.Sleep(60 * time.Millisecond)
	w = do(t, r, http.MethodGet, "/api/sessions/"+idle+"/messages", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "idle session expired")
}

func TestMetrics_UnmatchedRoutesShareOneLabel(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/wp-admin/setup-config.php", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	body := do(t, r, http.MethodGet, "/metrics", nil).Body.String()
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, "wp-admin")
}
