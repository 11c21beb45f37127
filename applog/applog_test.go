package applog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	_, err := Setup(Options{Level: "debug", Writer: &buf, NoColor: true})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Setup(Options{Writer: &bytes.Buffer{}}) })

	Info("started %s", "querymaster")
	Event("turn", "answered", "action", "DATA", "cached", true)
	Error("boom: %d", 42)

	out := buf.String()
	assert.Contains(t, out, "started querymaster")
	assert.Contains(t, out, "category=turn")
	assert.Contains(t, out, "action=DATA")
	assert.Contains(t, out, "cached=true")
	assert.Contains(t, out, "boom: 42")
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	_, err := Setup(Options{Level: "error", Writer: &buf, NoColor: true})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Setup(Options{Writer: &bytes.Buffer{}}) })

	Info("hidden")
	Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
