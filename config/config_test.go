package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"), envFrom(nil), nil)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Gemini.Model)
	assert.Equal(t, "bigquery", cfg.Warehouse.Driver)
	assert.Equal(t, "bigquery-public-data.thelook_ecommerce", cfg.Warehouse.BigQuery.Dataset)
	assert.Equal(t, "$", cfg.Display.CurrencySymbol)
	assert.Equal(t, "en", cfg.Display.Language)
	assert.Equal(t, 256, cfg.Cache.Capacity)
	assert.Equal(t, time.Hour, time.Duration(cfg.Cache.TTL))
	assert.Equal(t, 50, cfg.History.RowLimit)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, Duration(24*time.Hour), cfg.Server.SessionTTL)
	assert.Equal(t, 10000, cfg.Server.MaxSessions)
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"ai": {"provider": "OpenAI", "openai": {"api_key": "file-key", "model": "gpt-4o-mini"}},
		"warehouse": {"driver": "duckdb", "duckdb": {"path": "/tmp/thelook.duckdb"}},
		"cache": {"capacity": 10, "ttl": "5m"},
		"display": {"language": "pt"}
	}`), 0600))

	cfg, err := LoadFrom(path, envFrom(map[string]string{
		"OPENAI_API_KEY": "env-key",
		"QM_LANG":        "",
	}), nil)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "env-key", cfg.AI.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.OpenAI.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.OpenAI.BaseURL, "unset fields keep defaults")
	assert.Equal(t, "duckdb", cfg.Warehouse.Driver)
	assert.Equal(t, 10, cfg.Cache.Capacity)
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.Cache.TTL))
	assert.Equal(t, "pt", cfg.Display.Language)
}

func TestLoadFrom_GoogleKeyPrecedence(t *testing.T) {
	cfg, err := LoadFrom("", envFrom(map[string]string{
		"GOOGLE_API_KEY": "google",
		"GEMINI_API_KEY": "gemini",
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, "google", cfg.AI.Gemini.APIKey)
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ai":`), 0600))

	_, err := LoadFrom(path, envFrom(nil), nil)
	require.Error(t, err)
}

func TestLoadFrom_KeyringFillsOnlyMissingKeys(t *testing.T) {
	secrets := MapStore{"groq": "ring-groq", "anthropic": "ring-anthropic"}
	cfg, err := LoadFrom("", envFrom(map[string]string{"ANTHROPIC_API_KEY": "env-anthropic"}), secrets)
	require.NoError(t, err)

	assert.Equal(t, "ring-groq", cfg.AI.Groq.APIKey)
	assert.Equal(t, "env-anthropic", cfg.AI.Anthropic.APIKey)
	assert.Empty(t, cfg.AI.OpenAI.APIKey)
}

func TestValidate(t *testing.T) {
	base := func() *AppConfig {
		cfg := Default()
		cfg.AI.Gemini.APIKey = "k"
		cfg.Warehouse.BigQuery.ProjectID = "proj"
		return cfg
	}

	tests := []struct {
		name     string
		mutate   func(*AppConfig)
		wantAuth bool
		wantErr  bool
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "missing model key", mutate: func(c *AppConfig) { c.AI.Gemini.APIKey = "" }, wantAuth: true},
		{name: "ollama needs no key", mutate: func(c *AppConfig) { c.AI.Provider = "ollama"; c.AI.Gemini.APIKey = "" }},
		{name: "unknown provider", mutate: func(c *AppConfig) { c.AI.Provider = "skynet" }, wantErr: true},
		{name: "missing project", mutate: func(c *AppConfig) { c.Warehouse.BigQuery.ProjectID = "" }, wantAuth: true},
		{name: "bad credentials", mutate: func(c *AppConfig) { c.Warehouse.BigQuery.CredentialsJSON = "not-json-%%" }, wantAuth: true},
		{name: "postgres without dsn", mutate: func(c *AppConfig) { c.Warehouse.Driver = "postgres" }, wantAuth: true},
		{name: "duckdb with path", mutate: func(c *AppConfig) { c.Warehouse.Driver = "duckdb"; c.Warehouse.DuckDB.Path = "x.db" }},
		{name: "ssh on bigquery", mutate: func(c *AppConfig) { c.Warehouse.SSH.Enabled = true }, wantErr: true},
		{
			name: "ssh without key",
			mutate: func(c *AppConfig) {
				c.Warehouse.Driver = "postgres"
				c.Warehouse.Postgres.DSN = "postgres://localhost/db"
				c.Warehouse.SSH = SSHConfig{Enabled: true, Host: "bastion", User: "me"}
			},
			wantAuth: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			switch {
			case tt.wantAuth:
				require.ErrorIs(t, err, ErrAuthentication)
				var aerr *AuthenticationError
				require.ErrorAs(t, err, &aerr)
			case tt.wantErr:
				require.Error(t, err)
				require.NotErrorIs(t, err, ErrAuthentication)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestBigQueryCredentials(t *testing.T) {
	const sa = `{"type":"service_account","project_id":"p"}`

	got, err := BigQueryConfig{CredentialsJSON: sa}.Credentials()
	require.NoError(t, err)
	assert.JSONEq(t, sa, string(got))

	got, err = BigQueryConfig{CredentialsJSON: base64.StdEncoding.EncodeToString([]byte(sa))}.Credentials()
	require.NoError(t, err)
	assert.JSONEq(t, sa, string(got))

	got, err = BigQueryConfig{}.Credentials()
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = BigQueryConfig{CredentialsJSON: base64.StdEncoding.EncodeToString([]byte("plain text"))}.Credentials()
	require.Error(t, err)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", Mask("abc"))
	assert.Equal(t, "****wxyz", Mask("sk-abcdefwxyz"))
}
