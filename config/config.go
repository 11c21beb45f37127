// Package config defines the application configuration structures.
//
// Separated from cmd to allow other packages (ai, warehouse, ssh, tui,
// server) to depend on config without importing Cobra.
//
// Settings are read from ~/.querymaster/config.json. Environment
// variables (and a .env file in the working directory) override the
// file; API keys that are still missing are looked up in the OS keyring.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is the top-level config file structure (~/.querymaster/config.json).
type AppConfig struct {
	AI        AIConfig        `json:"ai"`
	Warehouse WarehouseConfig `json:"warehouse"`
	Display   DisplayConfig   `json:"display"`
	Cache     CacheConfig     `json:"cache"`
	History   HistoryConfig   `json:"history"`
	Log       LogConfig       `json:"log"`
	Server    ServerConfig    `json:"server"`
}

// DisplayConfig controls how results are presented.
type DisplayConfig struct {
	CurrencySymbol string `json:"currency_symbol"`
	Language       string `json:"language"` // "en" or "pt"
}

// CacheConfig bounds the response cache.
type CacheConfig struct {
	Capacity int      `json:"capacity"`
	TTL      Duration `json:"ttl"`
}

// HistoryConfig bounds what is replayed to the model.
type HistoryConfig struct {
	RowLimit int `json:"row_limit"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr        string   `json:"addr"`
	SessionTTL  Duration `json:"session_ttl"`
	MaxSessions int      `json:"max_sessions"`
}

// Duration is a time.Duration that reads and writes as "1h30m" in JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Bare numbers are seconds.
		var secs float64
		if err2 := json.Unmarshal(b, &secs); err2 != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns sensible defaults.
func Default() *AppConfig {
	return &AppConfig{
		AI:        DefaultAIConfig(),
		Warehouse: DefaultWarehouseConfig(),
		Display: DisplayConfig{
			CurrencySymbol: "$",
			Language:       "en",
		},
		Cache: CacheConfig{
			Capacity: 256,
			TTL:      Duration(time.Hour),
		},
		History: HistoryConfig{RowLimit: 50},
		Log:     LogConfig{Level: "info"},
		Server: ServerConfig{
			Addr:        ":8080",
			SessionTTL:  Duration(24 * time.Hour),
			MaxSessions: 10000,
		},
	}
}

// Dir returns ~/.querymaster.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".querymaster"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads .env, the config file, the environment and the OS keyring,
// in increasing order of precedence for everything but keyring secrets,
// which only fill keys nothing else provided.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	path, err := Path()
	if err != nil {
		path = ""
	}

	var secrets SecretStore
	if ring, err := OpenKeyring(); err == nil {
		secrets = ring
	}
	return LoadFrom(path, os.Getenv, secrets)
}

// LoadFrom is Load with explicit inputs. path may be empty or point at a
// missing file; secrets may be nil.
func LoadFrom(path string, getenv func(string) string, secrets SecretStore) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, err
		}
	}

	cfg.applyEnv(getenv)
	if secrets != nil {
		cfg.fillSecrets(secrets)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the config to ~/.querymaster/config.json.
func Save(cfg *AppConfig) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0600)
}

func (c *AppConfig) applyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.AI.Provider, "QM_AI_PROVIDER")
	set(&c.AI.Gemini.APIKey, "GOOGLE_API_KEY", "GEMINI_API_KEY")
	set(&c.AI.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&c.AI.Groq.APIKey, "GROQ_API_KEY")
	set(&c.AI.Cerebras.APIKey, "CEREBRAS_API_KEY")
	set(&c.AI.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	set(&c.AI.Ollama.Host, "OLLAMA_HOST")

	set(&c.Warehouse.Driver, "QM_WAREHOUSE")
	set(&c.Warehouse.BigQuery.ProjectID, "GOOGLE_CLOUD_PROJECT")
	set(&c.Warehouse.BigQuery.CredentialsJSON, "GCP_SERVICE_ACCOUNT_JSON")
	set(&c.Warehouse.Postgres.DSN, "QM_POSTGRES_DSN")
	set(&c.Warehouse.ClickHouse.Addr, "QM_CLICKHOUSE_ADDR")
	set(&c.Warehouse.ClickHouse.Database, "QM_CLICKHOUSE_DATABASE")
	set(&c.Warehouse.ClickHouse.User, "QM_CLICKHOUSE_USER")
	set(&c.Warehouse.ClickHouse.Password, "QM_CLICKHOUSE_PASSWORD")
	set(&c.Warehouse.DuckDB.Path, "QM_DUCKDB_PATH")

	set(&c.Display.CurrencySymbol, "QM_CURRENCY_SYMBOL")
	set(&c.Display.Language, "QM_LANG")
	set(&c.Log.Level, "QM_LOG_LEVEL")
	set(&c.Server.Addr, "QM_SERVER_ADDR")
}

func (c *AppConfig) fillSecrets(secrets SecretStore) {
	for _, name := range KeyNames() {
		dst := c.AI.apiKeyField(name)
		if dst == nil || *dst != "" {
			continue
		}
		if v, err := secrets.Get(name); err == nil && v != "" {
			*dst = v
		}
	}
}

func (c *AppConfig) normalize() {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	c.Warehouse.Driver = strings.ToLower(strings.TrimSpace(c.Warehouse.Driver))
	c.Display.Language = strings.ToLower(strings.TrimSpace(c.Display.Language))
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = 256
	}
	if c.History.RowLimit < 0 {
		c.History.RowLimit = 0
	}
}
