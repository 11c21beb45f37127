package config

import (
	"errors"
	"fmt"
)

// ErrAuthentication matches every *AuthenticationError via errors.Is.
var ErrAuthentication = errors.New("authentication failed")

// AuthenticationError means a credential the selected model or warehouse
// needs is missing or unusable. It is fatal at startup.
type AuthenticationError struct {
	Component string // "ai/gemini", "warehouse/bigquery", ...
	Reason    string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrAuthentication, e.Component, e.Reason)
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// Validate checks that everything needed to answer a question is present.
func Validate(cfg *AppConfig) error {
	if err := validateAI(&cfg.AI); err != nil {
		return err
	}
	return validateWarehouse(&cfg.Warehouse)
}

func validateAI(a *AIConfig) error {
	switch a.Provider {
	case "ollama", "placeholder":
		return nil
	case "gemini", "openai", "groq", "cerebras", "anthropic":
		if a.APIKey(a.Provider) == "" {
			return &AuthenticationError{
				Component: "ai/" + a.Provider,
				Reason:    fmt.Sprintf("no API key (set it in the environment or run `querymaster key set %s`)", a.Provider),
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown AI provider %q", a.Provider)
	}
}

func validateWarehouse(w *WarehouseConfig) error {
	missing := func(what string) error {
		return &AuthenticationError{Component: "warehouse/" + w.Driver, Reason: what + " is not configured"}
	}

	switch w.Driver {
	case "bigquery":
		if w.BigQuery.ProjectID == "" {
			return missing("project_id (GOOGLE_CLOUD_PROJECT)")
		}
		if _, err := w.BigQuery.Credentials(); err != nil {
			return &AuthenticationError{Component: "warehouse/bigquery", Reason: err.Error()}
		}
	case "postgres":
		if w.Postgres.DSN == "" {
			return missing("dsn (QM_POSTGRES_DSN)")
		}
	case "clickhouse":
		if w.ClickHouse.Addr == "" {
			return missing("addr (QM_CLICKHOUSE_ADDR)")
		}
	case "duckdb":
		if w.DuckDB.Path == "" {
			return missing("path (QM_DUCKDB_PATH)")
		}
	default:
		return fmt.Errorf("unknown warehouse driver %q", w.Driver)
	}

	if w.SSH.Enabled {
		if w.Driver != "postgres" && w.Driver != "clickhouse" {
			return fmt.Errorf("ssh tunnel is not supported for %s", w.Driver)
		}
		if w.SSH.Host == "" || w.SSH.User == "" || w.SSH.KeyPath == "" {
			return &AuthenticationError{Component: "ssh", Reason: "host, user and key_path are required"}
		}
	}
	return nil
}
