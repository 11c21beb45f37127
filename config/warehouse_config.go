package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// WarehouseConfig selects and configures the SQL back end.
type WarehouseConfig struct {
	Driver     string           `json:"driver"` // "bigquery", "postgres", "clickhouse", "duckdb"
	BigQuery   BigQueryConfig   `json:"bigquery"`
	Postgres   PostgresConfig   `json:"postgres"`
	ClickHouse ClickHouseConfig `json:"clickhouse"`
	DuckDB     DuckDBConfig     `json:"duckdb"`
	SSH        SSHConfig        `json:"ssh"`
}

// BigQueryConfig holds Google BigQuery settings.
type BigQueryConfig struct {
	ProjectID string `json:"project_id"`
	// CredentialsJSON is a service-account key, either raw JSON or
	// base64-encoded JSON. Empty means Application Default Credentials.
	CredentialsJSON string `json:"credentials_json,omitempty"`
	Dataset         string `json:"dataset"`
	Location        string `json:"location,omitempty"`
}

// PostgresConfig holds a pgx connection string.
type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// ClickHouseConfig holds ClickHouse native-protocol settings.
type ClickHouseConfig struct {
	Addr     string `json:"addr"` // host:port
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
}

// DuckDBConfig points at a local database file.
type DuckDBConfig struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"read_only,omitempty"`
}

// SSHConfig holds SSH tunnel settings for warehouses behind a bastion.
type SSHConfig struct {
	Enabled       bool   `json:"enabled,omitempty"`
	Host          string `json:"host,omitempty"`
	Port          int    `json:"port,omitempty"`
	User          string `json:"user,omitempty"`
	KeyPath       string `json:"key_path,omitempty"`
	KeyPassphrase string `json:"key_passphrase,omitempty"`
	// KnownHosts enables host key checking against an OpenSSH known_hosts file.
	KnownHosts string `json:"known_hosts,omitempty"`
}

// DefaultWarehouseConfig returns sensible defaults.
func DefaultWarehouseConfig() WarehouseConfig {
	return WarehouseConfig{
		Driver: "bigquery",
		BigQuery: BigQueryConfig{
			Dataset: "bigquery-public-data.thelook_ecommerce",
		},
		ClickHouse: ClickHouseConfig{
			Database: "default",
			User:     "default",
		},
		SSH: SSHConfig{Port: 22},
	}
}

// Credentials decodes CredentialsJSON. It returns nil, nil when no
// credentials are configured.
func (b BigQueryConfig) Credentials() ([]byte, error) {
	raw := strings.TrimSpace(b.CredentialsJSON)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "{") {
		if !json.Valid([]byte(raw)) {
			return nil, errors.New("service-account credentials are not valid JSON")
		}
		return []byte(raw), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.New("service-account credentials are neither JSON nor base64")
	}
	if !json.Valid(decoded) {
		return nil, errors.New("base64 service-account credentials do not decode to JSON")
	}
	return decoded, nil
}
