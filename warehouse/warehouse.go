// Package warehouse runs model-generated SQL against the configured data
// warehouse and returns the result as a normalized, JSON-friendly table.
//
// SQL is executed exactly as received, apart from trimming whitespace and
// trailing semicolons. There is no validation and no retry.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DachengChen/querymaster/config"
)

// Dialect names the SQL flavour a warehouse speaks.
type Dialect string

const (
	DialectBigQuery   Dialect = "bigquery"
	DialectPostgres   Dialect = "postgres"
	DialectClickHouse Dialect = "clickhouse"
	DialectDuckDB     Dialect = "duckdb"
)

// Warehouse executes SQL.
type Warehouse interface {
	Query(ctx context.Context, sql string) (*Table, error)
	Dialect() Dialect
	Close() error
}

// Column describes one result column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Table is an ordered, column-named query result. Every cell holds nil,
// int64, float64, bool or string.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Empty reports whether the result has no rows.
func (t *Table) Empty() bool { return t == nil || len(t.Rows) == 0 }

// ErrQueryExecution matches every *QueryExecutionError via errors.Is.
var ErrQueryExecution = errors.New("query execution failed")

// QueryExecutionError carries the warehouse's own message for a failed
// query.
type QueryExecutionError struct {
	Dialect Dialect
	SQL     string
	Err     error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("error executing query on %s: %v", e.Dialect, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

func (e *QueryExecutionError) Is(target error) bool { return target == ErrQueryExecution }

// ErrEmptyQuery is wrapped when there is nothing left to run after trimming.
var ErrEmptyQuery = errors.New("empty query")

// CleanSQL trims whitespace and trailing semicolons.
func CleanSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	for strings.HasSuffix(sql, ";") {
		sql = strings.TrimSpace(strings.TrimSuffix(sql, ";"))
	}
	return sql
}

func prepare(d Dialect, sql string) (string, error) {
	cleaned := CleanSQL(sql)
	if cleaned == "" {
		return "", &QueryExecutionError{Dialect: d, SQL: sql, Err: ErrEmptyQuery}
	}
	return cleaned, nil
}

// Open connects to the warehouse selected by cfg.Driver. The returned
// warehouse records query latency in Prometheus.
func Open(ctx context.Context, cfg config.WarehouseConfig, log *slog.Logger) (Warehouse, error) {
	if log == nil {
		log = slog.Default()
	}

	var (
		w   Warehouse
		err error
	)
	switch cfg.Driver {
	case string(DialectBigQuery), "":
		w, err = OpenBigQuery(ctx, cfg.BigQuery)
	case string(DialectPostgres):
		w, err = OpenPostgres(ctx, cfg.Postgres, cfg.SSH, log)
	case string(DialectClickHouse):
		w, err = OpenClickHouse(ctx, cfg.ClickHouse, cfg.SSH, log)
	case string(DialectDuckDB):
		w, err = OpenDuckDB(ctx, cfg.DuckDB)
	default:
		return nil, fmt.Errorf("unknown warehouse driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	log.Info("warehouse connected", "driver", w.Dialect())
	return Instrument(w, log), nil
}
