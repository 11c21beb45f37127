package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DachengChen/querymaster/config"

	_ "github.com/duckdb/duckdb-go/v2"
)

// OpenDuckDB opens a local DuckDB file. An empty path opens a private
// in-memory database.
func OpenDuckDB(ctx context.Context, cfg config.DuckDBConfig) (Warehouse, error) {
	connStr := cfg.Path
	if cfg.ReadOnly && connStr != "" {
		connStr += "?access_mode=read_only"
	}

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %q: %w", cfg.Path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb %q: %w", cfg.Path, err)
	}
	return &sqlDB{db: db, dialect: DialectDuckDB}, nil
}

// NewDuckDB wraps an already open DuckDB handle. The warehouse takes
// ownership of db.
func NewDuckDB(db *sql.DB) Warehouse {
	return &sqlDB{db: db, dialect: DialectDuckDB}
}
