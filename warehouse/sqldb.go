package warehouse

import (
	"context"
	"database/sql"
)

// sqlDB runs queries through a database/sql handle. ClickHouse and DuckDB
// both register database/sql drivers, so they share this path.
type sqlDB struct {
	db      *sql.DB
	dialect Dialect
	closeFn func() error
}

func (s *sqlDB) Dialect() Dialect { return s.dialect }

func (s *sqlDB) Query(ctx context.Context, query string) (*Table, error) {
	cleaned, err := prepare(s.dialect, query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, cleaned)
	if err != nil {
		return nil, &QueryExecutionError{Dialect: s.dialect, SQL: cleaned, Err: err}
	}
	defer rows.Close()

	table, err := scanSQLRows(rows)
	if err != nil {
		return nil, &QueryExecutionError{Dialect: s.dialect, SQL: cleaned, Err: err}
	}
	return table, nil
}

func (s *sqlDB) Close() error {
	err := s.db.Close()
	if s.closeFn != nil {
		if cerr := s.closeFn(); err == nil {
			err = cerr
		}
	}
	return err
}

func scanSQLRows(rows *sql.Rows) (*Table, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: make([]Column, len(types)), Rows: [][]any{}}
	for i, ct := range types {
		table.Columns[i] = Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
	}

	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, NormalizeRow(values))
	}
	return table, rows.Err()
}
