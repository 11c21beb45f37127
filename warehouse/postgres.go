package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/DachengChen/querymaster/config"
	"github.com/DachengChen/querymaster/ssh"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres wraps a pgx connection pool and optional SSH tunnel.
type Postgres struct {
	Pool   *pgxpool.Pool
	Tunnel *ssh.Tunnel
}

// OpenPostgres establishes a PostgreSQL connection, optionally through an
// SSH tunnel.
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig, sshCfg config.SSHConfig, log *slog.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	p := &Postgres{}

	// If SSH tunnel is requested, set it up first.
	if sshCfg.Enabled {
		remote := net.JoinHostPort(poolCfg.ConnConfig.Host, strconv.Itoa(int(poolCfg.ConnConfig.Port)))
		tunnel, err := ssh.NewTunnel(sshCfg, remote, log)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel: %w", err)
		}
		localAddr, err := tunnel.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel start: %w", err)
		}
		p.Tunnel = tunnel

		// Override connection target with local tunnel endpoint
		poolCfg.ConnConfig.Host = localAddr.Host
		poolCfg.ConnConfig.Port = uint16(localAddr.Port)
		poolCfg.ConnConfig.Fallbacks = nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("pgx connect: %w", err)
	}

	// Verify the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		p.Close()
		return nil, fmt.Errorf("pgx ping: %w", err)
	}

	p.Pool = pool
	return p, nil
}

func (p *Postgres) Dialect() Dialect { return DialectPostgres }

// Query runs sql and collects every row.
func (p *Postgres) Query(ctx context.Context, sql string) (*Table, error) {
	cleaned, err := prepare(DialectPostgres, sql)
	if err != nil {
		return nil, err
	}

	rows, err := p.Pool.Query(ctx, cleaned)
	if err != nil {
		return nil, &QueryExecutionError{Dialect: DialectPostgres, SQL: cleaned, Err: err}
	}
	defer rows.Close()

	var types typeNamer
	if conn := rows.Conn(); conn != nil {
		types = conn.TypeMap()
	}
	table, err := collectPgxRows(rows, types)
	if err != nil {
		return nil, &QueryExecutionError{Dialect: DialectPostgres, SQL: cleaned, Err: err}
	}
	return table, nil
}

// Close shuts down the pool and SSH tunnel.
func (p *Postgres) Close() error {
	if p.Pool != nil {
		p.Pool.Close()
	}
	if p.Tunnel != nil {
		p.Tunnel.Stop()
	}
	return nil
}

func collectPgxRows(rows pgx.Rows, types typeNamer) (*Table, error) {
	table := &Table{Rows: [][]any{}}
	for _, fd := range rows.FieldDescriptions() {
		table.Columns = append(table.Columns, Column{Name: fd.Name, Type: pgTypeName(types, fd.DataTypeOID)})
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, NormalizeRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

type typeNamer interface {
	TypeForOID(oid uint32) (*pgtype.Type, bool)
}

func pgTypeName(types typeNamer, oid uint32) string {
	if types == nil {
		return ""
	}
	if t, ok := types.TypeForOID(oid); ok {
		return t.Name
	}
	return ""
}
