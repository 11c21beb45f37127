package warehouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/DachengChen/querymaster/config"
	"github.com/DachengChen/querymaster/ssh"
)

// OpenClickHouse connects over the native protocol, optionally through an
// SSH tunnel.
func OpenClickHouse(ctx context.Context, cfg config.ClickHouseConfig, sshCfg config.SSHConfig, log *slog.Logger) (Warehouse, error) {
	addr := cfg.Addr

	var tunnel *ssh.Tunnel
	if sshCfg.Enabled {
		t, err := ssh.NewTunnel(sshCfg, cfg.Addr, log)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel: %w", err)
		}
		local, err := t.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel start: %w", err)
		}
		tunnel = t
		addr = local.String()
	}

	chOpts := &clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: 10 * time.Second,
	}
	if cfg.Secure {
		chOpts.TLS = &tls.Config{}
	}

	db := clickhouse.OpenDB(chOpts)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if tunnel != nil {
			tunnel.Stop()
		}
		return nil, fmt.Errorf("clickhouse ping %s: %w", cfg.Addr, err)
	}

	w := &sqlDB{db: db, dialect: DialectClickHouse}
	if tunnel != nil {
		w.closeFn = func() error {
			tunnel.Stop()
			return nil
		}
	}
	return w, nil
}
