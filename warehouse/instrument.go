package warehouse

import (
	"context"
	"log/slog"
	"time"

	"github.com/DachengChen/querymaster/metrics"
)

type instrumented struct {
	Warehouse
	log *slog.Logger
}

// Instrument wraps w so every query is timed in Prometheus and logged.
func Instrument(w Warehouse, log *slog.Logger) Warehouse {
	if log == nil {
		log = slog.Default()
	}
	return &instrumented{Warehouse: w, log: log}
}

func (i *instrumented) Query(ctx context.Context, sql string) (*Table, error) {
	start := time.Now()
	table, err := i.Warehouse.Query(ctx, sql)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.WarehouseQueryDuration.WithLabelValues(string(i.Dialect()), status).Observe(elapsed.Seconds())

	if err != nil {
		i.log.Warn("warehouse query failed", "driver", i.Dialect(), "duration", elapsed, "error", err)
		return nil, err
	}
	i.log.Debug("warehouse query", "driver", i.Dialect(), "duration", elapsed, "rows", len(table.Rows), "columns", len(table.Columns))
	return table, nil
}
