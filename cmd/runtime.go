package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DachengChen/querymaster/ai"
	"github.com/DachengChen/querymaster/applog"
	"github.com/DachengChen/querymaster/chat"
	"github.com/DachengChen/querymaster/config"
	"github.com/DachengChen/querymaster/i18n"
	"github.com/DachengChen/querymaster/metrics"
	"github.com/DachengChen/querymaster/render"
	"github.com/DachengChen/querymaster/warehouse"
)

// runtime holds the process-wide collaborators shared by every command.
type runtime struct {
	cfg        *config.AppConfig
	log        *slog.Logger
	lang       i18n.Lang
	provider   ai.Provider
	warehouse  warehouse.Warehouse
	dispatcher *chat.Dispatcher
}

// loadConfig reads the configuration and applies the global flags.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg)
	return cfg, nil
}

func applyFlags(cfg *config.AppConfig) {
	if flagProvider != "" {
		cfg.AI.Provider = strings.ToLower(flagProvider)
	}
	if flagWarehouse != "" {
		cfg.Warehouse.Driver = strings.ToLower(flagWarehouse)
	}
	if flagLang != "" {
		cfg.Display.Language = strings.ToLower(flagLang)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
}

// setup loads configuration, validates credentials and connects the model
// and the warehouse. logToFile keeps stderr clean for the TUI.
func setup(ctx context.Context, logToFile bool) (*runtime, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := applog.Setup(applog.Options{Level: cfg.Log.Level, ToFile: logToFile})
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	dataset := cfg.Warehouse.BigQuery.Dataset
	provider, err := ai.NewProvider(cfg.AI, cfg.Warehouse.Driver, dataset)
	if err != nil {
		return nil, err
	}

	wh, err := warehouse.Open(ctx, cfg.Warehouse, log)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Warehouse.Driver, err)
	}

	dispatcher := chat.NewDispatcher(provider, wh, chat.Options{
		System: ai.SystemInstruction(string(wh.Dialect()), dataset),
		Cache:  chat.NewCache(cfg.Cache.Capacity, time.Duration(cfg.Cache.TTL)),
		Logger: log,
	})

	metrics.BuildInfo.WithLabelValues(version, cfg.AI.Provider, cfg.Warehouse.Driver).Set(1)
	log.Info("querymaster ready",
		"version", version,
		"provider", provider.Name(),
		"warehouse", wh.Dialect(),
	)

	return &runtime{
		cfg:        cfg,
		log:        log,
		lang:       i18n.Parse(cfg.Display.Language),
		provider:   provider,
		warehouse:  wh,
		dispatcher: dispatcher,
	}, nil
}

func (r *runtime) renderOptions() render.Options {
	return render.Options{CurrencySymbol: r.cfg.Display.CurrencySymbol}
}

// Close releases the warehouse connection and flushes the log file.
func (r *runtime) Close() {
	if err := r.warehouse.Close(); err != nil {
		r.log.Warn("close warehouse", "error", err)
	}
	applog.Close()
}
