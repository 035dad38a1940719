package app

import (
	"context"
	"fmt"
	"io"

	"github.com/modernsales/pawnshop/internal/catalog"
	"github.com/modernsales/pawnshop/internal/pawn"
	"github.com/modernsales/pawnshop/internal/report"
	"github.com/modernsales/pawnshop/pkg/config"
	"github.com/modernsales/pawnshop/pkg/db"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/metrics"
	"github.com/modernsales/pawnshop/pkg/migrate"
	"github.com/modernsales/pawnshop/pkg/paths"
	"github.com/modernsales/pawnshop/pkg/security"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

const ServiceName = "pawnshop"

// Params groups what the application needs to start.
type Params struct {
	Config *config.Config
	Layout paths.Layout
	// LogOutput replaces the log file; used by tests.
	LogOutput io.Writer
}

// App owns every long-lived dependency of one process: the log sink, the
// store, the metrics registry and the services built on them.
type App struct {
	Config   *config.Config
	Layout   paths.Layout
	Logger   *logger.Logger
	DB       *db.Client
	Registry *prometheus.Registry
	Metrics  *metrics.OperationMetrics
	Pawn     pawn.Service
	Catalog  catalog.Service
	Exporter *report.Exporter

	closers []io.Closer
}

// New opens the log, opens the store and brings its schema up to date. A
// schema failure is fatal: the store is closed and the error returned.
func New(ctx context.Context, params Params) (a *App, err error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	cfg := *params.Config
	a = &App{Config: &cfg, Layout: params.Layout}
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.Close())
			a = nil
		}
	}()

	if err := params.Layout.EnsureDirectories(); err != nil {
		return a, err
	}

	output := params.LogOutput
	if output == nil {
		file, err := params.Layout.OpenLogFile()
		if err != nil {
			return a, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, file)
		output = file
	}
	a.Logger = logger.New(logger.Options{
		ServiceName: ServiceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogFormat == config.LogFormatConsole,
		Output:      output,
	})

	a.Registry = prometheus.NewRegistry()
	a.Metrics = metrics.NewOperationMetrics(a.Registry)

	cfg.DB.Path = params.Layout.DBPath
	a.DB, err = db.New(ctx, cfg.DB, a.Logger)
	if err != nil {
		a.Logger.Error(ctx, "failed to open database", err)
		return a, err
	}
	a.closers = append([]io.Closer{a.DB}, a.closers...)

	if err := migrate.EnsureSchema(ctx, a.DB, a.Logger, migrate.Options{
		RecordBatchSize: cfg.Schema.RecordBackfillBatch,
		ItemBatchSize:   cfg.Schema.ItemBackfillBatch,
		Metrics:         a.Metrics,
	}); err != nil {
		return a, fmt.Errorf("schema initialization: %w", err)
	}

	a.Pawn, err = pawn.NewService(pawn.NewRepository(a.DB.DB()), a.DB, a.Logger, a.Metrics)
	if err != nil {
		return a, err
	}
	a.Catalog, err = catalog.NewService(catalog.ServiceParams{
		Repo:    catalog.NewRepository(a.DB.DB()),
		Logger:  a.Logger,
		Metrics: a.Metrics,
	})
	if err != nil {
		return a, err
	}

	gate, err := security.NewGate(cfg.Export, cfg.Password)
	if err != nil {
		return a, err
	}
	a.Exporter, err = report.NewExporter(report.ExporterParams{
		Source:    a.Pawn,
		Gate:      gate,
		Logger:    a.Logger,
		Metrics:   a.Metrics,
		ChunkSize: cfg.Export.ChunkSize,
	})
	if err != nil {
		return a, err
	}
	return a, nil
}

// Close releases the store before the log file.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var err error
	for _, c := range a.closers {
		err = multierr.Append(err, c.Close())
	}
	a.closers = nil
	return err
}
