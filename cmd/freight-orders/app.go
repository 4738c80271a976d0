package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/formats"
	"github.com/joseph-ayodele/freight-orders/internal/formats/exampledoc"
	"github.com/joseph-ayodele/freight-orders/internal/formats/transalliance"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
	"github.com/joseph-ayodele/freight-orders/internal/pipeline"
	repo "github.com/joseph-ayodele/freight-orders/internal/repository"
)

// app holds the wired components for one CLI invocation.
type app struct {
	cfg       *common.Config
	logger    *slog.Logger
	db        *repo.DB
	orders    repo.OrderRepository
	processor *pipeline.Processor
}

func newLogger(w io.Writer, cfg common.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openDB connects and migrates when persistence is configured.
func openDB(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repo.DB, error) {
	if !cfg.PersistenceEnabled() {
		return nil, nil
	}
	db, err := repo.Connect(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		return nil, err
	}
	if err := repo.HealthCheck(ctx, db, cfg.Database.DialTimeout, logger); err != nil {
		repo.Close(db, logger)
		return nil, err
	}
	if err := repo.Migrate(ctx, db); err != nil {
		repo.Close(db, logger)
		return nil, err
	}
	return db, nil
}

// newApp loads configuration and wires the parser stack. When persist is
// false no database is opened and orders go nowhere.
func newApp(ctx context.Context, persist bool) (*app, error) {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	var sink formats.OrderSink = formats.DiscardSink{}
	if persist {
		db, err := openDB(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			return nil, err
		}
		if db != nil {
			a.db = db
			a.orders = repo.NewOrderRepository(db, logger)
			sink = a.orders
		}
	}

	tables := transalliance.DefaultTables()
	if cfg.Parser.TablesPath != "" {
		t, err := transalliance.LoadTables(cfg.Parser.TablesPath)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("load template tables: %w", err)
		}
		tables = t
	}

	countries := constants.CountryTable{}
	validator, err := formats.NewOrderValidator()
	if err != nil {
		a.close()
		return nil, err
	}
	assembler := formats.NewAssembler(normalize.New(countries, normalize.DefaultDefaults()), validator, sink, logger)

	ta, err := transalliance.New(tables, countries, assembler, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	ex, err := exampledoc.New(assembler, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.processor = pipeline.NewProcessor(logger, formats.NewRegistry(logger, ta, ex))
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		repo.Close(a.db, a.logger)
		a.db = nil
	}
}
