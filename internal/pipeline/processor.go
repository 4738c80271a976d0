package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/formats"
	"github.com/joseph-ayodele/freight-orders/internal/textsource"
)

// LineReader turns a document on disk into its normalized line sequence.
type LineReader func(ctx context.Context, path string) ([]string, error)

// Processor coordinates text extraction then format detection and parsing.
type Processor struct {
	logger   *slog.Logger
	registry *formats.Registry
	read     LineReader
}

func NewProcessor(logger *slog.Logger, registry *formats.Registry) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, registry: registry, read: textsource.Lines}
}

// WithReader replaces the line reader, mostly for tests.
func (p *Processor) WithReader(read LineReader) *Processor {
	p.read = read
	return p
}

// ProcessFile reads path, picks the matching format and returns its result.
// Unreadable files and documents no format accepts are errors; everything
// past detection always yields an order.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*formats.Result, error) {
	start := time.Now()
	attachment := filepath.Base(path)
	if common.RequestIDFromContext(ctx) == "" {
		ctx = common.WithRequestID(ctx, uuid.NewString())
	}
	ctx = common.WithAttachment(ctx, attachment)
	log := common.Logger(ctx, p.logger)

	// 1) text extraction
	lines, err := p.read(ctx, path)
	if err != nil {
		log.Error("processor.read.failed", "path", path, "err", err)
		return nil, fmt.Errorf("read %s: %w", attachment, err)
	}
	log.Debug("processor.read.ok", "lines", len(lines))

	// 2) detection and parsing
	res, err := p.ProcessLines(ctx, lines, attachment)
	if err != nil {
		return nil, err
	}
	log.Info("processor.parse.ok",
		"format", res.Format,
		"order_reference", res.Order.OrderReference,
		"fallback", res.Fallback,
		"persisted", res.Persisted,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ProcessLines runs an already extracted line sequence through the registry.
func (p *Processor) ProcessLines(ctx context.Context, lines []string, attachment string) (*formats.Result, error) {
	res, err := p.registry.Process(ctx, lines, attachment)
	if err != nil {
		common.Logger(ctx, p.logger).Error("processor.parse.failed", "err", err)
		return nil, err
	}
	return res, nil
}
