package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/freight-orders/internal/async"
)

// ScanOptions controls which files a scan reports.
type ScanOptions struct {
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> default set
	SkipHidden  bool
}

// ScanDirectory walks root and returns matching files in lexical order.
// Walk errors on single entries are recorded in stats and do not stop the walk.
func ScanDirectory(ctx context.Context, root string, opts ScanOptions) ([]string, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var paths []string
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failures = append(stats.Failures, FileError{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path), opts.AllowedExts) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, fmt.Errorf("walk: %w", err)
	}
	return paths, stats, nil
}

// DirIngestor scans directories and submits every match as a job.
type DirIngestor struct {
	queue  Submitter
	opts   ScanOptions
	logger *slog.Logger
}

func NewDirIngestor(queue Submitter, opts ScanOptions, logger *slog.Logger) *DirIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirIngestor{queue: queue, opts: opts, logger: logger}
}

func (i *DirIngestor) IngestDirectory(ctx context.Context, root string) (DirStats, error) {
	paths, stats, err := ScanDirectory(ctx, root, i.opts)
	if err != nil {
		i.logger.Error("directory scan failed", "root", root, "error", err)
		return stats, err
	}
	for _, p := range paths {
		if err := i.Submit(ctx, p); err != nil {
			stats.Failures = append(stats.Failures, FileError{Path: p, Err: err.Error()})
			stats.Failed++
			continue
		}
		stats.Queued++
	}
	i.logger.Info("directory ingested", "root", root,
		"scanned", stats.Scanned, "matched", stats.Matched, "queued", stats.Queued, "failed", stats.Failed)
	return stats, nil
}

// Submit queues one file under a fresh trace ID.
func (i *DirIngestor) Submit(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("abs path: %w", err)
	}
	return i.queue.Enqueue(ctx, async.Job{
		Path:        abs,
		SubmittedAt: time.Now(),
		TraceID:     uuid.NewString(),
	})
}
