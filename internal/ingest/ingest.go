package ingest

import (
	"context"

	"github.com/joseph-ayodele/freight-orders/internal/async"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned  uint32
	Matched  uint32
	Queued   uint32
	Failed   uint32
	Failures []FileError
}

// FileError records a path the scan could not handle.
type FileError struct {
	Path string
	Err  string
}

// Ingestor feeds documents found on disk into a processing queue.
type Ingestor interface {
	// IngestDirectory queues all matching files under root.
	IngestDirectory(ctx context.Context, root string) (DirStats, error)
}

var _ Ingestor = (*DirIngestor)(nil)

// Submitter is the part of async.Queue the ingestor needs.
type Submitter interface {
	Enqueue(ctx context.Context, job async.Job) error
}
