package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/formats"
)

// Job is one document waiting to be parsed.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// FileProcessor is what workers call for each job.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*formats.Result, error)
}
