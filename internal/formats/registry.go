package formats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joseph-ayodele/freight-orders/internal/common"
)

// Registry tries each registered format in registration order.
type Registry struct {
	mu      sync.RWMutex
	formats []Format
	logger  *slog.Logger
}

func NewRegistry(logger *slog.Logger, formats ...Format) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{logger: logger}
	for _, f := range formats {
		_ = r.Register(f)
	}
	return r
}

// Register appends f. Names must be unique.
func (r *Registry) Register(f Format) error {
	if f == nil {
		return fmt.Errorf("format cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.formats {
		if existing.Name() == f.Name() {
			return fmt.Errorf("format %q already registered", f.Name())
		}
	}
	r.formats = append(r.formats, f)
	return nil
}

// Names lists registered formats in detection order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.formats))
	for i, f := range r.formats {
		names[i] = f.Name()
	}
	return names
}

// Detect returns the first format accepting lines.
func (r *Registry) Detect(lines []string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		if f.ValidateFormat(lines) {
			return f, true
		}
	}
	return nil, false
}

// Process runs the detected format over lines.
func (r *Registry) Process(ctx context.Context, lines []string, attachment string) (*Result, error) {
	f, ok := r.Detect(lines)
	if !ok {
		common.Logger(ctx, r.logger).Warn("no format matched", "lines", len(lines), "registered", r.Names())
		return nil, common.NewAppError("FORMAT_UNSUPPORTED", "no registered format accepts the document", common.ErrUnsupportedFormat)
	}
	common.Logger(ctx, r.logger).Debug("format detected", "format", f.Name(), "lines", len(lines))
	return f.ProcessLines(ctx, lines, attachment), nil
}
