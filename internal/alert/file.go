package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/meridian-dr/meridian/pkg/types"
)

// FileSink appends alerts as JSON lines to a file. The handle stays open for
// the sink's lifetime; the mutex keeps lines whole under concurrent Dispatch.
type FileSink struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// NewFileSink creates a file alert sink, creating the file if needed.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening alert file: %w", err)
	}
	return &FileSink{f: f, path: path}, nil
}

// Name returns the sink identifier.
func (s *FileSink) Name() string { return "file" }

// Send appends the alert as one JSON line. A cancelled context skips the
// write so shutdown does not block on a slow filesystem.
func (s *FileSink) Send(ctx context.Context, alert types.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending to %s: %w", s.path, err)
	}
	return nil
}

// Close releases the underlying file handle.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
