// Package export hands a collected links file to its destination.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/vmunix/leccap/internal/linkfile"
)

// Sink receives a finished links file.
type Sink interface {
	Export(ctx context.Context, f *linkfile.File) error
}

// FileSink writes links.txt into a directory.
type FileSink struct {
	dir string
	log *slog.Logger
}

// NewFileSink creates a sink writing to dir/links.txt.
func NewFileSink(dir string, log *slog.Logger) *FileSink {
	if log == nil {
		log = slog.Default()
	}
	return &FileSink{dir: dir, log: log.With("component", "export")}
}

// Path returns the file the sink writes.
func (s *FileSink) Path() string {
	return filepath.Join(s.dir, linkfile.FileName)
}

// Export replaces links.txt atomically: readers see either the old file or
// the complete new one.
func (s *FileSink) Export(ctx context.Context, f *linkfile.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := s.Path()
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return fmt.Errorf("create pending links file: %w", err)
	}
	defer func() {
		// No-op once committed
		if err := pendingFile.Cleanup(); err != nil {
			s.log.Debug("cleanup pending links file", "error", err)
		}
	}()

	if _, err := f.WriteTo(pendingFile); err != nil {
		return fmt.Errorf("write links: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace links file: %w", err)
	}

	s.log.Info("links exported", "path", path, "links", f.Len())
	return nil
}

// WriterSink writes the links file to an io.Writer, e.g. stdout.
type WriterSink struct {
	W io.Writer
}

// Export implements Sink.
func (s WriterSink) Export(ctx context.Context, f *linkfile.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := f.WriteTo(s.W); err != nil {
		return fmt.Errorf("write links: %w", err)
	}
	return nil
}
