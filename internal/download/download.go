// Package download fetches the media listed in a links file.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/leccap/internal/linkfile"
)

const defaultConcurrency = 4

// Result reports the outcome of one link.
type Result struct {
	Link  linkfile.Link
	Path  string
	Bytes int64
	Err   error
}

// Downloader fetches links into a directory with bounded parallelism.
type Downloader struct {
	httpClient  *http.Client
	concurrency int
	log         *slog.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Downloader) {
		d.httpClient = hc
	}
}

// WithConcurrency sets how many files are fetched at once.
func WithConcurrency(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Downloader) {
		d.log = log.With("component", "download")
	}
}

// New creates a Downloader. Media files are large, so the default HTTP
// client has no overall timeout; cancel the context to stop.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		httpClient:  &http.Client{},
		concurrency: defaultConcurrency,
		log:         slog.Default().With("component", "download"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run downloads every link into dir. A failed link does not stop the others;
// all failures are joined into the returned error. Results are in link order.
func (d *Downloader) Run(ctx context.Context, dir string, links []linkfile.Link) ([]Result, error) {
	start := time.Now()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	results := make([]Result, len(links))

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, link := range links {
		g.Go(func() error {
			results[i] = d.fetch(ctx, dir, link)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}

	d.log.Info("downloads complete", "links", len(links), "failed", len(errs), "duration_ms", time.Since(start).Milliseconds())
	return results, errors.Join(errs...)
}

func (d *Downloader) fetch(ctx context.Context, dir string, link linkfile.Link) Result {
	res := Result{Link: link}

	path, err := targetPath(dir, link.Name)
	if err != nil {
		res.Err = err
		return res
	}
	res.Path = path

	fetchStart := time.Now()
	n, err := d.fetchTo(ctx, path, link.URL)
	if err != nil {
		d.log.Warn("download failed", "name", link.Name, "error", err)
		res.Err = fmt.Errorf("%s: %w", link.Name, err)
		return res
	}
	res.Bytes = n

	d.log.Debug("downloaded", "name", link.Name, "bytes", n, "duration_ms", time.Since(fetchStart).Milliseconds())
	return res
}

func (d *Downloader) fetchTo(ctx context.Context, path, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return 0, fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		// A partial download never replaces the target
		_ = pendingFile.Cleanup()
	}()

	n, err := io.Copy(pendingFile, resp.Body)
	if err != nil {
		return n, fmt.Errorf("write body: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return n, fmt.Errorf("atomically replace file: %w", err)
	}
	return n, nil
}

// targetPath joins dir and name, rejecting names that are not a single path element.
func targetPath(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return filepath.Join(dir, name), nil
}
