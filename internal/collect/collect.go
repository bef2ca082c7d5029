// Package collect resolves recordings to media links.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/leccap/internal/leccap"
	"github.com/vmunix/leccap/internal/linkfile"
)

//go:generate mockgen -destination=mocks/lookup.go -package=mocks . MetadataLookup

// MetadataLookup resolves a recording key to its media metadata.
// *leccap.Client satisfies it.
type MetadataLookup interface {
	Product(ctx context.Context, key string) (*leccap.Product, error)
}

// Options tunes a Collector.
type Options struct {
	// Concurrency caps the number of lookups in flight. 0 means no cap.
	Concurrency int
	Naming      Naming
	Filter      Filter
}

// Collector turns recordings into a links file.
type Collector struct {
	lookup MetadataLookup
	opts   Options
	log    *slog.Logger
}

// New creates a Collector.
func New(lookup MetadataLookup, opts Options, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}
	if opts.Naming == "" {
		opts.Naming = NamingSortKey
	}
	return &Collector{lookup: lookup, opts: opts, log: log}
}

// Collect looks up every recording concurrently and returns one link per
// recording kept by the filter, in input order.
//
// The first failed lookup cancels the rest and is returned; no partial file
// is ever returned alongside an error.
func (c *Collector) Collect(ctx context.Context, recs []leccap.Recording) (*linkfile.File, error) {
	start := time.Now()

	selected := c.opts.Filter.Apply(recs)
	c.log.Debug("collect started", "recordings", len(recs), "selected", len(selected), "concurrency", c.opts.Concurrency)
	for _, s := range c.opts.Filter.Suggest(recs) {
		c.log.Warn("title filter matched nothing", "filter", s.Filter, "closest", s.Title)
	}

	links := make([]linkfile.Link, len(selected))

	g, ctx := errgroup.WithContext(ctx)
	if c.opts.Concurrency > 0 {
		g.SetLimit(c.opts.Concurrency)
	}

	for i, rec := range selected {
		g.Go(func() error {
			product, err := c.lookup.Product(ctx, leccap.Key(rec.URL))
			if err != nil {
				c.log.Warn("lookup failed", "url", rec.URL, "error", err)
				return fmt.Errorf("recording %s: %w", rec.URL, err)
			}
			// Each goroutine owns slot i, so no lock is needed.
			links[i] = linkfile.Link{
				Name: c.opts.Naming.Name(rec),
				URL:  product.MediaURL(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Info("collect complete", "links", len(links), "duration_ms", time.Since(start).Milliseconds())
	return &linkfile.File{Links: links}, nil
}
