// Package catalog holds the operator catalog discovered by the most recent
// scan of the provider namespace
package catalog

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kode4food/airdraw/internal/metrics"
	"github.com/kode4food/airdraw/internal/pysrc"
	"github.com/kode4food/airdraw/internal/scan"
	"github.com/kode4food/airdraw/pkg/api"
	"github.com/kode4food/airdraw/pkg/log"
)

type (
	// Walker produces the operator modules of a namespace
	Walker interface {
		Walk() (iter.Seq2[*scan.Module, error], error)
	}

	// Cache holds the latest Snapshot. Reads never block and never scan;
	// Refresh replaces the whole Snapshot at once
	Cache struct {
		walker   Walker
		metrics  *metrics.Metrics
		snapshot atomic.Pointer[Snapshot]
		refresh  sync.Mutex
		workers  int
	}

	// Snapshot is the result of one completed scan. It is never modified
	// once stored
	Snapshot struct {
		ScannedAt time.Time
		Catalog   api.Catalog
		Errors    []api.DiscoveryError
	}

	result struct {
		err     *api.DiscoveryError
		classes []string
	}
)

// NoOperators is recorded for modules that define no operator classes
const NoOperators = "No operators defined"

// New creates an empty Cache that scans with the given worker count
func New(w Walker, workers int, m *metrics.Metrics) *Cache {
	if workers < 1 {
		workers = 1
	}
	return &Cache{
		walker:  w,
		workers: workers,
		metrics: m,
	}
}

// Get returns the stored catalog and errors, or an empty pair when no scan
// has completed
func (c *Cache) Get() (api.Catalog, []api.DiscoveryError) {
	s := c.Snapshot()
	return s.Catalog, s.Errors
}

// Snapshot returns the stored Snapshot, or an empty one when no scan has
// completed
func (c *Cache) Snapshot() *Snapshot {
	if s := c.snapshot.Load(); s != nil {
		return s
	}
	return &Snapshot{
		Catalog: api.Catalog{},
		Errors:  []api.DiscoveryError{},
	}
}

// Refresh scans the namespace and atomically replaces the stored Snapshot.
// When the namespace cannot be located, the error is returned and the
// previous Snapshot is kept
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	c.refresh.Lock()
	defer c.refresh.Unlock()

	start := time.Now()
	s, err := Scan(ctx, c.walker, c.workers)
	if err != nil {
		c.metrics.RecordScan(time.Since(start), err, 0, 0, 0)
		slog.Error("Operator scan failed", log.Error(err))
		return nil, err
	}

	c.snapshot.Store(s)
	c.metrics.RecordScan(time.Since(start), nil,
		len(s.Catalog), s.Catalog.OperatorCount(), len(s.Errors),
	)
	slog.Info("Operator scan complete",
		slog.Int("modules", len(s.Catalog)),
		slog.Int("operators", s.Catalog.OperatorCount()),
		slog.Int("errors", len(s.Errors)),
		slog.Duration("elapsed", time.Since(start)))
	return s, nil
}

// Scan walks the namespace and extracts the operator classes of every
// module, using up to workers concurrent parsers. Modules with classes
// enter the catalog; unresolvable modules and modules without operators
// are recorded as errors. Errors are reported in walk order
func Scan(ctx context.Context, w Walker, workers int) (*Snapshot, error) {
	seq, err := w.Walk()
	if err != nil {
		return nil, err
	}

	var names []string
	var results []*result
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for m, modErr := range seq {
		if err := ctx.Err(); err != nil {
			break
		}
		res := &result{}
		names = append(names, m.Name)
		results = append(results, res)

		if modErr != nil {
			slog.Warn("Module unresolvable",
				log.Module(m.Name),
				log.Error(modErr))
			res.err = &api.DiscoveryError{
				Module: m.Name,
				Error:  modErr.Error(),
			}
			continue
		}

		g.Go(func() error {
			classes := pysrc.ExtractOperators(gctx, m.Path)
			if len(classes) == 0 {
				res.err = &api.DiscoveryError{
					Module: m.Name,
					Error:  NoOperators,
				}
				return nil
			}
			res.classes = classes
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &Snapshot{
		ScannedAt: time.Now(),
		Catalog:   api.Catalog{},
		Errors:    []api.DiscoveryError{},
	}
	for i, res := range results {
		if res.err != nil {
			s.Errors = append(s.Errors, *res.err)
			continue
		}
		s.Catalog[names[i]] = res.classes
	}
	return s, nil
}

var _ Walker = (*scan.Scanner)(nil)
