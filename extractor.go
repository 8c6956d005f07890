package strobe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/strobe-audio/strobe/metric"
)

// Extractor composes descriptor sets into one graph and one results pool
// per input and drives each run to completion. Runs are fully isolated:
// every input gets its own graph, nodes, buffers and pool, so independent
// inputs can be extracted concurrently with no shared mutable state.
type Extractor struct {
	factory *Factory
	sets    []DescriptorSet

	log       *slog.Logger
	workers   int
	chunkSize int
	metrics   *metric.Metrics
}

// NewExtractor creates an extractor over the given factory and descriptor
// sets. Namespace prefixes must be pairwise distinct.
func NewExtractor(factory *Factory, sets []DescriptorSet, opts ...Option) (*Extractor, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: nil factory", ErrInvalidConfiguration)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: no descriptor sets", ErrInvalidConfiguration)
	}
	seen := map[string]bool{}
	for _, set := range sets {
		ns := set.Namespace()
		if seen[ns] {
			return nil, fmt.Errorf("%w: duplicate namespace %q", ErrInvalidConfiguration, ns)
		}
		seen[ns] = true
	}

	e := &Extractor{
		factory:   factory,
		sets:      sets,
		log:       NullLogger(),
		workers:   1,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run extracts all descriptor sets from one input. On any failure,
// including cancellation, the partially written pool is discarded and nil
// is returned with the error.
func (e *Extractor) Run(ctx context.Context, samples []float32) (*Pool, error) {
	runID := uuid.NewString()
	start := time.Now()
	log := e.log.With("run_id", runID)

	pool, err := e.runOne(ctx, samples)
	if err != nil {
		log.Error("extraction failed", "err", err, "duration", time.Since(start))
		e.metrics.ObserveRun(metric.StatusFailed, time.Since(start), 0)
		return nil, err
	}

	log.Info("extraction complete",
		"samples", len(samples),
		"descriptors", pool.Len(),
		"duration", time.Since(start))
	e.metrics.ObserveRun(metric.StatusOK, time.Since(start), pool.Len())
	return pool, nil
}

func (e *Extractor) runOne(ctx context.Context, samples []float32) (*Pool, error) {
	g := NewGraph(WithGraphLog(e.log))
	pool := NewPool()

	source := NewVectorSource("input", samples, e.chunkSize)
	if err := g.Add(source); err != nil {
		return nil, err
	}

	for _, set := range e.sets {
		if err := set.Build(g, e.factory, source.Out(), pool); err != nil {
			return nil, BuildError(set.Namespace(), err)
		}
	}

	if err := g.Finalize(); err != nil {
		return nil, err
	}
	defer g.Close()

	if err := g.Run(ctx); err != nil {
		return nil, err
	}
	return pool, nil
}

// RunAll extracts every named input concurrently, up to the configured
// worker count. The first failure cancels the remaining runs; pools of
// finished sibling inputs are not affected by a failing input.
func (e *Extractor) RunAll(ctx context.Context, inputs map[string][]float32) (map[string]*Pool, error) {
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(e.workers)

	var mu sync.Mutex
	pools := make(map[string]*Pool, len(inputs))

	for name, samples := range inputs {
		grp.Go(func() error {
			pool, err := e.Run(ctx, samples)
			if err != nil {
				return fmt.Errorf("input %q: %w", name, err)
			}
			mu.Lock()
			pools[name] = pool
			mu.Unlock()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return pools, nil
}
