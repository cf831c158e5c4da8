package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/county-home-values/internal/domain"
	"github.com/couchcryptid/county-home-values/internal/observability"
)

// TableExtractor reads the wide county table from its source.
type TableExtractor interface {
	Extract(ctx context.Context) (domain.Table, error)
}

// SnapshotBuilder derives the dashboard tables from a loaded table.
type SnapshotBuilder interface {
	Build(ctx context.Context, t domain.Table) (*domain.Snapshot, error)
}

// SnapshotLoader hands a finished snapshot to a downstream consumer.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, snap *domain.Snapshot) error
}

// Pipeline runs the one-shot extract-build-load sequence that produces the
// dashboard snapshot.
type Pipeline struct {
	extractor TableExtractor
	builder   SnapshotBuilder
	loaders   []SnapshotLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline with the given stages and observability. loaders may
// be empty.
func New(e TableExtractor, b SnapshotBuilder, loaders []SnapshotLoader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		builder:   b,
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a snapshot has been built and handed to
// every loader.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("snapshot has not been built yet")
	}
	return nil
}

// Run loads the table, derives the snapshot and passes it to each loader in
// order. Any failure aborts the run; there are no retries.
func (p *Pipeline) Run(ctx context.Context) (*domain.Snapshot, error) {
	start := time.Now()
	p.logger.Info("pipeline started")

	table, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.metrics.RecordsLoaded.Set(float64(len(table.Records)))
	p.metrics.DatesLoaded.Set(float64(len(table.Dates)))

	snap, err := p.builder.Build(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	for window, n := range snap.UndefinedGrowth() {
		p.metrics.UndefinedGrowth.WithLabelValues(window.String()).Set(float64(n))
		if n > 0 {
			p.logger.Debug("undefined growth", "window", window.String(), "counties", n)
		}
	}

	for _, l := range p.loaders {
		if err := l.LoadSnapshot(ctx, snap); err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
	}

	elapsed := time.Since(start)
	p.metrics.BuildDuration.Observe(elapsed.Seconds())
	p.metrics.SnapshotReady.Set(1)
	p.ready.Store(true)

	p.logger.Info("snapshot built",
		"records", len(table.Records),
		"dates", len(table.Dates),
		"states", len(snap.States),
		"growth_records", len(snap.Growth),
		"duration_ms", elapsed.Milliseconds(),
	)
	return snap, nil
}
