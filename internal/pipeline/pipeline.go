// Package pipeline turns loaded snapshots into reports, memoizing results in
// an optional cache keyed by the snapshot contents and analysis options.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/hubconn/internal/analyzer"
	"github.com/ppiankov/hubconn/internal/differ"
	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/internal/store"
)

// Tool is reported in every report header.
const Tool = "hubconn"

// Report modes
const (
	ModeAnalyze = "analyze"
	ModeCompare = "compare"
	ModeFlights = "flights"
)

// Cache stores finished reports. *store.Store satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Put(ctx context.Context, key, kind, runID string, v any) error
}

// Pipeline runs analyses with fixed options.
type Pipeline struct {
	opts    analyzer.Options
	cache   Cache
	version string
	now     func() time.Time
	newID   func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache enables result memoization.
func WithCache(c Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithVersion sets the version stamped on reports.
func WithVersion(version string) Option {
	return func(p *Pipeline) {
		p.version = version
	}
}

// New returns a pipeline for opts. Options are validated when an analysis
// runs, so a pipeline used only for flight diffs needs no groups.
func New(opts analyzer.Options, options ...Option) *Pipeline {
	p := &Pipeline{
		opts:    opts,
		version: "dev",
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Analyze classifies every connection in snap.
func (p *Pipeline) Analyze(ctx context.Context, snap *models.Snapshot) (*models.Report, error) {
	a, err := analyzer.New(p.opts)
	if err != nil {
		return nil, err
	}

	snaps := []*models.Snapshot{snap}
	return p.cached(ctx, ModeAnalyze, []any{p.opts, snap.Legs}, snaps, func(report *models.Report) {
		connections := a.Analyze(snap.Legs)
		summary := analyzer.Summarize(connections, p.opts.Hub)

		report.Connections = connections
		report.Summary = &summary
	})
}

// Compare diffs the connections and flights of two snapshots.
func (p *Pipeline) Compare(ctx context.Context, before, after *models.Snapshot) (*models.Report, error) {
	a, err := analyzer.New(p.opts)
	if err != nil {
		return nil, err
	}

	snaps := []*models.Snapshot{before, after}
	return p.cached(ctx, ModeCompare, []any{p.opts, before.Legs, after.Legs}, snaps, func(report *models.Report) {
		comparison := differ.Compare(a.Analyze(before.Legs), a.Analyze(after.Legs))
		summary := analyzer.Summarize(comparison.After, p.opts.Hub)

		report.Comparison = comparison
		report.Flights = differ.DiffFlights(before.Legs, after.Legs)
		report.Summary = &summary
	})
}

// Flights diffs two snapshots by flight identity only.
func (p *Pipeline) Flights(ctx context.Context, before, after *models.Snapshot) (*models.Report, error) {
	snaps := []*models.Snapshot{before, after}
	return p.cached(ctx, ModeFlights, []any{before.Legs, after.Legs}, snaps, func(report *models.Report) {
		report.Flights = differ.DiffFlights(before.Legs, after.Legs)
	})
}

// cached keys results by content only. Snapshot names and skipped-row counts
// describe this run, so metadata is rebuilt on every hit.
func (p *Pipeline) cached(ctx context.Context, mode string, keyParts []any, snaps []*models.Snapshot, build func(*models.Report)) (*models.Report, error) {
	var key string
	if p.cache != nil {
		var err error
		key, err = store.Key(mode, keyParts...)
		if err != nil {
			return nil, err
		}

		var hit models.Report
		ok, err := p.cache.Get(ctx, key, &hit)
		if err != nil {
			slog.Warn("cache lookup failed", slog.String("mode", mode), slog.String("error", err.Error()))
		}
		if ok {
			slog.Debug("cache hit", slog.String("mode", mode), slog.String("run_id", hit.RunID))
			generatedAt, duration := hit.Metadata.GeneratedAt, hit.Metadata.AnalysisDuration
			p.fillMetadata(&hit, mode, snaps...)
			hit.Metadata.GeneratedAt = generatedAt
			hit.Metadata.AnalysisDuration = duration
			hit.Metadata.Cached = true
			return &hit, nil
		}
	}

	start := p.now()
	report := &models.Report{
		Tool:        Tool,
		Version:     p.version,
		Timestamp:   start.UTC().Format(time.RFC3339),
		RunID:       p.newID(),
		Connections: []models.Connection{},
	}
	build(report)
	p.fillMetadata(report, mode, snaps...)
	report.Metadata.GeneratedAt = start
	report.Metadata.AnalysisDuration = p.now().Sub(start).String()

	if p.cache != nil {
		if err := p.cache.Put(ctx, key, mode, report.RunID, report); err != nil {
			slog.Warn("cache store failed", slog.String("mode", mode), slog.String("error", err.Error()))
		}
	}

	return report, nil
}

func (p *Pipeline) fillMetadata(report *models.Report, mode string, snapshots ...*models.Snapshot) {
	md := models.Metadata{
		Mode:       mode,
		Hub:        p.opts.Hub,
		MinConnect: p.opts.MinConnect,
		MaxConnect: p.opts.MaxConnect,
		GroupA:     p.opts.GroupA,
		GroupB:     p.opts.GroupB,
		Snapshots:  make([]string, 0, len(snapshots)),
		Version:    p.version,
	}
	for _, snap := range snapshots {
		md.Snapshots = append(md.Snapshots, snap.Name)
		md.LegsAnalyzed += len(snap.Legs)
		md.SkippedRows += snap.Skipped
	}
	report.Metadata = md
}
