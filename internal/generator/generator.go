// Package generator runs the fetch, render and publish pipeline that produces
// the static snapshot of the site.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/seo-snapshot-generator/internal/clock/system"
	"github.com/JakeFAU/seo-snapshot-generator/internal/hash/sha256"
	"github.com/JakeFAU/seo-snapshot-generator/internal/id/uuid"
	"github.com/JakeFAU/seo-snapshot-generator/internal/metrics"
	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
	"github.com/JakeFAU/seo-snapshot-generator/internal/telemetry"
)

// DefaultErrorSample bounds the failure details carried by a report.
const DefaultErrorSample = 10

// Config controls Generator behavior.
type Config struct {
	// BaseURL is the live site origin used for sitemap locations.
	BaseURL      string
	CacheControl string
	ErrorSample  int
	// Sitemap enables sitemap.xml and robots.txt.
	Sitemap bool
	// Topic receives the run report when a notifier is configured.
	Topic string
}

// Generator executes one generation run at a time.
type Generator struct {
	fetcher  snapshot.EntityFetcher
	renderer snapshot.Renderer
	store    snapshot.PageStore
	notifier snapshot.Notifier
	hasher   snapshot.Hasher
	clock    snapshot.Clock
	ids      snapshot.IDGenerator
	tracer   trace.Tracer
	cfg      Config
	logger   *zap.Logger

	mu     sync.Mutex
	state  snapshot.RunState
	latest *snapshot.Report
}

// Option overrides an optional collaborator.
type Option func(*Generator)

// WithNotifier publishes every report to cfg.Topic.
func WithNotifier(n snapshot.Notifier) Option {
	return func(g *Generator) { g.notifier = n }
}

// WithClock replaces the wall clock.
func WithClock(c snapshot.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithIDGenerator replaces the run id source.
func WithIDGenerator(ids snapshot.IDGenerator) Option {
	return func(g *Generator) { g.ids = ids }
}

// WithHasher replaces the content hasher.
func WithHasher(h snapshot.Hasher) Option {
	return func(g *Generator) { g.hasher = h }
}

// New constructs a Generator.
func New(
	fetcher snapshot.EntityFetcher,
	renderer snapshot.Renderer,
	store snapshot.PageStore,
	cfg Config,
	logger *zap.Logger,
	opts ...Option,
) (*Generator, error) {
	if fetcher == nil {
		return nil, snapshot.ErrNoFetcher
	}
	if store == nil {
		return nil, snapshot.ErrNoStore
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if cfg.Sitemap && strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required for sitemap generation")
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = snapshot.DefaultCacheControl
	}
	if cfg.ErrorSample <= 0 {
		cfg.ErrorSample = DefaultErrorSample
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		fetcher:  fetcher,
		renderer: renderer,
		store:    store,
		hasher:   sha256.New(),
		clock:    system.New(),
		ids:      uuid.New(),
		tracer:   telemetry.Tracer(),
		cfg:      cfg,
		logger:   logger,
		state:    snapshot.RunIdle,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// State reports the lifecycle state of the generator.
func (g *Generator) State() snapshot.RunState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Latest returns the report of the most recent completed run.
func (g *Generator) Latest() (snapshot.Report, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.latest == nil {
		return snapshot.Report{}, false
	}
	return *g.latest, true
}

func (g *Generator) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == snapshot.RunRunning {
		return false
	}
	g.state = snapshot.RunRunning
	return true
}

func (g *Generator) finish(report *snapshot.Report) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = snapshot.RunCompleted
	if report != nil {
		r := *report
		g.latest = &r
	}
}

// Run fetches every collection, renders and uploads each page, and returns
// the report. Per-collection fetch failures and per-page failures are folded
// into the report; only an aborted context or a missing run id is fatal.
func (g *Generator) Run(ctx context.Context) (snapshot.Report, error) {
	if !g.begin() {
		metrics.ObserveRun(metrics.RunRejected, 0)
		return snapshot.Report{}, snapshot.ErrRunInProgress
	}
	metrics.IncRunsInProgress()
	defer metrics.DecRunsInProgress()

	start := g.clock.Now()
	runID, err := g.ids.NewID()
	if err != nil {
		g.finish(nil)
		metrics.ObserveRun(metrics.RunFailed, 0)
		return snapshot.Report{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := g.logger.With(zap.String("run_id", runID))
	ctx, span := g.tracer.Start(ctx, "snapshot.run", trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	logger.Info("generation run started")
	j := newJob(runID, logger)
	runErr := g.execute(ctx, j)

	end := g.clock.Now()
	report := j.report(g.cfg.ErrorSample, end, end.Sub(start))
	span.SetAttributes(
		attribute.Int("pages.generated", report.Generated),
		attribute.Int("pages.failed", report.Errors),
	)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		g.finish(nil)
		metrics.ObserveRun(metrics.RunFailed, end.Sub(start))
		logger.Error("generation run aborted", zap.Error(runErr), zap.Int("generated", report.Generated))
		return report, runErr
	}

	g.finish(&report)
	metrics.ObserveRun(metrics.RunCompleted, end.Sub(start))
	logger.Info("generation run completed",
		zap.Int("generated", report.Generated),
		zap.Int("errors", report.Errors),
		zap.Strings("skipped_collections", report.SkippedCollections),
		zap.Duration("duration", end.Sub(start)),
	)
	g.notify(ctx, logger, report)
	return report, nil
}

func (g *Generator) execute(ctx context.Context, j *job) error {
	data := g.fetchAll(ctx, j)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("generation aborted: %w", err)
	}
	steps := []func(context.Context, *job, *dataset){
		g.publishSingletons,
		g.publishCatalogItems,
		g.publishForumPosts,
		g.publishBlogPosts,
		g.publishListings,
		g.publishCountries,
	}
	for _, step := range steps {
		step(ctx, j, data)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("generation aborted: %w", err)
		}
	}
	if g.cfg.Sitemap {
		g.publishSitemap(ctx, j)
	}
	return nil
}

func (g *Generator) notify(ctx context.Context, logger *zap.Logger, report snapshot.Report) {
	if g.notifier == nil || g.cfg.Topic == "" {
		return
	}
	id, err := g.notifier.Publish(ctx, g.cfg.Topic, report)
	if err != nil {
		logger.Warn("publish run report failed", zap.String("topic", g.cfg.Topic), zap.Error(err))
		return
	}
	logger.Debug("run report published", zap.String("topic", g.cfg.Topic), zap.String("message_id", id))
}

// job accumulates the outcome of one run.
type job struct {
	id        string
	logger    *zap.Logger
	generated []string
	failures  []snapshot.Failure
	skipped   []string
	entries   []sitemapEntry
}

func newJob(id string, logger *zap.Logger) *job {
	return &job{id: id, logger: logger}
}

func (j *job) succeed(name string, entry sitemapEntry) {
	j.generated = append(j.generated, name)
	j.entries = append(j.entries, entry)
}

func (j *job) fail(id string, err error) {
	j.failures = append(j.failures, snapshot.Failure{ID: id, Error: err.Error()})
}

func (j *job) report(sample int, now time.Time, elapsed time.Duration) snapshot.Report {
	details := j.failures
	if len(details) > sample {
		details = details[:sample]
	}
	details = append(make([]snapshot.Failure, 0, len(details)), details...)
	return snapshot.Report{
		Success:            true,
		Generated:          len(j.generated),
		Errors:             len(j.failures),
		ErrorDetails:       details,
		Message:            fmt.Sprintf("Generated %d static pages with %d errors", len(j.generated), len(j.failures)),
		Timestamp:          now,
		RunID:              j.id,
		DurationMs:         elapsed.Milliseconds(),
		SkippedCollections: j.skipped,
	}
}

var errRendererPanic = errors.New("renderer panicked")

// safeRender converts a renderer panic into an ordinary render failure.
func safeRender(fn func() (string, error)) (html string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errRendererPanic, r)
		}
	}()
	return fn()
}
