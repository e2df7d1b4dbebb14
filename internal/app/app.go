// Package app builds the generator's dependencies from configuration and runs
// the HTTP service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/seo-snapshot-generator/internal/api"
	"github.com/JakeFAU/seo-snapshot-generator/internal/config"
	"github.com/JakeFAU/seo-snapshot-generator/internal/fetcher/postgres"
	"github.com/JakeFAU/seo-snapshot-generator/internal/generator"
	"github.com/JakeFAU/seo-snapshot-generator/internal/logging"
	"github.com/JakeFAU/seo-snapshot-generator/internal/metrics"
	"github.com/JakeFAU/seo-snapshot-generator/internal/policy/ratelimit"
	gcppublisher "github.com/JakeFAU/seo-snapshot-generator/internal/publisher/pubsub"
	"github.com/JakeFAU/seo-snapshot-generator/internal/render"
	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
	gcsstorage "github.com/JakeFAU/seo-snapshot-generator/internal/storage/gcs"
	localstorage "github.com/JakeFAU/seo-snapshot-generator/internal/storage/local"
	memorystorage "github.com/JakeFAU/seo-snapshot-generator/internal/storage/memory"
	"github.com/JakeFAU/seo-snapshot-generator/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

// App contains the application's dependencies.
type App struct {
	cfg            config.Config
	logger         *zap.Logger
	fetcher        snapshot.EntityFetcher
	pgStore        *postgres.Store
	store          snapshot.PageStore
	storage        *storage.Client
	pubsubClient   *pubsub.Client
	publisher      *gcppublisher.Publisher
	notifier       snapshot.Notifier
	generator      *generator.Generator
	apiServer      *api.Server
	tracerShutdown func(context.Context) error
}

// Option overrides a dependency Build would otherwise construct.
type Option func(*App)

// WithEntityFetcher skips the Postgres connection.
func WithEntityFetcher(f snapshot.EntityFetcher) Option {
	return func(a *App) { a.fetcher = f }
}

// WithPageStore skips the configured storage backend.
func WithPageStore(s snapshot.PageStore) Option {
	return func(a *App) { a.store = s }
}

// WithNotifier skips the Pub/Sub client.
func WithNotifier(n snapshot.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// WithLogger replaces the configured logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.logger = l }
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	app := &App{cfg: cfg}
	for _, opt := range opts {
		opt(app)
	}
	if app.logger == nil {
		logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("logger init failed: %w", err)
		}
		app.logger = logger
		zap.ReplaceGlobals(logger)
	}
	app.logger.Info("building application dependencies",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("site", cfg.Site.BaseURL),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Bool("sitemap", cfg.Generator.Sitemap),
	)

	if err := app.build(ctx); err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	if a.cfg.Telemetry.Enabled {
		tp, err := telemetry.InitTracerProvider(ctx, a.cfg.Telemetry.ServiceName, a.cfg.Telemetry.SampleRatio)
		if err != nil {
			return fmt.Errorf("tracer init failed: %w", err)
		}
		a.tracerShutdown = tp.Shutdown
	}
	metrics.Init()

	if err := a.setupFetcher(ctx); err != nil {
		return err
	}
	renderer, err := render.New(render.Site{
		BaseURL:       a.cfg.Site.BaseURL,
		Name:          a.cfg.Site.Name,
		Description:   a.cfg.Site.Description,
		DefaultImage:  a.cfg.Site.DefaultImage,
		Locale:        a.cfg.Site.Locale,
		Currency:      a.cfg.Site.Currency,
		RedirectDelay: a.cfg.RedirectDelay(),
	})
	if err != nil {
		return fmt.Errorf("renderer init failed: %w", err)
	}
	if err := a.setupStorage(ctx); err != nil {
		return err
	}
	if err := a.setupPublisher(ctx); err != nil {
		return err
	}

	genOpts := []generator.Option{}
	if a.notifier != nil {
		genOpts = append(genOpts, generator.WithNotifier(a.notifier))
	}
	a.generator, err = generator.New(a.fetcher, renderer, a.store, generator.Config{
		BaseURL:      a.cfg.Site.BaseURL,
		CacheControl: a.cfg.Storage.CacheControl,
		ErrorSample:  a.cfg.Generator.ErrorSample,
		Sitemap:      a.cfg.Generator.Sitemap,
		Topic:        a.cfg.PubSub.TopicName,
	}, a.logger.Named("generator"), genOpts...)
	if err != nil {
		return fmt.Errorf("generator init failed: %w", err)
	}

	var apiOpts []api.Option
	if a.pgStore != nil {
		apiOpts = append(apiOpts, api.WithReadinessCheck(a.pgStore.Ping))
	}
	a.apiServer = api.NewServer(a.generator, a.cfg, a.logger.Named("api"), apiOpts...)
	return nil
}

func (a *App) setupFetcher(ctx context.Context) error {
	if a.fetcher != nil {
		return nil
	}
	store, err := postgres.New(ctx, postgres.Config{
		DSN:             a.cfg.DB.DSN,
		MaxConns:        a.cfg.DB.MaxConns,
		MinConns:        a.cfg.DB.MinConns,
		MaxConnLifetime: a.cfg.ConnLifetime(),
		PageSize:        a.cfg.DB.PageSize,
	})
	if err != nil {
		return fmt.Errorf("entity fetcher init failed: %w", err)
	}
	a.pgStore = store
	a.fetcher = store
	a.logger.Info("postgres entity fetcher initialized", zap.Int("page_size", a.cfg.DB.PageSize))
	return nil
}

func (a *App) setupStorage(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	var (
		store snapshot.PageStore
		err   error
	)
	switch a.cfg.Storage.Backend {
	case config.BackendGCS:
		a.logger.Info("using GCS storage backend")
		a.storage, err = storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("gcs client init failed: %w", err)
		}
		store, err = gcsstorage.New(a.storage, gcsstorage.Config{
			Bucket: a.cfg.Storage.Bucket,
			Prefix: a.cfg.Storage.Prefix,
		})
		if err != nil {
			return fmt.Errorf("gcs page store init failed: %w", err)
		}
		a.logger.Debug("GCS storage backend", zap.String("bucket", a.cfg.Storage.Bucket), zap.String("prefix", a.cfg.Storage.Prefix))
	case config.BackendLocal:
		a.logger.Info("using local storage backend")
		store, err = localstorage.New(localstorage.Config{BaseDir: a.cfg.Storage.Local.BaseDir})
		if err != nil {
			return fmt.Errorf("local page store init failed: %w", err)
		}
		a.logger.Debug("local storage backend", zap.String("path", a.cfg.Storage.Local.BaseDir))
	default:
		a.logger.Info("using in-memory storage backend")
		store = memorystorage.NewPageStore()
	}

	limiter := ratelimit.New(ratelimit.Config{
		UploadsPerSecond: a.cfg.Storage.UploadsPerSecond,
		Burst:            a.cfg.Storage.UploadBurst,
	})
	a.store = ratelimit.Wrap(store, limiter, a.cfg.Storage.Backend)
	if a.cfg.Storage.UploadsPerSecond > 0 {
		a.logger.Info("upload throttling enabled",
			zap.Float64("uploads_per_second", a.cfg.Storage.UploadsPerSecond),
			zap.Int("burst", a.cfg.Storage.UploadBurst),
		)
	}
	return nil
}

func (a *App) setupPublisher(ctx context.Context) error {
	if a.notifier != nil {
		return nil
	}
	if !a.cfg.PubSub.Enabled {
		a.logger.Info("run report notifications disabled")
		return nil
	}
	var err error
	a.pubsubClient, err = pubsub.NewClient(ctx, a.cfg.PubSub.ProjectID)
	if err != nil {
		return fmt.Errorf("pubsub client init failed: %w", err)
	}
	a.publisher = gcppublisher.New(a.pubsubClient)
	a.notifier = a.publisher
	a.logger.Info("Pub/Sub publisher initialized",
		zap.String("project", a.cfg.PubSub.ProjectID),
		zap.String("topic", a.cfg.PubSub.TopicName),
	)
	return nil
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Generator returns the run orchestrator.
func (a *App) Generator() *generator.Generator { return a.generator }

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler { return a.apiServer.Handler() }

// Serve runs the HTTP server until ctx is canceled or a signal arrives.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}

// Close gracefully shuts down the application.
func (a *App) Close(ctx context.Context) error {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.logger.Warn("gcs client close failed", zap.Error(err))
		}
	}
	if a.pgStore != nil {
		a.pgStore.Close()
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}
