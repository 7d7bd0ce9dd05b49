package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/odnalezione/odnalezione-backend/internal/data/cache"
	"github.com/odnalezione/odnalezione-backend/internal/data/db"
	"github.com/odnalezione/odnalezione-backend/internal/data/repos"
	apphttp "github.com/odnalezione/odnalezione-backend/internal/http"
	httpH "github.com/odnalezione/odnalezione-backend/internal/http/handlers"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing"
	"github.com/odnalezione/odnalezione-backend/internal/observability"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
	"github.com/odnalezione/odnalezione-backend/internal/platform/openai"
	"github.com/odnalezione/odnalezione-backend/internal/services"
)

type App struct {
	Log     *logger.Logger
	Cfg     *Config
	DB      *db.Service
	Metrics *observability.Metrics
	Server  *apphttp.Server

	mirror       cache.DraftMirror
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	a.Metrics = observability.Init(cfg.Metrics)

	dbs, err := db.NewService(log, cfg.DB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init db: %w", err)
	}
	a.DB = dbs
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		a.Close()
		return nil, fmt.Errorf("db automigrate: %w", err)
	}

	// The redis mirror is optional; drafts still live in the database without it.
	mirror, err := cache.NewDraftMirror(log, cfg.Redis)
	if err != nil {
		log.Warn("Draft mirror unavailable", "addr", cfg.Redis.Addr, "error", err)
		mirror = nil
	}
	a.mirror = mirror

	drafts := services.NewDraftService(log, repos.NewImportDraftRepo(dbs.DB(), log), mirror, a.Metrics)

	pipeline, err := wirePipeline(log, cfg, a.Metrics)
	llmReady := err == nil
	if err != nil {
		if !errors.Is(err, openai.ErrMissingAPIKey) {
			a.Close()
			return nil, err
		}
		log.Warn("OPENAI_API_KEY is not set; processing requests will be rejected")
	}

	var runner services.ImportRunner
	if pipeline != nil {
		runner = pipeline
	}
	imports := services.NewImportService(log, runner, drafts, a.Metrics)

	a.Server = apphttp.NewServer(cfg.HTTP.Addr, apphttp.RouterConfig{
		Log:             log,
		Metrics:         a.Metrics,
		ServiceName:     otelServiceName(cfg.Otel),
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		ImportHandler:   httpH.NewImportHandler(imports, llmReady),
		DraftHandler:    httpH.NewDraftHandler(drafts),
		HealthHandler:   httpH.NewHealthHandler(),
	})
	return a, nil
}

func wirePipeline(log *logger.Logger, cfg *Config, metrics *observability.Metrics) (*importing.Pipeline, error) {
	var observer openai.Observer
	if metrics != nil {
		observer = metrics
	}
	client, err := openai.NewClient(log, cfg.OpenAI.client(observer))
	if err != nil {
		return nil, err
	}
	return NewPipeline(log, client)
}

func otelServiceName(cfg observability.OtelConfig) string {
	if !cfg.Enabled {
		return ""
	}
	if cfg.ServiceName == "" {
		return "odnalezione"
	}
	return cfg.ServiceName
}

// Run serves HTTP until ctx is cancelled and then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTP.Addr)
		return a.Server.Run(gctx, a.Cfg.HTTP.ShutdownTimeout.Duration)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down", "reason", context.Cause(gctx))
		return nil
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.mirror != nil {
		_ = a.mirror.Close()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && a.Log != nil {
			a.Log.Warn("Closing db failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
