package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/infrastructure/cache"
	"ContentPipeline/internal/infrastructure/llm"
	"ContentPipeline/internal/infrastructure/newsapi"
	"ContentPipeline/internal/infrastructure/scheduler"
	"ContentPipeline/internal/infrastructure/storage"
	"ContentPipeline/internal/infrastructure/telegram"
	"ContentPipeline/internal/logging"
	"ContentPipeline/internal/metrics"
	"ContentPipeline/internal/ports"
	"ContentPipeline/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	metrics  *metrics.Metrics
	closers  []io.Closer
}

// New builds a runnable application instance. Adapters are constructed
// eagerly but credentials are only checked by the stage that needs them.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.New()}

	generator, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	repo, err := a.buildRepository()
	if err != nil {
		return nil, err
	}

	var seen ports.SeenStore
	if cfg.Dedup.Enabled {
		store, err := cache.NewRedisSeenStore(ctx, cfg.Dedup)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("dedup store: %w", err)
		}
		a.closers = append(a.closers, store)
		seen = store
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Collector: usecase.NewCollector(newsapi.NewClient(cfg.News, nil), cfg.News.Categories, usecase.CollectorOptions{
			Concurrency: cfg.News.Concurrency,
			Logger:      baseLogger.With("component", "collector"),
			Metrics:     a.metrics,
		}),
		Enricher: usecase.NewEnricher(generator, usecase.EnricherOptions{
			Concurrency:       cfg.Enricher.Concurrency,
			RequestsPerSecond: cfg.Enricher.RequestsPerSecond,
			Burst:             cfg.Enricher.Burst,
			Logger:            baseLogger.With("component", "enricher"),
			Metrics:           a.metrics,
		}),
		Publisher: usecase.NewPublisher(repo, baseLogger.With("component", "publisher"), a.metrics),
		SeenStore: seen,
		Notifier:  notifier,
		Metrics:   a.metrics,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return a, nil
}

func (a *Application) buildRepository() (ports.SuggestionRepository, error) {
	switch strings.ToLower(strings.TrimSpace(a.cfg.Publisher.Backend)) {
	case "", config.BackendREST:
		return storage.NewRESTRepository(a.cfg.Publisher, nil), nil
	case config.BackendPostgres:
		repo, err := storage.NewPostgresRepository(a.cfg.Publisher.Database.DSN, a.cfg.Publisher.Table)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo)
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown publisher backend %q", a.cfg.Publisher.Backend)
	}
}

// Run executes the pipeline once, or on every cron trigger until ctx is done
// when a cron expression is configured.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}
	if a.cfg.Scheduler.CronExpression == "" {
		return a.runOnce(ctx)
	}
	return a.runScheduled(ctx)
}

func (a *Application) runOnce(ctx context.Context) error {
	_, runErr := a.pipeline.Run(ctx)

	if url := a.cfg.Metrics.PushgatewayURL; url != "" {
		if err := a.metrics.Push(ctx, url, a.cfg.Metrics.JobName); err != nil {
			a.logger.Warn("metrics push failed", "error", err)
		}
	}
	return runErr
}

func (a *Application) runScheduled(ctx context.Context) error {
	if addr := a.cfg.Metrics.ListenAddr; addr != "" {
		shutdown := a.metrics.StartServer(addr, a.logger.With("component", "metrics"))
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = shutdown(stopCtx)
		}()
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "next", driver.Next())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop timed out", "error", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}

// Close releases pooled connections held by the adapters.
func (a *Application) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
