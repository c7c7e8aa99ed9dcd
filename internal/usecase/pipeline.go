package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/metrics"
	"ContentPipeline/internal/ports"
)

// PipelineDeps wires the stages and optional adapters into the orchestration pipeline.
type PipelineDeps struct {
	Collector *Collector
	Enricher  *Enricher
	Publisher *Publisher
	SeenStore ports.SeenStore
	Notifier  ports.Notifier
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Pipeline runs collect, enrich and publish strictly in sequence.
type Pipeline struct {
	collector *Collector
	enricher  *Enricher
	publisher *Publisher
	seen      ports.SeenStore
	notifier  ports.Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		collector: deps.Collector,
		enricher:  deps.Enricher,
		publisher: deps.Publisher,
		seen:      deps.SeenStore,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// Run performs one pipeline execution. Empty collector or enricher output ends
// the run early without error; any returned error is fatal for the run.
func (p *Pipeline) Run(ctx context.Context) (report domain.RunReport, err error) {
	report.RunID = uuid.NewString()
	logger := p.logger.With("run_id", report.RunID)
	defer func() { p.metrics.ObserveRun(report, err) }()

	if err := p.preflight(); err != nil {
		return report, fmt.Errorf("preflight: %w", err)
	}

	logger.Info("pipeline started")

	items, err := p.collector.Collect(ctx)
	if err != nil {
		return report, fmt.Errorf("collect: %w", err)
	}
	items = p.skipSeen(ctx, logger, items)
	report.Collected = len(items)

	if len(items) == 0 {
		logger.Info("no articles collected")
		report.Outcome = domain.OutcomeNoArticles
		p.notify(ctx, logger, report)
		return report, nil
	}

	enriched, dropped, err := p.enricher.Enrich(ctx, items)
	if err != nil {
		return report, fmt.Errorf("enrich: %w", err)
	}
	report.Enriched = len(enriched)
	report.Dropped = len(dropped)

	if len(enriched) == 0 {
		logger.Info("no articles enriched", "dropped", len(dropped))
		report.Outcome = domain.OutcomeNoEnriched
		p.notify(ctx, logger, report)
		return report, nil
	}

	inserted, err := p.publisher.Publish(ctx, enriched)
	if err != nil {
		return report, fmt.Errorf("publish: %w", err)
	}
	report.Inserted = inserted
	report.Outcome = domain.OutcomePublished

	p.markSeen(ctx, logger, enriched)
	p.notify(ctx, logger, report)

	logger.Info("pipeline finished",
		"collected", report.Collected,
		"enriched", report.Enriched,
		"dropped", report.Dropped,
		"inserted", report.Inserted,
	)
	return report, nil
}

// preflight checks every stage's settings before any network call, so a run
// with missing credentials spends no search or model quota.
func (p *Pipeline) preflight() error {
	for _, stage := range []interface{ Validate() error }{p.collector, p.enricher, p.publisher} {
		if err := stage.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) skipSeen(ctx context.Context, logger *slog.Logger, items []domain.RawItem) []domain.RawItem {
	if p.seen == nil || len(items) == 0 {
		return items
	}

	urls := make([]string, len(items))
	for i, item := range items {
		urls[i] = item.URL
	}

	seen, err := p.seen.Seen(ctx, urls)
	if err != nil {
		logger.Warn("seen-url lookup failed, keeping all items", "error", err)
		return items
	}

	fresh := items[:0:0]
	for _, item := range items {
		if seen[item.URL] {
			continue
		}
		fresh = append(fresh, item)
	}
	if skipped := len(items) - len(fresh); skipped > 0 {
		logger.Info("skipped already published articles", "count", skipped)
	}
	return fresh
}

func (p *Pipeline) markSeen(ctx context.Context, logger *slog.Logger, items []domain.EnrichedItem) {
	if p.seen == nil {
		return
	}
	urls := make([]string, len(items))
	for i, item := range items {
		urls[i] = item.URL
	}
	if err := p.seen.MarkSeen(ctx, urls); err != nil {
		logger.Warn("mark seen urls failed", "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, report domain.RunReport) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.NotifyRun(ctx, report); err != nil {
		logger.Warn("send run report failed", "error", err)
	}
}
