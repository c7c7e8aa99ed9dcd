package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/metrics"
	"ContentPipeline/internal/ports"
)

// Publisher bulk-inserts enriched items as content suggestions.
type Publisher struct {
	repository ports.SuggestionRepository
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewPublisher wires the destination repository.
func NewPublisher(repository ports.SuggestionRepository, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{repository: repository, logger: logger, metrics: m}
}

// Validate checks the repository's settings without network calls.
func (p *Publisher) Validate() error {
	if p.repository == nil {
		return domain.NewMissingConfig("publisher", "suggestion repository")
	}
	return ports.Validate(p.repository)
}

// Publish inserts one row per item in a single call. Nothing is inserted when
// configuration is missing or the insert fails.
func (p *Publisher) Publish(ctx context.Context, items []domain.EnrichedItem) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	started := time.Now()
	defer p.metrics.ObserveStage("publish", started)

	rows := make([]domain.PersistedSuggestion, 0, len(items))
	for _, item := range items {
		rows = append(rows, ToRow(item))
	}

	inserted, err := p.repository.InsertSuggestions(ctx, rows)
	if err != nil {
		p.logger.Error("bulk insert failed", "rows", len(rows), "error", err)
		return 0, fmt.Errorf("insert %d suggestions: %w", len(rows), err)
	}

	p.metrics.AddInserted(inserted)
	p.logger.Info("suggestions inserted", "count", inserted)
	return inserted, nil
}

// ToRow renames fields of an enriched item into the suggestion row shape.
func ToRow(item domain.EnrichedItem) domain.PersistedSuggestion {
	return domain.PersistedSuggestion{
		SuggestedTitleKo: item.SuggestedTitleKo,
		SummaryKo:        item.SummaryKo,
		OriginalURL:      item.URL,
		ImageURL:         item.ImageURL,
		Category:         item.Category,
		SourceName:       item.Source,
	}
}
