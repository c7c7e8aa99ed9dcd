package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/metrics"
	"ContentPipeline/internal/ports"
)

type categoryResult = domain.Result[domain.CategoryQuery, []domain.RawItem]

// Collector searches the news provider once per category and keeps hits that
// have both a title and a preview image.
type Collector struct {
	searcher    ports.NewsSearcher
	categories  []domain.CategoryQuery
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// CollectorOptions tunes the category fan-out. Concurrency <= 0 means all
// categories in flight at once.
type CollectorOptions struct {
	Concurrency int
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// NewCollector wires a searcher with the category queries of the run.
func NewCollector(searcher ports.NewsSearcher, categories []domain.CategoryQuery, opts CollectorOptions) *Collector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		searcher:    searcher,
		categories:  categories,
		concurrency: opts.Concurrency,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// Validate checks the searcher's settings without network calls.
func (c *Collector) Validate() error {
	if c.searcher == nil {
		return domain.NewMissingConfig("collector", "news searcher")
	}
	return ports.Validate(c.searcher)
}

// Collect runs every category search and concatenates accepted items in
// category order. A failing category contributes nothing and is only logged.
func (c *Collector) Collect(ctx context.Context) ([]domain.RawItem, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	defer c.metrics.ObserveStage("collect", started)

	results := make([]categoryResult, len(c.categories))

	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, cat := range c.categories {
		i, cat := i, cat
		g.Go(func() error {
			results[i] = c.collectCategory(ctx, cat)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collect aborted: %w", err)
	}

	batches, failed := domain.Partition(results)
	for _, f := range failed {
		c.metrics.IncCategoryError(f.Input.Category)
		c.logger.Error("category search failed", "category", f.Input.Category, "error", f.Err)
	}

	var items []domain.RawItem
	for _, batch := range batches {
		items = append(items, batch...)
	}

	c.logger.Info("collection finished",
		"categories", len(c.categories),
		"failed_categories", len(failed),
		"items", len(items),
	)
	return items, nil
}

func (c *Collector) collectCategory(ctx context.Context, cat domain.CategoryQuery) categoryResult {
	res := categoryResult{Input: cat}

	articles, err := c.searcher.Search(ctx, cat.Query)
	if err != nil {
		res.Err = fmt.Errorf("search %s: %w", cat.Category, err)
		return res
	}

	items := make([]domain.RawItem, 0, len(articles))
	for _, a := range articles {
		if !accept(a) {
			continue
		}
		items = append(items, domain.RawItem{
			Title:    a.Title,
			URL:      a.URL,
			Source:   a.SourceName,
			ImageURL: a.ImageURL,
			Category: cat.Category,
		})
	}

	c.metrics.AddCollected(cat.Category, len(items))
	c.logger.Debug("category collected", "category", cat.Category, "hits", len(articles), "accepted", len(items))
	res.Output = items
	return res
}

func accept(a domain.NewsArticle) bool {
	return a.Title != "" && a.ImageURL != ""
}
