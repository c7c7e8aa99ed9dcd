package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/metrics"
	"ContentPipeline/internal/ports"
)

type enrichResult = domain.Result[domain.RawItem, domain.EnrichedItem]

const promptTemplate = `You are an editor for a Korean blog for dog owners.
Read the news article below and propose content for our blog.

Title: %s
URL: %s
Category: %s

Respond with ONLY a JSON object with exactly these two string keys and nothing else:
{"suggested_title_ko": "<catchy Korean blog post title>", "summary_ko": "<3-4 sentence Korean summary of the article>"}`

// Enricher asks a generative model for a Korean title and summary per item.
type Enricher struct {
	generator   ports.TextGenerator
	concurrency int
	limiter     *rate.Limiter
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// EnricherOptions bounds the model-call fan-out. Concurrency <= 0 means every
// item in flight at once; RequestsPerSecond <= 0 disables rate limiting.
type EnricherOptions struct {
	Concurrency       int
	RequestsPerSecond float64
	Burst             int
	Logger            *slog.Logger
	Metrics           *metrics.Metrics
}

// NewEnricher wires a text generator.
func NewEnricher(generator ports.TextGenerator, opts EnricherOptions) *Enricher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Enricher{
		generator:   generator,
		concurrency: opts.Concurrency,
		limiter:     limiter,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// Validate checks the generator's settings without network calls.
func (e *Enricher) Validate() error {
	if e.generator == nil {
		return domain.NewMissingConfig("enricher", "text generator")
	}
	return ports.Validate(e.generator)
}

// Enrich returns the items that were enriched, in input order, and the
// results of the items that were dropped.
func (e *Enricher) Enrich(ctx context.Context, items []domain.RawItem) ([]domain.EnrichedItem, []enrichResult, error) {
	if err := e.Validate(); err != nil {
		return nil, nil, err
	}

	started := time.Now()
	defer e.metrics.ObserveStage("enrich", started)

	results := make([]enrichResult, len(items))

	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = e.enrichItem(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("enrich aborted: %w", err)
	}

	kept, dropped := domain.Partition(results)
	for _, d := range dropped {
		e.logger.Error("enrichment failed, dropping item", "title", d.Input.Title, "url", d.Input.URL, "error", d.Err)
	}

	e.metrics.AddEnrichment(len(kept), len(dropped))
	e.logger.Info("enrichment finished", "items", len(items), "enriched", len(kept), "dropped", len(dropped))
	return kept, dropped, nil
}

func (e *Enricher) enrichItem(ctx context.Context, item domain.RawItem) enrichResult {
	res := enrichResult{Input: item}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			res.Err = fmt.Errorf("rate limit wait: %w", err)
			return res
		}
	}

	text, err := e.generator.Generate(ctx, BuildPrompt(item))
	if err != nil {
		res.Err = fmt.Errorf("generate: %w", err)
		return res
	}

	generated, err := ParseGenerated(text)
	if err != nil {
		res.Err = err
		return res
	}

	res.Output = domain.EnrichedItem{
		RawItem:          item,
		SuggestedTitleKo: generated.SuggestedTitleKo,
		SummaryKo:        generated.SummaryKo,
	}
	return res
}

// Generated is the JSON object the model is asked to return.
type Generated struct {
	SuggestedTitleKo string `json:"suggested_title_ko"`
	SummaryKo        string `json:"summary_ko"`
}

// BuildPrompt renders the fixed instruction for one item.
func BuildPrompt(item domain.RawItem) string {
	return fmt.Sprintf(promptTemplate, item.Title, item.URL, item.Category)
}

// ParseGenerated strips markdown code fences from the model output and decodes
// it. Both keys must be present and non-empty.
func ParseGenerated(text string) (Generated, error) {
	var g Generated
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &g); err != nil {
		return Generated{}, fmt.Errorf("%w: parse model output: %v", domain.ErrInvalidResponse, err)
	}

	g.SuggestedTitleKo = strings.TrimSpace(g.SuggestedTitleKo)
	g.SummaryKo = strings.TrimSpace(g.SummaryKo)
	if g.SuggestedTitleKo == "" || g.SummaryKo == "" {
		return Generated{}, fmt.Errorf("%w: model output lacks suggested_title_ko or summary_ko", domain.ErrInvalidResponse)
	}
	return g, nil
}

// stripCodeFence removes a ```json ... ``` wrapper if present, including one
// written on a single line.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimLeftFunc(s, unicode.IsLetter)
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
