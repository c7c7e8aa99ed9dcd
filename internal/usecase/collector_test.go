package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"ContentPipeline/internal/domain"
)

func TestCollectorFiltersAndTagsCategory(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: map[string][]domain.NewsArticle{
		"q-health": {
			article("Vaccines", "https://a/1", "https://a/1.jpg"),
			article("", "https://a/2", "https://a/2.jpg"),
			article("No image", "https://a/3", ""),
		},
		"q-training": {
			article("Leash", "https://b/1", "https://b/1.jpg"),
		},
	}}

	c := NewCollector(searcher, testCategories(), CollectorOptions{Logger: testLogger})
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	want := []domain.RawItem{
		{Title: "Vaccines", URL: "https://a/1", Source: "src-Vaccines", ImageURL: "https://a/1.jpg", Category: "health"},
		{Title: "Leash", URL: "https://b/1", Source: "src-Leash", ImageURL: "https://b/1.jpg", Category: "training"},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("unexpected items:\n got %+v\nwant %+v", items, want)
	}
	if searcher.callCount() != 4 {
		t.Fatalf("expected one search per category, got %d", searcher.callCount())
	}
}

func TestCollectorIsolatesCategoryFailure(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		results: map[string][]domain.NewsArticle{
			"q-health":    {article("H1", "https://h/1", "i"), article("H2", "https://h/2", "i")},
			"q-training":  {article("T1", "https://t/1", "i")},
			"q-nutrition": {article("N1", "https://n/1", "i")},
			"q-lifestyle": {article("L1", "https://l/1", "i")},
		},
		errs: map[string]error{"q-training": errors.New("connection reset")},
	}

	c := NewCollector(searcher, testCategories(), CollectorOptions{Logger: testLogger, Concurrency: 2})
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	want := []string{"H1", "H2", "N1", "L1"}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("expected %v, got %v", want, titles)
	}
}

func TestCollectorMissingKeyIsFatal(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{validateErr: domain.NewMissingConfig("collector", "NEWS_API_KEY")}
	c := NewCollector(searcher, testCategories(), CollectorOptions{Logger: testLogger})

	_, err := c.Collect(context.Background())
	if !errors.Is(err, domain.ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	if searcher.callCount() != 0 {
		t.Fatalf("expected no searches, got %d", searcher.callCount())
	}
}

func TestCollectorCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(&fakeSearcher{}, testCategories(), CollectorOptions{Logger: testLogger})
	if _, err := c.Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
