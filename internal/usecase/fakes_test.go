package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/logging"
)

var testLogger = logging.Discard()

type fakeSearcher struct {
	mu          sync.Mutex
	results     map[string][]domain.NewsArticle
	errs        map[string]error
	validateErr error
	calls       []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]domain.NewsArticle, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()

	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

func (f *fakeSearcher) Validate() error {
	return f.validateErr
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeGenerator answers by article title found in the prompt.
type fakeGenerator struct {
	mu          sync.Mutex
	responses   map[string]string
	errs        map[string]error
	validateErr error
	delay       time.Duration
	calls       int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	for title, err := range f.errs {
		if strings.Contains(prompt, "Title: "+title+"\n") {
			return "", err
		}
	}
	for title, resp := range f.responses {
		if strings.Contains(prompt, "Title: "+title+"\n") {
			return resp, nil
		}
	}
	return `{"suggested_title_ko":"기본 제목","summary_ko":"기본 요약"}`, nil
}

func (f *fakeGenerator) Validate() error {
	return f.validateErr
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRepository struct {
	mu          sync.Mutex
	batches     [][]domain.PersistedSuggestion
	err         error
	validateErr error
}

func (f *fakeRepository) InsertSuggestions(_ context.Context, rows []domain.PersistedSuggestion) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, rows)
	if f.err != nil {
		return 0, f.err
	}
	return len(rows), nil
}

func (f *fakeRepository) Validate() error {
	return f.validateErr
}

type fakeSeenStore struct {
	seen   map[string]bool
	marked []string
	err    error
}

func (f *fakeSeenStore) Seen(_ context.Context, urls []string) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]bool{}
	for _, u := range urls {
		if f.seen[u] {
			out[u] = true
		}
	}
	return out, nil
}

func (f *fakeSeenStore) MarkSeen(_ context.Context, urls []string) error {
	f.marked = append(f.marked, urls...)
	return f.err
}

type fakeNotifier struct {
	reports []domain.RunReport
}

func (f *fakeNotifier) NotifyRun(_ context.Context, report domain.RunReport) error {
	f.reports = append(f.reports, report)
	return nil
}

func article(title, url, image string) domain.NewsArticle {
	return domain.NewsArticle{Title: title, URL: url, SourceName: "src-" + title, ImageURL: image}
}

func testCategories() []domain.CategoryQuery {
	return []domain.CategoryQuery{
		{Category: "health", Query: "q-health"},
		{Category: "training", Query: "q-training"},
		{Category: "nutrition", Query: "q-nutrition"},
		{Category: "lifestyle", Query: "q-lifestyle"},
	}
}
