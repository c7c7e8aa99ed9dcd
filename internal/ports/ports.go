package ports

import (
	"context"
	"time"

	"ContentPipeline/internal/domain"
)

// NewsSearcher runs a single query against the news search provider.
type NewsSearcher interface {
	Search(ctx context.Context, query string) ([]domain.NewsArticle, error)
}

// TextGenerator sends a free-text prompt to a generative model and returns its raw text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SuggestionRepository bulk-inserts content suggestions and reports the inserted count.
type SuggestionRepository interface {
	InsertSuggestions(ctx context.Context, rows []domain.PersistedSuggestion) (int, error)
}

// SeenStore remembers article URLs that were already published.
type SeenStore interface {
	Seen(ctx context.Context, urls []string) (map[string]bool, error)
	MarkSeen(ctx context.Context, urls []string) error
}

// Notifier delivers the report of a finished run to operators (Telegram, etc.).
type Notifier interface {
	NotifyRun(ctx context.Context, report domain.RunReport) error
}

// Validator is implemented by adapters that can tell, without network calls,
// whether their required settings are present.
type Validator interface {
	Validate() error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// Validate runs v.Validate when dep implements Validator.
func Validate(dep any) error {
	if v, ok := dep.(Validator); ok {
		return v.Validate()
	}
	return nil
}
