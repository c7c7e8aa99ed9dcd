package domain

// CategoryQuery maps a category label to the search expression used for it.
type CategoryQuery struct {
	Category string `yaml:"category"`
	Query    string `yaml:"query"`
}

// NewsArticle is a single search hit as returned by the news provider.
type NewsArticle struct {
	Title      string
	URL        string
	SourceName string
	ImageURL   string
}

// RawItem is an accepted search hit tagged with the category that found it.
type RawItem struct {
	Title    string
	URL      string
	Source   string
	ImageURL string
	Category string
}

// EnrichedItem carries the model-generated Korean title and summary.
type EnrichedItem struct {
	RawItem
	SuggestedTitleKo string
	SummaryKo        string
}

// PersistedSuggestion is the row shape of the content suggestion table.
type PersistedSuggestion struct {
	SuggestedTitleKo     string  `json:"suggested_title_ko"`
	SummaryKo            string  `json:"summary_ko"`
	InitialDraftMarkdown *string `json:"initial_draft_markdown,omitempty"`
	OriginalURL          string  `json:"original_url"`
	ImageURL             string  `json:"image_url"`
	Category             string  `json:"category"`
	SourceName           string  `json:"source_name"`
}
