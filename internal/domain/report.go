package domain

// RunOutcome describes how a pipeline run ended.
type RunOutcome string

const (
	OutcomeNoArticles RunOutcome = "no_articles"
	OutcomeNoEnriched RunOutcome = "no_enriched"
	OutcomePublished  RunOutcome = "published"
)

// RunReport summarizes a single successful pipeline run.
type RunReport struct {
	RunID     string
	Collected int
	Enriched  int
	Dropped   int
	Inserted  int
	Outcome   RunOutcome
}
