package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

var suggestionColumns = []string{
	"suggested_title_ko",
	"summary_ko",
	"initial_draft_markdown",
	"original_url",
	"image_url",
	"category",
	"source_name",
}

// PostgresRepository inserts suggestions straight into Postgres. The DSN is
// expected to carry a role that is not subject to row-level security.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

var (
	_ ports.SuggestionRepository = (*PostgresRepository)(nil)
	_ ports.Validator            = (*PostgresRepository)(nil)
)

// NewPostgresRepository prepares a pool for dsn. sql.Open does not dial, so an
// unreachable database surfaces on the first insert.
func NewPostgresRepository(dsn, table string) (*PostgresRepository, error) {
	if dsn == "" {
		return &PostgresRepository{table: table}, nil
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresRepositoryFromDB(db, table), nil
}

// NewPostgresRepositoryFromDB wires an existing sql.DB implementation.
func NewPostgresRepositoryFromDB(db *sql.DB, table string) *PostgresRepository {
	return &PostgresRepository{db: db, table: table}
}

// Validate reports a missing DSN without touching the network.
func (r *PostgresRepository) Validate() error {
	if r.db == nil {
		return domain.NewMissingConfig("publisher", "DATABASE_DSN")
	}
	return nil
}

// InsertSuggestions writes all rows with a single multi-row INSERT.
func (r *PostgresRepository) InsertSuggestions(ctx context.Context, rows []domain.PersistedSuggestion) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	query, args, err := buildInsert(r.table, rows)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert suggestions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert suggestions: rows affected: %w", err)
	}
	return int(affected), nil
}

// Close releases the pool.
func (r *PostgresRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func buildInsert(table string, rows []domain.PersistedSuggestion) (string, []any, error) {
	builder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(table).
		Columns(suggestionColumns...)

	for _, row := range rows {
		builder = builder.Values(
			row.SuggestedTitleKo,
			row.SummaryKo,
			row.InitialDraftMarkdown,
			row.OriginalURL,
			row.ImageURL,
			row.Category,
			row.SourceName,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return query, args, nil
}
