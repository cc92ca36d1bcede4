package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/ports"
)

const (
	journalTable      = "resource_errors"
	defaultRecentSize = 20
)

var journalColumns = []string{
	"id",
	"kind",
	"link",
	"link_html",
	"attempted_urls",
	"http_status",
	"message",
	"created_at",
}

const journalSchema = `CREATE TABLE IF NOT EXISTS resource_errors (
    id             UUID PRIMARY KEY,
    kind           TEXT NOT NULL,
    link           TEXT NOT NULL,
    link_html      TEXT NOT NULL DEFAULT '',
    attempted_urls TEXT[] NOT NULL DEFAULT '{}',
    http_status    INTEGER NOT NULL DEFAULT 0,
    message        TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresJournal persists reported resolution failures into Postgres.
type PostgresJournal struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ ports.ErrorJournal  = (*PostgresJournal)(nil)
	_ ports.ErrorReporter = (*PostgresJournal)(nil)
)

// Open connects to Postgres through lib/pq.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewPostgresJournal wires a sql.DB implementation.
func NewPostgresJournal(db *sql.DB) *PostgresJournal {
	return &PostgresJournal{db: db, now: time.Now}
}

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// EnsureSchema creates the journal table when it is missing.
func (j *PostgresJournal) EnsureSchema(ctx context.Context) error {
	if j.db == nil {
		return nil
	}
	if _, err := j.db.ExecContext(ctx, journalSchema); err != nil {
		return fmt.Errorf("create journal table: %w", err)
	}
	return nil
}

// ReportResourceError records the failure with a fresh id.
func (j *PostgresJournal) ReportResourceError(ctx context.Context, ferr *domain.FetchError) error {
	if ferr == nil {
		return nil
	}
	return j.Record(ctx, domain.NewErrorRecord(ferr, j.now()))
}

// Record inserts one diagnostic; a record with a known id is ignored.
func (j *PostgresJournal) Record(ctx context.Context, rec domain.ErrorRecord) error {
	if j.db == nil {
		return nil
	}

	query, args, err := builder().
		Insert(journalTable).
		Columns(journalColumns...).
		Values(
			rec.ID.String(),
			string(rec.Kind),
			rec.Link,
			rec.LinkHTML,
			pq.StringArray(rec.AttemptedURLs),
			rec.HTTPStatus,
			rec.Message,
			rec.CreatedAt,
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert resource error: %w", err)
	}
	return nil
}

// Recent lists the newest records first. A non-positive limit uses the default.
func (j *PostgresJournal) Recent(ctx context.Context, limit int) ([]domain.ErrorRecord, error) {
	if j.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultRecentSize
	}

	query, args, err := builder().
		Select(journalColumns...).
		From(journalTable).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resource errors: %w", err)
	}

	var records []domain.ErrorRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return records, nil
}

func scanRecord(rows *sql.Rows) (domain.ErrorRecord, error) {
	var (
		rec  domain.ErrorRecord
		id   string
		kind string
		urls pq.StringArray
	)
	if err := rows.Scan(&id, &kind, &rec.Link, &rec.LinkHTML, &urls, &rec.HTTPStatus, &rec.Message, &rec.CreatedAt); err != nil {
		return domain.ErrorRecord{}, fmt.Errorf("scan resource error: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrorRecord{}, fmt.Errorf("parse record id %q: %w", id, err)
	}
	rec.ID = parsed
	rec.Kind = domain.FailureKind(kind)
	rec.AttemptedURLs = []string(urls)
	return rec, nil
}
