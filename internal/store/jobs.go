package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"go-jobradar/internal/models"
)

// UpsertStats counts the outcome of a bulk merge.
type UpsertStats struct {
	Added   int
	Updated int
	Skipped int
}

// Stats is the read-side aggregation over the whole table.
type Stats struct {
	Total        int
	ByCategory   map[string]int
	BySource     map[string]int
	ByDay        []DayCount
	TopLocations []LocationCount
}

type DayCount struct {
	Day   string `db:"day"`
	Count int    `db:"count"`
}

type LocationCount struct {
	Location string `db:"location"`
	Count    int    `db:"count"`
}

// nullableURL maps an empty URL to NULL so the UNIQUE constraint only binds
// real URLs; rows without one fall back to the degraded key.
func nullableURL(url string) sql.NullString {
	return sql.NullString{String: url, Valid: url != ""}
}

// Upsert merges one posting into the table inside the caller's transaction.
//
// Lookup is by URL when present, else by the (title, company, published_date)
// triple. On a hit, scraped_at is always refreshed and empty fields are
// filled from the incoming record; populated fields are never overwritten and
// the operator's applied flag is never touched. Returns (isNew, isUpdated).
func (s *Store) Upsert(ctx context.Context, tx *sqlx.Tx, job models.Job) (bool, bool, error) {
	existing, err := s.findExisting(ctx, tx, job)
	if err != nil {
		return false, false, err
	}

	if existing == nil {
		scrapedAt := job.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = time.Now().UTC()
		}
		query := tx.Rebind(`
			INSERT INTO jobs (job_title, company, role_category, source, published_date,
			                  location, url, snippet, detected_keywords, applied, scraped_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, query,
			job.Title, job.Company, job.RoleCategory, job.Source, job.PublishedDate,
			job.Location, nullableURL(job.URL), job.Snippet, job.DetectedKeywords,
			false, scrapedAt,
		); err != nil {
			return false, false, fmt.Errorf("failed to insert job: %w", err)
		}
		return true, false, nil
	}

	//freshness refresh always counts as an update
	merged := *existing
	merged.ScrapedAt = job.ScrapedAt
	if merged.ScrapedAt.IsZero() {
		merged.ScrapedAt = time.Now().UTC()
	}

	fillString(&merged.Title, job.Title)
	fillString(&merged.Company, job.Company)
	fillString(&merged.RoleCategory, job.RoleCategory)
	fillString(&merged.Source, job.Source)
	fillString(&merged.Location, job.Location)
	fillString(&merged.URL, job.URL)
	fillString(&merged.Snippet, job.Snippet)
	fillString(&merged.DetectedKeywords, job.DetectedKeywords)
	if !merged.PublishedDate.Valid && job.PublishedDate.Valid {
		merged.PublishedDate = job.PublishedDate
	}

	query := tx.Rebind(`
		UPDATE jobs SET job_title = ?, company = ?, role_category = ?, source = ?,
		                published_date = ?, location = ?, url = ?, snippet = ?,
		                detected_keywords = ?, scraped_at = ?
		WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, query,
		merged.Title, merged.Company, merged.RoleCategory, merged.Source,
		merged.PublishedDate, merged.Location, nullableURL(merged.URL),
		merged.Snippet, merged.DetectedKeywords, merged.ScrapedAt, merged.ID,
	); err != nil {
		return false, false, fmt.Errorf("failed to update job %d: %w", existing.ID, err)
	}
	return false, true, nil
}

func fillString(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

func (s *Store) findExisting(ctx context.Context, tx *sqlx.Tx, job models.Job) (*models.Job, error) {
	const columns = `id, job_title, company, role_category, source, published_date,
	                 location, COALESCE(url, '') AS url, snippet, detected_keywords, applied, scraped_at`

	var existing models.Job
	var err error

	if job.URL != "" {
		query := tx.Rebind(`SELECT ` + columns + ` FROM jobs WHERE url = ?`)
		err = tx.GetContext(ctx, &existing, query, job.URL)
	} else if job.PublishedDate.Valid {
		query := tx.Rebind(`SELECT ` + columns + ` FROM jobs
			WHERE job_title = ? AND company = ? AND published_date = ? LIMIT 1`)
		err = tx.GetContext(ctx, &existing, query, job.Title, job.Company, job.PublishedDate)
	} else {
		query := tx.Rebind(`SELECT ` + columns + ` FROM jobs
			WHERE job_title = ? AND company = ? AND published_date IS NULL LIMIT 1`)
		err = tx.GetContext(ctx, &existing, query, job.Title, job.Company)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing job: %w", err)
	}
	return &existing, nil
}

// BulkUpsert merges a whole batch in one transaction. Any failure rolls the
// entire batch back: a half-applied batch would leave the dedup invariant in
// an unknown state.
func (s *Store) BulkUpsert(ctx context.Context, jobs []models.Job) (UpsertStats, error) {
	var stats UpsertStats

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, job := range jobs {
		isNew, isUpdated, err := s.Upsert(ctx, tx, job)
		if err != nil {
			tx.Rollback()
			return UpsertStats{}, err
		}
		switch {
		case isNew:
			stats.Added++
		case isUpdated:
			stats.Updated++
		default:
			stats.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertStats{}, fmt.Errorf("failed to commit batch: %w", err)
	}
	return stats, nil
}

// ListAll returns postings ordered newest first; rows without a date sort
// last. limit <= 0 means no limit.
func (s *Store) ListAll(ctx context.Context, limit int) ([]models.Job, error) {
	query := `SELECT id, job_title, company, role_category, source, published_date,
	                 location, COALESCE(url, '') AS url, snippet, detected_keywords, applied, scraped_at
	          FROM jobs ORDER BY published_date DESC NULLS LAST, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var jobs []models.Job
	if err := s.db.SelectContext(ctx, &jobs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// SetApplied flips the operator's applied flag. Idempotent; reports false
// when the id does not exist.
func (s *Store) SetApplied(ctx context.Context, id int64, applied bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE jobs SET applied = ? WHERE id = ?`), applied, id)
	if err != nil {
		return false, fmt.Errorf("failed to set applied on job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// Statistics computes the read-side aggregations backing the stats command.
func (s *Store) Statistics(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByCategory: map[string]int{},
		BySource:   map[string]int{},
	}

	if err := s.db.GetContext(ctx, &stats.Total, `SELECT COUNT(*) FROM jobs`); err != nil {
		return Stats{}, fmt.Errorf("failed to count jobs: %w", err)
	}

	if err := s.groupCount(ctx, `role_category`, stats.ByCategory); err != nil {
		return Stats{}, err
	}
	if err := s.groupCount(ctx, `source`, stats.BySource); err != nil {
		return Stats{}, err
	}

	if err := s.db.SelectContext(ctx, &stats.ByDay, `
		SELECT DATE(published_date) AS day, COUNT(*) AS count
		FROM jobs WHERE published_date IS NOT NULL
		GROUP BY DATE(published_date) ORDER BY day DESC`); err != nil {
		return Stats{}, fmt.Errorf("failed to group by day: %w", err)
	}

	if err := s.db.SelectContext(ctx, &stats.TopLocations, `
		SELECT location, COUNT(*) AS count
		FROM jobs WHERE location <> ''
		GROUP BY location ORDER BY count DESC, location ASC LIMIT 10`); err != nil {
		return Stats{}, fmt.Errorf("failed to rank locations: %w", err)
	}

	return stats, nil
}

func (s *Store) groupCount(ctx context.Context, column string, dst map[string]int) error {
	rows, err := s.db.QueryxContext(ctx, `SELECT `+column+`, COUNT(*) FROM jobs GROUP BY `+column)
	if err != nil {
		return fmt.Errorf("failed to group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s group: %w", column, err)
		}
		dst[key] = count
	}
	return rows.Err()
}

// ClearAll wipes the table. Destructive; used by resets and tests only.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM jobs`); err != nil {
		return fmt.Errorf("failed to clear jobs: %w", err)
	}
	return nil
}
