package models

import (
	"database/sql"
	"time"
)

// RawJob is what a source adapter hands back. Nothing in here is trusted:
// dates can be free text ("il y a 2 jours"), locations are whatever the site
// printed, and most fields can be empty.
type RawJob struct {
	Title         string
	Company       string
	Location      string
	PublishedDate string // absolute or relative, any language the site uses
	URL           string
	Snippet       string
	Source        string
}

// Job is a persisted posting after filtering and enrichment.
type Job struct {
	ID               int64        `db:"id"`
	Title            string       `db:"job_title"`
	Company          string       `db:"company"`
	RoleCategory     string       `db:"role_category"`
	Source           string       `db:"source"`
	PublishedDate    sql.NullTime `db:"published_date"`
	Location         string       `db:"location"`
	URL              string       `db:"url"`
	Snippet          string       `db:"snippet"`
	DetectedKeywords string       `db:"detected_keywords"`
	Applied          bool         `db:"applied"`
	ScrapedAt        time.Time    `db:"scraped_at"`
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	TotalScraped int
	FilteredOut  int
	Added        int
	Updated      int
	Skipped      int
	SourceErrors map[string]string
}
