// Package classify filters raw postings and enriches the survivors with a
// role category and the keywords that made them relevant. Everything here is
// a pure function over the injected configuration tables; the only side
// effect is stamping ScrapedAt on accepted records.
package classify

import (
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"go-jobradar/internal/config"
	"go-jobradar/internal/dateparse"
	"go-jobradar/internal/models"
)

const snippetMaxLength = 300

// Engine holds the immutable keyword and category tables. Construct once
// from config and share freely; it has no mutable state.
type Engine struct {
	keywords   map[string][]string
	categories []config.RoleCategory
	maxAgeDays int

	nationwide string // the "accept everything" location target
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		keywords:   cfg.Keywords,
		categories: cfg.Categories,
		maxAgeDays: cfg.MaxAgeDays,
		nationwide: cfg.Country,
	}
}

// IsRecent reports whether the posting's date text resolves to a timestamp
// within the recency window. Missing or unparsable dates fail closed: a
// posting we cannot date is treated as stale.
func (e *Engine) IsRecent(dateText string, now time.Time) bool {
	published, ok := dateparse.ParseAt(dateText, now)
	if !ok {
		return false
	}
	cutoff := now.AddDate(0, 0, -e.maxAgeDays)
	return !published.Before(cutoff)
}

// IsValidLocation accepts a posting's location against the operator's target.
// The gate is deliberately permissive and currently rejects nothing: upstream
// location strings are too unreliable to filter on, and the sources already
// scope results by region in their search URLs. The boolean signature keeps
// the gate in the chain should a hard filter ever be wanted.
func (e *Engine) IsValidLocation(location, target string) bool {
	if location == "" || strings.EqualFold(target, e.nationwide) {
		return true
	}
	//a non-matching location is suspicious but not disqualifying
	return true
}

// MatchesKeywords reports whether the text contains at least one phrase from
// any keyword category.
func (e *Engine) MatchesKeywords(text string) bool {
	return e.DetectKeywords(text).Cardinality() > 0
}

// DetectKeywords returns every matching phrase across all categories, not
// just the winning one. The result feeds the operator-facing keywords column.
func (e *Engine) DetectKeywords(text string) mapset.Set[string] {
	detected := mapset.NewSet[string]()
	if text == "" {
		return detected
	}

	folded := Fold(text)
	for _, phrases := range e.keywords {
		for _, phrase := range phrases {
			if strings.Contains(folded, Fold(phrase)) {
				detected.Add(phrase)
			}
		}
	}
	return detected
}

// CategorizeRole scans the category table in priority order and returns the
// first category with a phrase match. The catch-all category carries no
// phrases and is returned when nothing specific matched.
func (e *Engine) CategorizeRole(text string) string {
	fallback := "Other"

	folded := Fold(text)
	for _, cat := range e.categories {
		if len(cat.Phrases) == 0 {
			fallback = cat.Name
			continue
		}
		for _, phrase := range cat.Phrases {
			if strings.Contains(folded, Fold(phrase)) {
				return cat.Name
			}
		}
	}
	return fallback
}

// Enrich runs the full filter chain over a raw batch and returns the
// surviving postings as enriched store records. Order of the gates matters
// and mirrors their cost: recency first, then location, then keywords.
func (e *Engine) Enrich(raw []models.RawJob, targetLocation string, now time.Time) []models.Job {
	var out []models.Job

	for _, r := range raw {
		if !e.IsRecent(r.PublishedDate, now) {
			continue
		}
		if !e.IsValidLocation(r.Location, targetLocation) {
			continue
		}

		searchText := r.Title + " " + r.Snippet
		if !e.MatchesKeywords(searchText) {
			continue
		}

		job := models.Job{
			Title:            CleanText(r.Title),
			Company:          CleanText(r.Company),
			RoleCategory:     e.CategorizeRole(searchText),
			Source:           r.Source,
			Location:         CleanText(r.Location),
			URL:              NormalizeURL(r.URL),
			Snippet:          ExtractSnippet(r.Snippet, snippetMaxLength),
			DetectedKeywords: joinSorted(e.DetectKeywords(searchText)),
			ScrapedAt:        now,
		}
		if published, ok := dateparse.ParseAt(r.PublishedDate, now); ok {
			job.PublishedDate.Time = published
			job.PublishedDate.Valid = true
		}

		out = append(out, job)
	}

	return out
}

func joinSorted(set mapset.Set[string]) string {
	keywords := set.ToSlice()
	sort.Strings(keywords)
	return strings.Join(keywords, ", ")
}
