// Package wttj pulls postings from Welcome to the Jungle through the public
// Algolia search index the site itself queries, which is far more stable
// than its rendered HTML.
package wttj

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go-jobradar/internal/config"
	"go-jobradar/internal/models"
	"go-jobradar/internal/progress"
	"go-jobradar/internal/scraper"
)

const (
	algoliaAppID  = "CSEKHVMS53"
	algoliaAPIKey = "4bd8f6215d0cc52b26430765769e65a0"
	indexName     = "wttj_jobs_production_fr_published_at_desc"

	hitsPerPage = 50
)

type Scraper struct {
	cfg    *config.Config
	client *scraper.Client

	//overridable in tests
	apiURL string
}

func New(cfg *config.Config, client *scraper.Client) *Scraper {
	return &Scraper{
		cfg:    cfg,
		client: client,
		apiURL: fmt.Sprintf("https://%s-dsn.algolia.net/1/indexes/%s/query", "csekhvms53", indexName),
	}
}

func (s *Scraper) Name() string {
	return "WTTJ"
}

type algoliaResponse struct {
	Hits []algoliaHit `json:"hits"`
}

type algoliaHit struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	PublishedAt  string `json:"published_at"`
	Organization struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"organization"`
	Offices []struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"offices"`
	Profile string `json:"profile"`
}

func (s *Scraper) Scrape(ctx context.Context, req scraper.Request, sink progress.Sink) ([]models.RawJob, error) {
	queries := req.Queries
	if len(queries) == 0 {
		queries = s.cfg.DefaultQueries
	}

	//server-side recency filter, same window the engine applies
	cutoff := time.Now().Add(-time.Duration(s.cfg.MaxAgeDays) * 24 * time.Hour).Unix()

	headers := map[string]string{
		"X-Algolia-Application-Id": algoliaAppID,
		"X-Algolia-API-Key":        algoliaAPIKey,
		"Content-Type":             "application/json",
		"Referer":                  "https://www.welcometothejungle.com/",
	}

	var allJobs []models.RawJob
	for _, query := range queries {
		sink.Emit(fmt.Sprintf("[WTTJ] API search: %s", query))

		params := url.Values{}
		params.Set("query", query)
		params.Set("hitsPerPage", fmt.Sprint(hitsPerPage))
		params.Set("filters", fmt.Sprintf("published_at_timestamp > %d", cutoff))

		payload, err := json.Marshal(map[string]string{"params": params.Encode()})
		if err != nil {
			return nil, fmt.Errorf("failed to encode algolia payload: %w", err)
		}

		var body []byte
		err = scraper.Retry(ctx, s.cfg.MaxRetries, s.cfg.RetryDelay, func() error {
			var reqErr error
			body, reqErr = s.client.Post(ctx, s.apiURL, payload, headers)
			return reqErr
		})
		if err != nil {
			//one failing query shouldn't sink the source
			sink.Emit(fmt.Sprintf("[WTTJ] query %q failed: %v", query, err))
			continue
		}

		var resp algoliaResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			sink.Emit(fmt.Sprintf("[WTTJ] bad API response for %q: %v", query, err))
			continue
		}

		sink.Emit(fmt.Sprintf("[WTTJ]   %d hits", len(resp.Hits)))
		for _, hit := range resp.Hits {
			if job, ok := s.convertHit(hit); ok {
				allJobs = append(allJobs, job)
			}
		}

		if err := s.client.RandomDelay(ctx); err != nil {
			return allJobs, err
		}
	}

	sink.Emit(fmt.Sprintf("[WTTJ] total: %d postings", len(allJobs)))
	return allJobs, nil
}

// convertHit maps one Algolia result onto the raw record shape. Records
// without a title are dropped; every other field is best-effort.
func (s *Scraper) convertHit(hit algoliaHit) (models.RawJob, bool) {
	if hit.Name == "" {
		return models.RawJob{}, false
	}

	location := ""
	if len(hit.Offices) > 0 {
		location = hit.Offices[0].City
		if location == "" {
			location = hit.Offices[0].Country
		}
	}

	jobURL := ""
	if hit.Organization.Slug != "" && hit.Slug != "" {
		jobURL = fmt.Sprintf("https://www.welcometothejungle.com/fr/companies/%s/jobs/%s",
			hit.Organization.Slug, hit.Slug)
	}

	return models.RawJob{
		Title:         hit.Name,
		Company:       hit.Organization.Name,
		Location:      location,
		PublishedDate: hit.PublishedAt,
		URL:           jobURL,
		Snippet:       hit.Profile,
		Source:        s.Name(),
	}, true
}
