// Package hellowork scrapes HelloWork search result pages. The pages render
// server-side, so plain HTTP plus a DOM parse is enough; the d=3 query
// parameter pre-filters to the last three days.
package hellowork

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-jobradar/internal/config"
	"go-jobradar/internal/models"
	"go-jobradar/internal/progress"
	"go-jobradar/internal/scraper"
)

type Scraper struct {
	cfg    *config.Config
	client *scraper.Client

	//overridable in tests
	baseURL string
}

func New(cfg *config.Config, client *scraper.Client) *Scraper {
	return &Scraper{
		cfg:     cfg,
		client:  client,
		baseURL: "https://www.hellowork.com",
	}
}

func (s *Scraper) Name() string {
	return "HelloWork"
}

func (s *Scraper) Scrape(ctx context.Context, req scraper.Request, sink progress.Sink) ([]models.RawJob, error) {
	queries := req.Queries
	if len(queries) == 0 {
		queries = s.cfg.DefaultQueries
	}

	searchLocation := req.Location
	if searchLocation == "" || strings.EqualFold(searchLocation, s.cfg.Country) {
		searchLocation = req.Country
	}
	if searchLocation == "" {
		searchLocation = s.cfg.Country
	}

	var allJobs []models.RawJob
	for _, query := range queries {
		sink.Emit(fmt.Sprintf("[HelloWork] searching %q in %q", query, searchLocation))

		searchURL := fmt.Sprintf("%s/fr-fr/emploi/recherche.html?k=%s&l=%s&d=%d",
			s.baseURL, url.QueryEscape(query), url.QueryEscape(searchLocation), s.cfg.MaxAgeDays)

		var body []byte
		err := scraper.Retry(ctx, s.cfg.MaxRetries, s.cfg.RetryDelay, func() error {
			var reqErr error
			body, reqErr = s.client.Get(ctx, searchURL, nil)
			return reqErr
		})
		if err != nil {
			sink.Emit(fmt.Sprintf("[HelloWork] query %q failed: %v", query, err))
			continue
		}

		jobs := s.parsePage(body)
		sink.Emit(fmt.Sprintf("[HelloWork]   %d cards", len(jobs)))
		allJobs = append(allJobs, jobs...)

		if err := s.client.RandomDelay(ctx); err != nil {
			return allJobs, err
		}
	}

	sink.Emit(fmt.Sprintf("[HelloWork] total: %d postings", len(allJobs)))
	return allJobs, nil
}

// parsePage extracts job cards from one search result page. A card that
// can't be read is skipped, never fatal.
func (s *Scraper) parsePage(body []byte) []models.RawJob {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var jobs []models.RawJob
	doc.Find("li[data-id-storage-item-id]").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find("h3 p.tw-typo-l").First().Text())
		company := strings.TrimSpace(card.Find("h3 p.tw-typo-s").First().Text())

		jobURL := ""
		if href, ok := card.Find("a[data-cy='offerTitle']").First().Attr("href"); ok && href != "" {
			if strings.HasPrefix(href, "/") {
				jobURL = s.baseURL + href
			} else {
				jobURL = href
			}
		}

		location := strings.TrimSpace(card.Find("div[data-cy='localisationCard']").First().Text())
		if location == "" {
			location = s.cfg.Country
		}

		dateText := strings.TrimSpace(card.Find("div.tw-typo-s.tw-text-grey-500").First().Text())

		if title == "" || jobURL == "" {
			return
		}

		jobs = append(jobs, models.RawJob{
			Title:         title,
			Company:       company,
			Location:      location,
			PublishedDate: dateText,
			URL:           jobURL,
			Source:        s.Name(),
		})
	})

	return jobs
}
