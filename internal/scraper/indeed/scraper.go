// Package indeed drives a real browser against Indeed. The board is heavily
// protected, so the adapter leans on the stealth helpers and bails out
// gracefully whenever Cloudflare or a captcha gets in the way.
package indeed

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/playwright-community/playwright-go"

	"go-jobradar/internal/browser"
	"go-jobradar/internal/config"
	"go-jobradar/internal/models"
	"go-jobradar/internal/progress"
	"go-jobradar/internal/scraper"
)

const maxCardsPerQuery = 20

// dateKeywords pick the metadata span that actually carries the posting age;
// Indeed moves it around between layouts.
var dateKeywords = []string{
	"il y a", "publié", "posted", "day", "jour", "heure", "hier",
	"today", "aujourd", "active", "nouvelle", "maintenant", "instant", "semaine", "ago",
}

type Scraper struct {
	cfg     *config.Config
	manager *browser.Manager
}

func New(cfg *config.Config, manager *browser.Manager) *Scraper {
	return &Scraper{cfg: cfg, manager: manager}
}

func (s *Scraper) Name() string {
	return "Indeed"
}

// baseURL picks the country portal.
func baseURL(country string) string {
	switch strings.ToLower(country) {
	case "france", "":
		return "https://fr.indeed.com"
	case "belgique":
		return "https://be.indeed.com"
	case "suisse":
		return "https://ch.indeed.com"
	default:
		return "https://www.indeed.com"
	}
}

func (s *Scraper) Scrape(ctx context.Context, req scraper.Request, sink progress.Sink) ([]models.RawJob, error) {
	queries := req.Queries
	if len(queries) == 0 {
		queries = s.cfg.DefaultQueries
	}

	location := req.Location
	if location == "" {
		location = s.cfg.Location
	}

	page, err := s.manager.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open browser page: %w", err)
	}
	defer page.Close()

	debugger := browser.NewScreenshotDebugger()

	var allJobs []models.RawJob
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return allJobs, err
		}

		sink.Emit(fmt.Sprintf("[Indeed] searching %q in %q", query, location))

		jobs, blocked := s.scrapeQuery(page, req.Country, query, location, sink, debugger)
		allJobs = append(allJobs, jobs...)
		if blocked {
			//no point hammering the wall with the remaining queries
			break
		}

		browser.RandomDelay(int(s.cfg.RequestDelayMin.Milliseconds()), int(s.cfg.RequestDelayMax.Milliseconds()))
	}

	sink.Emit(fmt.Sprintf("[Indeed] total: %d postings", len(allJobs)))
	return allJobs, nil
}

func (s *Scraper) scrapeQuery(page playwright.Page, country, query, location string, sink progress.Sink, debugger *browser.ScreenshotDebugger) (jobs []models.RawJob, blocked bool) {
	searchURL := fmt.Sprintf("%s/jobs?q=%s&l=%s&fromage=%d",
		baseURL(country), url.QueryEscape(query), url.QueryEscape(location), s.cfg.MaxAgeDays)

	if _, err := page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(40000),
	}); err != nil {
		sink.Emit(fmt.Sprintf("[Indeed] navigation failed: %v", err))
		return nil, false
	}

	//let dynamic content settle, look human while doing it
	browser.RandomDelay(2000, 4000)
	browser.MouseJiggle(page)
	browser.SmoothScroll(page)

	if _, err := page.WaitForSelector(".job_seen_beacon, .jobsearch-ResultsList, #mosaic-provider-jobcards",
		playwright.PageWaitForSelectorOptions{Timeout: playwright.Float(15000)}); err != nil {
		content, _ := page.Content()
		if strings.Contains(content, "hCaptcha") || strings.Contains(content, "Cloudflare") ||
			strings.Contains(content, "Verify you are human") {
			sink.Emit("[Indeed] blocked by captcha/Cloudflare")
			debugger.CaptureAndLog(page, "indeed-blocked", "🚨 Indeed: anti-bot wall")
			return nil, true
		}
		sink.Emit("[Indeed] no results (timeout)")
		return nil, false
	}

	cards, err := page.Locator(".job_seen_beacon, .jobCard").All()
	if err != nil {
		sink.Emit(fmt.Sprintf("[Indeed] failed to find job cards: %v", err))
		return nil, false
	}
	sink.Emit(fmt.Sprintf("[Indeed]   %d cards on page", len(cards)))

	for i, card := range cards {
		if i >= maxCardsPerQuery {
			break
		}
		if job, ok := s.extractCard(card); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, false
}

// extractCard reads one job card; any card that can't be read is dropped
// silently.
func (s *Scraper) extractCard(card playwright.Locator) (models.RawJob, bool) {
	title := textOf(card, "h2.jobTitle, .jobTitle span")
	if title == "" {
		return models.RawJob{}, false
	}

	jobURL := ""
	if href, err := card.Locator("h2.jobTitle a, a.jcs-JobTitle").First().
		GetAttribute("href", playwright.LocatorGetAttributeOptions{Timeout: playwright.Float(500)}); err == nil && href != "" {
		if strings.HasPrefix(href, "/") {
			jobURL = "https://fr.indeed.com" + href
		} else {
			jobURL = href
		}
	}

	return models.RawJob{
		Title:         title,
		Company:       textOf(card, `[data-testid="company-name"], .companyName`),
		Location:      textOf(card, `[data-testid="text-location"], .companyLocation`),
		PublishedDate: s.findDateText(card),
		URL:           jobURL,
		Snippet:       textOf(card, ".job-snippet, [data-testid='belowJobSnippet']"),
		Source:        s.Name(),
	}, true
}

// findDateText hunts through the metadata spans for something that looks
// like a posting age.
func (s *Scraper) findDateText(card playwright.Locator) string {
	selectors := []string{
		"span.date",
		`span[class*="date"]`,
		`[data-testid="myJobsStateDate"]`,
		".jobsearch-JobMetadataFooter span",
		`span[class*="Metadata"]`,
	}

	for _, selector := range selectors {
		text := textOf(card, selector)
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		for _, k := range dateKeywords {
			if strings.Contains(lower, k) {
				return text
			}
		}
	}
	return ""
}

func textOf(card playwright.Locator, selector string) string {
	text, err := card.Locator(selector).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(500),
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
