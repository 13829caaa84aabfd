package wttj

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobradar/internal/config"
	"go-jobradar/internal/progress"
	"go-jobradar/internal/scraper"
)

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.DefaultQueries = []string{"data engineer"}
	cfg.MaxRetries = 1
	cfg.RequestDelayMin = time.Millisecond
	cfg.RequestDelayMax = 2 * time.Millisecond
	return cfg
}

func TestScrape_ParsesHits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, algoliaAppID, r.Header.Get("X-Algolia-Application-Id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": [
				{
					"name": "Data Engineer",
					"slug": "data-engineer",
					"published_at": "2026-01-26T10:00:00Z",
					"organization": {"name": "Corp", "slug": "corp"},
					"offices": [{"city": "Paris", "country": "France"}],
					"profile": "Équipe data en pleine croissance"
				},
				{
					"name": "",
					"slug": "untitled"
				}
			]
		}`))
	}))
	defer server.Close()

	cfg := fastConfig()
	s := New(cfg, scraper.NewClient(cfg))
	s.apiURL = server.URL

	jobs, err := s.Scrape(context.Background(), scraper.Request{}, progress.Discard{})
	require.NoError(t, err)
	require.Len(t, jobs, 1) // untitled hit dropped

	job := jobs[0]
	assert.Equal(t, "Data Engineer", job.Title)
	assert.Equal(t, "Corp", job.Company)
	assert.Equal(t, "Paris", job.Location)
	assert.Equal(t, "https://www.welcometothejungle.com/fr/companies/corp/jobs/data-engineer", job.URL)
	assert.Equal(t, "2026-01-26T10:00:00Z", job.PublishedDate)
	assert.Equal(t, "WTTJ", job.Source)
}

func TestScrape_APIErrorIsNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := fastConfig()
	s := New(cfg, scraper.NewClient(cfg))
	s.apiURL = server.URL

	sink := &progress.BufferSink{}
	jobs, err := s.Scrape(context.Background(), scraper.Request{}, sink)

	//expected condition: empty result, no error
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.NotEmpty(t, sink.Lines())
}

func TestScrape_UsesOperatorQueries(t *testing.T) {
	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Path)
		w.Write([]byte(`{"hits": []}`))
	}))
	defer server.Close()

	cfg := fastConfig()
	s := New(cfg, scraper.NewClient(cfg))
	s.apiURL = server.URL

	_, err := s.Scrape(context.Background(), scraper.Request{Queries: []string{"a", "b"}}, progress.Discard{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
