package hellowork

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

const fixtureHTML = `<!DOCTYPE html>
<html><body><ul>
	<li data-id-storage-item-id="1">
		<h3>
			<p class="tw-typo-l">Data Analyst H/F</p>
			<p class="tw-typo-s">Corp SA</p>
		</h3>
		<a data-cy="offerTitle" href="/fr-fr/emplois/1234.html">voir</a>
		<div data-cy="localisationCard">Paris - 75</div>
		<div class="tw-typo-s tw-text-grey-500">il y a 2 jours</div>
	</li>
	<li data-id-storage-item-id="2">
		<h3>
			<p class="tw-typo-l">Data Engineer</p>
			<p class="tw-typo-s">Autre SARL</p>
		</h3>
		<a data-cy="offerTitle" href="https://www.hellowork.com/fr-fr/emplois/5678.html">voir</a>
	</li>
	<li data-id-storage-item-id="3">
		<h3><p class="tw-typo-l">Sans lien</p></h3>
	</li>
</ul></body></html>`

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.DefaultQueries = []string{"data analyst"}
	cfg.MaxRetries = 1
	cfg.RequestDelayMin = time.Millisecond
	cfg.RequestDelayMax = 2 * time.Millisecond
	return cfg
}

func TestScrape_ParsesCards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "data analyst", r.URL.Query().Get("k"))
		assert.Equal(t, "3", r.URL.Query().Get("d"))
		w.Write([]byte(fixtureHTML))
	}))
	defer server.Close()

	cfg := fastConfig()
	s := New(cfg, scraper.NewClient(cfg))
	s.baseURL = server.URL

	jobs, err := s.Scrape(context.Background(), scraper.Request{Country: "France", Location: "France"}, progress.Discard{})
	require.NoError(t, err)
	require.Len(t, jobs, 2) // card without a link is dropped

	assert.Equal(t, "Data Analyst H/F", jobs[0].Title)
	assert.Equal(t, "Corp SA", jobs[0].Company)
	assert.Equal(t, "Paris - 75", jobs[0].Location)
	assert.Equal(t, "il y a 2 jours", jobs[0].PublishedDate)
	assert.Equal(t, server.URL+"/fr-fr/emplois/1234.html", jobs[0].URL)
	assert.Equal(t, "HelloWork", jobs[0].Source)

	//absolute href kept as-is, missing location falls back to the country
	assert.Equal(t, "https://www.hellowork.com/fr-fr/emplois/5678.html", jobs[1].URL)
	assert.Equal(t, "France", jobs[1].Location)
}

func TestScrape_HTTPErrorIsNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := fastConfig()
	s := New(cfg, scraper.NewClient(cfg))
	s.baseURL = server.URL

	jobs, err := s.Scrape(context.Background(), scraper.Request{}, progress.Discard{})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestParsePage_Garbage(t *testing.T) {
	cfg := fastConfig()
	s := New(cfg, scraper.NewClient(cfg))

	assert.Empty(t, s.parsePage([]byte("not html at all")))
	assert.Empty(t, s.parsePage(nil))
}
