package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"go-jobradar/internal/config"
)

// Client is the shared HTTP transport for the non-browser adapters. It
// rotates user agents, rate-limits outgoing requests, and adds a randomized
// delay between calls so individual boards don't see machine-gun traffic.
type Client struct {
	http     *http.Client
	limiter  *rate.Limiter
	delayMin time.Duration
	delayMax time.Duration
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(cfg.RequestDelayMin), 1),

		delayMin: cfg.RequestDelayMin,
		delayMax: cfg.RequestDelayMax,
	}
}

// RandomDelay blocks for a jittered interval between delayMin and delayMax.
// Call it between page fetches within one source.
func (c *Client) RandomDelay(ctx context.Context) error {
	span := c.delayMax - c.delayMin
	d := c.delayMin
	if span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	return sleepCtx(ctx, d)
}

// Get fetches url and returns the body. Non-2xx statuses are errors so the
// retry helper can see them.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil, headers)
}

// Post sends body (typically JSON) and returns the response body.
func (c *Client) Post(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, body, headers)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	req.Header.Set("User-Agent", config.UserAgents[rand.Intn(len(config.UserAgents))])
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return data, nil
}
