// Define an interface for all source adapters
// Ensure consistency

package scraper

import (
	"context"

	"go-jobradar/internal/models"
	"go-jobradar/internal/progress"
)

// Request carries the operator's search criteria into every adapter.
type Request struct {
	Country  string
	Location string
	Queries  []string
}

// Source is the contract every job board adapter implements. Scrape returns
// an empty slice for expected conditions (no results, blocked page) and an
// error only for unexpected failures; the orchestrator contains those.
type Source interface {
	Scrape(ctx context.Context, req Request, sink progress.Sink) ([]models.RawJob, error)

	//Name is the board name (Indeed, WTTJ, HelloWork, ...)
	Name() string
}
