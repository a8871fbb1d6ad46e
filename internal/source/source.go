// Package source defines the adapter contract for external listing
// sources. Each adapter fetches raw listings for a query from one
// upstream marketplace; the scraping or API logic behind it is the
// adapter's own concern.
package source

import (
	"context"
	"fmt"

	domain "github.com/collectwise/advisor/pkg/types"
)

// Adapter fetches raw listings for a query from one upstream provider.
type Adapter interface {
	// Name returns the stable source tag used to key results and stats.
	Name() string
	// Search returns a bounded list of raw listings, or fails with a
	// source-specific error on network/parse failure.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RawListing, error)
}

// Error wraps a failure from one adapter so callers can attribute it to
// a source without parsing messages.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err as a source-attributed error.
func NewError(sourceName string, err error) *Error {
	return &Error{Source: sourceName, Err: err}
}
