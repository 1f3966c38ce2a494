// Package pipedrive provides a Pipedrive deals client abstracted behind an
// interface for testability.
package pipedrive

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// ErrPageLimit is returned when a filter has more pages than the client is
// allowed to read in one fetch. Returning a partial deal list would hide deals
// from the diff, so the fetch fails instead.
var ErrPageLimit = errors.New("page limit reached")

// DealSource returns the deals currently matched by a CRM filter.
type DealSource interface {
	FetchDeals(ctx context.Context, filterID string) ([]domain.Deal, error)
}
