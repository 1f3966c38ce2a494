// Package state persists which deal IDs have already been reported.
// Business logic depends on the Store interface, never on concrete
// implementations, so runs can be tested without a disk or database.
package state

import (
	"context"

	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// Store loads and saves the notification state.
type Store interface {
	// Load returns the last saved state. When nothing was ever saved it
	// returns an empty state and no error.
	Load(ctx context.Context) (*domain.NotificationState, error)
	// Save replaces the persisted state. Readers observe either the old or
	// the new state, never a mix.
	Save(ctx context.Context, st *domain.NotificationState) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
