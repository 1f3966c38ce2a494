package engine

import (
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// NewIDs returns the IDs of deals not in sent, deduplicated and in display
// order. It returns nil when there is nothing new.
func NewIDs(deals []domain.Deal, sent domain.IDSet) []domain.DealID {
	current := make(domain.IDSet, len(deals))
	for i := range deals {
		current.Add(deals[i].ID)
	}
	return current.Difference(sent).Sorted()
}
