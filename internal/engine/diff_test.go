package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

func deals(ids ...domain.DealID) []domain.Deal {
	out := make([]domain.Deal, len(ids))
	for i, id := range ids {
		out[i] = domain.Deal{ID: id, Title: "deal " + id.String()}
	}
	return out
}

func TestNewIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		deals []domain.Deal
		sent  domain.IDSet
		want  []domain.DealID
	}{
		{name: "one new", deals: deals("1", "2", "3"), sent: domain.NewIDSet("1", "2"), want: []domain.DealID{"3"}},
		{name: "empty state", deals: deals("6", "5"), sent: domain.NewIDSet(), want: []domain.DealID{"5", "6"}},
		{name: "nil state", deals: deals("5"), sent: nil, want: []domain.DealID{"5"}},
		{name: "identical", deals: deals("1", "2"), sent: domain.NewIDSet("1", "2"), want: nil},
		{name: "empty source", deals: nil, sent: domain.NewIDSet("1"), want: nil},
		{name: "both empty", deals: nil, sent: domain.NewIDSet(), want: nil},
		{name: "duplicates collapse", deals: deals("7", "7", "8"), sent: domain.NewIDSet(), want: []domain.DealID{"7", "8"}},
		{name: "source shrank", deals: deals("3", "4"), sent: domain.NewIDSet("1", "2", "3"), want: []domain.DealID{"4"}},
		{name: "numeric order", deals: deals("100", "20", "3"), sent: nil, want: []domain.DealID{"3", "20", "100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewIDs(tt.deals, tt.sent))
		})
	}
}
