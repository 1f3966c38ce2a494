// Package domain defines the core business types for the deal notifier.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DealID identifies a CRM deal. IDs are opaque: they are compared as values
// and never interpreted numerically, except for ordering output.
type DealID string

// String implements fmt.Stringer.
func (id DealID) String() string {
	return string(id)
}

// numeric reports whether the ID is a canonical base-10 integer and returns
// its value. "007" and "+7" are not canonical.
func (id DealID) numeric() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return n, true
}

// MarshalJSON encodes canonical integer IDs as JSON numbers and everything
// else as JSON strings, so state files written with integer IDs stay integers.
func (id DealID) MarshalJSON() ([]byte, error) {
	if _, ok := id.numeric(); ok {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *DealID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("deal id is null")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding deal id: %w", err)
		}
		if s == "" {
			return fmt.Errorf("deal id is empty")
		}
		*id = DealID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding deal id: %w", err)
	}
	*id = DealID(n.String())
	return nil
}

// CompareIDs orders deal IDs for display. Canonical integers sort numerically
// and before any non-numeric ID; non-numeric IDs sort lexicographically.
func CompareIDs(a, b DealID) int {
	na, aok := a.numeric()
	nb, bok := b.numeric()

	switch {
	case aok && bok:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	case aok:
		return -1
	case bok:
		return 1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Deal is a CRM deal as returned by the deal source. Value is only used
// server-side by the filter; it is carried for logging.
type Deal struct {
	ID       DealID  `json:"id"`
	Title    string  `json:"title"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

// NotificationState is the durable record of what has already been reported.
type NotificationState struct {
	// SentIDs holds every deal ID ever delivered. It only grows.
	SentIDs IDSet
	// LastBatchCount is the size of the most recent delivered batch. It is
	// only used to phrase the next message.
	LastBatchCount int
}

// NewNotificationState returns an empty state, as seen on a first run.
func NewNotificationState() *NotificationState {
	return &NotificationState{SentIDs: NewIDSet()}
}

// Clone returns a deep copy of s.
func (s *NotificationState) Clone() *NotificationState {
	return &NotificationState{
		SentIDs:        s.SentIDs.Union(nil),
		LastBatchCount: s.LastBatchCount,
	}
}

// stateDocument is the persisted JSON layout. The field names match the
// files written by earlier versions of the notifier.
type stateDocument struct {
	IDs            []DealID `json:"ids"`
	LastBatchCount int      `json:"last_message_count"`
}

// MarshalJSON writes the state with IDs in display order.
func (s NotificationState) MarshalJSON() ([]byte, error) {
	doc := stateDocument{
		IDs:            s.SentIDs.Sorted(),
		LastBatchCount: s.LastBatchCount,
	}
	if doc.IDs == nil {
		doc.IDs = []DealID{}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads the persisted layout. A missing count decodes as 0.
func (s *NotificationState) UnmarshalJSON(data []byte) error {
	var doc stateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.LastBatchCount < 0 {
		return fmt.Errorf("last_message_count is negative (%d)", doc.LastBatchCount)
	}
	s.SentIDs = NewIDSet(doc.IDs...)
	s.LastBatchCount = doc.LastBatchCount
	return nil
}
