package domain

import "slices"

// IDSet is an unordered set of deal IDs. The zero value is not usable; use
// NewIDSet.
type IDSet map[DealID]struct{}

// NewIDSet builds a set from ids. Duplicates collapse.
func NewIDSet(ids ...DealID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id DealID) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id DealID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs.
func (s IDSet) Len() int {
	return len(s)
}

// Union returns a new set holding the IDs of s and other.
func (s IDSet) Union(other IDSet) IDSet {
	out := make(IDSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Difference returns a new set holding the IDs of s that are not in other.
func (s IDSet) Difference(other IDSet) IDSet {
	out := make(IDSet)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// IsSupersetOf reports whether every ID of other is in s.
func (s IDSet) IsSupersetOf(other IDSet) bool {
	for id := range other {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the IDs ordered by CompareIDs. An empty set yields nil.
func (s IDSet) Sorted() []DealID {
	if len(s) == 0 {
		return nil
	}
	out := make([]DealID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.SortFunc(out, CompareIDs)
	return out
}
