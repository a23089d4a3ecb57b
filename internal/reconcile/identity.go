package reconcile

import "sort"

// IdentitySet is the set of primary-key values present on one side at one point in time.
type IdentitySet map[int64]struct{}

// NewIdentitySet builds a set from ids.
func NewIdentitySet(ids ...int64) IdentitySet {
	s := make(IdentitySet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IdentitySet) Add(id int64) { s[id] = struct{}{} }

// Contains reports membership.
func (s IdentitySet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids.
func (s IdentitySet) Len() int { return len(s) }

// Difference returns the ids in s that are not in other, ascending.
func (s IdentitySet) Difference(other IdentitySet) []int64 {
	var missing []int64
	for id := range s {
		if !other.Contains(id) {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// Row is one record in EntitySyncSpec field order.
type Row []any
