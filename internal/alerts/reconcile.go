package alerts

import "sort"

// CanonicalSet is the deduplicated, freshness-ordered view produced by a
// reconciliation pass. Records is ordered by LastSeenAt descending; Index maps
// identity key to position in Records. A set is always rebuilt from scratch,
// never mutated in place.
type CanonicalSet struct {
	Records []Record
	Index   map[string]int
}

// Get returns the winning record for an identity key.
func (s CanonicalSet) Get(key string) (Record, bool) {
	i, ok := s.Index[key]
	if !ok {
		return Record{}, false
	}
	return s.Records[i], true
}

// Len returns the number of distinct identities in the set.
func (s CanonicalSet) Len() int {
	return len(s.Records)
}

// entry tracks provenance during a reconciliation pass. Push-sourced entries
// win ties against snapshot-sourced ones.
type entry struct {
	rec      Record
	fromPush bool
}

// Reconcile merges the push-side alert list with the latest snapshot into one
// canonical set. Push records are inserted first, keeping the freshest per
// identity. A snapshot record is admitted only when no entry exists for its
// key, or the existing entry is itself snapshot-sourced and strictly older.
//
// The function is pure and idempotent: identical inputs yield identical
// output, including order. Ordering is LastSeenAt descending with identity
// key as the tie-break, so the highlight tracker can diff successive passes.
func Reconcile(pushList, snapshotList []Record) CanonicalSet {
	merged := make(map[string]entry, len(pushList)+len(snapshotList))

	for _, rec := range pushList {
		key := rec.IdentityKey()
		if existing, ok := merged[key]; ok && existing.rec.LastSeenAt >= rec.LastSeenAt {
			continue
		}
		merged[key] = entry{rec: rec, fromPush: true}
	}

	for _, rec := range snapshotList {
		key := rec.IdentityKey()
		existing, ok := merged[key]
		if !ok {
			merged[key] = entry{rec: rec}
			continue
		}
		if !existing.fromPush && rec.LastSeenAt > existing.rec.LastSeenAt {
			merged[key] = entry{rec: rec}
		}
	}

	set := CanonicalSet{
		Records: make([]Record, 0, len(merged)),
		Index:   make(map[string]int, len(merged)),
	}
	for _, e := range merged {
		set.Records = append(set.Records, e.rec)
	}
	sort.Slice(set.Records, func(i, j int) bool {
		a, b := set.Records[i], set.Records[j]
		if a.LastSeenAt != b.LastSeenAt {
			return a.LastSeenAt > b.LastSeenAt
		}
		return a.IdentityKey() < b.IdentityKey()
	})
	for i, rec := range set.Records {
		set.Index[rec.IdentityKey()] = i
	}
	return set
}
