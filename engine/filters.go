package engine

// ============================================================================
// DATASET MATCHER — Partition-Token Filtering
// ============================================================================
// Single pass over the records. Every stored tag is normalized with the
// same ordering as the requested token before a structural comparison, so
// fixtures written with unsorted groups still match.
// ============================================================================

// Match returns the records whose stored partition is equivalent to token,
// in input order. No match yields an empty, non-nil slice.
func Match(records []Record, token Token) []Record {
	matched := make([]Record, 0)
	for _, r := range records {
		if Normalize(r.Partition).Equal(token) {
			matched = append(matched, r)
		}
	}
	return matched
}

// MatchCount reports how many records carry each distinct normalized tag.
// Useful to see which combinations a fixture actually covers.
func MatchCount(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[Normalize(r.Partition).String()]++
	}
	return counts
}
