package filter

// Wildcard is the filter entry that matches every candidate.
const Wildcard = "*"

// Equal reports whether a candidate satisfies a single filter entry.
type Equal func(candidate, entry string) bool

// ExactOrWildcard is the entry comparison used for MIME filters. Entries are
// compared exactly as configured: no case folding, no trimming.
func ExactOrWildcard(candidate, entry string) bool {
	return entry == Wildcard || entry == candidate
}

// Matches reports whether candidate satisfies at least one entry of list.
// An empty list never matches. An empty candidate is still a value: it
// matches the wildcard and an empty entry.
func Matches(candidate string, list []string, eq Equal) bool {
	if len(list) == 0 {
		return false
	}
	if eq == nil {
		eq = ExactOrWildcard
	}
	for _, entry := range list {
		if eq(candidate, entry) {
			return true
		}
	}
	return false
}
