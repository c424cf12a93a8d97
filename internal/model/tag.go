package model

import "strings"

// NormalizeTags canonicalizes an incoming tag list: trim, lowercase, drop
// empties, de-duplicate keeping the first occurrence. The stored tag set has
// no ordering significance, but keeping first-seen order makes the function
// deterministic and easy to assert on.
//
// Applying NormalizeTags twice yields the same result, which together with
// the repository's delete-then-insert makes tag synchronization idempotent.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	return normalized
}
