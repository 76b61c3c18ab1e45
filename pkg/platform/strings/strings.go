// Package strings provides the case-insensitive matching and list cleanup
// helpers shared by the compliance rules and configuration loading.
package strings

import (
	"strings"
)

// ContainsFold reports whether sub appears in s after both are upper-cased,
// so "ſyria" matches "SYRIA". An empty sub never matches.
func ContainsFold(s, sub string) bool {
	if sub == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(sub))
}

// AnyContainsFold reports whether any of values contains sub, ignoring case.
func AnyContainsFold(values []string, sub string) bool {
	for _, v := range values {
		if ContainsFold(v, sub) {
			return true
		}
	}
	return false
}

// ContainsAnyFold reports whether s contains any of subs, ignoring case.
func ContainsAnyFold(s string, subs []string) bool {
	for _, sub := range subs {
		if ContainsFold(s, sub) {
			return true
		}
	}
	return false
}

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  LAX ", "Miami", "LAX", "", "  "})
//	// Returns: []string{"LAX", "Miami"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
