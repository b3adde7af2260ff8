package media

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Filter keeps the records whose display name fuzzily matches query, preserving order.
func Filter(records []Record, query string) []Record {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}

	return lo.Filter(records, func(r Record, _ int) bool {
		return fuzzy.MatchNormalizedFold(query, r.DisplayName)
	})
}
