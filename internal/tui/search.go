package tui

import (
	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/inplace/internal/types"
)

// fieldSource exposes field names and displays to fuzzy matching
type fieldSource []types.FieldInfo

func (s fieldSource) String(i int) string {
	return s[i].Field + " " + s[i].Display
}

func (s fieldSource) Len() int {
	return len(s)
}

// filterFields returns the indices of fields matching query, best match first.
// An empty query keeps document order.
func filterFields(fields []types.FieldInfo, query string) []int {
	if query == "" {
		out := make([]int, len(fields))
		for i := range fields {
			out[i] = i
		}
		return out
	}

	matches := fuzzy.FindFrom(query, fieldSource(fields))
	out := make([]int, len(matches))
	for i, match := range matches {
		out[i] = match.Index
	}
	return out
}
