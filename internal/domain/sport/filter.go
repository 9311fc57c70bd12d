package sport

import "strings"

// Filter returns the sports whose name contains query, case-insensitively.
// An empty query returns the input unchanged.
func Filter(items []Sport, query string) []Sport {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	out := make([]Sport, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), query) {
			out = append(out, item)
		}
	}
	return out
}
