package sheets

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// normalizeHeader lowers a header cell to its alphanumeric core so that
// "Monto ARS", "monto_ars" and "Monto  ARS " all collide.
func normalizeHeader(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectHeaderIndexes resolves logical column names against a header row
// using per-column accepted spellings. Every requested logical column must
// resolve, otherwise the sheet layout is unusable and the caller must not
// guess.
func DetectHeaderIndexes(headers []string, preferred map[string][]string) (map[string]int, error) {
	normalized := make(map[string]int, len(headers))
	for idx, h := range headers {
		key := normalizeHeader(h)
		if _, taken := normalized[key]; !taken {
			normalized[key] = idx
		}
	}

	indexes := make(map[string]int, len(preferred))
	var missing []string
	for logical, aliases := range preferred {
		found := false
		for _, alias := range aliases {
			if idx, ok := normalized[normalizeHeader(alias)]; ok {
				indexes[logical] = idx
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, logical)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing headers: %s", strings.Join(missing, ", "))
	}
	return indexes, nil
}
