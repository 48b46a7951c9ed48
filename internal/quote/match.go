package quote

import "strings"

// Quality grades a reference-data match.
type Quality string

const (
	MatchExact   Quality = "exact"
	MatchPartial Quality = "partial"
	MatchNone    Quality = "none"
)

// Item is a named reference record (client, company or ramo).
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FindBestMatch looks term up in items. Tiers, in order: exact
// (case-insensitive, trimmed), containment in either direction, then
// keyword overlap on search words longer than two characters. The first
// item satisfying the best tier wins.
func FindBestMatch(term string, items []Item) (Item, Quality) {
	normalized := strings.ToLower(strings.TrimSpace(term))
	if normalized == "" || len(items) == 0 {
		return Item{}, MatchNone
	}

	for _, it := range items {
		if strings.ToLower(strings.TrimSpace(it.Name)) == normalized {
			return it, MatchExact
		}
	}

	for _, it := range items {
		name := strings.ToLower(strings.TrimSpace(it.Name))
		if name == "" {
			continue
		}
		if strings.Contains(name, normalized) || strings.Contains(normalized, name) {
			return it, MatchPartial
		}
	}

	var words []string
	for _, w := range strings.Fields(normalized) {
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return Item{}, MatchNone
	}
	need := min(2, len(words))
	for _, it := range items {
		itemWords := strings.Fields(strings.ToLower(it.Name))
		count := 0
		for _, sw := range words {
			for _, iw := range itemWords {
				if strings.Contains(iw, sw) || strings.Contains(sw, iw) {
					count++
					break
				}
			}
		}
		if count >= need {
			return it, MatchPartial
		}
	}
	return Item{}, MatchNone
}
