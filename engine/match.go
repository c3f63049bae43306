package engine

import (
	"strings"
	"unicode/utf8"
)

// =============================================================================
// MATCHER - Longest-keyword-match lookup for region/category inference
// =============================================================================

// Match is the result of a keyword lookup: the backing entry plus the
// length of the keyword that matched, in runes. Rune count keeps CJK
// and ASCII keywords comparable; byte length would weight a CJK
// character three times an ASCII one.
type Match struct {
	Entry    KeywordEntry
	MatchLen int
}

// normKey normalizes free text for matching: trimmed, lower-cased.
func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BestMatch finds the entry whose keyword is the longest substring of
// text. Keywords are normalized the same way as the text; empty
// keywords never match. On exact length ties the first entry in input
// order wins. Returns ok=false when nothing matches.
func BestMatch(entries []KeywordEntry, text string) (Match, bool) {
	m := normKey(text)
	var best Match
	found := false
	for _, e := range entries {
		kw := normKey(e.Keyword)
		if kw == "" {
			continue
		}
		if !strings.Contains(m, kw) {
			continue
		}
		// Strictly greater keeps the first-seen entry on ties.
		if n := utf8.RuneCountInString(kw); !found || n > best.MatchLen {
			best = Match{Entry: e, MatchLen: n}
			found = true
		}
	}
	return best, found
}

// InferRegion resolves a merchant's region from the keyword table,
// falling back to the configured default region.
func (c *Config) InferRegion(merchant string) string {
	if hit, ok := BestMatch(c.MerchantRegions, merchant); ok && hit.Entry.Value != "" {
		return hit.Entry.Value
	}
	return c.DefaultRegion
}

// InferCategory resolves a merchant's category from the keyword table,
// falling back to the configured default category.
func (c *Config) InferCategory(merchant string) string {
	if hit, ok := BestMatch(c.MerchantCategories, merchant); ok && hit.Entry.Value != "" {
		return hit.Entry.Value
	}
	return c.DefaultCategory
}
