package engine

import "strings"

// =============================================================================
// ELIGIBILITY FILTER - Does this rule apply to this purchase?
// =============================================================================

// Eligible evaluates the rule's four gates against the context. All
// gates are ANDed; the order below only short-circuits, it never
// changes the boolean result.
//
//  1. Region allow-list
//  2. LINE Pay requirement
//  3. Category allow-list
//  4. Merchant keyword allow-list (any-of, normalized substring)
//
// An absent or empty constraint list means "no restriction".
func Eligible(r Rule, ctx Context) bool {
	if len(r.RegionAllow) > 0 && !containsString(r.RegionAllow, ctx.Region) {
		return false
	}

	if r.RequireLinePay && !ctx.LinePay {
		return false
	}

	if len(r.CategoryAllow) > 0 && !containsString(r.CategoryAllow, ctx.Category) {
		return false
	}

	if len(r.KeywordAllow) > 0 {
		m := normKey(ctx.Merchant)
		ok := false
		for _, kw := range r.KeywordAllow {
			// An empty entry is a substring of every merchant name,
			// so it passes the gate.
			if strings.Contains(m, normKey(kw)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
