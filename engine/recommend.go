package engine

import "fmt"

// =============================================================================
// RECOMMENDATION - Presenter contract
// =============================================================================

// WarningCode identifies an advisory condition on the top
// recommendation. Warnings never change EligibleAmount or EstReward.
type WarningCode string

const (
	// WarnCategoryInferred: the category came from keyword inference,
	// not an explicit user choice, and may be wrong.
	WarnCategoryInferred WarningCode = "category_inferred"

	// WarnSpendHeadroomExceeded: the requested amount exceeds the top
	// rule's remaining monthly spend; the excess earns a lower (or no)
	// reward.
	WarnSpendHeadroomExceeded WarningCode = "spend_headroom_exceeded"

	// WarnRewardCapExhausted: the top rule's monthly reward cap is
	// already fully used.
	WarnRewardCapExhausted WarningCode = "reward_cap_exhausted"
)

// Warning is one advisory message for the presentation layer.
type Warning struct {
	Code    WarningCode
	Message string
}

// Recommendation is the input contract for the external presentation
// layer: the primary pick, up to three alternates, and advisories.
// Top is nil when no rule was eligible; the caller must degrade
// gracefully ("no recommendation, adjust region/category").
type Recommendation struct {
	Top        *Evaluation
	Alternates []Evaluation
	Warnings   []Warning
}

// maxAlternates bounds how many runner-ups the presenter receives.
const maxAlternates = 3

// NewRecommendation shapes a ranked evaluation sequence into the
// presenter contract. ranked must already be sorted best-first.
func NewRecommendation(ranked []Evaluation, ctx Context) Recommendation {
	if len(ranked) == 0 {
		return Recommendation{}
	}

	top := ranked[0]
	rec := Recommendation{Top: &top}

	end := len(ranked)
	if end > 1+maxAlternates {
		end = 1 + maxAlternates
	}
	if end > 1 {
		rec.Alternates = append(rec.Alternates, ranked[1:end]...)
	}

	if ctx.CategorySource == SourceInferred {
		rec.Warnings = append(rec.Warnings, Warning{
			Code:    WarnCategoryInferred,
			Message: fmt.Sprintf("category %q was inferred from the merchant name; override it if wrong", ctx.Category),
		})
	}
	if ctx.Amount.GreaterThan(top.RemainSpend) {
		rec.Warnings = append(rec.Warnings, Warning{
			Code:    WarnSpendHeadroomExceeded,
			Message: fmt.Sprintf("this rule has %s of eligible spend left this month; the excess may earn a lower reward", top.RemainSpend.String()),
		})
	}
	if !top.RemainReward.IsPositive() {
		rec.Warnings = append(rec.Warnings, Warning{
			Code:    WarnRewardCapExhausted,
			Message: "this rule's monthly reward cap is already used up",
		})
	}

	return rec
}
