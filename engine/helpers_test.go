package engine_test

import (
	"github.com/shopspring/decimal"
	"github.com/swipewise/cashback-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func dp(f float64) *decimal.Decimal {
	v := decimal.NewFromFloat(f)
	return &v
}

// purchase builds a manual-source context for a domestic purchase.
func purchase(merchant string, amount float64) engine.Context {
	return engine.Context{
		Date:           "2024-03-15",
		Merchant:       merchant,
		Amount:         d(amount),
		Region:         "國內",
		Category:       "其他",
		RegionSource:   engine.SourceManual,
		CategorySource: engine.SourceManual,
	}
}

// openRule builds a rule with no constraints.
func openRule(id string, rate float64) engine.Rule {
	return engine.Rule{
		ID:   engine.RuleID(id),
		Name: id,
		Card: "card-" + id,
		Rate: d(rate),
	}
}
