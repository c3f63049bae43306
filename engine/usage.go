package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTH SCOPING
// =============================================================================

// MonthKey derives the calendar-month bucket for a date string: the
// first seven characters (YYYY-MM) of the trimmed date. Malformed or
// empty dates yield an empty key, which belongs to no month.
func MonthKey(date string) string {
	s := strings.TrimSpace(date)
	if len(s) > 7 {
		return s[:7]
	}
	return s
}

// TransactionsInMonth returns the subset of txs whose derived month
// key equals monthKey. Records with an empty month key are excluded
// from every month-scoped aggregate, so an empty target matches
// nothing.
func TransactionsInMonth(txs []Transaction, monthKey string) []Transaction {
	if monthKey == "" {
		return nil
	}
	var out []Transaction
	for _, t := range txs {
		if MonthKey(t.Date) == monthKey {
			out = append(out, t)
		}
	}
	return out
}

// =============================================================================
// USAGE AGGREGATOR - Per-rule month-to-date totals
// =============================================================================

// Usage is the cumulative spend and reward recorded against one rule.
type Usage struct {
	UsedSpend  decimal.Decimal
	UsedReward decimal.Decimal
}

// UsageMap maps rule IDs to month-to-date usage. Absence of a rule ID
// means zero usage for that rule this month.
type UsageMap map[RuleID]Usage

// Get returns the usage for a rule, zero-valued when absent.
func (m UsageMap) Get(id RuleID) Usage {
	if u, ok := m[id]; ok {
		return u
	}
	return Usage{UsedSpend: decimal.Zero, UsedReward: decimal.Zero}
}

// AggregateUsage folds transactions (already restricted to the target
// month) into per-rule totals. Transactions without a rule ID are
// skipped: they were never committed, or are legacy/corrupt records.
// The totals use the recorded amount and est_reward as-is; committed
// estimates are never recomputed.
func AggregateUsage(txs []Transaction) UsageMap {
	m := make(UsageMap)
	for _, t := range txs {
		if t.RuleID == "" {
			continue
		}
		u := m.Get(t.RuleID)
		u.UsedSpend = u.UsedSpend.Add(t.Amount)
		u.UsedReward = u.UsedReward.Add(t.EstReward)
		m[t.RuleID] = u
	}
	return m
}
