/*
Package engine provides the core cash-back rule evaluation engine.

PURPOSE:
  This package contains the types and algorithms for scoring competing
  cash-back rules against a single proposed purchase: matching a
  transaction context against a rule set, computing remaining monthly
  caps, estimating the reward for the current purchase, and producing
  a deterministic ranked recommendation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Rule: A reward policy tied to one card, with eligibility
    constraints and monthly caps
  - Context: The merchant/amount/region/category/payment description
    of one candidate purchase, not yet committed
  - Transaction: A committed purchase record with the winning rule and
    the reward estimate frozen at commit time
  - Config: The immutable configuration (rules + keyword tables)
    constructed at startup and passed into every evaluation

DESIGN PRINCIPLES:
  1. Purity: Evaluation is a function of its inputs only. No globals,
     no clock, no I/O.
  2. Precision: Uses decimal.Decimal for all money to avoid
     floating-point errors.
  3. Leniency: This is an estimation tool, not a system of record.
     Malformed numerics coerce to zero, malformed dates fall out of
     monthly aggregates, and an empty eligible set is not an error.

USAGE:
  eng := engine.New(cfg)
  rec, ranked := eng.Recommend(ctx, history)

SEE ALSO:
  - evaluate.go: Reward estimation and ranking
  - eligibility.go: Per-rule gate evaluation
  - match.go: Keyword inference for region/category
  - usage.go: Monthly usage aggregation
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// RuleID uniquely identifies a rule within a loaded rule set.
type RuleID string

// ValueSource records whether a context value came from keyword
// inference or explicit user choice. The tag propagates into advisory
// warnings; it never changes eligibility or estimation results.
type ValueSource string

const (
	SourceManual   ValueSource = "manual"
	SourceInferred ValueSource = "inferred"
)

// =============================================================================
// RULE - One reward policy on one card
// =============================================================================

// Rule defines a single cash-back rule. Rules are immutable, supplied
// externally, and loaded once per session.
//
// Absent caps mean "effectively unlimited": they are replaced by
// CapSentinel before any headroom subtraction, so a rule with an
// explicit cap equal to the sentinel behaves identically to a rule
// with no cap at all.
type Rule struct {
	ID   RuleID
	Name string
	Card string

	// Reward fraction, 0..1 (0.03 = 3%).
	Rate decimal.Decimal

	// Tie-break weight when estimated rewards and rates tie.
	Priority decimal.Decimal

	// Monthly caps. nil = effectively unlimited.
	CapReward *decimal.Decimal
	CapSpend  *decimal.Decimal

	// Allow-lists. nil or empty = no restriction.
	RegionAllow   []string
	CategoryAllow []string
	KeywordAllow  []string

	// If set, the rule only applies to LINE Pay purchases.
	RequireLinePay bool
}

// CapSentinel stands in for an absent cap. Large enough that no
// realistic monthly usage approaches it, small enough to survive
// decimal arithmetic without surprises.
var CapSentinel = decimal.NewFromInt(999_999_999)

// CapRewardOrSentinel returns the reward cap, or the sentinel when absent.
func (r Rule) CapRewardOrSentinel() decimal.Decimal {
	if r.CapReward == nil {
		return CapSentinel
	}
	return *r.CapReward
}

// CapSpendOrSentinel returns the spend cap, or the sentinel when absent.
func (r Rule) CapSpendOrSentinel() decimal.Decimal {
	if r.CapSpend == nil {
		return CapSentinel
	}
	return *r.CapSpend
}

// =============================================================================
// CONTEXT - One candidate purchase, not yet committed
// =============================================================================

// Context describes the purchase being evaluated. Region and category
// are already resolved (manually chosen or inferred upstream); the
// engine never re-runs inference during evaluation.
type Context struct {
	Date     string // ISO calendar date (YYYY-MM-DD); month scoping uses the first 7 chars
	Merchant string // free text
	Amount   decimal.Decimal
	Region   string
	Category string
	LinePay  bool

	RegionSource   ValueSource
	CategorySource ValueSource
}

// =============================================================================
// TRANSACTION - Committed purchase record
// =============================================================================

// Transaction is an append-only record owned by the history store.
// Once committed, RuleID/Card/RuleName/EstReward are frozen: caps are
// evaluated against the recorded historical rewards and spend, never
// recomputed ones.
type Transaction struct {
	Date     string
	Merchant string
	Region   string
	Category string
	Amount   decimal.Decimal
	LinePay  bool

	// Set at commit time from the winning evaluation.
	RuleID    RuleID
	Card      string
	RuleName  string
	EstReward decimal.Decimal
}

// =============================================================================
// CONFIG - Immutable evaluation configuration
// =============================================================================

// KeywordEntry maps a merchant keyword to an attribute value. Entries
// are ordered; longest match wins, first-seen wins on length ties.
type KeywordEntry struct {
	Keyword string
	Value   string
}

// Config bundles everything evaluation needs beyond the purchase
// itself. Constructed once at startup and passed by reference into
// every call; the engine never mutates it.
type Config struct {
	Rules []Rule

	// Merchant keyword tables for region/category inference.
	MerchantRegions    []KeywordEntry
	MerchantCategories []KeywordEntry

	// Fallbacks when no keyword matches.
	DefaultRegion   string
	DefaultCategory string
}

// =============================================================================
// NUMERIC LENIENCY
// =============================================================================

// DecimalOrZero parses s, returning zero on any failure. The engine's
// uniform numeric-or-zero policy for externally supplied values.
func DecimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
