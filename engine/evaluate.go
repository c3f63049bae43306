/*
evaluate.go - Reward estimation and ranking

PURPOSE:
  For every rule that passes eligibility, computes how much of the
  purchase still fits under the rule's monthly spend cap, what reward
  that eligible spend earns under the remaining reward cap, and ranks
  all eligible rules deterministically.

ESTIMATION:
  remainReward   = max(0, capReward - usedReward)
  remainSpend    = max(0, capSpend  - usedSpend)
  eligibleAmount = max(0, min(amount, remainSpend))
  estReward      = min(eligibleAmount * rate, remainReward)

  Absent caps become CapSentinel before subtraction, so they behave as
  unbounded headroom everywhere except the ranking ceiling below.

RANKING:
  An explicit multi-key comparator, most significant first:
    1. Estimated reward for THIS purchase
    2. Raw rate (discriminates when estimates tie, e.g. both saturate
       at zero remaining reward)
    3. Configured priority weight
    4. Remaining reward headroom, capped at HeadroomCeiling
    5. Remaining spend headroom, capped at HeadroomCeiling

  The headroom ceiling is load-bearing: without it, a rule with a
  sentinel (effectively unlimited) cap would always outrank a rule
  with a real cap that exhausts faster, even when the capped rule pays
  more on this purchase. Headroom terms are tie-breakers, never
  primary score components.

  Sorting is stable: exact ties keep input rule order. An empty
  eligible set yields an empty slice, not an error.

SEE ALSO:
  - eligibility.go: The gates a rule must pass to be scored
  - recommend.go: Selecting top/alternates and advisory warnings
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCORE KEY - Explicit multi-key comparator
// =============================================================================

// HeadroomCeiling bounds how much remaining headroom can contribute to
// ranking. Any headroom at or above the ceiling compares equal, which
// makes a sentinel cap and an explicit huge cap indistinguishable.
var HeadroomCeiling = decimal.NewFromInt(1_000_000)

// ScoreKey is the ranking key for one evaluation. Higher is better.
// Components are compared in struct order, most significant first.
type ScoreKey struct {
	EstReward    decimal.Decimal
	Rate         decimal.Decimal
	Priority     decimal.Decimal
	RemainReward decimal.Decimal // capped at HeadroomCeiling
	RemainSpend  decimal.Decimal // capped at HeadroomCeiling
}

// Less reports whether k ranks strictly below other.
func (k ScoreKey) Less(other ScoreKey) bool {
	if c := k.EstReward.Cmp(other.EstReward); c != 0 {
		return c < 0
	}
	if c := k.Rate.Cmp(other.Rate); c != 0 {
		return c < 0
	}
	if c := k.Priority.Cmp(other.Priority); c != 0 {
		return c < 0
	}
	if c := k.RemainReward.Cmp(other.RemainReward); c != 0 {
		return c < 0
	}
	return k.RemainSpend.Cmp(other.RemainSpend) < 0
}

// Equal reports whether both keys rank identically.
func (k ScoreKey) Equal(other ScoreKey) bool {
	return !k.Less(other) && !other.Less(k)
}

func capAtCeiling(d decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(HeadroomCeiling) {
		return HeadroomCeiling
	}
	return d
}

// =============================================================================
// EVALUATION - One scored rule
// =============================================================================

// Evaluation is the scored result for a single eligible rule.
type Evaluation struct {
	Rule Rule

	UsedSpend      decimal.Decimal
	UsedReward     decimal.Decimal
	RemainReward   decimal.Decimal
	RemainSpend    decimal.Decimal
	EligibleAmount decimal.Decimal
	EstReward      decimal.Decimal

	Score ScoreKey
}

// =============================================================================
// ENGINE - Evaluation over an immutable config
// =============================================================================

// Engine evaluates purchases against a fixed configuration. It holds
// no mutable state: every method is a pure function of the config and
// its arguments, so concurrent use is safe.
type Engine struct {
	cfg Config
}

// New creates an engine over cfg. The caller must not mutate cfg
// afterwards.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Evaluate scores every eligible rule against the context and returns
// them ranked best-first. usage carries the month-to-date totals
// already recorded against each rule.
func (e *Engine) Evaluate(ctx Context, usage UsageMap) []Evaluation {
	var out []Evaluation
	for _, r := range e.cfg.Rules {
		if !Eligible(r, ctx) {
			continue
		}
		out = append(out, evaluateRule(r, ctx, usage.Get(r.ID)))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Score.Less(out[i].Score)
	})
	return out
}

func evaluateRule(r Rule, ctx Context, used Usage) Evaluation {
	remainReward := decimal.Max(decimal.Zero, r.CapRewardOrSentinel().Sub(used.UsedReward))
	remainSpend := decimal.Max(decimal.Zero, r.CapSpendOrSentinel().Sub(used.UsedSpend))

	// Clip the purchase to whatever spend headroom remains this month.
	eligible := decimal.Max(decimal.Zero, decimal.Min(ctx.Amount, remainSpend))

	// Reward at the rule's rate, further clipped to reward headroom.
	est := decimal.Min(eligible.Mul(r.Rate), remainReward)

	return Evaluation{
		Rule:           r,
		UsedSpend:      used.UsedSpend,
		UsedReward:     used.UsedReward,
		RemainReward:   remainReward,
		RemainSpend:    remainSpend,
		EligibleAmount: eligible,
		EstReward:      est,
		Score: ScoreKey{
			EstReward:    est,
			Rate:         r.Rate,
			Priority:     r.Priority,
			RemainReward: capAtCeiling(remainReward),
			RemainSpend:  capAtCeiling(remainSpend),
		},
	}
}

// Recommend is the full evaluation pipeline for one purchase: scope
// the history to the context's month, aggregate per-rule usage, score
// and rank, then shape the presenter contract. The ranked slice is
// returned alongside so callers can render the full table.
func (e *Engine) Recommend(ctx Context, history []Transaction) (Recommendation, []Evaluation) {
	month := TransactionsInMonth(history, MonthKey(ctx.Date))
	usage := AggregateUsage(month)
	ranked := e.Evaluate(ctx, usage)
	return NewRecommendation(ranked, ctx), ranked
}
