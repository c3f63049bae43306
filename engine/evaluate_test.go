package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swipewise/cashback-engine/engine"
)

// =============================================================================
// ESTIMATION
// =============================================================================

func TestEvaluate_SpendCapClipsEligibleAmount(t *testing.T) {
	// GIVEN: A $5000 purchase against a rule with cap_spend=3000, rate 2%
	// WHEN: Evaluating with zero prior usage
	// THEN: eligible_amount=3000, est_reward=60

	rule := openRule("capped", 0.02)
	rule.CapSpend = dp(3000)
	eng := engine.New(engine.Config{Rules: []engine.Rule{rule}})

	ranked := eng.Evaluate(purchase("somewhere", 5000), engine.UsageMap{})
	require.Len(t, ranked, 1)

	ev := ranked[0]
	assert.True(t, ev.EligibleAmount.Equal(d(3000)), "eligible = %s", ev.EligibleAmount)
	assert.True(t, ev.EstReward.Equal(d(60)), "est = %s", ev.EstReward)
}

func TestEvaluate_RewardCapClipsEstimate(t *testing.T) {
	rule := openRule("r", 0.05)
	rule.CapReward = dp(100)
	eng := engine.New(engine.Config{Rules: []engine.Rule{rule}})

	usage := engine.UsageMap{"r": {UsedSpend: d(1000), UsedReward: d(90)}}
	ranked := eng.Evaluate(purchase("somewhere", 1000), usage)
	require.Len(t, ranked, 1)

	// 1000 * 5% = 50, but only 10 of reward headroom remains.
	assert.True(t, ranked[0].EstReward.Equal(d(10)), "est = %s", ranked[0].EstReward)
	assert.True(t, ranked[0].RemainReward.Equal(d(10)))
}

func TestEvaluate_UsageBeyondCapFloorsAtZero(t *testing.T) {
	rule := openRule("r", 0.03)
	rule.CapReward = dp(200)
	rule.CapSpend = dp(1000)
	eng := engine.New(engine.Config{Rules: []engine.Rule{rule}})

	// Recorded usage can exceed caps (estimates frozen at commit time);
	// headroom floors at zero, never negative.
	usage := engine.UsageMap{"r": {UsedSpend: d(5000), UsedReward: d(300)}}
	ranked := eng.Evaluate(purchase("somewhere", 1000), usage)
	require.Len(t, ranked, 1)

	ev := ranked[0]
	assert.True(t, ev.RemainReward.IsZero())
	assert.True(t, ev.RemainSpend.IsZero())
	assert.True(t, ev.EligibleAmount.IsZero())
	assert.True(t, ev.EstReward.IsZero())
}

func TestEvaluate_EstimateBounds(t *testing.T) {
	// est_reward <= remain_reward and <= eligible*rate;
	// eligible <= min(amount, remain_spend).

	rules := []engine.Rule{
		openRule("a", 0.05),
		func() engine.Rule {
			r := openRule("b", 0.03)
			r.CapReward = dp(50)
			r.CapSpend = dp(800)
			return r
		}(),
	}
	eng := engine.New(engine.Config{Rules: rules})
	usage := engine.UsageMap{"b": {UsedSpend: d(500), UsedReward: d(20)}}

	ctx := purchase("somewhere", 1200)
	for _, ev := range eng.Evaluate(ctx, usage) {
		assert.True(t, ev.EstReward.LessThanOrEqual(ev.RemainReward))
		assert.True(t, ev.EstReward.LessThanOrEqual(ev.EligibleAmount.Mul(ev.Rule.Rate)))
		assert.True(t, ev.EligibleAmount.LessThanOrEqual(ctx.Amount))
		assert.True(t, ev.EligibleAmount.LessThanOrEqual(ev.RemainSpend))
	}
}

// =============================================================================
// RANKING
// =============================================================================

func TestEvaluate_EstimatedRewardDominatesRate(t *testing.T) {
	// GIVEN: Rule A at 3% but with its monthly reward cap exhausted,
	//        rule B at 1% with no cap
	// WHEN: Evaluating a $1000 purchase with zero prior usage on B
	// THEN: A estimates 0 (capped out), B estimates 10, and B ranks first

	ruleA := openRule("a", 0.03)
	ruleA.CapReward = dp(200)
	ruleB := openRule("b", 0.01)

	eng := engine.New(engine.Config{Rules: []engine.Rule{ruleA, ruleB}})
	usage := engine.UsageMap{"a": {UsedReward: d(200)}}

	ranked := eng.Evaluate(purchase("somewhere", 1000), usage)
	require.Len(t, ranked, 2)

	assert.Equal(t, engine.RuleID("b"), ranked[0].Rule.ID)
	assert.True(t, ranked[0].EstReward.Equal(d(10)))
	assert.Equal(t, engine.RuleID("a"), ranked[1].Rule.ID)
	assert.True(t, ranked[1].EstReward.IsZero())
}

func TestEvaluate_RateBreaksTieWhenEstimatesSaturate(t *testing.T) {
	// Both rules are capped out (est 0); the higher raw rate wins.
	ruleA := openRule("a", 0.01)
	ruleA.CapReward = dp(100)
	ruleB := openRule("b", 0.03)
	ruleB.CapReward = dp(100)

	eng := engine.New(engine.Config{Rules: []engine.Rule{ruleA, ruleB}})
	usage := engine.UsageMap{
		"a": {UsedReward: d(100)},
		"b": {UsedReward: d(100)},
	}

	ranked := eng.Evaluate(purchase("somewhere", 1000), usage)
	require.Len(t, ranked, 2)
	assert.Equal(t, engine.RuleID("b"), ranked[0].Rule.ID)
}

func TestEvaluate_PriorityBreaksRateTie(t *testing.T) {
	ruleA := openRule("a", 0.02)
	ruleB := openRule("b", 0.02)
	ruleB.Priority = d(5)

	eng := engine.New(engine.Config{Rules: []engine.Rule{ruleA, ruleB}})
	ranked := eng.Evaluate(purchase("somewhere", 1000), engine.UsageMap{})
	require.Len(t, ranked, 2)
	assert.Equal(t, engine.RuleID("b"), ranked[0].Rule.ID)
}

func TestEvaluate_HeadroomCeilingNeutralizesUnlimitedCaps(t *testing.T) {
	// GIVEN: Two rules identical except one has a real (huge) spend cap
	//        and the other none; both headrooms exceed the ceiling
	// THEN: They rank as exact ties, preserving input order - the
	//       sentinel must not outrank the genuine cap

	capped := openRule("capped", 0.02)
	capped.CapSpend = dp(2_000_000)
	unlimited := openRule("unlimited", 0.02)

	eng := engine.New(engine.Config{Rules: []engine.Rule{capped, unlimited}})
	ranked := eng.Evaluate(purchase("somewhere", 1000), engine.UsageMap{})
	require.Len(t, ranked, 2)

	assert.True(t, ranked[0].Score.Equal(ranked[1].Score))
	assert.Equal(t, engine.RuleID("capped"), ranked[0].Rule.ID, "stable sort keeps input order")
}

func TestEvaluate_SentinelCapScoresSameAsAbsentCap(t *testing.T) {
	// GIVEN: One rule with an explicit cap equal to the sentinel and
	//        one with the cap absent
	// THEN: Their score keys are identical

	sentinel := engine.CapSentinel
	explicit := openRule("explicit", 0.02)
	explicit.CapReward = &sentinel
	explicit.CapSpend = &sentinel
	absent := openRule("absent", 0.02)

	eng := engine.New(engine.Config{Rules: []engine.Rule{explicit, absent}})
	ranked := eng.Evaluate(purchase("somewhere", 1000), engine.UsageMap{})
	require.Len(t, ranked, 2)
	assert.True(t, ranked[0].Score.Equal(ranked[1].Score))
}

func TestEvaluate_StableOrderOnExactTies(t *testing.T) {
	rules := []engine.Rule{openRule("first", 0.02), openRule("second", 0.02), openRule("third", 0.02)}
	eng := engine.New(engine.Config{Rules: rules})

	ranked := eng.Evaluate(purchase("somewhere", 500), engine.UsageMap{})
	require.Len(t, ranked, 3)
	assert.Equal(t, engine.RuleID("first"), ranked[0].Rule.ID)
	assert.Equal(t, engine.RuleID("second"), ranked[1].Rule.ID)
	assert.Equal(t, engine.RuleID("third"), ranked[2].Rule.ID)
}

func TestEvaluate_EmptyEligibleSetIsNotAnError(t *testing.T) {
	rule := openRule("overseas-only", 0.03)
	rule.RegionAllow = []string{"國外"}
	eng := engine.New(engine.Config{Rules: []engine.Rule{rule}})

	ranked := eng.Evaluate(purchase("domestic shop", 100), engine.UsageMap{})
	assert.Empty(t, ranked)
}

func TestEvaluate_Idempotent(t *testing.T) {
	// Calling evaluate twice with identical inputs yields identical
	// output: no hidden state mutation.

	rule := openRule("r", 0.02)
	rule.CapSpend = dp(3000)
	eng := engine.New(engine.Config{Rules: []engine.Rule{rule}})
	usage := engine.UsageMap{"r": {UsedSpend: d(1000), UsedReward: d(20)}}
	ctx := purchase("somewhere", 5000)

	first := eng.Evaluate(ctx, usage)
	second := eng.Evaluate(ctx, usage)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].EstReward.Equal(second[i].EstReward))
		assert.True(t, first[i].Score.Equal(second[i].Score))
	}

	// The usage map was not mutated either.
	assert.True(t, usage.Get("r").UsedSpend.Equal(d(1000)))
}

// =============================================================================
// FULL PIPELINE
// =============================================================================

func TestRecommend_ScopesUsageToTheContextMonth(t *testing.T) {
	// GIVEN: A rule with cap_reward=30 and 25 already used in March,
	//        plus heavy April usage that must not count
	// WHEN: Recommending a March purchase
	// THEN: Only March usage constrains the estimate

	rule := openRule("r", 0.03)
	rule.CapReward = dp(30)
	eng := engine.New(engine.Config{Rules: []engine.Rule{rule}})

	history := []engine.Transaction{
		{Date: "2024-04-02", RuleID: "r", Amount: d(9000), EstReward: d(270)},
		{Date: "2024-03-01", RuleID: "r", Amount: d(800), EstReward: d(25)},
		{Date: "", RuleID: "r", Amount: d(1000), EstReward: d(30)}, // no month, ignored
	}

	rec, ranked := eng.Recommend(purchase("somewhere", 1000), history)
	require.NotNil(t, rec.Top)
	require.Len(t, ranked, 1)

	// 1000 * 3% = 30, clipped to the 5 of March headroom left.
	assert.True(t, rec.Top.EstReward.Equal(d(5)), "est = %s", rec.Top.EstReward)
	assert.True(t, rec.Top.UsedReward.Equal(d(25)))
}
