package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swipewise/cashback-engine/engine"
)

func rankedSet(n int) []engine.Evaluation {
	evs := make([]engine.Evaluation, n)
	for i := range evs {
		r := openRule(string(rune('a'+i)), 0.01)
		evs[i] = engine.Evaluation{
			Rule:         r,
			RemainReward: d(100),
			RemainSpend:  d(10000),
			EstReward:    d(float64(n - i)),
		}
	}
	return evs
}

func TestNewRecommendation_TopAndUpToThreeAlternates(t *testing.T) {
	rec := engine.NewRecommendation(rankedSet(6), purchase("somewhere", 100))

	require.NotNil(t, rec.Top)
	assert.Equal(t, engine.RuleID("a"), rec.Top.Rule.ID)
	require.Len(t, rec.Alternates, 3)
	assert.Equal(t, engine.RuleID("b"), rec.Alternates[0].Rule.ID)
	assert.Equal(t, engine.RuleID("d"), rec.Alternates[2].Rule.ID)
}

func TestNewRecommendation_FewerThanFourRules(t *testing.T) {
	rec := engine.NewRecommendation(rankedSet(2), purchase("somewhere", 100))
	require.NotNil(t, rec.Top)
	assert.Len(t, rec.Alternates, 1)
}

func TestNewRecommendation_EmptyRanking(t *testing.T) {
	rec := engine.NewRecommendation(nil, purchase("somewhere", 100))
	assert.Nil(t, rec.Top)
	assert.Empty(t, rec.Alternates)
	assert.Empty(t, rec.Warnings)
}

// =============================================================================
// ADVISORY WARNINGS
// =============================================================================

func warningCodes(rec engine.Recommendation) []engine.WarningCode {
	codes := make([]engine.WarningCode, len(rec.Warnings))
	for i, w := range rec.Warnings {
		codes[i] = w.Code
	}
	return codes
}

func TestNewRecommendation_WarnsOnInferredCategory(t *testing.T) {
	ctx := purchase("somewhere", 100)
	ctx.CategorySource = engine.SourceInferred

	rec := engine.NewRecommendation(rankedSet(1), ctx)
	assert.Contains(t, warningCodes(rec), engine.WarnCategoryInferred)
}

func TestNewRecommendation_WarnsWhenAmountExceedsSpendHeadroom(t *testing.T) {
	evs := rankedSet(1)
	evs[0].RemainSpend = d(50)

	rec := engine.NewRecommendation(evs, purchase("somewhere", 100))
	assert.Contains(t, warningCodes(rec), engine.WarnSpendHeadroomExceeded)
}

func TestNewRecommendation_WarnsWhenRewardCapExhausted(t *testing.T) {
	evs := rankedSet(1)
	evs[0].RemainReward = d(0)

	rec := engine.NewRecommendation(evs, purchase("somewhere", 100))
	assert.Contains(t, warningCodes(rec), engine.WarnRewardCapExhausted)
}

func TestNewRecommendation_NoWarningsOnCleanTop(t *testing.T) {
	rec := engine.NewRecommendation(rankedSet(1), purchase("somewhere", 100))
	assert.Empty(t, rec.Warnings)
}

func TestNewRecommendation_WarningsDoNotChangeEstimates(t *testing.T) {
	evs := rankedSet(1)
	evs[0].RemainSpend = d(50)
	evs[0].EligibleAmount = d(50)
	evs[0].EstReward = d(0.5)

	rec := engine.NewRecommendation(evs, purchase("somewhere", 100))
	require.NotNil(t, rec.Top)
	assert.True(t, rec.Top.EligibleAmount.Equal(d(50)))
	assert.True(t, rec.Top.EstReward.Equal(d(0.5)))
}
