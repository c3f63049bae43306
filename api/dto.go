/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the engine's decimal-based domain model from the external
  API contract: money goes over the wire as plain JSON numbers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
  - engine/recommend.go: The presenter contract these DTOs carry
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/swipewise/cashback-engine/engine"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ContextRequest describes one candidate purchase. Region and
// category accept "auto" (or empty) to request keyword inference.
type ContextRequest struct {
	Date     string  `json:"date,omitempty"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Region   string  `json:"region,omitempty"`
	Category string  `json:"category,omitempty"`
	LinePay  bool    `json:"linepay,omitempty"`
}

// RuleDTO represents a configured rule.
type RuleDTO struct {
	RuleID         string   `json:"rule_id"`
	RuleName       string   `json:"rule_name"`
	Card           string   `json:"card"`
	Rate           float64  `json:"rate"`
	Priority       float64  `json:"priority,omitempty"`
	CapReward      *float64 `json:"cap_reward,omitempty"`
	CapSpend       *float64 `json:"cap_spend,omitempty"`
	RegionAllow    []string `json:"region_allow,omitempty"`
	CategoryAllow  []string `json:"category_allow,omitempty"`
	KeywordAllow   []string `json:"keyword_allow,omitempty"`
	RequireLinePay bool     `json:"require_linepay,omitempty"`
}

// ScoreDTO exposes the ranking key components in comparator order.
type ScoreDTO struct {
	EstReward    float64 `json:"est_reward"`
	Rate         float64 `json:"rate"`
	Priority     float64 `json:"priority"`
	RemainReward float64 `json:"remain_reward"`
	RemainSpend  float64 `json:"remain_spend"`
}

// EvaluationDTO is one scored rule.
type EvaluationDTO struct {
	RuleID         string   `json:"rule_id"`
	RuleName       string   `json:"rule_name"`
	Card           string   `json:"card"`
	Rate           float64  `json:"rate"`
	UsedSpend      float64  `json:"used_spend"`
	UsedReward     float64  `json:"used_reward"`
	RemainReward   float64  `json:"remain_reward"`
	RemainSpend    float64  `json:"remain_spend"`
	EligibleAmount float64  `json:"eligible_amount"`
	EstReward      float64  `json:"est_reward"`
	Score          ScoreDTO `json:"score"`
}

// WarningDTO is one advisory message.
type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ContextDTO echoes the resolved context back to the client.
type ContextDTO struct {
	Date           string  `json:"date"`
	Merchant       string  `json:"merchant"`
	Amount         float64 `json:"amount"`
	Region         string  `json:"region"`
	Category       string  `json:"category"`
	LinePay        bool    `json:"linepay"`
	RegionSource   string  `json:"region_source"`
	CategorySource string  `json:"category_source"`
	Month          string  `json:"month"`
}

// RecommendResponse is the full recommendation payload.
type RecommendResponse struct {
	Context    ContextDTO      `json:"context"`
	Top        *EvaluationDTO  `json:"top,omitempty"`
	Alternates []EvaluationDTO `json:"alternates,omitempty"`
	Warnings   []WarningDTO    `json:"warnings,omitempty"`
	Ranked     []EvaluationDTO `json:"ranked"`
}

// TransactionDTO represents one committed history record.
type TransactionDTO struct {
	Date      string  `json:"date"`
	Merchant  string  `json:"merchant"`
	Region    string  `json:"region"`
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
	LinePay   bool    `json:"linepay"`
	RuleID    string  `json:"rule_id,omitempty"`
	Card      string  `json:"card,omitempty"`
	RuleName  string  `json:"rule_name,omitempty"`
	EstReward float64 `json:"est_reward"`
}

// CommitResponse is returned after committing a transaction.
type CommitResponse struct {
	Transaction TransactionDTO `json:"transaction"`
	Warnings    []WarningDTO   `json:"warnings,omitempty"`
}

// UsageDTO is the per-rule month-to-date aggregate.
type UsageDTO struct {
	UsedSpend  float64 `json:"used_spend"`
	UsedReward float64 `json:"used_reward"`
}

// UsageResponse maps rule IDs to usage for one month.
type UsageResponse struct {
	Month string              `json:"month"`
	Usage map[string]UsageDTO `json:"usage"`
}

// ClearMonthResponse reports how many records a month-clear removed.
type ClearMonthResponse struct {
	Month   string `json:"month"`
	Removed int    `json:"removed"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func f64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func f64Ptr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := f64(*d)
	return &f
}

func toRuleDTO(r engine.Rule) RuleDTO {
	return RuleDTO{
		RuleID:         string(r.ID),
		RuleName:       r.Name,
		Card:           r.Card,
		Rate:           f64(r.Rate),
		Priority:       f64(r.Priority),
		CapReward:      f64Ptr(r.CapReward),
		CapSpend:       f64Ptr(r.CapSpend),
		RegionAllow:    r.RegionAllow,
		CategoryAllow:  r.CategoryAllow,
		KeywordAllow:   r.KeywordAllow,
		RequireLinePay: r.RequireLinePay,
	}
}

func toEvaluationDTO(ev engine.Evaluation) EvaluationDTO {
	return EvaluationDTO{
		RuleID:         string(ev.Rule.ID),
		RuleName:       ev.Rule.Name,
		Card:           ev.Rule.Card,
		Rate:           f64(ev.Rule.Rate),
		UsedSpend:      f64(ev.UsedSpend),
		UsedReward:     f64(ev.UsedReward),
		RemainReward:   f64(ev.RemainReward),
		RemainSpend:    f64(ev.RemainSpend),
		EligibleAmount: f64(ev.EligibleAmount),
		EstReward:      f64(ev.EstReward),
		Score: ScoreDTO{
			EstReward:    f64(ev.Score.EstReward),
			Rate:         f64(ev.Score.Rate),
			Priority:     f64(ev.Score.Priority),
			RemainReward: f64(ev.Score.RemainReward),
			RemainSpend:  f64(ev.Score.RemainSpend),
		},
	}
}

func toEvaluationDTOs(evs []engine.Evaluation) []EvaluationDTO {
	dtos := make([]EvaluationDTO, len(evs))
	for i, ev := range evs {
		dtos[i] = toEvaluationDTO(ev)
	}
	return dtos
}

func toWarningDTOs(ws []engine.Warning) []WarningDTO {
	if len(ws) == 0 {
		return nil
	}
	dtos := make([]WarningDTO, len(ws))
	for i, w := range ws {
		dtos[i] = WarningDTO{Code: string(w.Code), Message: w.Message}
	}
	return dtos
}

func toTransactionDTO(t engine.Transaction) TransactionDTO {
	return TransactionDTO{
		Date:      t.Date,
		Merchant:  t.Merchant,
		Region:    t.Region,
		Category:  t.Category,
		Amount:    f64(t.Amount),
		LinePay:   t.LinePay,
		RuleID:    string(t.RuleID),
		Card:      t.Card,
		RuleName:  t.RuleName,
		EstReward: f64(t.EstReward),
	}
}

func toTransactionDTOs(txs []engine.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, t := range txs {
		dtos[i] = toTransactionDTO(t)
	}
	return dtos
}

func toContextDTO(ctx engine.Context) ContextDTO {
	return ContextDTO{
		Date:           ctx.Date,
		Merchant:       ctx.Merchant,
		Amount:         f64(ctx.Amount),
		Region:         ctx.Region,
		Category:       ctx.Category,
		LinePay:        ctx.LinePay,
		RegionSource:   string(ctx.RegionSource),
		CategorySource: string(ctx.CategorySource),
		Month:          engine.MonthKey(ctx.Date),
	}
}
