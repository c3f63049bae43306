/*
handlers.go - HTTP API handlers for the cash-back recommender

PURPOSE:
  Exposes the rule evaluation engine and the transaction history via
  REST. Handles HTTP request/response, JSON serialization, and
  delegates to the engine.

ENDPOINTS:
  Recommendation:
    POST   /api/recommend                    Score rules for a purchase

  Rules:
    GET    /api/rules                        List the configured rules

  Transactions:
    GET    /api/transactions                 History, newest first
    POST   /api/transactions                 Commit the top recommendation
    DELETE /api/transactions/{index}         Delete by position
    DELETE /api/transactions/months/{month}  Clear one month

  Usage:
    GET    /api/usage?month=YYYY-MM          Per-rule monthly aggregate

REQUEST FLOW:
  1. Parse HTTP request
  2. Resolve the context (auto region/category via keyword inference,
     empty date defaults to today - the engine itself never consults
     the clock)
  3. Call the engine
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad body, bad index, bad month)
  - 404: Index out of range
  - 422: No eligible rule for a commit
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/swipewise/cashback-engine/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine  *engine.Engine
	History engine.HistoryStore

	// now is the clock used to default an empty purchase date.
	// Overridable in tests.
	now func() time.Time
}

// NewHandler creates a new handler over the engine and history store.
func NewHandler(eng *engine.Engine, history engine.HistoryStore) *Handler {
	return &Handler{
		Engine:  eng,
		History: history,
		now:     time.Now,
	}
}

// resolveContext turns a request into a fully resolved engine context:
// "auto" (or empty) region/category run keyword inference and are
// tagged as inferred; an empty date defaults to today.
func (h *Handler) resolveContext(req ContextRequest) engine.Context {
	cfg := h.Engine.Config()

	ctx := engine.Context{
		Date:           strings.TrimSpace(req.Date),
		Merchant:       strings.TrimSpace(req.Merchant),
		Amount:         decimal.NewFromFloat(req.Amount),
		LinePay:        req.LinePay,
		Region:         strings.TrimSpace(req.Region),
		Category:       strings.TrimSpace(req.Category),
		RegionSource:   engine.SourceManual,
		CategorySource: engine.SourceManual,
	}

	if ctx.Date == "" {
		ctx.Date = h.now().Format("2006-01-02")
	}
	if ctx.Region == "" || strings.EqualFold(ctx.Region, "auto") {
		ctx.Region = cfg.InferRegion(ctx.Merchant)
		ctx.RegionSource = engine.SourceInferred
	}
	if ctx.Category == "" || strings.EqualFold(ctx.Category, "auto") {
		ctx.Category = cfg.InferCategory(ctx.Merchant)
		ctx.CategorySource = engine.SourceInferred
	}

	return ctx
}

// =============================================================================
// RECOMMENDATION HANDLERS
// =============================================================================

// Recommend scores every rule against the purchase context.
// POST /api/recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := h.resolveContext(req)

	history, err := h.History.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}

	rec, ranked := h.Engine.Recommend(ctx, history)

	resp := RecommendResponse{
		Context:  toContextDTO(ctx),
		Warnings: toWarningDTOs(rec.Warnings),
		Ranked:   toEvaluationDTOs(ranked),
	}
	if rec.Top != nil {
		top := toEvaluationDTO(*rec.Top)
		resp.Top = &top
		resp.Alternates = toEvaluationDTOs(rec.Alternates)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListRules returns the configured rule set.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.Engine.Config().Rules
	dtos := make([]RuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = toRuleDTO(rule)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns the history, newest first.
// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	history, err := h.History.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(history))
}

// CommitTransaction evaluates the context and commits the top
// recommendation, freezing the winning rule and its reward estimate.
// POST /api/transactions
func (h *Handler) CommitTransaction(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := h.resolveContext(req)
	if ctx.Merchant == "" || !ctx.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Merchant and a positive amount are required", engine.ErrInvalidContext)
		return
	}

	history, err := h.History.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}

	rec, _ := h.Engine.Recommend(ctx, history)
	if rec.Top == nil {
		writeError(w, http.StatusUnprocessableEntity,
			"No eligible rule for this purchase; adjust region or category", engine.ErrNoEligibleRule)
		return
	}

	top := rec.Top
	tx := engine.Transaction{
		Date:      ctx.Date,
		Merchant:  ctx.Merchant,
		Region:    ctx.Region,
		Category:  ctx.Category,
		Amount:    ctx.Amount,
		LinePay:   ctx.LinePay,
		RuleID:    top.Rule.ID,
		Card:      top.Rule.Card,
		RuleName:  top.Rule.Name,
		EstReward: top.EstReward,
	}

	if err := h.History.Append(r.Context(), tx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, CommitResponse{
		Transaction: toTransactionDTO(tx),
		Warnings:    toWarningDTOs(rec.Warnings),
	})
}

// DeleteTransaction removes one history record by position.
// DELETE /api/transactions/{index}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction index", err)
		return
	}

	if err := h.History.DeleteAt(r.Context(), index); err != nil {
		if errors.Is(err, engine.ErrIndexOutOfRange) {
			writeError(w, http.StatusNotFound, "Transaction not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete transaction", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearMonth removes every transaction in one calendar month.
// DELETE /api/transactions/months/{month}
func (h *Handler) ClearMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if !validMonthKey(month) {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", nil)
		return
	}

	removed, err := h.History.ClearMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear month", err)
		return
	}

	writeJSON(w, http.StatusOK, ClearMonthResponse{Month: month, Removed: removed})
}

// =============================================================================
// USAGE HANDLERS
// =============================================================================

// GetUsage returns the per-rule aggregate for one month.
// GET /api/usage?month=YYYY-MM
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = engine.MonthKey(h.now().Format("2006-01-02"))
	}
	if !validMonthKey(month) {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", nil)
		return
	}

	history, err := h.History.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}

	usage := engine.AggregateUsage(engine.TransactionsInMonth(history, month))
	dto := make(map[string]UsageDTO, len(usage))
	for id, u := range usage {
		dto[string(id)] = UsageDTO{UsedSpend: f64(u.UsedSpend), UsedReward: f64(u.UsedReward)}
	}

	writeJSON(w, http.StatusOK, UsageResponse{Month: month, Usage: dto})
}

// validMonthKey accepts YYYY-MM.
func validMonthKey(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
