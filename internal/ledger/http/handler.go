package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	consolhttp "github.com/finclose/finclose/internal/consol/http"
	"github.com/finclose/finclose/internal/ledger"
	"github.com/finclose/finclose/internal/platform/httpx"
)

// RefreshEnqueuer schedules a statement rebuild after trial balance edits.
// May be nil when no worker is wired.
type RefreshEnqueuer interface {
	EnqueueStatementRefresh(ctx context.Context, companyID int64, period string) error
}

// Handler wires the bulk trial balance utilities.
type Handler struct {
	logger  *slog.Logger
	service *ledger.Service
	jobs    RefreshEnqueuer
}

// NewHandler constructs the handler instance.
func NewHandler(logger *slog.Logger, service *ledger.Service, jobs RefreshEnqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:  logger.With("component", "ledger.http"),
		service: service,
		jobs:    jobs,
	}
}

// MountRoutes registers ledger endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/finance/ledger/round", h.handleRound)
	r.Post("/finance/ledger/swap", h.handleSwap)
}

func (h *Handler) handleRound(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyID         int64  `json:"company_id"`
		EntityID          int64  `json:"entity_id"`
		Period            string `json:"period"`
		Mode              string `json:"mode"`
		Precision         int    `json:"precision"`
		DifferenceAccount string `json:"difference_account"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	result, err := h.service.Round(r.Context(), ledger.RoundInput{
		CompanyID:         body.CompanyID,
		EntityID:          body.EntityID,
		Period:            body.Period,
		Mode:              ledger.RoundingMode(body.Mode),
		Precision:         body.Precision,
		DifferenceAccount: body.DifferenceAccount,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.statementChanged(r.Context(), body.CompanyID, body.Period)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rows_adjusted":     result.RowsAdjusted,
		"difference":        result.Difference,
		"difference_posted": result.DifferencePosted,
	})
}

func (h *Handler) handleSwap(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyID int64  `json:"company_id"`
		EntityID  int64  `json:"entity_id"`
		Period    string `json:"period"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	count, err := h.service.Swap(r.Context(), ledger.SwapInput{
		CompanyID: body.CompanyID,
		EntityID:  body.EntityID,
		Period:    body.Period,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.statementChanged(r.Context(), body.CompanyID, body.Period)
	httpx.JSON(w, http.StatusOK, map[string]any{"rows_swapped": count})
}

func (h *Handler) statementChanged(ctx context.Context, companyID int64, period string) {
	consolhttp.BustStatementCache()
	if h.jobs == nil {
		return
	}
	if err := h.jobs.EnqueueStatementRefresh(ctx, companyID, period); err != nil {
		h.logger.WarnContext(ctx, "refresh enqueue failed", "error", err, "company_id", companyID, "period", period)
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrNoRows):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case strings.HasPrefix(err.Error(), "ledger: "):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "ledger request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
