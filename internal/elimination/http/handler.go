package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	consolhttp "github.com/finclose/finclose/internal/consol/http"
	"github.com/finclose/finclose/internal/elimination"
	"github.com/finclose/finclose/internal/platform/httpx"
)

// RefreshEnqueuer schedules a statement rebuild after elimination data
// changes. May be nil when no worker is wired.
type RefreshEnqueuer interface {
	EnqueueStatementRefresh(ctx context.Context, companyID int64, period string) error
}

// Handler wires elimination pair and entry endpoints.
type Handler struct {
	logger  *slog.Logger
	service *elimination.Service
	jobs    RefreshEnqueuer
}

// NewHandler constructs the handler instance.
func NewHandler(logger *slog.Logger, service *elimination.Service, jobs RefreshEnqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:  logger.With("component", "elimination.http"),
		service: service,
		jobs:    jobs,
	}
}

// MountRoutes registers elimination endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/finance/eliminations", func(r chi.Router) {
		r.Get("/pairs", h.handleListPairs)
		r.Post("/pairs", h.handleCreatePair)
		r.Patch("/pairs/{pairID}", h.handleUpdatePair)
		r.Delete("/pairs/{pairID}", h.handleDeactivatePair)
		r.Post("/pairs/{pairID}/generate", h.handleGenerate)

		r.Get("/entries", h.handleListEntries)
		r.Post("/entries", h.handleSubmitEntry)
		r.Delete("/entries/{entryID}", h.handleDeleteEntry)
	})
}

type pairPayload struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	GL1Entity         int64  `json:"gl1_entity"`
	GL1Code           string `json:"gl1_code"`
	GL2Entity         int64  `json:"gl2_entity"`
	GL2Code           string `json:"gl2_code"`
	DifferenceAccount string `json:"difference_account,omitempty"`
	Active            bool   `json:"active"`
}

func newPairPayload(pair elimination.Pair) pairPayload {
	return pairPayload{
		ID:                pair.ID.String(),
		Name:              pair.Name,
		Description:       pair.Description,
		GL1Entity:         pair.GL1.EntityID,
		GL1Code:           pair.GL1.AccountCode,
		GL2Entity:         pair.GL2.EntityID,
		GL2Code:           pair.GL2.AccountCode,
		DifferenceAccount: pair.DifferenceAccount,
		Active:            pair.Active,
	}
}

type linePayload struct {
	EntityID    int64   `json:"entity_id"`
	AccountCode string  `json:"account_code"`
	AccountName string  `json:"account_name,omitempty"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	LineNumber  int     `json:"line_number"`
}

type entryPayload struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Date        time.Time     `json:"date"`
	Period      string        `json:"period"`
	Description string        `json:"description,omitempty"`
	Lines       []linePayload `json:"lines"`
	TotalDebit  float64       `json:"total_debit"`
	TotalCredit float64       `json:"total_credit"`
	Posted      bool          `json:"posted"`
}

func newEntryPayload(entry elimination.JournalEntry) entryPayload {
	payload := entryPayload{
		ID:          entry.ID.String(),
		Name:        entry.Name,
		Date:        entry.Date,
		Period:      entry.Period,
		Description: entry.Description,
		Lines:       make([]linePayload, 0, len(entry.Lines)),
		TotalDebit:  entry.TotalDebit,
		TotalCredit: entry.TotalCredit,
		Posted:      entry.Posted,
	}
	for _, line := range entry.Lines {
		payload.Lines = append(payload.Lines, linePayload{
			EntityID:    line.EntityID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Debit:       line.Debit,
			Credit:      line.Credit,
			LineNumber:  line.LineNumber,
		})
	}
	return payload
}

type proposalPayload struct {
	GL1Label      string       `json:"gl1_label"`
	GL1Magnitude  float64      `json:"gl1_magnitude"`
	GL2Label      string       `json:"gl2_label"`
	GL2Magnitude  float64      `json:"gl2_magnitude"`
	MatchedAmount float64      `json:"matched_amount"`
	Difference    float64      `json:"difference"`
	Template      bool         `json:"template"`
	Entry         entryPayload `json:"entry"`
}

func (h *Handler) handleListPairs(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompany(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	pairs, err := h.service.ListPairs(r.Context(), companyID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	payload := make([]pairPayload, 0, len(pairs))
	for _, pair := range pairs {
		payload = append(payload, newPairPayload(pair))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleCreatePair(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyID         int64  `json:"company_id"`
		Name              string `json:"name"`
		Description       string `json:"description"`
		GL1Entity         int64  `json:"gl1_entity"`
		GL1Code           string `json:"gl1_code"`
		GL2Entity         int64  `json:"gl2_entity"`
		GL2Code           string `json:"gl2_code"`
		DifferenceAccount string `json:"difference_account"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	pair, err := h.service.CreatePair(r.Context(), elimination.CreatePairInput{
		CompanyID:         body.CompanyID,
		Name:              body.Name,
		Description:       body.Description,
		GL1Entity:         body.GL1Entity,
		GL1Code:           body.GL1Code,
		GL2Entity:         body.GL2Entity,
		GL2Code:           body.GL2Code,
		DifferenceAccount: body.DifferenceAccount,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newPairPayload(pair))
}

func (h *Handler) handleUpdatePair(w http.ResponseWriter, r *http.Request) {
	pairID, err := parseID(r, "pairID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", err.Error())
		return
	}
	var body struct {
		Name              *string `json:"name"`
		Description       *string `json:"description"`
		GL1Entity         *int64  `json:"gl1_entity"`
		GL1Code           *string `json:"gl1_code"`
		GL2Entity         *int64  `json:"gl2_entity"`
		GL2Code           *string `json:"gl2_code"`
		DifferenceAccount *string `json:"difference_account"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	pair, err := h.service.UpdatePair(r.Context(), pairID, elimination.UpdatePairInput{
		Name:              body.Name,
		Description:       body.Description,
		GL1Entity:         body.GL1Entity,
		GL1Code:           body.GL1Code,
		GL2Entity:         body.GL2Entity,
		GL2Code:           body.GL2Code,
		DifferenceAccount: body.DifferenceAccount,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newPairPayload(pair))
}

func (h *Handler) handleDeactivatePair(w http.ResponseWriter, r *http.Request) {
	pairID, err := parseID(r, "pairID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", err.Error())
		return
	}
	if err := h.service.DeactivatePair(r.Context(), pairID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	pairID, err := parseID(r, "pairID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", err.Error())
		return
	}
	var body struct {
		CompanyID int64     `json:"company_id"`
		Period    string    `json:"period"`
		Date      time.Time `json:"date"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	proposal, err := h.service.GenerateProposal(r.Context(), elimination.GenerateRequest{
		CompanyID: body.CompanyID,
		PairID:    pairID,
		Period:    body.Period,
		Date:      body.Date,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, proposalPayload{
		GL1Label:      proposal.GL1.Label,
		GL1Magnitude:  proposal.GL1.Magnitude,
		GL2Label:      proposal.GL2.Label,
		GL2Magnitude:  proposal.GL2.Magnitude,
		MatchedAmount: proposal.MatchedAmount,
		Difference:    proposal.Difference,
		Template:      proposal.Template,
		Entry:         newEntryPayload(proposal.Entry),
	})
}

func (h *Handler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompany(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	entries, err := h.service.ListEntries(r.Context(), companyID, period)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	payload := make([]entryPayload, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, newEntryPayload(entry))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleSubmitEntry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyID   int64     `json:"company_id"`
		Name        string    `json:"name"`
		Date        time.Time `json:"date"`
		Period      string    `json:"period"`
		Description string    `json:"description"`
		Lines       []struct {
			EntityID    int64   `json:"entity_id"`
			AccountCode string  `json:"account_code"`
			AccountName string  `json:"account_name"`
			Debit       float64 `json:"debit"`
			Credit      float64 `json:"credit"`
		} `json:"lines"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	in := elimination.SubmitEntryInput{
		CompanyID:   body.CompanyID,
		Name:        body.Name,
		Date:        body.Date,
		Period:      body.Period,
		Description: body.Description,
		Lines:       make([]elimination.SubmitLineInput, 0, len(body.Lines)),
	}
	for _, line := range body.Lines {
		in.Lines = append(in.Lines, elimination.SubmitLineInput{
			EntityID:    line.EntityID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Debit:       line.Debit,
			Credit:      line.Credit,
		})
	}
	entry, err := h.service.SubmitEntry(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.statementChanged(r.Context(), entry.CompanyID, entry.Period)
	httpx.JSON(w, http.StatusCreated, newEntryPayload(entry))
}

func (h *Handler) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := parseID(r, "entryID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", err.Error())
		return
	}
	if err := h.service.DeleteEntry(r.Context(), entryID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.statementChanged(r.Context(), 0, "")
	w.WriteHeader(http.StatusNoContent)
}

// statementChanged invalidates cached consolidation reports and, when a
// worker is wired, schedules a warm rebuild.
func (h *Handler) statementChanged(ctx context.Context, companyID int64, period string) {
	consolhttp.BustStatementCache()
	if h.jobs == nil || companyID == 0 {
		return
	}
	if err := h.jobs.EnqueueStatementRefresh(ctx, companyID, period); err != nil {
		h.logger.WarnContext(ctx, "refresh enqueue failed", "error", err, "company_id", companyID, "period", period)
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, elimination.ErrPairNotFound), errors.Is(err, elimination.ErrEntryNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, elimination.ErrPairExists):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case isValidationError(err):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "elimination request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// isValidationError treats the service's own input rejections as 400s.
func isValidationError(err error) bool {
	if err == nil {
		return false
	}
	return strings.HasPrefix(err.Error(), "elimination: ")
}

func parseCompany(r *http.Request) (int64, error) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company"), 10, 64)
	if err != nil || companyID <= 0 {
		return 0, errors.New("elimination: company query parameter required")
	}
	return companyID, nil
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, errors.New("elimination: invalid id")
	}
	return id, nil
}
