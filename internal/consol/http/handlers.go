package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/finclose/finclose/internal/consol"
	"github.com/finclose/finclose/internal/platform/httpx"
)

var (
	errInvalidCompany = errors.New("consol: company query parameter required")
	errMissingPeriod  = errors.New("consol: period query parameter required")
)

// AccountLookup exposes the alphabetized account picker. Kept separate from
// the statement service so pickers stay sorted while statements keep source
// order.
type AccountLookup interface {
	AccountNames(ctx context.Context, companyID int64) (map[string]string, error)
}

// Handler wires the consolidation report endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *consol.Service
	accounts  AccountLookup
	rateLimit func(http.Handler) http.Handler
}

// NewHandler constructs the handler instance.
func NewHandler(logger *slog.Logger, service *consol.Service, accounts AccountLookup) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	limiter := httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return "ip:" + r.RemoteAddr, nil
		}
		return "ip:" + host, nil
	}))
	return &Handler{
		logger:    logger.With("component", "consol.http"),
		service:   service,
		accounts:  accounts,
		rateLimit: limiter,
	}
}

// MountRoutes registers consolidation endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/finance/consol/statement", h.handleStatement)
		r.Get("/finance/consol/notes", h.handleNotes)
		r.Get("/finance/consol/check", h.handleIdentity)
		r.Get("/finance/consol/cashflow", h.handleCashFlow)
	})
	r.Get("/finance/consol/accounts", h.handleAccountNames)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	in, err := parseStatementQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}

	key := buildCacheKey("statement", in.CompanyID, in.Period, string(in.Statement), in.Expanded)
	if payload, ok := statementCache.Get(key); ok {
		recordCacheHit("statement", in.CompanyID, in.Period)
		writeCached(w, payload)
		return
	}

	payload, err, _ := singleflightBuild(r.Context(), key, func(ctx context.Context) ([]byte, error) {
		start := time.Now()
		recordCacheMiss("statement", in.CompanyID, in.Period)
		defer func() {
			observeReportBuild("statement", in.CompanyID, in.Period, time.Since(start))
		}()
		report, err := h.service.Statement(ctx, in)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(NewStatementViewModel(report))
		if err != nil {
			return nil, err
		}
		statementCache.Set(key, payload)
		return payload, nil
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeCached(w, payload)
}

func (h *Handler) handleNotes(w http.ResponseWriter, r *http.Request) {
	in, err := parseStatementQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}

	key := buildCacheKey("notes", in.CompanyID, in.Period, string(in.Statement), nil)
	if payload, ok := statementCache.Get(key); ok {
		recordCacheHit("notes", in.CompanyID, in.Period)
		writeCached(w, payload)
		return
	}

	payload, err, _ := singleflightBuild(r.Context(), key, func(ctx context.Context) ([]byte, error) {
		start := time.Now()
		recordCacheMiss("notes", in.CompanyID, in.Period)
		defer func() {
			observeReportBuild("notes", in.CompanyID, in.Period, time.Since(start))
		}()
		report, err := h.service.Notes(ctx, in)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(NewNotesViewModel(report))
		if err != nil {
			return nil, err
		}
		statementCache.Set(key, payload)
		return payload, nil
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeCached(w, payload)
}

func (h *Handler) handleIdentity(w http.ResponseWriter, r *http.Request) {
	companyID, period, err := parseScope(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	result, err := h.service.IdentityCheck(r.Context(), companyID, period)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewIdentityViewModel(result))
}

func (h *Handler) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	companyID, period, err := parseScope(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	q := r.URL.Query()
	in := consol.CashFlowInput{
		CompanyID:         companyID,
		Period:            period,
		ComparativePeriod: strings.TrimSpace(q.Get("comparative")),
		Consolidated:      strings.EqualFold(q.Get("basis"), "consolidated"),
	}

	key := buildCacheKey("cashflow", in.CompanyID, in.Period, q.Get("basis"), []string{in.ComparativePeriod})
	if payload, ok := statementCache.Get(key); ok {
		recordCacheHit("cashflow", in.CompanyID, in.Period)
		writeCached(w, payload)
		return
	}

	payload, err, _ := singleflightBuild(r.Context(), key, func(ctx context.Context) ([]byte, error) {
		start := time.Now()
		recordCacheMiss("cashflow", in.CompanyID, in.Period)
		defer func() {
			observeReportBuild("cashflow", in.CompanyID, in.Period, time.Since(start))
		}()
		report, err := h.service.CashFlow(ctx, in)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(NewCashFlowViewModel(report))
		if err != nil {
			return nil, err
		}
		statementCache.Set(key, payload)
		return payload, nil
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeCached(w, payload)
}

func (h *Handler) handleAccountNames(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompany(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	names, err := h.accounts.AccountNames(r.Context(), companyID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	type accountOption struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	options := make([]accountOption, 0, len(names))
	for code, name := range names {
		options = append(options, accountOption{Code: code, Name: name})
	}
	// Pickers alphabetize by name; statement hierarchies never do.
	sort.Slice(options, func(i, j int) bool {
		if options[i].Name == options[j].Name {
			return options[i].Code < options[j].Code
		}
		return options[i].Name < options[j].Name
	})
	httpx.JSON(w, http.StatusOK, options)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "consolidation request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// isValidationError treats the service's own input rejections as 400s.
func isValidationError(err error) bool {
	if err == nil {
		return false
	}
	return strings.HasPrefix(err.Error(), "consol: ")
}

func writeCached(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func parseCompany(r *http.Request) (int64, error) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company"), 10, 64)
	if err != nil || companyID <= 0 {
		return 0, errInvalidCompany
	}
	return companyID, nil
}

func parseScope(r *http.Request) (int64, string, error) {
	companyID, err := parseCompany(r)
	if err != nil {
		return 0, "", err
	}
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period == "" {
		return 0, "", errMissingPeriod
	}
	return companyID, period, nil
}

func parseStatementQuery(r *http.Request) (consol.StatementInput, error) {
	companyID, period, err := parseScope(r)
	if err != nil {
		return consol.StatementInput{}, err
	}
	q := r.URL.Query()
	statement := consol.StatementType(strings.TrimSpace(q.Get("statement")))
	if statement == "" {
		statement = consol.StatementBalanceSheet
	}

	var expanded []string
	if raw := strings.TrimSpace(q.Get("expanded")); raw != "" {
		seen := make(map[string]struct{})
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			expanded = append(expanded, part)
		}
	}
	return consol.StatementInput{
		CompanyID: companyID,
		Period:    period,
		Statement: statement,
		Expanded:  expanded,
	}, nil
}
