package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/finclose/finclose/internal/consol"
	consolhttp "github.com/finclose/finclose/internal/consol/http"
	jobmetrics "github.com/finclose/finclose/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// StatementBuilder is the slice of the consolidation service the refresh
// job drives.
type StatementBuilder interface {
	Statement(ctx context.Context, in consol.StatementInput) (consol.StatementReport, error)
	IdentityCheck(ctx context.Context, companyID int64, period string) (consol.IdentityResult, error)
}

// ScopeResolver provides lookups for fan-out runs.
type ScopeResolver interface {
	CompanyIDs(ctx context.Context) ([]int64, error)
	LatestPeriod(ctx context.Context, companyID int64) (string, error)
}

// StatementRefreshJob rebuilds consolidated statements after ledger or
// elimination data changes, verifies the accounting identity, and drops the
// stale report cache.
type StatementRefreshJob struct {
	Service StatementBuilder
	Repo    ScopeResolver
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStatementRefreshJob constructs the job handler.
func NewStatementRefreshJob(service StatementBuilder, repo ScopeResolver, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatementRefreshJob {
	return &StatementRefreshJob{
		Service: service,
		Repo:    repo,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the statement refresh job.
func (j *StatementRefreshJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil || j.Repo == nil {
		return errors.New("statement refresh: dependencies not configured")
	}
	var payload StatementRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskStatementRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	companyIDs, err := j.resolveCompanies(ctx, payload.CompanyID)
	if err != nil {
		resultErr = err
		j.log().Error("resolve companies", slog.Any("error", err))
		return resultErr
	}
	if len(companyIDs) == 0 {
		j.log().Info("no companies discovered")
		return resultErr
	}

	start := j.now()
	refreshed := 0
	for _, companyID := range companyIDs {
		period := payload.Period
		if period == "" {
			period, err = j.Repo.LatestPeriod(ctx, companyID)
			if err != nil {
				resultErr = err
				j.log().Error("resolve period", slog.Int64("company_id", companyID), slog.Any("error", err))
				return resultErr
			}
			if period == "" {
				continue
			}
		}
		if err := j.refreshCompany(ctx, companyID, period); err != nil {
			resultErr = err
			j.log().Error("refresh statements", slog.Int64("company_id", companyID), slog.String("period", period), slog.Any("error", err))
			return resultErr
		}
		refreshed++
	}

	consolhttp.BustStatementCache()

	j.log().Info("refreshed consolidated statements",
		slog.Int("companies", refreshed),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

// refreshCompany rebuilds every statement for one scope and checks the
// balance sheet identity. An imbalance is reported, not treated as a job
// failure: the books being wrong is a finding, not an outage.
func (j *StatementRefreshJob) refreshCompany(ctx context.Context, companyID int64, period string) error {
	for _, statement := range []consol.StatementType{
		consol.StatementBalanceSheet,
		consol.StatementIncomeStatement,
		consol.StatementEquity,
		consol.StatementCashFlow,
		consol.StatementIntercompany,
	} {
		if _, err := j.Service.Statement(ctx, consol.StatementInput{
			CompanyID: companyID,
			Period:    period,
			Statement: statement,
		}); err != nil {
			return err
		}
	}

	identity, err := j.Service.IdentityCheck(ctx, companyID, period)
	if err != nil {
		return err
	}
	if !identity.Balanced {
		j.metrics().AddImbalance(companyID, period)
		j.log().Warn("balance sheet identity broken",
			slog.Int64("company_id", companyID),
			slog.String("period", period),
			slog.Float64("difference", identity.Difference),
		)
	}
	return nil
}

func (j *StatementRefreshJob) resolveCompanies(ctx context.Context, companyID int64) ([]int64, error) {
	if companyID > 0 {
		return []int64{companyID}, nil
	}
	return j.Repo.CompanyIDs(ctx)
}

func (j *StatementRefreshJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StatementRefreshJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStatementRefresh))
	}
	return slog.Default().With(slog.String("job", TaskStatementRefresh))
}

func (j *StatementRefreshJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *StatementRefreshJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
