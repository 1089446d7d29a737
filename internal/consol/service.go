package consol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrSnapshotNotFound indicates no ledger data exists for the requested scope.
var ErrSnapshotNotFound = errors.New("consol: snapshot not found")

// SnapshotSource supplies immutable ledger snapshots and stored derived
// lines. Implemented by the pgx repository; tests substitute fakes.
type SnapshotSource interface {
	Snapshot(ctx context.Context, companyID int64, period string) (*Snapshot, error)
	DerivedLines(ctx context.Context, companyID int64) ([]DerivedLine, error)
}

// Service orchestrates statement builds over ledger snapshots. The engine
// itself stays pure; the service owns I/O and input validation.
type Service struct {
	repo   SnapshotSource
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a consolidation service instance.
func NewService(repo SnapshotSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger.With("component", "consol.service"),
		now:    time.Now,
	}
}

// WithClock overrides the clock for deterministic tests.
func (s *Service) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// StatementInput selects one consolidation working.
type StatementInput struct {
	CompanyID int64
	Period    string
	Statement StatementType
	Expanded  []string
}

// Validate checks the request shape before any I/O.
func (in StatementInput) Validate() error {
	if in.CompanyID <= 0 {
		return errors.New("consol: company id required")
	}
	if in.Period == "" {
		return errors.New("consol: period required")
	}
	if _, err := time.Parse("2006-01", in.Period); err != nil {
		return fmt.Errorf("consol: invalid period %q, want YYYY-MM", in.Period)
	}
	if !in.Statement.Valid() {
		return fmt.Errorf("consol: unknown statement type %q", in.Statement)
	}
	return nil
}

// Statement loads the snapshot for the requested scope and renders the
// consolidation working.
func (s *Service) Statement(ctx context.Context, in StatementInput) (StatementReport, error) {
	if s == nil || s.repo == nil {
		return StatementReport{}, errors.New("consol: service not initialised")
	}
	if err := in.Validate(); err != nil {
		return StatementReport{}, err
	}

	snapshot, err := s.repo.Snapshot(ctx, in.CompanyID, in.Period)
	if err != nil {
		return StatementReport{}, err
	}

	state := make(ExpandState, len(in.Expanded))
	for _, id := range in.Expanded {
		state[id] = true
	}

	report := snapshot.BuildStatement(in.Statement, state)
	s.logger.DebugContext(ctx, "statement built",
		"statement", in.Statement,
		"period", in.Period,
		"rows", len(report.Rows),
	)
	return report, nil
}

// Notes renders the note-number view of the requested statement.
func (s *Service) Notes(ctx context.Context, in StatementInput) (NotesReport, error) {
	if s == nil || s.repo == nil {
		return NotesReport{}, errors.New("consol: service not initialised")
	}
	if err := in.Validate(); err != nil {
		return NotesReport{}, err
	}
	snapshot, err := s.repo.Snapshot(ctx, in.CompanyID, in.Period)
	if err != nil {
		return NotesReport{}, err
	}
	report := snapshot.BuildNotes(in.Statement)
	s.logger.DebugContext(ctx, "notes built",
		"statement", in.Statement,
		"period", in.Period,
		"groups", len(report.Groups),
	)
	return report, nil
}

// IdentityCheck runs the balance-sheet identity over the requested scope.
func (s *Service) IdentityCheck(ctx context.Context, companyID int64, period string) (IdentityResult, error) {
	if s == nil || s.repo == nil {
		return IdentityResult{}, errors.New("consol: service not initialised")
	}
	in := StatementInput{CompanyID: companyID, Period: period, Statement: StatementBalanceSheet}
	if err := in.Validate(); err != nil {
		return IdentityResult{}, err
	}
	snapshot, err := s.repo.Snapshot(ctx, companyID, period)
	if err != nil {
		return IdentityResult{}, err
	}
	return snapshot.CheckIdentity(), nil
}

// CashFlowInput selects a derived-line evaluation across two periods.
type CashFlowInput struct {
	CompanyID         int64
	Period            string
	ComparativePeriod string
	Consolidated      bool
}

// Validate checks both period references.
func (in CashFlowInput) Validate() error {
	if in.CompanyID <= 0 {
		return errors.New("consol: company id required")
	}
	for _, period := range []string{in.Period, in.ComparativePeriod} {
		if period == "" {
			return errors.New("consol: current and comparative periods required")
		}
		if _, err := time.Parse("2006-01", period); err != nil {
			return fmt.Errorf("consol: invalid period %q, want YYYY-MM", period)
		}
	}
	return nil
}

// CashFlowReport carries every evaluated derived line plus the net movement.
type CashFlowReport struct {
	Period            string
	ComparativePeriod string
	Lines             []DerivedLineResult
	NetCashMovement   float64
	Refreshed         time.Time
}

// CashFlow evaluates the company's stored derived lines against the current
// and comparative snapshots.
func (s *Service) CashFlow(ctx context.Context, in CashFlowInput) (CashFlowReport, error) {
	if s == nil || s.repo == nil {
		return CashFlowReport{}, errors.New("consol: service not initialised")
	}
	if err := in.Validate(); err != nil {
		return CashFlowReport{}, err
	}

	current, err := s.repo.Snapshot(ctx, in.CompanyID, in.Period)
	if err != nil {
		return CashFlowReport{}, err
	}
	comparative, err := s.repo.Snapshot(ctx, in.CompanyID, in.ComparativePeriod)
	if err != nil {
		return CashFlowReport{}, err
	}
	lines, err := s.repo.DerivedLines(ctx, in.CompanyID)
	if err != nil {
		return CashFlowReport{}, err
	}

	report := CashFlowReport{
		Period:            in.Period,
		ComparativePeriod: in.ComparativePeriod,
		Lines:             make([]DerivedLineResult, 0, len(lines)),
		Refreshed:         s.now().UTC(),
	}
	for _, line := range lines {
		result, err := EvaluateDerivedLine(line, current, comparative, in.Consolidated)
		if err != nil {
			return CashFlowReport{}, fmt.Errorf("consol: line %q: %w", line.Name, err)
		}
		report.Lines = append(report.Lines, result)
		report.NetCashMovement += result.CashImpact
	}
	return report, nil
}
