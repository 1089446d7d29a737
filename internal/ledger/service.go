package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Store is the persistence surface the service depends on.
type Store interface {
	Rows(ctx context.Context, companyID, entityID int64, period string) ([]Row, error)
	ReplaceRows(ctx context.Context, companyID, entityID int64, period string, rows []Row) error
}

// Service applies bulk trial balance utilities: precision rounding with a
// difference posting, and debit/credit column swaps.
type Service struct {
	repo   Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds the ledger service.
func NewService(repo Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger.With("component", "ledger.service"),
		now:    time.Now,
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Round rounds one entity's trial balance for a period. When the rounding
// residue exceeds tolerance it is posted to the configured difference
// account; without a difference account the run is rejected rather than
// leaving the balance broken.
func (s *Service) Round(ctx context.Context, in RoundInput) (RoundResult, error) {
	if err := in.Validate(); err != nil {
		return RoundResult{}, err
	}
	rows, err := s.repo.Rows(ctx, in.CompanyID, in.EntityID, in.Period)
	if err != nil {
		return RoundResult{}, fmt.Errorf("load rows: %w", err)
	}
	if len(rows) == 0 {
		return RoundResult{}, ErrNoRows
	}

	rounded, adjusted := RoundRows(rows, in.Mode, in.Precision)
	residue := Residue(rounded) - Residue(rows)
	result := RoundResult{RowsAdjusted: adjusted, Difference: residue}

	if math.Abs(residue) > DifferenceTolerance {
		if in.DifferenceAccount == "" {
			return RoundResult{}, errors.New("ledger: rounding residue exceeds tolerance and no difference account configured")
		}
		rounded = append(rounded, DifferenceRow(residue, in.EntityID, in.Period, in.DifferenceAccount))
		result.DifferencePosted = true
	}

	if err := s.repo.ReplaceRows(ctx, in.CompanyID, in.EntityID, in.Period, rounded); err != nil {
		return RoundResult{}, fmt.Errorf("replace rows: %w", err)
	}
	s.logger.InfoContext(ctx, "trial balance rounded",
		"company_id", in.CompanyID,
		"entity_id", in.EntityID,
		"period", in.Period,
		"mode", string(in.Mode),
		"rows_adjusted", result.RowsAdjusted,
		"difference", result.Difference,
	)
	return result, nil
}

// Swap flips debit and credit on every row of one entity's trial balance.
func (s *Service) Swap(ctx context.Context, in SwapInput) (int, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	rows, err := s.repo.Rows(ctx, in.CompanyID, in.EntityID, in.Period)
	if err != nil {
		return 0, fmt.Errorf("load rows: %w", err)
	}
	if len(rows) == 0 {
		return 0, ErrNoRows
	}
	if err := s.repo.ReplaceRows(ctx, in.CompanyID, in.EntityID, in.Period, SwapRows(rows)); err != nil {
		return 0, fmt.Errorf("replace rows: %w", err)
	}
	s.logger.InfoContext(ctx, "trial balance columns swapped",
		"company_id", in.CompanyID,
		"entity_id", in.EntityID,
		"period", in.Period,
		"rows", len(rows),
	)
	return len(rows), nil
}
