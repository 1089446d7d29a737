package elimination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence surface the service depends on.
type Store interface {
	ListPairs(ctx context.Context, companyID int64) ([]Pair, error)
	GetPair(ctx context.Context, id uuid.UUID) (Pair, error)
	InsertPair(ctx context.Context, pair Pair) error
	UpdatePair(ctx context.Context, pair Pair) error
	DeactivatePair(ctx context.Context, id uuid.UUID, at time.Time) error

	InsertEntry(ctx context.Context, entry JournalEntry) error
	ListEntries(ctx context.Context, companyID int64, period string) ([]JournalEntry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	AccountBalance(ctx context.Context, companyID int64, ref GLRef, period string) (float64, error)
	AccountNames(ctx context.Context, companyID int64, codes []string) (map[string]string, error)
}

// Service coordinates pair configuration, proposal generation and entry
// ingestion.
type Service struct {
	repo   Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds the elimination service.
func NewService(repo Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger.With("component", "elimination.service"),
		now:    time.Now,
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListPairs returns a company's pair configuration.
func (s *Service) ListPairs(ctx context.Context, companyID int64) ([]Pair, error) {
	if companyID <= 0 {
		return nil, errors.New("elimination: company id required")
	}
	return s.repo.ListPairs(ctx, companyID)
}

// CreatePair stores a new active pair.
func (s *Service) CreatePair(ctx context.Context, in CreatePairInput) (Pair, error) {
	if err := in.Validate(); err != nil {
		return Pair{}, err
	}
	now := s.now().UTC()
	pair := Pair{
		ID:                uuid.New(),
		CompanyID:         in.CompanyID,
		Name:              strings.TrimSpace(in.Name),
		Description:       strings.TrimSpace(in.Description),
		GL1:               GLRef{EntityID: in.GL1Entity, AccountCode: strings.TrimSpace(in.GL1Code)},
		GL2:               GLRef{EntityID: in.GL2Entity, AccountCode: strings.TrimSpace(in.GL2Code)},
		DifferenceAccount: strings.TrimSpace(in.DifferenceAccount),
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.InsertPair(ctx, pair); err != nil {
		return Pair{}, fmt.Errorf("insert pair: %w", err)
	}
	s.logger.InfoContext(ctx, "pair created", "pair_id", pair.ID, "company_id", pair.CompanyID)
	return pair, nil
}

// UpdatePair applies a partial update to an existing pair.
func (s *Service) UpdatePair(ctx context.Context, id uuid.UUID, in UpdatePairInput) (Pair, error) {
	if err := in.Validate(); err != nil {
		return Pair{}, err
	}
	pair, err := s.repo.GetPair(ctx, id)
	if err != nil {
		return Pair{}, err
	}
	if in.Name != nil {
		pair.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		pair.Description = strings.TrimSpace(*in.Description)
	}
	if in.GL1Entity != nil {
		pair.GL1.EntityID = *in.GL1Entity
	}
	if in.GL1Code != nil {
		pair.GL1.AccountCode = strings.TrimSpace(*in.GL1Code)
	}
	if in.GL2Entity != nil {
		pair.GL2.EntityID = *in.GL2Entity
	}
	if in.GL2Code != nil {
		pair.GL2.AccountCode = strings.TrimSpace(*in.GL2Code)
	}
	if in.DifferenceAccount != nil {
		pair.DifferenceAccount = strings.TrimSpace(*in.DifferenceAccount)
	}
	if pair.GL1 == pair.GL2 {
		return Pair{}, errors.New("elimination: pair sides must differ")
	}
	pair.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdatePair(ctx, pair); err != nil {
		return Pair{}, fmt.Errorf("update pair: %w", err)
	}
	return pair, nil
}

// DeactivatePair soft deletes a pair. Its generated entries stay posted.
func (s *Service) DeactivatePair(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetPair(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeactivatePair(ctx, id, s.now().UTC()); err != nil {
		return fmt.Errorf("deactivate pair: %w", err)
	}
	s.logger.InfoContext(ctx, "pair deactivated", "pair_id", id)
	return nil
}

// GenerateRequest scopes a proposal run to one pair and period.
type GenerateRequest struct {
	CompanyID int64
	PairID    uuid.UUID
	Period    string
	Date      time.Time
}

// Validate checks the request shape.
func (r GenerateRequest) Validate() error {
	if r.CompanyID <= 0 {
		return errors.New("elimination: company id required")
	}
	if r.PairID == uuid.Nil {
		return errors.New("elimination: pair id required")
	}
	if _, err := time.Parse("2006-01", r.Period); err != nil {
		return errors.New("elimination: period must use YYYY-MM format")
	}
	return nil
}

// GenerateProposal resolves both sides of a pair from the trial balance and
// produces a matching entry proposal. The proposal is not persisted; the
// caller submits it, edited or not, through SubmitEntry.
func (s *Service) GenerateProposal(ctx context.Context, req GenerateRequest) (Proposal, error) {
	if err := req.Validate(); err != nil {
		return Proposal{}, err
	}
	pair, err := s.repo.GetPair(ctx, req.PairID)
	if err != nil {
		return Proposal{}, err
	}
	if pair.CompanyID != req.CompanyID {
		return Proposal{}, ErrPairNotFound
	}
	if !pair.Active {
		return Proposal{}, errors.New("elimination: pair is deactivated")
	}

	gl1Net, err := s.repo.AccountBalance(ctx, req.CompanyID, pair.GL1, req.Period)
	if err != nil {
		return Proposal{}, fmt.Errorf("resolve gl1 balance: %w", err)
	}
	gl2Net, err := s.repo.AccountBalance(ctx, req.CompanyID, pair.GL2, req.Period)
	if err != nil {
		return Proposal{}, fmt.Errorf("resolve gl2 balance: %w", err)
	}

	codes := []string{pair.GL1.AccountCode, pair.GL2.AccountCode}
	if pair.DifferenceAccount != "" {
		codes = append(codes, pair.DifferenceAccount)
	}
	names, err := s.repo.AccountNames(ctx, req.CompanyID, codes)
	if err != nil {
		return Proposal{}, fmt.Errorf("resolve account names: %w", err)
	}

	date := req.Date
	if date.IsZero() {
		date = s.now().UTC()
	}
	proposal := Generate(GenerateInput{
		Pair:     pair,
		GL1Net:   gl1Net,
		GL2Net:   gl2Net,
		GL1Name:  names[pair.GL1.AccountCode],
		GL2Name:  names[pair.GL2.AccountCode],
		DiffName: names[pair.DifferenceAccount],
		Period:   req.Period,
		Date:     date,
	})
	s.logger.InfoContext(ctx, "proposal generated",
		"pair_id", pair.ID,
		"period", req.Period,
		"matched", proposal.MatchedAmount,
		"difference", proposal.Difference,
		"template", proposal.Template,
	)
	return proposal, nil
}

// SubmitEntry runs the ingestion gate and posts the entry. Posted entries
// feed the netting path of consolidated statements.
func (s *Service) SubmitEntry(ctx context.Context, in SubmitEntryInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	entry := in.Entry(uuid.New(), s.now().UTC())
	if err := entry.CheckBalanced(); err != nil {
		return JournalEntry{}, err
	}
	entry.Posted = true
	if err := s.repo.InsertEntry(ctx, entry); err != nil {
		return JournalEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	s.logger.InfoContext(ctx, "entry posted",
		"entry_id", entry.ID,
		"company_id", entry.CompanyID,
		"period", entry.Period,
		"total_debit", entry.TotalDebit,
	)
	return entry, nil
}

// ListEntries returns posted entries for one company and period.
func (s *Service) ListEntries(ctx context.Context, companyID int64, period string) ([]JournalEntry, error) {
	if companyID <= 0 {
		return nil, errors.New("elimination: company id required")
	}
	if _, err := time.Parse("2006-01", period); err != nil {
		return nil, errors.New("elimination: period must use YYYY-MM format")
	}
	return s.repo.ListEntries(ctx, companyID, period)
}

// DeleteEntry removes an entry and its lines.
func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("elimination: entry id required")
	}
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "entry deleted", "entry_id", id)
	return nil
}
