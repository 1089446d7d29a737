package elimination

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BalanceTolerance is the maximum debit/credit mismatch an entry may carry
// before ingestion rejects it.
const BalanceTolerance = 0.01

// ErrPairNotFound occurs when pair lookup fails.
var ErrPairNotFound = errors.New("elimination: pair not found")

// ErrPairExists occurs when a pair name is already taken within a company.
var ErrPairExists = errors.New("elimination: pair already exists")

// ErrEntryNotFound occurs when journal entry lookup fails.
var ErrEntryNotFound = errors.New("elimination: entry not found")

// ErrTooFewLines indicates an entry below the two-line minimum.
var ErrTooFewLines = errors.New("elimination: entry requires at least two lines")

// ErrUnbalancedEntry indicates debit and credit totals diverge beyond tolerance.
var ErrUnbalancedEntry = errors.New("elimination: entry not balanced")

var validate = validator.New()

// GLRef points at one general-ledger balance: an account held by an entity.
type GLRef struct {
	EntityID    int64
	AccountCode string
}

// Pair configures two GL references expected to offset each other, plus an
// optional account that absorbs the residual when they do not match exactly.
type Pair struct {
	ID                uuid.UUID
	CompanyID         int64
	Name              string
	Description       string
	GL1               GLRef
	GL2               GLRef
	DifferenceAccount string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreatePairInput validates new pair configuration.
type CreatePairInput struct {
	CompanyID         int64  `validate:"required,gt=0"`
	Name              string `validate:"required"`
	Description       string
	GL1Entity         int64  `validate:"required,gt=0"`
	GL1Code           string `validate:"required"`
	GL2Entity         int64  `validate:"required,gt=0"`
	GL2Code           string `validate:"required"`
	DifferenceAccount string
}

// Validate ensures the request is coherent.
func (in CreatePairInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("elimination: invalid pair: %w", err)
	}
	if in.GL1Entity == in.GL2Entity && in.GL1Code == in.GL2Code {
		return errors.New("elimination: pair sides must differ")
	}
	return nil
}

// UpdatePairInput mutates existing pair metadata. Nil fields are untouched.
type UpdatePairInput struct {
	Name              *string
	Description       *string
	GL1Entity         *int64
	GL1Code           *string
	GL2Entity         *int64
	GL2Code           *string
	DifferenceAccount *string
}

// Validate rejects blanking out required fields.
func (in UpdatePairInput) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return errors.New("elimination: name required")
	}
	if (in.GL1Code != nil && strings.TrimSpace(*in.GL1Code) == "") ||
		(in.GL2Code != nil && strings.TrimSpace(*in.GL2Code) == "") {
		return errors.New("elimination: account codes required")
	}
	if (in.GL1Entity != nil && *in.GL1Entity <= 0) ||
		(in.GL2Entity != nil && *in.GL2Entity <= 0) {
		return errors.New("elimination: entity ids required")
	}
	return nil
}

// JournalLine is one leg of an elimination journal entry.
type JournalLine struct {
	EntityID    int64
	AccountCode string
	AccountName string
	Debit       float64
	Credit      float64
	LineNumber  int
}

// JournalEntry is an elimination posting with ordered lines. Entries only
// reach the netting path once posted, and posting requires the balance gate
// to pass.
type JournalEntry struct {
	ID          uuid.UUID
	CompanyID   int64
	Name        string
	Date        time.Time
	Period      string
	Description string
	Lines       []JournalLine
	TotalDebit  float64
	TotalCredit float64
	Posted      bool
	CreatedAt   time.Time
}

// Totals sums the entry's debit and credit columns.
func (e JournalEntry) Totals() (debit, credit float64) {
	for _, line := range e.Lines {
		debit += line.Debit
		credit += line.Credit
	}
	return debit, credit
}

// CheckBalanced enforces the one hard validation gate: at least two lines
// and debit equal to credit within tolerance. Everything else in the engine
// tolerates and skips; this rejects.
func (e JournalEntry) CheckBalanced() error {
	if len(e.Lines) < 2 {
		return ErrTooFewLines
	}
	debit, credit := e.Totals()
	if diff := math.Abs(debit - credit); diff > BalanceTolerance {
		return fmt.Errorf("%w: debit %.2f, credit %.2f, difference %.2f", ErrUnbalancedEntry, debit, credit, diff)
	}
	return nil
}

// SubmitEntryInput carries a manual or generated entry into ingestion.
type SubmitEntryInput struct {
	CompanyID   int64  `validate:"required,gt=0"`
	Name        string `validate:"required"`
	Date        time.Time
	Period      string `validate:"required"`
	Description string
	Lines       []SubmitLineInput `validate:"required,min=2,dive"`
}

// SubmitLineInput is one inbound entry line.
type SubmitLineInput struct {
	EntityID    int64  `validate:"required,gt=0"`
	AccountCode string `validate:"required"`
	AccountName string
	Debit       float64 `validate:"gte=0"`
	Credit      float64 `validate:"gte=0"`
}

// Validate checks shape; the balance gate runs separately on the assembled
// entry so its failure reports totals.
func (in SubmitEntryInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("elimination: invalid entry: %w", err)
	}
	if in.Date.IsZero() {
		return errors.New("elimination: entry date required")
	}
	return nil
}

// Entry assembles the domain entry from validated input.
func (in SubmitEntryInput) Entry(id uuid.UUID, now time.Time) JournalEntry {
	entry := JournalEntry{
		ID:          id,
		CompanyID:   in.CompanyID,
		Name:        strings.TrimSpace(in.Name),
		Date:        in.Date,
		Period:      in.Period,
		Description: strings.TrimSpace(in.Description),
		Lines:       make([]JournalLine, 0, len(in.Lines)),
		CreatedAt:   now,
	}
	for i, line := range in.Lines {
		entry.Lines = append(entry.Lines, JournalLine{
			EntityID:    line.EntityID,
			AccountCode: strings.TrimSpace(line.AccountCode),
			AccountName: strings.TrimSpace(line.AccountName),
			Debit:       line.Debit,
			Credit:      line.Credit,
			LineNumber:  i + 1,
		})
	}
	entry.TotalDebit, entry.TotalCredit = entry.Totals()
	return entry
}

// FormatEntryName renders a consistent name for generated entries.
func FormatEntryName(pair Pair, period string) string {
	return fmt.Sprintf("Elimination %s - %s", pair.Name, period)
}
