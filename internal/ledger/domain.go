package ledger

import (
	"errors"
	"fmt"
	"time"
)

// DifferenceTolerance is the largest rounding residue that may be dropped
// silently instead of being posted to the difference account.
const DifferenceTolerance = 0.01

// ErrNoRows occurs when an operation targets an entity/period with no
// trial balance loaded.
var ErrNoRows = errors.New("ledger: no trial balance rows for scope")

// RoundingMode selects how amounts are pushed to the target precision.
type RoundingMode string

const (
	RoundNearest RoundingMode = "nearest"
	RoundUp      RoundingMode = "up"
	RoundDown    RoundingMode = "down"
)

// Valid reports whether the mode is one of the supported three.
func (m RoundingMode) Valid() bool {
	switch m {
	case RoundNearest, RoundUp, RoundDown:
		return true
	}
	return false
}

// Row is one trial balance line for an entity account in a period.
type Row struct {
	EntityID    int64
	AccountCode string
	Period      string
	Debit       float64
	Credit      float64
}

// RoundInput scopes a rounding run.
type RoundInput struct {
	CompanyID         int64
	EntityID          int64
	Period            string
	Mode              RoundingMode
	Precision         int
	DifferenceAccount string
}

// Validate checks the request shape.
func (in RoundInput) Validate() error {
	if in.CompanyID <= 0 {
		return errors.New("ledger: company id required")
	}
	if in.EntityID <= 0 {
		return errors.New("ledger: entity id required")
	}
	if _, err := time.Parse("2006-01", in.Period); err != nil {
		return errors.New("ledger: period must use YYYY-MM format")
	}
	if !in.Mode.Valid() {
		return fmt.Errorf("ledger: unknown rounding mode %q", in.Mode)
	}
	if in.Precision < 0 || in.Precision > 2 {
		return errors.New("ledger: precision must be between 0 and 2")
	}
	return nil
}

// RoundResult reports what a rounding run changed.
type RoundResult struct {
	RowsAdjusted     int
	Difference       float64
	DifferencePosted bool
}

// SwapInput scopes a debit/credit swap.
type SwapInput struct {
	CompanyID int64
	EntityID  int64
	Period    string
}

// Validate checks the request shape.
func (in SwapInput) Validate() error {
	if in.CompanyID <= 0 {
		return errors.New("ledger: company id required")
	}
	if in.EntityID <= 0 {
		return errors.New("ledger: entity id required")
	}
	if _, err := time.Parse("2006-01", in.Period); err != nil {
		return errors.New("ledger: period must use YYYY-MM format")
	}
	return nil
}
