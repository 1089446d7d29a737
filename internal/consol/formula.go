package consol

import (
	"errors"
	"fmt"
)

// FormulaItem is one signed reference inside a derived line: take every
// account whose attribute at Level equals Name and add or subtract its
// balance.
type FormulaItem struct {
	Operator string
	Level    NodeLevel
	Name     string
}

// Validate rejects structurally malformed items; an item that merely
// resolves to zero accounts is fine and contributes nothing.
func (i FormulaItem) Validate() error {
	if i.Operator != "+" && i.Operator != "-" {
		return fmt.Errorf("consol: formula operator must be + or -, got %q", i.Operator)
	}
	switch i.Level {
	case LevelClass, LevelSubclass, LevelNote, LevelSubnote:
	default:
		return fmt.Errorf("consol: unknown formula level %q", i.Level)
	}
	if i.Name == "" {
		return errors.New("consol: formula item name required")
	}
	return nil
}

// DerivedLine is a user-authored statement line (a cash-flow component,
// typically) computed from hierarchy references rather than direct leaf
// accounts. Sign is the line's own cash direction, +1 or -1, distinct from
// each item's operator.
type DerivedLine struct {
	ID    int64
	Name  string
	Sign  float64
	Items []FormulaItem
}

// Validate checks the line shape before evaluation.
func (l DerivedLine) Validate() error {
	if l.Name == "" {
		return errors.New("consol: derived line name required")
	}
	if l.Sign != 1 && l.Sign != -1 {
		return fmt.Errorf("consol: derived line sign must be +1 or -1, got %v", l.Sign)
	}
	for _, item := range l.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DerivedLineResult carries the evaluated figures for one line.
type DerivedLineResult struct {
	LineID      int64
	Name        string
	Current     float64
	Comparative float64
	Movement    float64
	CashImpact  float64
}

// EvaluateDerivedLine resolves each item against both snapshots and
// accumulates with the item's operator sign. Movement is current minus
// comparative and the cash impact applies the line's own sign on top.
// When consolidated is true the per-item figure includes elimination and
// adjustment nets, otherwise it is the raw all-entities balance.
func EvaluateDerivedLine(line DerivedLine, current, comparative *Snapshot, consolidated bool) (DerivedLineResult, error) {
	if err := line.Validate(); err != nil {
		return DerivedLineResult{}, err
	}
	result := DerivedLineResult{LineID: line.ID, Name: line.Name}
	for _, item := range line.Items {
		sign := 1.0
		if item.Operator == "-" {
			sign = -1.0
		}
		result.Current += sign * itemValue(current, item, consolidated)
		result.Comparative += sign * itemValue(comparative, item, consolidated)
	}
	result.Movement = result.Current - result.Comparative
	result.CashImpact = result.Movement * line.Sign
	return result, nil
}

func itemValue(snapshot *Snapshot, item FormulaItem, consolidated bool) float64 {
	if snapshot == nil {
		return 0
	}
	accounts := SetOf(snapshot.AccountsAt(item.Level, item.Name))
	if len(accounts) == 0 {
		return 0
	}
	if consolidated {
		return snapshot.ConsolidatedValue(accounts)
	}
	return snapshot.AllEntitiesBalance(accounts)
}
