package consol

import (
	"strings"
	"testing"
)

// comparativeSnapshot mirrors testSnapshot with smaller balances so every
// line shows a movement.
func comparativeSnapshot() *Snapshot {
	s := testSnapshot()
	s.Period = "2026-07"
	s.Postings = []Posting{
		{AccountCode: "1000", EntityID: 1, Period: "2026-07", Debit: 300},
		{AccountCode: "2000", EntityID: 1, Period: "2026-07", Credit: 120},
		{AccountCode: "1100", EntityID: 2, Period: "2026-07", Debit: 90},
	}
	return s
}

func TestEvaluateDerivedLine(t *testing.T) {
	current := testSnapshot()
	comparative := comparativeSnapshot()

	line := DerivedLine{
		ID:   7,
		Name: "Working capital movement",
		Sign: -1,
		Items: []FormulaItem{
			{Operator: "+", Level: LevelNote, Name: "Trade Receivables"},
			{Operator: "-", Level: LevelNote, Name: "Trade Payables"},
		},
	}

	result, err := EvaluateDerivedLine(line, current, comparative, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Current: receivables 150, payables -300 -> 150 - (-300) = 450.
	// Comparative: receivables 90, payables -120 -> 90 - (-120) = 210.
	if !almostEqual(result.Current, 450) {
		t.Fatalf("current: expected 450, got %.2f", result.Current)
	}
	if !almostEqual(result.Comparative, 210) {
		t.Fatalf("comparative: expected 210, got %.2f", result.Comparative)
	}
	if !almostEqual(result.Movement, 240) {
		t.Fatalf("movement: expected 240, got %.2f", result.Movement)
	}
	if !almostEqual(result.CashImpact, -240) {
		t.Fatalf("cash impact applies the line sign: expected -240, got %.2f", result.CashImpact)
	}
}

func TestEvaluateDerivedLineZeroMatchContributesNothing(t *testing.T) {
	current := testSnapshot()
	comparative := comparativeSnapshot()
	line := DerivedLine{
		Name: "Ghost",
		Sign: 1,
		Items: []FormulaItem{
			{Operator: "+", Level: LevelSubnote, Name: "No Such Subnote"},
		},
	}
	result, err := EvaluateDerivedLine(line, current, comparative, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Current != 0 || result.Comparative != 0 || result.CashImpact != 0 {
		t.Fatalf("zero-match items must contribute 0, got %+v", result)
	}
}

func TestEvaluateDerivedLineConsolidated(t *testing.T) {
	current := testSnapshot()
	current.Eliminations = []EliminationSource{
		EliminationEntry{CreditAccount: "1100", Amount: 50},
	}
	comparative := comparativeSnapshot()
	line := DerivedLine{
		Name:  "Receivables",
		Sign:  1,
		Items: []FormulaItem{{Operator: "+", Level: LevelNote, Name: "Trade Receivables"}},
	}

	raw, err := EvaluateDerivedLine(line, current, comparative, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	consolidated, err := EvaluateDerivedLine(line, current, comparative, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(raw.Current, 150) || !almostEqual(consolidated.Current, 100) {
		t.Fatalf("consolidated evaluation must include elimination nets: raw=%.2f consolidated=%.2f", raw.Current, consolidated.Current)
	}
}

func TestDerivedLineValidation(t *testing.T) {
	cases := []struct {
		name    string
		line    DerivedLine
		wantErr string
	}{
		{
			"bad operator",
			DerivedLine{Name: "x", Sign: 1, Items: []FormulaItem{{Operator: "*", Level: LevelClass, Name: "Assets"}}},
			"operator",
		},
		{
			"bad level",
			DerivedLine{Name: "x", Sign: 1, Items: []FormulaItem{{Operator: "+", Level: "group", Name: "Assets"}}},
			"level",
		},
		{
			"bad sign",
			DerivedLine{Name: "x", Sign: 0},
			"sign",
		},
		{
			"missing name",
			DerivedLine{Sign: 1},
			"name",
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateDerivedLine(tt.line, testSnapshot(), comparativeSnapshot(), false)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEvaluateDerivedLineNilComparative(t *testing.T) {
	line := DerivedLine{
		Name:  "Receivables",
		Sign:  1,
		Items: []FormulaItem{{Operator: "+", Level: LevelNote, Name: "Trade Receivables"}},
	}
	result, err := EvaluateDerivedLine(line, testSnapshot(), nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(result.Movement, 150) {
		t.Fatalf("nil comparative acts as zero: expected 150, got %.2f", result.Movement)
	}
}
