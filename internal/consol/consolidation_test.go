package consol

import "testing"

func rowByID(rows []StatementRow, id string) *StatementRow {
	for i := range rows {
		if rows[i].NodeID == id {
			return &rows[i]
		}
	}
	return nil
}

func TestBuildStatementCollapsedShowsClassesOnly(t *testing.T) {
	s := testSnapshot()
	report := s.BuildStatement(StatementBalanceSheet, ExpandState{})

	for _, row := range report.Rows {
		if row.Level != LevelClass {
			t.Fatalf("collapsed statement must only render class rows, got %s", row.NodeID)
		}
		if row.Depth != 0 {
			t.Fatalf("class rows render at depth 0, got %d", row.Depth)
		}
	}
	if report.Identity == nil {
		t.Fatal("balance sheet must attach the identity check")
	}
	if !report.Identity.Balanced {
		t.Fatalf("fixture books are balanced, got difference %v", report.Identity.Difference)
	}
}

func TestBuildStatementExpandRevealsChildren(t *testing.T) {
	s := testSnapshot()
	report := s.BuildStatement(StatementBalanceSheet, ExpandState{
		"class-Assets":                  true,
		"subclass-Assets-Current Assets": true,
	})

	subclass := rowByID(report.Rows, "subclass-Assets-Current Assets")
	if subclass == nil {
		t.Fatal("expanded class must reveal its subclasses")
	}
	if subclass.Depth != 1 {
		t.Fatalf("subclass renders at depth 1, got %d", subclass.Depth)
	}
	note := rowByID(report.Rows, "note-Assets-Current Assets-Cash & Equivalents")
	if note == nil {
		t.Fatal("expanded subclass must reveal its notes")
	}
	// The expanded subclass row shows only its own accounts, i.e. nothing.
	if subclass.Consolidated != 0 {
		t.Fatalf("expanded non-leaf shows own accounts only, got %.2f", subclass.Consolidated)
	}
	// The class figure stays the full subtree despite being expanded.
	class := rowByID(report.Rows, "class-Assets")
	if !almostEqual(class.Consolidated, 900) {
		t.Fatalf("class row keeps its subtree figure, got %.2f", class.Consolidated)
	}
}

func TestBuildStatementProfitRow(t *testing.T) {
	s := testSnapshot()
	report := s.BuildStatement(StatementBalanceSheet, ExpandState{})

	profit := rowByID(report.Rows, ProfitLossNodeID)
	if profit == nil {
		t.Fatal("balance sheet must render the profit row")
	}
	if !profit.Synthetic {
		t.Fatal("profit row must be flagged synthetic")
	}
	if !almostEqual(profit.Consolidated, 300) {
		t.Fatalf("profit row: expected 300, got %.2f", profit.Consolidated)
	}
	if len(profit.ByEntity) != 0 {
		t.Fatalf("profit row carries no per-entity figures, got %v", profit.ByEntity)
	}

	// Directly after Equity.
	for i, row := range report.Rows {
		if row.NodeID == "class-Equity" {
			if i+1 >= len(report.Rows) || report.Rows[i+1].NodeID != ProfitLossNodeID {
				t.Fatal("profit row must follow the Equity class")
			}
		}
	}
}

func TestBuildNotesGroupsWithFigures(t *testing.T) {
	s := testSnapshot()
	report := s.BuildNotes(StatementBalanceSheet)

	if report.Statement != StatementBalanceSheet || report.Period != "2026-08" {
		t.Fatalf("report scope wrong: %+v", report)
	}
	if len(report.Groups) == 0 {
		t.Fatal("balance sheet fixture must yield note groups")
	}
	first := report.Groups[0]
	if first.NoteNumber != "4" || len(first.Notes) != 1 {
		t.Fatalf("numbered groups come first in numeric order, got %+v", first)
	}
	cash := first.Notes[0]
	if cash.Name != "Cash & Equivalents" {
		t.Fatalf("unexpected note: %+v", cash)
	}
	// Notes roll up their full subtree regardless of expand state.
	if !almostEqual(cash.Consolidated, 750) {
		t.Fatalf("cash note: expected 750, got %.2f", cash.Consolidated)
	}
	if !almostEqual(cash.ByEntity[1], 500) || !almostEqual(cash.ByEntity[2], 250) {
		t.Fatalf("cash note per entity: got %v", cash.ByEntity)
	}
}

func TestBuildStatementIncomeStatementOmitsIdentity(t *testing.T) {
	s := testSnapshot()
	report := s.BuildStatement(StatementIncomeStatement, ExpandState{})
	if report.Identity != nil {
		t.Fatal("identity check is a balance-sheet concern")
	}
	revenue := rowByID(report.Rows, "class-Revenue")
	if revenue == nil || !almostEqual(revenue.Consolidated, -300) {
		t.Fatalf("revenue class raw figure: expected -300, got %+v", revenue)
	}
}
