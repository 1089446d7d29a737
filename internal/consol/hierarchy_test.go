package consol

import "testing"

func TestBuildHierarchyBalanceSheet(t *testing.T) {
	tree := BuildHierarchy(testAccounts(), StatementBalanceSheet)

	wantClasses := []string{"Assets", "Liabilities", "Equity", "Profit / (Loss)"}
	if len(tree) != len(wantClasses) {
		t.Fatalf("expected %d classes, got %d", len(wantClasses), len(tree))
	}
	for i, name := range wantClasses {
		if tree[i].Name != name {
			t.Fatalf("class %d: expected %q, got %q", i, name, tree[i].Name)
		}
	}

	profit := tree[3]
	if !profit.Synthetic || profit.ID != ProfitLossNodeID {
		t.Fatalf("expected synthetic profit node after Equity, got %+v", profit)
	}
	if len(profit.Children) != 0 || len(profit.Accounts) != 0 {
		t.Fatalf("profit node must not carry children or accounts")
	}
}

func TestBuildHierarchyCompleteness(t *testing.T) {
	tree := BuildHierarchy(testAccounts(), StatementBalanceSheet)

	seen := make(map[string]int)
	var walk func(node *Node)
	walk = func(node *Node) {
		if node.Level == LevelSubnote {
			for _, account := range node.Accounts {
				seen[account.Code]++
			}
		}
		if len(node.Accounts) > 0 && node.Level != LevelSubnote {
			t.Fatalf("node %s carries accounts at level %s", node.ID, node.Level)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, node := range tree {
		walk(node)
	}

	// Every active balance-sheet account lands in exactly one subnote.
	for _, code := range []string{"1000", "1100", "1500", "2000", "3000"} {
		if seen[code] != 1 {
			t.Fatalf("account %s appears %d times, want 1", code, seen[code])
		}
	}
	// Inactive, blank-class and income-statement accounts stay out.
	for _, code := range []string{"1900", "9999", "4000", "5000"} {
		if seen[code] != 0 {
			t.Fatalf("account %s should not appear in balance sheet", code)
		}
	}
}

func TestBuildHierarchyNodeIDs(t *testing.T) {
	tree := BuildHierarchy(testAccounts(), StatementBalanceSheet)
	assets := tree[0]
	if assets.ID != "class-Assets" {
		t.Fatalf("unexpected class id %s", assets.ID)
	}
	current := assets.Children[0]
	if current.ID != "subclass-Assets-Current Assets" {
		t.Fatalf("unexpected subclass id %s", current.ID)
	}
	note := current.Children[0]
	if note.ID != "note-Assets-Current Assets-Cash & Equivalents" {
		t.Fatalf("unexpected note id %s", note.ID)
	}
	if note.NoteNumber != "4" {
		t.Fatalf("expected note number 4, got %q", note.NoteNumber)
	}
	subnote := note.Children[0]
	if subnote.ID != "subnote-Assets-Current Assets-Cash & Equivalents-Bank Balances" {
		t.Fatalf("unexpected subnote id %s", subnote.ID)
	}
}

func TestBuildHierarchyDeduplicates(t *testing.T) {
	accounts := []Account{
		{Code: "A1", Name: "One", Class: "Assets", Subclass: "Current Assets", Note: "Cash", Subnote: "Bank", Active: true},
		{Code: "A2", Name: "Two", Class: "Assets", Subclass: "Current Assets", Note: "Cash", Subnote: "Bank", Active: true},
		{Code: "A3", Name: "Three", Class: "Assets", Subclass: "current assets", Note: "Cash", Subnote: "Bank", Active: true},
	}
	tree := BuildHierarchy(accounts, StatementBalanceSheet)
	if len(tree) != 1 {
		t.Fatalf("expected one class, got %d", len(tree))
	}
	// Case differs, so the two subclass spellings stay distinct.
	if len(tree[0].Children) != 2 {
		t.Fatalf("expected 2 subclasses (case-sensitive dedup), got %d", len(tree[0].Children))
	}
	bank := tree[0].Children[0].Children[0].Children[0]
	if len(bank.Accounts) != 2 {
		t.Fatalf("expected 2 accounts under shared subnote, got %d", len(bank.Accounts))
	}
}

func TestBuildHierarchyPrunesEmptySubtrees(t *testing.T) {
	accounts := []Account{
		{Code: "A1", Name: "One", Class: "Assets", Subclass: "Current Assets", Note: "Cash", Subnote: "", Active: true},
	}
	// The only account has a blank subnote, so no subnote node can hold it
	// and the whole branch collapses away.
	tree := BuildHierarchy(accounts, StatementBalanceSheet)
	if len(tree) != 0 {
		t.Fatalf("expected empty hierarchy, got %d classes", len(tree))
	}
}

func TestBuildHierarchyFirstEncounteredOrder(t *testing.T) {
	accounts := []Account{
		{Code: "L1", Name: "Loans", Class: "Liabilities", Subclass: "Borrowings", Note: "Loans", Subnote: "Bank Loans", Active: true},
		{Code: "A1", Name: "Cash", Class: "Assets", Subclass: "Current Assets", Note: "Cash", Subnote: "Bank", Active: true},
	}
	tree := BuildHierarchy(accounts, StatementBalanceSheet)
	if tree[0].Name != "Liabilities" || tree[1].Name != "Assets" {
		t.Fatalf("expected source order Liabilities,Assets; got %s,%s", tree[0].Name, tree[1].Name)
	}
}

func TestBuildHierarchyProfitNodeNeedsEquity(t *testing.T) {
	accounts := []Account{
		{Code: "A1", Name: "Cash", Class: "Assets", Subclass: "Current Assets", Note: "Cash", Subnote: "Bank", Active: true},
	}
	tree := BuildHierarchy(accounts, StatementBalanceSheet)
	for _, node := range tree {
		if node.Synthetic {
			t.Fatalf("profit node must not appear without an Equity class")
		}
	}
}

func TestBuildHierarchyIncomeStatement(t *testing.T) {
	tree := BuildHierarchy(testAccounts(), StatementIncomeStatement)
	want := []string{"Revenue", "Income", "Expenses"}
	if len(tree) != len(want) {
		t.Fatalf("expected %d classes, got %d", len(want), len(tree))
	}
	for i, name := range want {
		if tree[i].Name != name {
			t.Fatalf("class %d: expected %q, got %q", i, name, tree[i].Name)
		}
		if tree[i].Synthetic {
			t.Fatalf("income statement must not carry the synthetic profit row")
		}
	}
}

func TestSubtreeAccounts(t *testing.T) {
	tree := BuildHierarchy(testAccounts(), StatementBalanceSheet)
	assets := tree[0]
	codes := make(map[string]bool)
	for _, account := range assets.SubtreeAccounts() {
		codes[account.Code] = true
	}
	for _, code := range []string{"1000", "1100", "1500"} {
		if !codes[code] {
			t.Fatalf("subtree missing account %s", code)
		}
	}
	if len(codes) != 3 {
		t.Fatalf("expected 3 asset accounts, got %d", len(codes))
	}
}

func TestBuildNoteGroups(t *testing.T) {
	tree := BuildHierarchy(testAccounts(), StatementBalanceSheet)
	groups := BuildNoteGroups(tree)
	if len(groups) == 0 {
		t.Fatal("expected note groups")
	}
	// Numeric order: 4, 5, 6, 10, 12.
	want := []string{"4", "5", "6", "10", "12"}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, number := range want {
		if groups[i].NoteNumber != number {
			t.Fatalf("group %d: expected note %s, got %s", i, number, groups[i].NoteNumber)
		}
	}
	if groups[0].Name != "Note 4" {
		t.Fatalf("unexpected group name %s", groups[0].Name)
	}
}
