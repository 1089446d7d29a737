package consol

import "time"

// testAccounts is a small but complete account master covering every class
// synonym, an inactive row, and a blank-class row.
func testAccounts() []Account {
	return []Account{
		{Code: "1000", Name: "Cash at Bank", Class: "Assets", Subclass: "Current Assets", Note: "Cash & Equivalents", NoteNumber: "4", Subnote: "Bank Balances", Active: true},
		{Code: "1100", Name: "Trade Debtors", Class: "Assets", Subclass: "Current Assets", Note: "Trade Receivables", NoteNumber: "5", Subnote: "Trade Debtors", Active: true},
		{Code: "1500", Name: "Plant", Class: "Assets", Subclass: "Non-Current Assets", Note: "Property & Equipment", NoteNumber: "6", Subnote: "Plant & Machinery", Active: true},
		{Code: "2000", Name: "Trade Creditors", Class: "Liabilities", Subclass: "Current Liabilities", Note: "Trade Payables", NoteNumber: "10", Subnote: "Trade Creditors", Active: true},
		{Code: "3000", Name: "Ordinary Shares", Class: "Equity", Subclass: "Share Capital", Note: "Issued Capital", NoteNumber: "12", Subnote: "Ordinary Shares", Active: true},
		{Code: "4000", Name: "Product Sales", Class: "Revenue", Subclass: "Operating Revenue", Note: "Sales", NoteNumber: "2", Subnote: "Product Sales", Active: true},
		{Code: "4100", Name: "Interest Earned", Class: "Income", Subclass: "Other Income", Note: "Finance Income", NoteNumber: "3", Subnote: "Interest", Active: true},
		{Code: "5000", Name: "Office Rent", Class: "Expenses", Subclass: "Operating Expenses", Note: "Occupancy", NoteNumber: "20", Subnote: "Rent", Active: true},
		{Code: "1900", Name: "Retired Asset", Class: "Assets", Subclass: "Current Assets", Note: "Cash & Equivalents", Subnote: "Bank Balances", Active: false},
		{Code: "9999", Name: "Suspense", Class: "", Subclass: "", Note: "", Subnote: "", Active: true},
	}
}

// testSnapshot holds balanced books for two entities: per entity the debit
// and credit totals are equal, so the identity check must come out at zero.
func testSnapshot() *Snapshot {
	return &Snapshot{
		Period:   "2026-08",
		Accounts: testAccounts(),
		Entities: []Entity{{ID: 1, Name: "Alpha Ltd"}, {ID: 2, Name: "Beta GmbH"}},
		Postings: []Posting{
			{AccountCode: "1000", EntityID: 1, Period: "2026-08", Debit: 500},
			{AccountCode: "2000", EntityID: 1, Period: "2026-08", Credit: 200},
			{AccountCode: "3000", EntityID: 1, Period: "2026-08", Credit: 100},
			{AccountCode: "4000", EntityID: 1, Period: "2026-08", Credit: 300},
			{AccountCode: "5000", EntityID: 1, Period: "2026-08", Debit: 100},

			{AccountCode: "1000", EntityID: 2, Period: "2026-08", Debit: 250},
			{AccountCode: "1100", EntityID: 2, Period: "2026-08", Debit: 150},
			{AccountCode: "2000", EntityID: 2, Period: "2026-08", Credit: 100},
			{AccountCode: "3000", EntityID: 2, Period: "2026-08", Credit: 200},
			{AccountCode: "4100", EntityID: 2, Period: "2026-08", Credit: 150},
			{AccountCode: "5000", EntityID: 2, Period: "2026-08", Debit: 50},
		},
		Refreshed: time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC),
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
