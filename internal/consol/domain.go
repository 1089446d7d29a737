package consol

import "time"

// StatementType selects which slice of the chart of accounts a report covers.
type StatementType string

const (
	StatementBalanceSheet    StatementType = "balance_sheet"
	StatementIncomeStatement StatementType = "income_statement"
	StatementEquity          StatementType = "equity"
	StatementCashFlow        StatementType = "cash_flow"
	StatementIntercompany    StatementType = "intercompany"
)

// statementClasses maps every statement type to the class names it may show.
var statementClasses = map[StatementType][]string{
	StatementBalanceSheet:    {"Assets", "Liability", "Liabilities", "Equity"},
	StatementIncomeStatement: {"Revenue", "Income", "Expenses"},
	StatementEquity:          {"Equity"},
	StatementCashFlow:        {"Assets", "Liability", "Liabilities", "Equity", "Revenue", "Income", "Expenses"},
	StatementIntercompany:    {"Assets", "Liability", "Liabilities"},
}

// Valid reports whether the statement type is one of the known report scopes.
func (t StatementType) Valid() bool {
	_, ok := statementClasses[t]
	return ok
}

// Account is one chart-of-accounts leaf with its four-level classification path.
type Account struct {
	Code       string
	Name       string
	Class      string
	Subclass   string
	Note       string
	NoteNumber string
	Subnote    string
	Active     bool
}

// Posting is one trial-balance line. Debit and credit are both non-negative in
// raw data; the canonical signed value is always debit minus credit.
type Posting struct {
	AccountCode string
	EntityID    int64
	Period      string
	Debit       float64
	Credit      float64
}

// Entity is a legal or reporting unit contributing postings.
type Entity struct {
	ID   int64
	Name string
}

// AccountSet is the unit of every balance query: a set of account codes.
type AccountSet map[string]struct{}

// NewAccountSet builds a set from explicit codes.
func NewAccountSet(codes ...string) AccountSet {
	set := make(AccountSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// SetOf builds a set from account rows.
func SetOf(accounts []Account) AccountSet {
	set := make(AccountSet, len(accounts))
	for _, account := range accounts {
		set[account.Code] = struct{}{}
	}
	return set
}

// Contains reports membership for a single code.
func (s AccountSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// Snapshot is one immutable, mutually consistent view of the ledger for a
// single computation: postings and account master for a period, the entity
// list, and the elimination/adjustment collections scoped the same way.
// Every engine operation is a pure function of a snapshot; callers that need
// concurrency hand each request its own snapshot.
type Snapshot struct {
	Period       string
	Accounts     []Account
	Postings     []Posting
	Entities     []Entity
	Eliminations []EliminationSource
	Adjustments  []AdjustmentEntry
	Refreshed    time.Time
}

// AccountsAt returns the active accounts whose attribute at the given
// hierarchy level equals name. Used by derived-line formulas.
func (s *Snapshot) AccountsAt(level NodeLevel, name string) []Account {
	matched := make([]Account, 0)
	for _, account := range s.Accounts {
		if !account.Active {
			continue
		}
		var attr string
		switch level {
		case LevelClass:
			attr = account.Class
		case LevelSubclass:
			attr = account.Subclass
		case LevelNote:
			attr = account.Note
		case LevelSubnote:
			attr = account.Subnote
		}
		if attr == name {
			matched = append(matched, account)
		}
	}
	return matched
}
