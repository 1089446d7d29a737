package consol

import "math"

// Category is the closed classification the identity check works in. Raw
// class names map onto it through one fixed synonym table instead of string
// comparisons scattered through call sites.
type Category string

const (
	CategoryAsset     Category = "asset"
	CategoryLiability Category = "liability"
	CategoryEquity    Category = "equity"
	CategoryRevenue   Category = "revenue"
	CategoryExpense   Category = "expense"
)

// classCategories is the exact, case-sensitive synonym set. Class names
// outside it do not participate in the identity check.
var classCategories = map[string]Category{
	"Assets":      CategoryAsset,
	"Liability":   CategoryLiability,
	"Liabilities": CategoryLiability,
	"Equity":      CategoryEquity,
	"Revenue":     CategoryRevenue,
	"Income":      CategoryRevenue,
	"Expenses":    CategoryExpense,
}

// ClassifyClass maps a raw class name to its category.
func ClassifyClass(name string) (Category, bool) {
	category, ok := classCategories[name]
	return category, ok
}

// IdentityTolerance is the absolute materiality threshold, in reporting
// currency units, under which a difference counts as balanced.
const IdentityTolerance = 1.0

// IdentityResult reports the balance-sheet identity check. Totals are
// presentation-signed: credit-natural categories are negated so a healthy
// book shows positive liabilities, equity and revenue. The difference is
// reported as-is; an out-of-balance book is a business condition, never
// plugged.
type IdentityResult struct {
	Assets      float64
	Liabilities float64
	Equity      float64
	Revenue     float64
	Expenses    float64
	Profit      float64
	Difference  float64
	Balanced    bool
}

// CheckIdentity verifies Assets = Liabilities + Equity + Profit over the
// snapshot's consolidated figures.
func (s *Snapshot) CheckIdentity() IdentityResult {
	sets := make(map[Category]AccountSet)
	for _, account := range s.Accounts {
		if !account.Active {
			continue
		}
		category, ok := ClassifyClass(account.Class)
		if !ok {
			continue
		}
		if sets[category] == nil {
			sets[category] = make(AccountSet)
		}
		sets[category][account.Code] = struct{}{}
	}

	raw := func(category Category) float64 {
		return s.ConsolidatedValue(sets[category])
	}

	result := IdentityResult{
		Assets:      raw(CategoryAsset),
		Liabilities: -raw(CategoryLiability),
		Equity:      -raw(CategoryEquity),
		Revenue:     -raw(CategoryRevenue),
		Expenses:    raw(CategoryExpense),
	}
	result.Profit = result.Revenue - result.Expenses
	result.Difference = result.Assets - (result.Liabilities + result.Equity + result.Profit)
	result.Balanced = math.Abs(result.Difference) < IdentityTolerance
	return result
}

// ProfitLoss is the figure behind the synthetic balance-sheet profit row:
// consolidated revenue minus expenses over the full account master,
// independent of the statement scope being rendered.
func (s *Snapshot) ProfitLoss() float64 {
	result := s.CheckIdentity()
	return result.Profit
}
