package consol

// EliminationSource is one variant of the elimination collection. The two
// shapes net differently, so each variant carries its own rule and the
// aggregate dispatches through this single point instead of branching at
// call sites.
type EliminationSource interface {
	contribution(accounts AccountSet) float64
}

// EliminationEntry is an explicit paired elimination posting: the debit side
// adds, the credit side subtracts. A self-pair (same account on both sides)
// applies both contributions and cancels.
type EliminationEntry struct {
	DebitAccount  string
	CreditAccount string
	Amount        float64
}

func (e EliminationEntry) contribution(accounts AccountSet) float64 {
	var total float64
	if e.DebitAccount != "" && accounts.Contains(e.DebitAccount) {
		total += amount(e.Amount)
	}
	if e.CreditAccount != "" && accounts.Contains(e.CreditAccount) {
		total -= amount(e.Amount)
	}
	return total
}

// MappingTransactionType marks intercompany rows that participate in netting.
const MappingTransactionType = "Elimination Mapping"

// IntercompanyMapping is a one-directional mapping row sourced from the
// intercompany subsystem. It represents one side of an already-netted
// balance, so the amount is subtracted per matching account end,
// regardless of account classification. A mapping with both ends in the
// queried set subtracts twice; a self-mapping names only one account and
// subtracts once.
type IntercompanyMapping struct {
	FromAccount     string
	ToAccount       string
	Amount          float64
	TransactionType string
}

func (m IntercompanyMapping) contribution(accounts AccountSet) float64 {
	if m.TransactionType != MappingTransactionType {
		return 0
	}
	var total float64
	if accounts.Contains(m.FromAccount) {
		total -= amount(m.Amount)
	}
	if m.ToAccount != m.FromAccount && accounts.Contains(m.ToAccount) {
		total -= amount(m.Amount)
	}
	return total
}

// AdjustmentEntry is a consolidation adjustment posting. It nets exactly
// like EliminationEntry but lives in its own bucket.
type AdjustmentEntry struct {
	DebitAccount  string
	CreditAccount string
	Amount        float64
}

// EliminationValue nets the elimination collection against an account set.
// Entries referencing accounts absent from the set (stale references
// included) simply contribute nothing; that tolerance is deliberate.
func (s *Snapshot) EliminationValue(accounts AccountSet) float64 {
	if len(accounts) == 0 {
		return 0
	}
	var total float64
	for _, source := range s.Eliminations {
		total += source.contribution(accounts)
	}
	return total
}

// AdjustmentValue nets the adjustment collection against an account set
// using the paired debit/credit rule. Intercompany mappings never feed
// adjustments.
func (s *Snapshot) AdjustmentValue(accounts AccountSet) float64 {
	if len(accounts) == 0 {
		return 0
	}
	var total float64
	for _, adj := range s.Adjustments {
		total += EliminationEntry(adj).contribution(accounts)
	}
	return total
}
