package consol

// ExpandState records which node IDs the caller currently shows expanded.
// Missing IDs default to collapsed.
type ExpandState map[string]bool

// ScopeAccounts resolves which accounts a node's displayed figure covers.
// An expanded node with children shows only its own leaf accounts (none for
// the upper levels), while a collapsed node rolls up its whole subtree.
// Class nodes always roll up the full subtree; expanding a class row reveals
// children without changing the class figure itself.
func (n *Node) ScopeAccounts(state ExpandState) []Account {
	if n.Level == LevelClass {
		return n.SubtreeAccounts()
	}
	if len(n.Children) == 0 {
		return n.Accounts
	}
	if state[n.ID] {
		return n.Accounts
	}
	return n.SubtreeAccounts()
}

// ConsolidatedValue is the headline figure for a set of accounts: the raw
// all-entities balance plus the elimination and adjustment nets.
func (s *Snapshot) ConsolidatedValue(accounts AccountSet) float64 {
	return s.AllEntitiesBalance(accounts) + s.EliminationValue(accounts) + s.AdjustmentValue(accounts)
}

// NodeFigures annotates one hierarchy node with its computed values.
type NodeFigures struct {
	NodeID       string
	ByEntity     map[int64]float64
	Elimination  float64
	Adjustment   float64
	Consolidated float64
}

// ComputeNode evaluates one node under the caller's expand state. Synthetic
// nodes carry no accounts of their own and report zeros here; the statement
// builder fills them from the profit computation.
func (s *Snapshot) ComputeNode(node *Node, state ExpandState) NodeFigures {
	accounts := SetOf(node.ScopeAccounts(state))
	figures := NodeFigures{
		NodeID:   node.ID,
		ByEntity: make(map[int64]float64, len(s.Entities)),
	}
	for _, entity := range s.Entities {
		figures.ByEntity[entity.ID] = s.EntityBalance(accounts, entity.ID)
	}
	figures.Elimination = s.EliminationValue(accounts)
	figures.Adjustment = s.AdjustmentValue(accounts)
	figures.Consolidated = s.ConsolidatedValue(accounts)
	return figures
}
