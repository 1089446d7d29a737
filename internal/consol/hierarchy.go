package consol

import "fmt"

// NodeLevel is one tier of the four-level statement hierarchy.
type NodeLevel string

const (
	LevelClass    NodeLevel = "class"
	LevelSubclass NodeLevel = "subclass"
	LevelNote     NodeLevel = "note"
	LevelSubnote  NodeLevel = "subnote"
)

// ProfitLossNodeID identifies the synthetic balance-sheet profit row.
const ProfitLossNodeID = "profit-loss"

// Node is one row of the statement hierarchy. Only subnote nodes carry leaf
// accounts; every other level aggregates its children. IDs are deterministic
// paths so UI state and tooling can reference nodes across rebuilds.
type Node struct {
	ID         string
	Level      NodeLevel
	Name       string
	NoteNumber string
	Synthetic  bool
	Children   []*Node
	Accounts   []Account
}

// SubtreeAccounts returns every leaf account in the node's subtree, in
// hierarchy order. Each account appears exactly once because classification
// paths are strict.
func (n *Node) SubtreeAccounts() []Account {
	if len(n.Children) == 0 {
		return n.Accounts
	}
	accounts := make([]Account, 0, len(n.Accounts))
	accounts = append(accounts, n.Accounts...)
	for _, child := range n.Children {
		accounts = append(accounts, child.SubtreeAccounts()...)
	}
	return accounts
}

// BuildHierarchy turns the flat account master into the nested
// class/subclass/note/subnote tree for one statement type.
//
// Names deduplicate case-sensitively at each level and blank names drop out;
// ordering is first-encountered from the source rows, never alphabetic. A
// node whose subtree holds no accounts is pruned. For balance sheets a
// synthetic "Profit / (Loss)" class is inserted directly after "Equity"; it
// carries no accounts and is valued by the derived-line evaluator.
func BuildHierarchy(accounts []Account, statement StatementType) []*Node {
	allowed := make(map[string]struct{})
	for _, class := range statementClasses[statement] {
		allowed[class] = struct{}{}
	}

	active := make([]Account, 0, len(accounts))
	for _, account := range accounts {
		if !account.Active {
			continue
		}
		if _, ok := allowed[account.Class]; !ok {
			continue
		}
		active = append(active, account)
	}

	tree := make([]*Node, 0)
	for _, className := range uniqueNames(active, func(a Account) string { return a.Class }) {
		classNode := &Node{
			ID:    fmt.Sprintf("class-%s", className),
			Level: LevelClass,
			Name:  className,
		}
		classRows := filterAccounts(active, func(a Account) bool { return a.Class == className })

		for _, subclassName := range uniqueNames(classRows, func(a Account) string { return a.Subclass }) {
			subclassNode := &Node{
				ID:    fmt.Sprintf("subclass-%s-%s", className, subclassName),
				Level: LevelSubclass,
				Name:  subclassName,
			}
			subclassRows := filterAccounts(classRows, func(a Account) bool { return a.Subclass == subclassName })

			for _, noteName := range uniqueNames(subclassRows, func(a Account) string { return a.Note }) {
				noteRows := filterAccounts(subclassRows, func(a Account) bool { return a.Note == noteName })
				noteNode := &Node{
					ID:         fmt.Sprintf("note-%s-%s-%s", className, subclassName, noteName),
					Level:      LevelNote,
					Name:       noteName,
					NoteNumber: firstNoteNumber(noteRows),
				}

				for _, subnoteName := range uniqueNames(noteRows, func(a Account) string { return a.Subnote }) {
					subnoteNode := &Node{
						ID:    fmt.Sprintf("subnote-%s-%s-%s-%s", className, subclassName, noteName, subnoteName),
						Level: LevelSubnote,
						Name:  subnoteName,
						Accounts: filterAccounts(noteRows, func(a Account) bool {
							return a.Subnote == subnoteName
						}),
					}
					if len(subnoteNode.Accounts) > 0 {
						noteNode.Children = append(noteNode.Children, subnoteNode)
					}
				}

				if len(noteNode.Children) > 0 {
					subclassNode.Children = append(subclassNode.Children, noteNode)
				}
			}

			if len(subclassNode.Children) > 0 {
				classNode.Children = append(classNode.Children, subclassNode)
			}
		}

		if len(classNode.Children) > 0 {
			tree = append(tree, classNode)
		}
	}

	if statement == StatementBalanceSheet {
		tree = insertProfitNode(tree)
	}
	return tree
}

// insertProfitNode splices the synthetic profit class directly after Equity.
// Without an Equity class the row is not shown at all.
func insertProfitNode(tree []*Node) []*Node {
	for i, node := range tree {
		if node.Name != "Equity" {
			continue
		}
		profit := &Node{
			ID:        ProfitLossNodeID,
			Level:     LevelClass,
			Name:      "Profit / (Loss)",
			Synthetic: true,
		}
		out := make([]*Node, 0, len(tree)+1)
		out = append(out, tree[:i+1]...)
		out = append(out, profit)
		out = append(out, tree[i+1:]...)
		return out
	}
	return tree
}

// uniqueNames extracts non-blank attribute values in first-encountered order.
func uniqueNames(accounts []Account, attr func(Account) string) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, account := range accounts {
		name := attr(account)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func filterAccounts(accounts []Account, keep func(Account) bool) []Account {
	matched := make([]Account, 0)
	for _, account := range accounts {
		if keep(account) {
			matched = append(matched, account)
		}
	}
	return matched
}

func firstNoteNumber(accounts []Account) string {
	for _, account := range accounts {
		if account.NoteNumber != "" {
			return account.NoteNumber
		}
	}
	return ""
}
