package consol

import (
	"sort"
	"strconv"
)

// StatementRow is one rendered hierarchy row with its figures, flattened
// depth-first for presentation.
type StatementRow struct {
	NodeID       string
	Level        NodeLevel
	Name         string
	NoteNumber   string
	Depth        int
	Synthetic    bool
	Expanded     bool
	ByEntity     map[int64]float64
	Elimination  float64
	Adjustment   float64
	Consolidated float64
}

// StatementReport is the full consolidation working for one statement type.
type StatementReport struct {
	Statement StatementType
	Period    string
	Entities  []Entity
	Rows      []StatementRow
	Identity  *IdentityResult
}

// BuildStatement renders the consolidation working for a snapshot: the
// hierarchy scoped to the statement type, one figure row per visible node
// under the caller's expand state, the synthetic profit row for balance
// sheets, and the identity check attached when the statement is a balance
// sheet.
func (s *Snapshot) BuildStatement(statement StatementType, state ExpandState) StatementReport {
	report := StatementReport{
		Statement: statement,
		Period:    s.Period,
		Entities:  s.Entities,
	}

	tree := BuildHierarchy(s.Accounts, statement)
	for _, node := range tree {
		report.Rows = appendNodeRows(report.Rows, s, node, state, 0)
	}

	if statement == StatementBalanceSheet {
		identity := s.CheckIdentity()
		report.Identity = &identity
	}
	return report
}

func appendNodeRows(rows []StatementRow, s *Snapshot, node *Node, state ExpandState, depth int) []StatementRow {
	row := StatementRow{
		NodeID:     node.ID,
		Level:      node.Level,
		Name:       node.Name,
		NoteNumber: node.NoteNumber,
		Depth:      depth,
		Synthetic:  node.Synthetic,
		Expanded:   state[node.ID],
	}

	if node.Synthetic {
		// The profit row carries no accounts; its single figure is revenue
		// minus expenses over the whole account master.
		row.ByEntity = make(map[int64]float64, len(s.Entities))
		row.Consolidated = s.ProfitLoss()
	} else {
		figures := s.ComputeNode(node, state)
		row.ByEntity = figures.ByEntity
		row.Elimination = figures.Elimination
		row.Adjustment = figures.Adjustment
		row.Consolidated = figures.Consolidated
	}
	rows = append(rows, row)

	if state[node.ID] {
		for _, child := range node.Children {
			rows = appendNodeRows(rows, s, child, state, depth+1)
		}
	}
	return rows
}

// NoteGroup is one note-number bucket of the note-based view.
type NoteGroup struct {
	ID         string
	NoteNumber string
	Name       string
	Notes      []*Node
}

const unnumberedGroup = "Unnumbered"

// BuildNoteGroups arranges note-level nodes by note number, numbered groups
// first in numeric order, unnumbered notes last. Used by the notes
// presentation of the workings screen.
func BuildNoteGroups(tree []*Node) []NoteGroup {
	order := make([]string, 0)
	grouped := make(map[string][]*Node)
	var walk func(node *Node)
	walk = func(node *Node) {
		if node.Level == LevelNote {
			number := node.NoteNumber
			if number == "" {
				number = unnumberedGroup
			}
			if _, ok := grouped[number]; !ok {
				order = append(order, number)
			}
			grouped[number] = append(grouped[number], node)
			return
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, node := range tree {
		walk(node)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i] == unnumberedGroup {
			return false
		}
		if order[j] == unnumberedGroup {
			return true
		}
		a, _ := strconv.Atoi(order[i])
		b, _ := strconv.Atoi(order[j])
		return a < b
	})

	groups := make([]NoteGroup, 0, len(order))
	for _, number := range order {
		name := "Note " + number
		if number == unnumberedGroup {
			name = "Unnumbered Notes"
		}
		groups = append(groups, NoteGroup{
			ID:         "note-group-" + number,
			NoteNumber: number,
			Name:       name,
			Notes:      grouped[number],
		})
	}
	return groups
}

// NoteRow is one note-level node with its netted figures. Notes always roll
// up their full subtree; the notes view has no expand state.
type NoteRow struct {
	NodeID       string
	Name         string
	ByEntity     map[int64]float64
	Elimination  float64
	Adjustment   float64
	Consolidated float64
}

// NoteGroupReport is one rendered note-number bucket.
type NoteGroupReport struct {
	ID         string
	NoteNumber string
	Name       string
	Notes      []NoteRow
}

// NotesReport is the note-based view of one statement's hierarchy.
type NotesReport struct {
	Statement StatementType
	Period    string
	Entities  []Entity
	Groups    []NoteGroupReport
}

// BuildNotes renders the note-number view: the statement-scoped hierarchy
// regrouped by note number, each note carrying its full-subtree figures.
func (s *Snapshot) BuildNotes(statement StatementType) NotesReport {
	report := NotesReport{
		Statement: statement,
		Period:    s.Period,
		Entities:  s.Entities,
	}
	tree := BuildHierarchy(s.Accounts, statement)
	for _, group := range BuildNoteGroups(tree) {
		rendered := NoteGroupReport{
			ID:         group.ID,
			NoteNumber: group.NoteNumber,
			Name:       group.Name,
			Notes:      make([]NoteRow, 0, len(group.Notes)),
		}
		for _, note := range group.Notes {
			figures := s.ComputeNode(note, ExpandState{})
			rendered.Notes = append(rendered.Notes, NoteRow{
				NodeID:       note.ID,
				Name:         note.Name,
				ByEntity:     figures.ByEntity,
				Elimination:  figures.Elimination,
				Adjustment:   figures.Adjustment,
				Consolidated: figures.Consolidated,
			})
		}
		report.Groups = append(report.Groups, rendered)
	}
	return report
}
