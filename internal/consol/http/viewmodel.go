package http

import (
	"time"

	"github.com/finclose/finclose/internal/consol"
)

// StatementViewModel is the JSON shape of one consolidation working.
type StatementViewModel struct {
	Statement string             `json:"statement"`
	Period    string             `json:"period"`
	Entities  []EntityColumn     `json:"entities"`
	Rows      []StatementRowVM   `json:"rows"`
	Identity  *IdentityViewModel `json:"identity,omitempty"`
}

// EntityColumn labels one per-entity figure column.
type EntityColumn struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StatementRowVM is one hierarchy row. EntityValues follows the order of the
// report's entity columns.
type StatementRowVM struct {
	NodeID       string    `json:"node_id"`
	Level        string    `json:"level"`
	Name         string    `json:"name"`
	NoteNumber   string    `json:"note_number,omitempty"`
	Depth        int       `json:"depth"`
	Synthetic    bool      `json:"synthetic,omitempty"`
	Expanded     bool      `json:"expanded"`
	EntityValues []float64 `json:"entity_values"`
	Elimination  float64   `json:"elimination"`
	Adjustment   float64   `json:"adjustment"`
	Consolidated float64   `json:"consolidated"`
}

// NotesViewModel is the JSON shape of the note-based view.
type NotesViewModel struct {
	Statement string         `json:"statement"`
	Period    string         `json:"period"`
	Entities  []EntityColumn `json:"entities"`
	Groups    []NoteGroupVM  `json:"groups"`
}

// NoteGroupVM is one note-number bucket.
type NoteGroupVM struct {
	ID         string      `json:"id"`
	NoteNumber string      `json:"note_number"`
	Name       string      `json:"name"`
	Notes      []NoteRowVM `json:"notes"`
}

// NoteRowVM is one note with its figures. EntityValues follows the order of
// the report's entity columns.
type NoteRowVM struct {
	NodeID       string    `json:"node_id"`
	Name         string    `json:"name"`
	EntityValues []float64 `json:"entity_values"`
	Elimination  float64   `json:"elimination"`
	Adjustment   float64   `json:"adjustment"`
	Consolidated float64   `json:"consolidated"`
}

// IdentityViewModel is the JSON shape of the balance-sheet identity check.
type IdentityViewModel struct {
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
	Equity      float64 `json:"equity"`
	Revenue     float64 `json:"revenue"`
	Expenses    float64 `json:"expenses"`
	Profit      float64 `json:"profit"`
	Difference  float64 `json:"difference"`
	Balanced    bool    `json:"balanced"`
}

// CashFlowViewModel is the JSON shape of the derived-line report.
type CashFlowViewModel struct {
	Period            string           `json:"period"`
	ComparativePeriod string           `json:"comparative_period"`
	Lines             []CashFlowLineVM `json:"lines"`
	NetCashMovement   float64          `json:"net_cash_movement"`
	Refreshed         time.Time        `json:"refreshed"`
}

// CashFlowLineVM is one evaluated derived line.
type CashFlowLineVM struct {
	Name        string  `json:"name"`
	Current     float64 `json:"current"`
	Comparative float64 `json:"comparative"`
	Movement    float64 `json:"movement"`
	CashImpact  float64 `json:"cash_impact"`
}

// NewStatementViewModel flattens a statement report for serialization.
func NewStatementViewModel(report consol.StatementReport) StatementViewModel {
	vm := StatementViewModel{
		Statement: string(report.Statement),
		Period:    report.Period,
		Entities:  make([]EntityColumn, 0, len(report.Entities)),
		Rows:      make([]StatementRowVM, 0, len(report.Rows)),
	}
	for _, entity := range report.Entities {
		vm.Entities = append(vm.Entities, EntityColumn{ID: entity.ID, Name: entity.Name})
	}
	for _, row := range report.Rows {
		rowVM := StatementRowVM{
			NodeID:       row.NodeID,
			Level:        string(row.Level),
			Name:         row.Name,
			NoteNumber:   row.NoteNumber,
			Depth:        row.Depth,
			Synthetic:    row.Synthetic,
			Expanded:     row.Expanded,
			EntityValues: make([]float64, 0, len(report.Entities)),
			Elimination:  row.Elimination,
			Adjustment:   row.Adjustment,
			Consolidated: row.Consolidated,
		}
		for _, entity := range report.Entities {
			rowVM.EntityValues = append(rowVM.EntityValues, row.ByEntity[entity.ID])
		}
		vm.Rows = append(vm.Rows, rowVM)
	}
	if report.Identity != nil {
		identity := NewIdentityViewModel(*report.Identity)
		vm.Identity = &identity
	}
	return vm
}

// NewNotesViewModel flattens a notes report for serialization.
func NewNotesViewModel(report consol.NotesReport) NotesViewModel {
	vm := NotesViewModel{
		Statement: string(report.Statement),
		Period:    report.Period,
		Entities:  make([]EntityColumn, 0, len(report.Entities)),
		Groups:    make([]NoteGroupVM, 0, len(report.Groups)),
	}
	for _, entity := range report.Entities {
		vm.Entities = append(vm.Entities, EntityColumn{ID: entity.ID, Name: entity.Name})
	}
	for _, group := range report.Groups {
		groupVM := NoteGroupVM{
			ID:         group.ID,
			NoteNumber: group.NoteNumber,
			Name:       group.Name,
			Notes:      make([]NoteRowVM, 0, len(group.Notes)),
		}
		for _, note := range group.Notes {
			noteVM := NoteRowVM{
				NodeID:       note.NodeID,
				Name:         note.Name,
				EntityValues: make([]float64, 0, len(report.Entities)),
				Elimination:  note.Elimination,
				Adjustment:   note.Adjustment,
				Consolidated: note.Consolidated,
			}
			for _, entity := range report.Entities {
				noteVM.EntityValues = append(noteVM.EntityValues, note.ByEntity[entity.ID])
			}
			groupVM.Notes = append(groupVM.Notes, noteVM)
		}
		vm.Groups = append(vm.Groups, groupVM)
	}
	return vm
}

// NewIdentityViewModel converts the engine result.
func NewIdentityViewModel(result consol.IdentityResult) IdentityViewModel {
	return IdentityViewModel{
		Assets:      result.Assets,
		Liabilities: result.Liabilities,
		Equity:      result.Equity,
		Revenue:     result.Revenue,
		Expenses:    result.Expenses,
		Profit:      result.Profit,
		Difference:  result.Difference,
		Balanced:    result.Balanced,
	}
}

// NewCashFlowViewModel converts the derived-line report.
func NewCashFlowViewModel(report consol.CashFlowReport) CashFlowViewModel {
	vm := CashFlowViewModel{
		Period:            report.Period,
		ComparativePeriod: report.ComparativePeriod,
		Lines:             make([]CashFlowLineVM, 0, len(report.Lines)),
		NetCashMovement:   report.NetCashMovement,
		Refreshed:         report.Refreshed,
	}
	for _, line := range report.Lines {
		vm.Lines = append(vm.Lines, CashFlowLineVM{
			Name:        line.Name,
			Current:     line.Current,
			Comparative: line.Comparative,
			Movement:    line.Movement,
			CashImpact:  line.CashImpact,
		})
	}
	return vm
}
