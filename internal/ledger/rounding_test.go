package ledger

import (
	"math"
	"testing"
)

func TestRoundRows(t *testing.T) {
	cases := []struct {
		name       string
		rows       []Row
		mode       RoundingMode
		precision  int
		wantDebits []float64
		adjusted   int
	}{
		{
			name:       "nearest to whole",
			rows:       []Row{{Debit: 10.4}, {Debit: 10.5}, {Debit: 10.6}},
			mode:       RoundNearest,
			precision:  0,
			wantDebits: []float64{10, 11, 11},
			adjusted:   3,
		},
		{
			name:       "up to whole",
			rows:       []Row{{Debit: 10.1}, {Debit: 10.0}},
			mode:       RoundUp,
			precision:  0,
			wantDebits: []float64{11, 10},
			adjusted:   1,
		},
		{
			name:       "down to whole",
			rows:       []Row{{Debit: 10.9}},
			mode:       RoundDown,
			precision:  0,
			wantDebits: []float64{10},
			adjusted:   1,
		},
		{
			name:       "nearest to cents",
			rows:       []Row{{Debit: 10.456}},
			mode:       RoundNearest,
			precision:  2,
			wantDebits: []float64{10.46},
			adjusted:   1,
		},
		{
			name:       "already rounded untouched",
			rows:       []Row{{Debit: 10}, {Credit: 20}},
			mode:       RoundNearest,
			precision:  0,
			wantDebits: []float64{10, 0},
			adjusted:   0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rounded, adjusted := RoundRows(tc.rows, tc.mode, tc.precision)
			if adjusted != tc.adjusted {
				t.Fatalf("adjusted = %d, want %d", adjusted, tc.adjusted)
			}
			for i, want := range tc.wantDebits {
				if math.Abs(rounded[i].Debit-want) > 1e-9 {
					t.Fatalf("row %d debit = %v, want %v", i, rounded[i].Debit, want)
				}
			}
		})
	}
}

func TestRoundRowsDoesNotMutateInput(t *testing.T) {
	rows := []Row{{Debit: 10.4}}
	RoundRows(rows, RoundNearest, 0)
	if rows[0].Debit != 10.4 {
		t.Fatalf("input mutated: %v", rows[0].Debit)
	}
}

func TestResidue(t *testing.T) {
	rows := []Row{{Debit: 100.4}, {Credit: 100.6}}
	rounded, _ := RoundRows(rows, RoundNearest, 0)
	induced := Residue(rounded) - Residue(rows)
	// 100.4 drops to 100, 100.6 rises to 101: debits fall 0.4, credits rise 0.4.
	if math.Abs(induced-(-0.8)) > 1e-9 {
		t.Fatalf("induced residue = %v, want -0.8", induced)
	}
}

func TestDifferenceRow(t *testing.T) {
	credit := DifferenceRow(2.5, 1, "2026-08", "9999")
	if credit.Credit != 2.5 || credit.Debit != 0 {
		t.Fatalf("positive residue must credit: %+v", credit)
	}
	debit := DifferenceRow(-1.5, 1, "2026-08", "9999")
	if debit.Debit != 1.5 || debit.Credit != 0 {
		t.Fatalf("negative residue must debit: %+v", debit)
	}
	if debit.AccountCode != "9999" || debit.EntityID != 1 || debit.Period != "2026-08" {
		t.Fatalf("row scope wrong: %+v", debit)
	}
}

func TestSwapRows(t *testing.T) {
	rows := []Row{{AccountCode: "1000", Debit: 100}, {AccountCode: "2000", Credit: 40, Debit: 5}}
	swapped := SwapRows(rows)
	if swapped[0].Credit != 100 || swapped[0].Debit != 0 {
		t.Fatalf("row 0 = %+v", swapped[0])
	}
	if swapped[1].Debit != 40 || swapped[1].Credit != 5 {
		t.Fatalf("row 1 = %+v", swapped[1])
	}
	if rows[0].Debit != 100 {
		t.Fatal("input mutated")
	}
}
