package ledger

import "math"

// RoundRows rounds every amount to the target precision and reports the
// residue the rounding introduced, as debits minus credits. A balanced
// trial balance stays balanced only when the residue is posted back; the
// caller decides where.
func RoundRows(rows []Row, mode RoundingMode, precision int) ([]Row, int) {
	factor := math.Pow(10, float64(precision))
	rounded := make([]Row, len(rows))
	adjusted := 0
	for i, row := range rows {
		out := row
		out.Debit = roundAmount(row.Debit, mode, factor)
		out.Credit = roundAmount(row.Credit, mode, factor)
		if out.Debit != row.Debit || out.Credit != row.Credit {
			adjusted++
		}
		rounded[i] = out
	}
	return rounded, adjusted
}

// Residue sums debits minus credits across rows.
func Residue(rows []Row) float64 {
	var total float64
	for _, row := range rows {
		total += row.Debit - row.Credit
	}
	return total
}

// DifferenceRow builds the balancing row absorbing a rounding residue. A
// positive residue means debits exceed credits, so the row credits the
// difference account.
func DifferenceRow(residue float64, entityID int64, period, account string) Row {
	row := Row{EntityID: entityID, AccountCode: account, Period: period}
	if residue > 0 {
		row.Credit = residue
	} else {
		row.Debit = -residue
	}
	return row
}

// SwapRows flips debit and credit on every row. Used when a trial balance
// arrives with its columns inverted.
func SwapRows(rows []Row) []Row {
	swapped := make([]Row, len(rows))
	for i, row := range rows {
		out := row
		out.Debit, out.Credit = row.Credit, row.Debit
		swapped[i] = out
	}
	return swapped
}

func roundAmount(v float64, mode RoundingMode, factor float64) float64 {
	scaled := v * factor
	switch mode {
	case RoundUp:
		scaled = math.Ceil(scaled)
	case RoundDown:
		scaled = math.Floor(scaled)
	default:
		scaled = math.Round(scaled)
	}
	return scaled / factor
}
