package elimination

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// GLBalance is one resolved side of a pair: the signed net, its Dr/Cr label,
// and the absolute magnitude used for matching.
type GLBalance struct {
	Ref       GLRef
	Net       float64
	Label     string
	Magnitude float64
}

// ResolveBalance labels a signed net. Zero counts as a debit label so the
// template path stays deterministic.
func ResolveBalance(ref GLRef, net float64) GLBalance {
	label := "Dr"
	if net < 0 {
		label = "Cr"
	}
	return GLBalance{
		Ref:       ref,
		Net:       net,
		Label:     label,
		Magnitude: round2(math.Abs(net)),
	}
}

// GenerateInput feeds the proposal generator. Nets follow the engine's
// uniform debit minus credit convention.
type GenerateInput struct {
	Pair     Pair
	GL1Net   float64
	GL2Net   float64
	GL1Name  string
	GL2Name  string
	DiffName string
	Period   string
	Date     time.Time
}

// Proposal is a generated, not yet submitted, elimination entry along with
// the matching figures that produced it.
type Proposal struct {
	GL1           GLBalance
	GL2           GLBalance
	MatchedAmount float64
	Difference    float64
	Template      bool
	Entry         JournalEntry
}

// Generate builds an elimination proposal for one pair. When both sides
// carry a balance, each side is reversed: the smaller side at the matched
// amount, the larger side in full, with the residual routed to the pair's
// difference account on the larger side's entity. When either side is flat
// the result is a blank two-line template for manual completion.
func Generate(in GenerateInput) Proposal {
	gl1 := ResolveBalance(in.Pair.GL1, in.GL1Net)
	gl2 := ResolveBalance(in.Pair.GL2, in.GL2Net)

	p := Proposal{
		GL1:           gl1,
		GL2:           gl2,
		MatchedAmount: round2(math.Min(gl1.Magnitude, gl2.Magnitude)),
		Difference:    round2(math.Abs(gl1.Magnitude - gl2.Magnitude)),
	}

	entry := JournalEntry{
		ID:        uuid.New(),
		CompanyID: in.Pair.CompanyID,
		Name:      FormatEntryName(in.Pair, in.Period),
		Date:      in.Date,
		Period:    in.Period,
	}

	if gl1.Magnitude == 0 || gl2.Magnitude == 0 {
		p.Template = true
		p.MatchedAmount = 0
		entry.Description = "Template: one side has no balance, complete manually"
		entry.Lines = []JournalLine{
			{EntityID: gl1.Ref.EntityID, AccountCode: gl1.Ref.AccountCode, AccountName: in.GL1Name, LineNumber: 1},
			{EntityID: gl2.Ref.EntityID, AccountCode: gl2.Ref.AccountCode, AccountName: in.GL2Name, LineNumber: 2},
		}
		p.Entry = entry
		return p
	}

	larger, largerName := gl1, in.GL1Name
	smaller, smallerName := gl2, in.GL2Name
	if gl2.Magnitude > gl1.Magnitude {
		larger, largerName = gl2, in.GL2Name
		smaller, smallerName = gl1, in.GL1Name
	}

	routeResidual := p.Difference > BalanceTolerance && in.Pair.DifferenceAccount != ""
	largerAmount := p.MatchedAmount
	if routeResidual {
		largerAmount = larger.Magnitude
	}

	entry.Description = "Auto-matched elimination"
	entry.Lines = []JournalLine{
		reversalLine(larger, largerName, largerAmount, 1),
		reversalLine(smaller, smallerName, p.MatchedAmount, 2),
	}
	if routeResidual {
		residual := JournalLine{
			EntityID:    larger.Ref.EntityID,
			AccountCode: in.Pair.DifferenceAccount,
			AccountName: in.DiffName,
			LineNumber:  3,
		}
		// The residual leg lands on whichever side is lighter so the
		// entry's totals meet.
		debit, credit := JournalEntry{Lines: entry.Lines}.Totals()
		if debit < credit {
			residual.Debit = p.Difference
		} else {
			residual.Credit = p.Difference
		}
		entry.Lines = append(entry.Lines, residual)
	}

	entry.TotalDebit, entry.TotalCredit = entry.Totals()
	p.Entry = entry
	return p
}

// reversalLine posts against the balance: a net debit is credited, a net
// credit is debited.
func reversalLine(b GLBalance, name string, amount float64, lineNumber int) JournalLine {
	line := JournalLine{
		EntityID:    b.Ref.EntityID,
		AccountCode: b.Ref.AccountCode,
		AccountName: name,
		LineNumber:  lineNumber,
	}
	if b.Label == "Dr" {
		line.Credit = amount
	} else {
		line.Debit = amount
	}
	return line
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
