package consol

import "math"

// EntityBalance sums debit minus credit over every posting whose account is
// in the set and whose entity matches. An empty set, or a set with no
// matching postings, yields 0. Sign handling is uniform here; presentation
// signs for credit-natural classes are applied by the identity classifier.
func (s *Snapshot) EntityBalance(accounts AccountSet, entityID int64) float64 {
	if len(accounts) == 0 {
		return 0
	}
	var total float64
	for _, posting := range s.Postings {
		if posting.EntityID != entityID {
			continue
		}
		if !accounts.Contains(posting.AccountCode) {
			continue
		}
		total += amount(posting.Debit) - amount(posting.Credit)
	}
	return total
}

// AllEntitiesBalance sums EntityBalance over every entity in the snapshot.
// Postings tagged with an entity outside the snapshot's entity list do not
// contribute.
func (s *Snapshot) AllEntitiesBalance(accounts AccountSet) float64 {
	if len(accounts) == 0 {
		return 0
	}
	var total float64
	for _, entity := range s.Entities {
		total += s.EntityBalance(accounts, entity.ID)
	}
	return total
}

// amount guards against NaN/Inf leaking into totals.
func amount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
