package elimination

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	pairs    map[uuid.UUID]Pair
	entries  map[uuid.UUID]JournalEntry
	balances map[GLRef]float64
	names    map[string]string

	insertedEntries int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pairs:    make(map[uuid.UUID]Pair),
		entries:  make(map[uuid.UUID]JournalEntry),
		balances: make(map[GLRef]float64),
		names:    make(map[string]string),
	}
}

func (f *fakeStore) ListPairs(_ context.Context, companyID int64) ([]Pair, error) {
	var pairs []Pair
	for _, p := range f.pairs {
		if p.CompanyID == companyID {
			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}

func (f *fakeStore) GetPair(_ context.Context, id uuid.UUID) (Pair, error) {
	pair, ok := f.pairs[id]
	if !ok {
		return Pair{}, ErrPairNotFound
	}
	return pair, nil
}

func (f *fakeStore) InsertPair(_ context.Context, pair Pair) error {
	f.pairs[pair.ID] = pair
	return nil
}

func (f *fakeStore) UpdatePair(_ context.Context, pair Pair) error {
	if _, ok := f.pairs[pair.ID]; !ok {
		return ErrPairNotFound
	}
	f.pairs[pair.ID] = pair
	return nil
}

func (f *fakeStore) DeactivatePair(_ context.Context, id uuid.UUID, at time.Time) error {
	pair, ok := f.pairs[id]
	if !ok {
		return ErrPairNotFound
	}
	pair.Active = false
	pair.UpdatedAt = at
	f.pairs[id] = pair
	return nil
}

func (f *fakeStore) InsertEntry(_ context.Context, entry JournalEntry) error {
	f.entries[entry.ID] = entry
	f.insertedEntries++
	return nil
}

func (f *fakeStore) ListEntries(_ context.Context, companyID int64, period string) ([]JournalEntry, error) {
	var entries []JournalEntry
	for _, e := range f.entries {
		if e.CompanyID == companyID && e.Period == period {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (f *fakeStore) DeleteEntry(_ context.Context, id uuid.UUID) error {
	if _, ok := f.entries[id]; !ok {
		return ErrEntryNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeStore) AccountBalance(_ context.Context, _ int64, ref GLRef, _ string) (float64, error) {
	return f.balances[ref], nil
}

func (f *fakeStore) AccountNames(_ context.Context, _ int64, codes []string) (map[string]string, error) {
	names := make(map[string]string)
	for _, code := range codes {
		if name, ok := f.names[code]; ok {
			names[code] = name
		}
	}
	return names, nil
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestCreatePair(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil).WithClock(fixedClock())

	pair, err := svc.CreatePair(context.Background(), CreatePairInput{
		CompanyID:         1,
		Name:              "IC Loan",
		GL1Entity:         1,
		GL1Code:           "1400",
		GL2Entity:         2,
		GL2Code:           "2400",
		DifferenceAccount: "9999",
	})
	require.NoError(t, err)
	require.True(t, pair.Active)
	require.Equal(t, fixedClock()(), pair.CreatedAt)
	require.Contains(t, store.pairs, pair.ID)
}

func TestCreatePairValidation(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	cases := []struct {
		name string
		in   CreatePairInput
	}{
		{"missing name", CreatePairInput{CompanyID: 1, GL1Entity: 1, GL1Code: "1400", GL2Entity: 2, GL2Code: "2400"}},
		{"missing company", CreatePairInput{Name: "x", GL1Entity: 1, GL1Code: "1400", GL2Entity: 2, GL2Code: "2400"}},
		{"identical sides", CreatePairInput{CompanyID: 1, Name: "x", GL1Entity: 1, GL1Code: "1400", GL2Entity: 1, GL2Code: "1400"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePair(context.Background(), tc.in)
			require.Error(t, err)
		})
	}
}

func TestDeactivatePairSoftDeletes(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil).WithClock(fixedClock())
	pair, err := svc.CreatePair(context.Background(), CreatePairInput{
		CompanyID: 1, Name: "IC Loan",
		GL1Entity: 1, GL1Code: "1400",
		GL2Entity: 2, GL2Code: "2400",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivatePair(context.Background(), pair.ID))
	require.False(t, store.pairs[pair.ID].Active)
	require.Contains(t, store.pairs, pair.ID, "soft delete keeps the row")
}

func TestGenerateProposal(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil).WithClock(fixedClock())

	pair := Pair{
		ID:                uuid.New(),
		CompanyID:         1,
		Name:              "IC Loan",
		GL1:               GLRef{EntityID: 1, AccountCode: "1400"},
		GL2:               GLRef{EntityID: 2, AccountCode: "2400"},
		DifferenceAccount: "9999",
		Active:            true,
	}
	store.pairs[pair.ID] = pair
	store.balances[pair.GL1] = 100
	store.balances[pair.GL2] = -80
	store.names["1400"] = "IC Receivable"
	store.names["2400"] = "IC Payable"
	store.names["9999"] = "IC Variance"

	proposal, err := svc.GenerateProposal(context.Background(), GenerateRequest{
		CompanyID: 1, PairID: pair.ID, Period: "2026-08",
	})
	require.NoError(t, err)
	require.InDelta(t, 80, proposal.MatchedAmount, 1e-9)
	require.InDelta(t, 20, proposal.Difference, 1e-9)
	require.Len(t, proposal.Entry.Lines, 3)
	require.Equal(t, "IC Variance", proposal.Entry.Lines[2].AccountName)
	require.Equal(t, fixedClock()(), proposal.Entry.Date, "zero request date falls back to the clock")

	debit, credit := proposal.Entry.Totals()
	require.InDelta(t, debit, credit, 1e-9)
}

func TestGenerateProposalGuards(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	inactive := Pair{ID: uuid.New(), CompanyID: 1, Name: "Old", Active: false,
		GL1: GLRef{EntityID: 1, AccountCode: "1400"},
		GL2: GLRef{EntityID: 2, AccountCode: "2400"}}
	foreign := Pair{ID: uuid.New(), CompanyID: 2, Name: "Other", Active: true,
		GL1: GLRef{EntityID: 3, AccountCode: "1400"},
		GL2: GLRef{EntityID: 4, AccountCode: "2400"}}
	store.pairs[inactive.ID] = inactive
	store.pairs[foreign.ID] = foreign

	_, err := svc.GenerateProposal(context.Background(), GenerateRequest{CompanyID: 1, PairID: inactive.ID, Period: "2026-08"})
	require.ErrorContains(t, err, "deactivated")

	_, err = svc.GenerateProposal(context.Background(), GenerateRequest{CompanyID: 1, PairID: foreign.ID, Period: "2026-08"})
	require.ErrorIs(t, err, ErrPairNotFound)

	_, err = svc.GenerateProposal(context.Background(), GenerateRequest{CompanyID: 1, PairID: uuid.New(), Period: "August 2026"})
	require.ErrorContains(t, err, "YYYY-MM")
}

func TestSubmitEntryPostsBalanced(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil).WithClock(fixedClock())

	entry, err := svc.SubmitEntry(context.Background(), SubmitEntryInput{
		CompanyID: 1,
		Name:      "Elimination IC Loan - 2026-08",
		Date:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Period:    "2026-08",
		Lines: []SubmitLineInput{
			{EntityID: 1, AccountCode: "1400", Credit: 100},
			{EntityID: 2, AccountCode: "2400", Debit: 80},
			{EntityID: 1, AccountCode: "9999", Debit: 20},
		},
	})
	require.NoError(t, err)
	require.True(t, entry.Posted)
	require.InDelta(t, 100, entry.TotalDebit, 1e-9)
	require.InDelta(t, 100, entry.TotalCredit, 1e-9)
	require.Equal(t, 1, store.insertedEntries)
	require.Equal(t, 3, entry.Lines[2].LineNumber)
}

func TestSubmitEntryRejectsUnbalanced(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	_, err := svc.SubmitEntry(context.Background(), SubmitEntryInput{
		CompanyID: 1,
		Name:      "Broken",
		Date:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Period:    "2026-08",
		Lines: []SubmitLineInput{
			{EntityID: 1, AccountCode: "1400", Credit: 100},
			{EntityID: 2, AccountCode: "2400", Debit: 80},
		},
	})
	require.ErrorIs(t, err, ErrUnbalancedEntry)
	require.Zero(t, store.insertedEntries)
}

func TestSubmitEntryRejectsSingleLine(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	_, err := svc.SubmitEntry(context.Background(), SubmitEntryInput{
		CompanyID: 1,
		Name:      "Short",
		Date:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Period:    "2026-08",
		Lines:     []SubmitLineInput{{EntityID: 1, AccountCode: "1400", Debit: 10}},
	})
	require.Error(t, err)
}
