package consol

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads ledger snapshots from Postgres. All reads are plain
// selects; the engine never writes through this path.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Snapshot assembles the five read-only collections for one company/period
// scope into a single immutable snapshot.
func (r *Repository) Snapshot(ctx context.Context, companyID int64, period string) (*Snapshot, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("consol: repository not initialised")
	}

	snapshot := &Snapshot{Period: period}

	accounts, err := r.accounts(ctx, companyID)
	if err != nil {
		return nil, err
	}
	snapshot.Accounts = accounts

	entities, err := r.entities(ctx, companyID)
	if err != nil {
		return nil, err
	}
	snapshot.Entities = entities

	postings, err := r.postings(ctx, companyID, period)
	if err != nil {
		return nil, err
	}
	snapshot.Postings = postings

	eliminations, err := r.eliminationSources(ctx, companyID, period)
	if err != nil {
		return nil, err
	}
	snapshot.Eliminations = eliminations

	adjustments, err := r.adjustments(ctx, companyID, period)
	if err != nil {
		return nil, err
	}
	snapshot.Adjustments = adjustments

	return snapshot, nil
}

func (r *Repository) accounts(ctx context.Context, companyID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT account_code, account_name,
		       COALESCE(class_name, ''), COALESCE(subclass_name, ''),
		       COALESCE(note_name, ''), COALESCE(note_number, ''),
		       COALESCE(subnote_name, ''), is_active
		FROM chart_of_accounts
		WHERE company_id = $1
		ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.Code, &a.Name, &a.Class, &a.Subclass, &a.Note, &a.NoteNumber, &a.Subnote, &a.Active); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) entities(ctx context.Context, companyID int64) ([]Entity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name FROM entities WHERE company_id = $1 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entities []Entity
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

func (r *Repository) postings(ctx context.Context, companyID int64, period string) ([]Posting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tb.account_code, tb.entity_id, tb.period,
		       COALESCE(tb.debit, 0), COALESCE(tb.credit, 0)
		FROM trial_balances tb
		JOIN entities e ON e.id = tb.entity_id
		WHERE e.company_id = $1 AND tb.period = $2`, companyID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var postings []Posting
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.AccountCode, &p.EntityID, &p.Period, &p.Debit, &p.Credit); err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// eliminationSources merges the two elimination shapes into the tagged
// collection: posted journal-entry lines (debit/credit rule) and
// intercompany mapping rows (always-subtract rule).
func (r *Repository) eliminationSources(ctx context.Context, companyID int64, period string) ([]EliminationSource, error) {
	var sources []EliminationSource

	lineRows, err := r.pool.Query(ctx, `
		SELECT l.gl_code, COALESCE(l.debit, 0), COALESCE(l.credit, 0)
		FROM elimination_journal_entry_lines l
		JOIN elimination_journal_entries e ON e.id = l.entry_id
		WHERE e.company_id = $1 AND e.period = $2 AND e.is_posted
		ORDER BY e.entry_date, l.line_number`, companyID, period)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var code string
		var debit, credit float64
		if err := lineRows.Scan(&code, &debit, &credit); err != nil {
			return nil, err
		}
		if debit != 0 {
			sources = append(sources, EliminationEntry{DebitAccount: code, Amount: debit})
		}
		if credit != 0 {
			sources = append(sources, EliminationEntry{CreditAccount: code, Amount: credit})
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	icRows, err := r.pool.Query(ctx, `
		SELECT from_account, to_account, amount, transaction_type
		FROM intercompany_transactions
		WHERE company_id = $1 AND period = $2`, companyID, period)
	if err != nil {
		return nil, err
	}
	defer icRows.Close()
	for icRows.Next() {
		var m IntercompanyMapping
		if err := icRows.Scan(&m.FromAccount, &m.ToAccount, &m.Amount, &m.TransactionType); err != nil {
			return nil, err
		}
		sources = append(sources, m)
	}
	return sources, icRows.Err()
}

func (r *Repository) adjustments(ctx context.Context, companyID int64, period string) ([]AdjustmentEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(debit_account, ''), COALESCE(credit_account, ''), amount
		FROM consolidation_adjustments
		WHERE company_id = $1 AND period = $2
		ORDER BY id`, companyID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var adjustments []AdjustmentEntry
	for rows.Next() {
		var a AdjustmentEntry
		if err := rows.Scan(&a.DebitAccount, &a.CreditAccount, &a.Amount); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

// DerivedLines loads the company's stored cash-flow lines with their formula
// items in authored order.
func (r *Repository) DerivedLines(ctx context.Context, companyID int64) ([]DerivedLine, error) {
	lineRows, err := r.pool.Query(ctx, `
		SELECT id, name, sign
		FROM derived_lines
		WHERE company_id = $1
		ORDER BY position, id`, companyID)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()

	var lines []DerivedLine
	index := make(map[int64]int)
	for lineRows.Next() {
		var line DerivedLine
		if err := lineRows.Scan(&line.ID, &line.Name, &line.Sign); err != nil {
			return nil, err
		}
		index[line.ID] = len(lines)
		lines = append(lines, line)
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return lines, nil
	}

	itemRows, err := r.pool.Query(ctx, `
		SELECT i.line_id, i.operator, i.level_type, i.level_name
		FROM derived_line_items i
		JOIN derived_lines d ON d.id = i.line_id
		WHERE d.company_id = $1
		ORDER BY i.line_id, i.position`, companyID)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var lineID int64
		var item FormulaItem
		var level string
		if err := itemRows.Scan(&lineID, &item.Operator, &level, &item.Name); err != nil {
			return nil, err
		}
		item.Level = NodeLevel(level)
		if i, ok := index[lineID]; ok {
			lines[i].Items = append(lines[i].Items, item)
		}
	}
	return lines, itemRows.Err()
}

// CompanyIDs lists every company with entities loaded, for refresh fan-out.
func (r *Repository) CompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT company_id FROM entities ORDER BY company_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LatestPeriod returns the most recent trial balance period for a company,
// or empty when nothing is loaded yet.
func (r *Repository) LatestPeriod(ctx context.Context, companyID int64) (string, error) {
	var period *string
	err := r.pool.QueryRow(ctx, `
		SELECT MAX(tb.period)
		FROM trial_balances tb
		JOIN entities e ON e.id = tb.entity_id
		WHERE e.company_id = $1`, companyID).Scan(&period)
	if err != nil {
		return "", err
	}
	if period == nil {
		return "", nil
	}
	return *period, nil
}

// AccountNames returns code/name pairs alphabetized by name for picker
// endpoints. Statement hierarchies keep source order; pickers sort.
func (r *Repository) AccountNames(ctx context.Context, companyID int64) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT account_code, account_name
		FROM chart_of_accounts
		WHERE company_id = $1 AND is_active
		ORDER BY account_name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make(map[string]string)
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, err
		}
		names[code] = name
	}
	return names, rows.Err()
}
