package elimination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finclose/finclose/internal/platform/db"
)

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// Repository persists pairs and journal entries in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListPairs returns a company's pairs, active first, newest within each group.
func (r *Repository) ListPairs(ctx context.Context, companyID int64) ([]Pair, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, name, COALESCE(description, ''),
		       gl1_entity_id, gl1_account_code,
		       gl2_entity_id, gl2_account_code,
		       COALESCE(difference_account, ''), is_active,
		       created_at, updated_at
		FROM elimination_gl_pairs
		WHERE company_id = $1
		ORDER BY is_active DESC, created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pairs []Pair
	for rows.Next() {
		pair, err := scanPair(rows)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

// GetPair loads one pair by id.
func (r *Repository) GetPair(ctx context.Context, id uuid.UUID) (Pair, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, name, COALESCE(description, ''),
		       gl1_entity_id, gl1_account_code,
		       gl2_entity_id, gl2_account_code,
		       COALESCE(difference_account, ''), is_active,
		       created_at, updated_at
		FROM elimination_gl_pairs
		WHERE id = $1`, id)
	if err != nil {
		return Pair{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Pair{}, err
		}
		return Pair{}, ErrPairNotFound
	}
	return scanPair(rows)
}

func scanPair(rows pgx.Rows) (Pair, error) {
	var p Pair
	err := rows.Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.Description,
		&p.GL1.EntityID, &p.GL1.AccountCode,
		&p.GL2.EntityID, &p.GL2.AccountCode,
		&p.DifferenceAccount, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// InsertPair stores a new pair. A unique index on (company_id, name) maps
// to ErrPairExists.
func (r *Repository) InsertPair(ctx context.Context, pair Pair) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO elimination_gl_pairs (
			id, company_id, name, description,
			gl1_entity_id, gl1_account_code,
			gl2_entity_id, gl2_account_code,
			difference_account, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		pair.ID, pair.CompanyID, pair.Name, pair.Description,
		pair.GL1.EntityID, pair.GL1.AccountCode,
		pair.GL2.EntityID, pair.GL2.AccountCode,
		pair.DifferenceAccount, pair.Active, pair.CreatedAt, pair.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrPairExists
	}
	return err
}

// UpdatePair overwrites pair fields.
func (r *Repository) UpdatePair(ctx context.Context, pair Pair) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE elimination_gl_pairs
		SET name = $2, description = $3,
		    gl1_entity_id = $4, gl1_account_code = $5,
		    gl2_entity_id = $6, gl2_account_code = $7,
		    difference_account = $8, updated_at = $9
		WHERE id = $1`,
		pair.ID, pair.Name, pair.Description,
		pair.GL1.EntityID, pair.GL1.AccountCode,
		pair.GL2.EntityID, pair.GL2.AccountCode,
		pair.DifferenceAccount, pair.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPairNotFound
	}
	return nil
}

// DeactivatePair flips the active flag without touching posted entries.
func (r *Repository) DeactivatePair(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE elimination_gl_pairs
		SET is_active = FALSE, updated_at = $2
		WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPairNotFound
	}
	return nil
}

// InsertEntry stores the entry header and its lines in one transaction.
func (r *Repository) InsertEntry(ctx context.Context, entry JournalEntry) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO elimination_journal_entries (
				id, company_id, name, entry_date, period, description,
				total_debit, total_credit, is_posted, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			entry.ID, entry.CompanyID, entry.Name, entry.Date, entry.Period,
			entry.Description, entry.TotalDebit, entry.TotalCredit,
			entry.Posted, entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert entry header: %w", err)
		}

		for _, line := range entry.Lines {
			_, err = tx.Exec(ctx, `
				INSERT INTO elimination_journal_entry_lines (
					entry_id, line_number, entity_id, gl_code, gl_name, debit, credit
				) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				entry.ID, line.LineNumber, line.EntityID,
				line.AccountCode, line.AccountName, line.Debit, line.Credit,
			)
			if err != nil {
				return fmt.Errorf("insert entry line %d: %w", line.LineNumber, err)
			}
		}
		return nil
	})
}

// ListEntries returns entries with lines for one company and period.
func (r *Repository) ListEntries(ctx context.Context, companyID int64, period string) ([]JournalEntry, error) {
	entryRows, err := r.pool.Query(ctx, `
		SELECT id, company_id, name, entry_date, period, COALESCE(description, ''),
		       COALESCE(total_debit, 0), COALESCE(total_credit, 0), is_posted, created_at
		FROM elimination_journal_entries
		WHERE company_id = $1 AND period = $2
		ORDER BY entry_date, created_at`, companyID, period)
	if err != nil {
		return nil, err
	}
	defer entryRows.Close()

	var entries []JournalEntry
	index := make(map[uuid.UUID]int)
	for entryRows.Next() {
		var e JournalEntry
		if err := entryRows.Scan(
			&e.ID, &e.CompanyID, &e.Name, &e.Date, &e.Period, &e.Description,
			&e.TotalDebit, &e.TotalCredit, &e.Posted, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := entryRows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	lineRows, err := r.pool.Query(ctx, `
		SELECT l.entry_id, l.line_number, l.entity_id, l.gl_code,
		       COALESCE(l.gl_name, ''), COALESCE(l.debit, 0), COALESCE(l.credit, 0)
		FROM elimination_journal_entry_lines l
		JOIN elimination_journal_entries e ON e.id = l.entry_id
		WHERE e.company_id = $1 AND e.period = $2
		ORDER BY l.entry_id, l.line_number`, companyID, period)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var entryID uuid.UUID
		var line JournalLine
		if err := lineRows.Scan(
			&entryID, &line.LineNumber, &line.EntityID,
			&line.AccountCode, &line.AccountName, &line.Debit, &line.Credit,
		); err != nil {
			return nil, err
		}
		if i, ok := index[entryID]; ok {
			entries[i].Lines = append(entries[i].Lines, line)
		}
	}
	return entries, lineRows.Err()
}

// DeleteEntry removes the entry header and its lines.
func (r *Repository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM elimination_journal_entry_lines WHERE entry_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			DELETE FROM elimination_journal_entries WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrEntryNotFound
		}
		return nil
	})
}

// AccountBalance sums one entity account's trial balance as debit minus
// credit for the period.
func (r *Repository) AccountBalance(ctx context.Context, companyID int64, ref GLRef, period string) (float64, error) {
	var net float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(COALESCE(tb.debit, 0) - COALESCE(tb.credit, 0)), 0)
		FROM trial_balances tb
		JOIN entities e ON e.id = tb.entity_id
		WHERE e.company_id = $1 AND tb.entity_id = $2
		  AND tb.account_code = $3 AND tb.period = $4`,
		companyID, ref.EntityID, ref.AccountCode, period,
	).Scan(&net)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return net, nil
}

// AccountNames resolves display names for the given codes.
func (r *Repository) AccountNames(ctx context.Context, companyID int64, codes []string) (map[string]string, error) {
	names := make(map[string]string, len(codes))
	if len(codes) == 0 {
		return names, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT account_code, account_name
		FROM chart_of_accounts
		WHERE company_id = $1 AND account_code = ANY($2)`, companyID, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, err
		}
		names[code] = name
	}
	return names, rows.Err()
}
