package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finclose/finclose/internal/platform/db"
)

// Repository reads and rewrites trial balance rows in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Rows loads one entity's trial balance for a period, scoped to the company
// through the entity join.
func (r *Repository) Rows(ctx context.Context, companyID, entityID int64, period string) ([]Row, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tb.entity_id, tb.account_code, tb.period,
		       COALESCE(tb.debit, 0), COALESCE(tb.credit, 0)
		FROM trial_balances tb
		JOIN entities e ON e.id = tb.entity_id
		WHERE e.company_id = $1 AND tb.entity_id = $2 AND tb.period = $3
		ORDER BY tb.account_code`, companyID, entityID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.EntityID, &row.AccountCode, &row.Period, &row.Debit, &row.Credit); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ReplaceRows rewrites the scope's rows in one transaction.
func (r *Repository) ReplaceRows(ctx context.Context, companyID, entityID int64, period string, rows []Row) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			DELETE FROM trial_balances tb
			USING entities e
			WHERE e.id = tb.entity_id
			  AND e.company_id = $1 AND tb.entity_id = $2 AND tb.period = $3`,
			companyID, entityID, period)
		if err != nil {
			return fmt.Errorf("clear rows: %w", err)
		}

		for _, row := range rows {
			_, err = tx.Exec(ctx, `
				INSERT INTO trial_balances (entity_id, account_code, period, debit, credit)
				VALUES ($1, $2, $3, $4, $5)`,
				row.EntityID, row.AccountCode, row.Period, row.Debit, row.Credit)
			if err != nil {
				return fmt.Errorf("insert row %s: %w", row.AccountCode, err)
			}
		}
		return nil
	})
}
