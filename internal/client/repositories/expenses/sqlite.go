package expenses

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
	"github.com/dmitrijs2005/jotkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount, currency, entry_id, ts FROM expenses ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []models.Expense
	for rows.Next() {
		var item models.Expense
		if err := rows.Scan(&item.ID, &item.Description, &item.Amount, &item.Currency, &item.EntryID, &item.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []models.Expense) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
			return fmt.Errorf("failed to clear expenses: %w", err)
		}
		for _, x := range records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO expenses (id, description, amount, currency, entry_id, ts) VALUES (?, ?, ?, ?, ?, ?)`,
				x.ID, x.Description, x.Amount, x.Currency, x.EntryID, x.Timestamp)
			if err != nil {
				return fmt.Errorf("failed to insert expense %s: %w", x.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, x *models.Expense) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO expenses (id, description, amount, currency, entry_id, ts)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET description = excluded.description,
			amount = excluded.amount,
			currency = excluded.currency,
			entry_id = excluded.entry_id,
			ts = excluded.ts`,
		x.ID, x.Description, x.Amount, x.Currency, x.EntryID, x.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert expense: %w", err)
	}
	return nil
}
