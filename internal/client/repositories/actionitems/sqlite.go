package actionitems

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

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.ActionItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, done, entry_id, ts FROM action_items ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select action items: %w", err)
	}
	defer rows.Close()

	var result []models.ActionItem
	for rows.Next() {
		var item models.ActionItem
		if err := rows.Scan(&item.ID, &item.Text, &item.Done, &item.EntryID, &item.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []models.ActionItem) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM action_items`); err != nil {
			return fmt.Errorf("failed to clear action items: %w", err)
		}
		for _, a := range records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO action_items (id, text, done, entry_id, ts) VALUES (?, ?, ?, ?, ?)`,
				a.ID, a.Text, a.Done, a.EntryID, a.Timestamp)
			if err != nil {
				return fmt.Errorf("failed to insert action item %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, a *models.ActionItem) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO action_items (id, text, done, entry_id, ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET text = excluded.text,
			done = excluded.done,
			entry_id = excluded.entry_id,
			ts = excluded.ts`,
		a.ID, a.Text, a.Done, a.EntryID, a.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert action item: %w", err)
	}
	return nil
}
