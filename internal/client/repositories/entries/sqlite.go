package entries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
	"github.com/dmitrijs2005/jotkeeper/internal/dbx"
)

// SQLiteRepository implements Repository on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, text, kind, ts FROM entries ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(&item.ID, &item.Text, &item.Kind, &item.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceAll swaps the whole collection inside one transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []models.Entry) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}
		for _, e := range records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO entries (id, text, kind, ts) VALUES (?, ?, ?, ?)`,
				e.ID, e.Text, e.Kind, e.Timestamp)
			if err != nil {
				return fmt.Errorf("failed to insert entry %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, e *models.Entry) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO entries (id, text, kind, ts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET text = excluded.text,
			kind = excluded.kind,
			ts = excluded.ts`,
		e.ID, e.Text, e.Kind, e.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}
