// Package storage opens the local sqlite database and wires the repositories.
package storage

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/jotkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/jotkeeper/internal/client/repositories/actionitems"
	"github.com/dmitrijs2005/jotkeeper/internal/client/repositories/entries"
	"github.com/dmitrijs2005/jotkeeper/internal/client/repositories/expenses"
	"github.com/dmitrijs2005/jotkeeper/internal/client/repositories/settings"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Settings    settings.Repository
	Entries     entries.Repository
	Expenses    expenses.Repository
	ActionItems actionitems.Repository

	db *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Settings:    settings.NewSQLiteRepository(db),
		Entries:     entries.NewSQLiteRepository(db),
		Expenses:    expenses.NewSQLiteRepository(db),
		ActionItems: actionitems.NewSQLiteRepository(db),
		db:          db,
	}, nil
}

func (r *Repositories) Close() error {
	return r.db.Close()
}
