package expenses

import (
	"context"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
)

// Repository describes storage operations for the expense collection.
type Repository interface {
	GetAll(ctx context.Context) ([]models.Expense, error)

	// ReplaceAll atomically replaces the full collection.
	ReplaceAll(ctx context.Context, records []models.Expense) error

	CreateOrUpdate(ctx context.Context, x *models.Expense) error
}
