package actionitems

import (
	"context"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
)

// Repository describes storage operations for the action item collection.
type Repository interface {
	GetAll(ctx context.Context) ([]models.ActionItem, error)

	// ReplaceAll atomically replaces the full collection.
	ReplaceAll(ctx context.Context, records []models.ActionItem) error

	CreateOrUpdate(ctx context.Context, a *models.ActionItem) error
}
