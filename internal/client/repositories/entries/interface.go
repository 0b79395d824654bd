package entries

import (
	"context"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
)

// Repository describes storage operations for the journal entry collection.
// Sync always operates on the full collection: reads snapshot everything,
// merge results are written back wholesale.
type Repository interface {
	// GetAll returns the full entry collection.
	GetAll(ctx context.Context) ([]models.Entry, error)

	// ReplaceAll atomically replaces the full collection with the given
	// records. Used by the merge resolver so a merge is all-or-nothing
	// from the store's point of view.
	ReplaceAll(ctx context.Context, records []models.Entry) error

	// CreateOrUpdate upserts a single entry by id.
	CreateOrUpdate(ctx context.Context, e *models.Entry) error
}
