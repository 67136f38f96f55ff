package transformations

import (
	"context"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
)

// Repository describes persistence operations for transformation rows.
type Repository interface {
	// Upsert inserts or fully overwrites rows keyed by id. Callers must write
	// the owning characters first.
	Upsert(ctx context.Context, rows []models.TransformationRow) error

	// Insert adds new rows and fails with common.ErrorConflict when an id
	// is already taken. Existing rows are never touched.
	Insert(ctx context.Context, rows []models.TransformationRow) error

	// GetByCharacterID returns the transformations of one character ordered by id.
	GetByCharacterID(ctx context.Context, characterID int64) ([]models.TransformationRow, error)

	// DeleteOrphans removes rows whose owning character is gone.
	DeleteOrphans(ctx context.Context) (int64, error)
}
