package planets

import (
	"context"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
)

// Repository describes persistence operations for planet rows.
type Repository interface {
	// Upsert inserts rows or overwrites the remote-origin columns of existing
	// ones. The favorite column of an existing row is left untouched.
	Upsert(ctx context.Context, rows []models.PlanetRow) error

	// Insert adds a locally created row. It fails with common.ErrorConflict
	// when the id is taken.
	Insert(ctx context.Context, row models.PlanetRow) error

	// GetAll returns every cached planet ordered by id.
	GetAll(ctx context.Context) ([]models.PlanetRow, error)

	// GetByID returns one planet or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.PlanetRow, error)

	// Exists reports whether a row with id is cached.
	Exists(ctx context.Context, id int64) (bool, error)

	// DeleteByID removes the row if present and reports whether it did.
	DeleteByID(ctx context.Context, id int64) (bool, error)

	// SetFavorite updates only the favorite column and reports whether a row matched.
	SetFavorite(ctx context.Context, id int64, favorite bool) (bool, error)
}
