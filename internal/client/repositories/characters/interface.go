package characters

import (
	"context"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
)

// Repository describes persistence operations for character rows and the
// joined read of a character with its origin planet and transformations.
type Repository interface {
	// Upsert inserts rows or overwrites the remote-origin columns of existing
	// ones. The favorite column of an existing row is left untouched.
	Upsert(ctx context.Context, rows []models.CharacterRow) error

	// Insert adds a locally created row, failing with common.ErrorConflict
	// when the id is taken.
	Insert(ctx context.Context, row models.CharacterRow) error

	// GetAllWithRelations returns every character joined with its relations,
	// ordered by id.
	GetAllWithRelations(ctx context.Context) ([]models.CharacterWithRelations, error)

	// GetWithRelationsByID returns one joined character or common.ErrorNotFound.
	GetWithRelationsByID(ctx context.Context, id int64) (*models.CharacterWithRelations, error)

	Exists(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	SetFavorite(ctx context.Context, id int64, favorite bool) (bool, error)
}
