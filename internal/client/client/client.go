package client

import (
	"context"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
)

// Client is the remote source of records. Implementations must be safe for
// concurrent use and honor context cancellation.
type Client interface {
	ListCharacters(ctx context.Context, limit int) ([]models.WireCharacter, error)
	GetCharacter(ctx context.Context, id int64) (*models.WireCharacter, error)
	ListPlanets(ctx context.Context, limit int) ([]models.WirePlanet, error)
	GetPlanet(ctx context.Context, id int64) (*models.WirePlanet, error)
	Ping(ctx context.Context) error
	Close() error
}
