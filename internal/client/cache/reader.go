// Package cache exposes the read side of the cache as continuous streams.
//
// Each Observe method returns a channel that delivers the current state at
// once and again after every commit that touched a table the read depends on.
// A failing read is reported through Snapshot.Err and the stream stays open.
// Values are never mutated after being sent. Cancelling
// the context releases the underlying subscription and closes the channel;
// it never cancels a sync in progress.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dbcache/internal/client/livequery"
	"github.com/dmitrijs2005/dbcache/internal/client/mapper"
	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/client/store"
	"github.com/dmitrijs2005/dbcache/internal/common"
)

type Reader struct {
	store *store.Store
}

func NewReader(st *store.Store) *Reader {
	return &Reader{store: st}
}

func (r *Reader) ObserveCharacters(ctx context.Context) <-chan livequery.Snapshot[[]models.Character] {
	return livequery.Watch(ctx, r.store.Registry(), store.CharacterTables, func(ctx context.Context) ([]models.Character, error) {
		rows, err := r.store.Characters(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.Character, 0, len(rows))
		for _, row := range rows {
			out = append(out, mapper.CharacterFromRow(row))
		}
		return out, nil
	})
}

// ObserveCharacter emits a nil value while no character with id is cached.
func (r *Reader) ObserveCharacter(ctx context.Context, id int64) <-chan livequery.Snapshot[*models.Character] {
	return livequery.Watch(ctx, r.store.Registry(), store.CharacterTables, func(ctx context.Context) (*models.Character, error) {
		row, err := r.store.Character(ctx, id)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		c := mapper.CharacterFromRow(*row)
		return &c, nil
	})
}

func (r *Reader) ObservePlanets(ctx context.Context) <-chan livequery.Snapshot[[]models.Planet] {
	return livequery.Watch(ctx, r.store.Registry(), store.PlanetTables, func(ctx context.Context) ([]models.Planet, error) {
		rows, err := r.store.Planets(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.Planet, 0, len(rows))
		for _, row := range rows {
			out = append(out, mapper.PlanetFromRow(row))
		}
		return out, nil
	})
}

// ObservePlanet emits a nil value while no planet with id is cached.
func (r *Reader) ObservePlanet(ctx context.Context, id int64) <-chan livequery.Snapshot[*models.Planet] {
	return livequery.Watch(ctx, r.store.Registry(), store.PlanetTables, func(ctx context.Context) (*models.Planet, error) {
		row, err := r.store.Planet(ctx, id)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		p := mapper.PlanetFromRow(*row)
		return &p, nil
	})
}

// ObserveCollection is the kind-generic form of ObserveCharacters and
// ObservePlanets.
func (r *Reader) ObserveCollection(ctx context.Context, kind models.Kind) (<-chan livequery.Snapshot[[]models.Record], error) {
	tables, err := tablesOf(kind)
	if err != nil {
		return nil, err
	}
	return livequery.Watch(ctx, r.store.Registry(), tables, func(ctx context.Context) ([]models.Record, error) {
		return r.loadCollection(ctx, kind)
	}), nil
}

// ObserveByID is the kind-generic form of ObserveCharacter and ObservePlanet.
func (r *Reader) ObserveByID(ctx context.Context, kind models.Kind, id int64) (<-chan livequery.Snapshot[*models.Record], error) {
	tables, err := tablesOf(kind)
	if err != nil {
		return nil, err
	}
	return livequery.Watch(ctx, r.store.Registry(), tables, func(ctx context.Context) (*models.Record, error) {
		return r.loadOne(ctx, kind, id)
	}), nil
}

// Collection reads the current records of kind once.
func (r *Reader) Collection(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	if _, err := tablesOf(kind); err != nil {
		return nil, err
	}
	return r.loadCollection(ctx, kind)
}

// ByID reads one record once. It returns (nil, nil) when the record is not cached.
func (r *Reader) ByID(ctx context.Context, kind models.Kind, id int64) (*models.Record, error) {
	if _, err := tablesOf(kind); err != nil {
		return nil, err
	}
	return r.loadOne(ctx, kind, id)
}

func tablesOf(kind models.Kind) ([]string, error) {
	switch kind {
	case models.KindCharacter:
		return store.CharacterTables, nil
	case models.KindPlanet:
		return store.PlanetTables, nil
	}
	return nil, fmt.Errorf("%w: %q", common.ErrorUnknownKind, kind)
}

func (r *Reader) loadCollection(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	if kind == models.KindPlanet {
		rows, err := r.store.Planets(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.Record, 0, len(rows))
		for _, row := range rows {
			p := mapper.PlanetFromRow(row)
			out = append(out, models.Record{Kind: kind, Planet: &p})
		}
		return out, nil
	}

	rows, err := r.store.Characters(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		c := mapper.CharacterFromRow(row)
		out = append(out, models.Record{Kind: kind, Character: &c})
	}
	return out, nil
}

func (r *Reader) loadOne(ctx context.Context, kind models.Kind, id int64) (*models.Record, error) {
	if kind == models.KindPlanet {
		row, err := r.store.Planet(ctx, id)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		p := mapper.PlanetFromRow(*row)
		return &models.Record{Kind: kind, Planet: &p}, nil
	}

	row, err := r.store.Character(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := mapper.CharacterFromRow(*row)
	return &models.Record{Kind: kind, Character: &c}, nil
}
