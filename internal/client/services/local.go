package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dbcache/internal/client/mapper"
	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/client/store"
	"github.com/dmitrijs2005/dbcache/internal/common"
)

// SetFavorite changes only the local favorite flag. It fails with
// FailureNotFound when the record is not cached.
func (s *syncService) SetFavorite(ctx context.Context, kind models.Kind, id int64, favorite bool) models.Outcome {
	return s.guard(kind, id, func() models.Outcome {
		err := s.store.Update(ctx, func(tx *store.Tx) error {
			found, err := tx.SetFavorite(ctx, kind, id, favorite)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s %d: %w", kind, id, common.ErrorNotFound)
			}
			return nil
		})
		if err != nil {
			return storageFailure(kind, id, err)
		}
		s.log.Debug(ctx, "favorite updated", "kind", kind, "id", id, "favorite", favorite)
		return models.Succeeded(kind, id)
	})
}

// Delete removes one cached record. Deleting an absent id succeeds. A
// character's transformations stay behind until PruneOrphans runs.
func (s *syncService) Delete(ctx context.Context, kind models.Kind, id int64) models.Outcome {
	return s.guard(kind, id, func() models.Outcome {
		var deleted bool
		err := s.store.Update(ctx, func(tx *store.Tx) error {
			var err error
			deleted, err = tx.DeleteByID(ctx, kind, id)
			return err
		})
		if err != nil {
			return storageFailure(kind, id, err)
		}
		s.log.Debug(ctx, "record deleted", "kind", kind, "id", id, "existed", deleted)
		return models.Succeeded(kind, id)
	})
}

// AddCharacter stores a locally created character. A zero ID is replaced by
// the next local id; a caller-supplied id must be free. A referenced origin
// planet must already be cached.
func (s *syncService) AddCharacter(ctx context.Context, c models.Character) models.Outcome {
	kind := models.KindCharacter
	return s.guard(kind, c.ID, func() models.Outcome {
		if strings.TrimSpace(c.Name) == "" {
			return models.Failed(kind, c.ID, models.FailureInvalid, fmt.Errorf("%w: name is required", common.ErrorInvalidRecord))
		}
		for _, t := range c.Transformations {
			if t.ID == 0 {
				return models.Failed(kind, c.ID, models.FailureInvalid, fmt.Errorf("%w: transformation %q has no id", common.ErrorInvalidRecord, t.Name))
			}
		}

		row := mapper.CharacterRowFromDomain(c)
		var trans []models.TransformationRow
		err := s.store.Update(ctx, func(tx *store.Tx) error {
			if row.OriginPlanetID != nil {
				ok, err := tx.Exists(ctx, models.KindPlanet, *row.OriginPlanetID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("planet %d: %w", *row.OriginPlanetID, common.ErrorMissingOrigin)
				}
			}
			if row.ID == 0 {
				id, err := tx.NextLocalID(ctx, kind)
				if err != nil {
					return err
				}
				row.ID = id
			}
			if err := tx.InsertCharacter(ctx, row); err != nil {
				return err
			}
			trans = make([]models.TransformationRow, 0, len(c.Transformations))
			for _, t := range c.Transformations {
				trans = append(trans, models.TransformationRow{ID: t.ID, Name: t.Name, Image: t.Image, Ki: t.Ki, CharacterID: row.ID})
			}
			return tx.InsertTransformations(ctx, trans)
		})
		if err != nil {
			return storageFailure(kind, c.ID, err)
		}

		s.log.Info(ctx, "local character added", "id", row.ID, "name", row.Name)
		out := models.Succeeded(kind, row.ID)
		out.Characters, out.Transformations = 1, len(trans)
		return out
	})
}

// AddPlanet stores a locally created planet, allocating a local id when
// p.ID is zero.
func (s *syncService) AddPlanet(ctx context.Context, p models.Planet) models.Outcome {
	kind := models.KindPlanet
	return s.guard(kind, p.ID, func() models.Outcome {
		if strings.TrimSpace(p.Name) == "" {
			return models.Failed(kind, p.ID, models.FailureInvalid, fmt.Errorf("%w: name is required", common.ErrorInvalidRecord))
		}

		row := mapper.PlanetRowFromDomain(p)
		err := s.store.Update(ctx, func(tx *store.Tx) error {
			if row.ID == 0 {
				id, err := tx.NextLocalID(ctx, kind)
				if err != nil {
					return err
				}
				row.ID = id
			}
			return tx.InsertPlanet(ctx, row)
		})
		if err != nil {
			return storageFailure(kind, p.ID, err)
		}

		s.log.Info(ctx, "local planet added", "id", row.ID, "name", row.Name)
		out := models.Succeeded(kind, row.ID)
		out.Planets = 1
		return out
	})
}

func (s *syncService) PruneOrphans(ctx context.Context) models.Outcome {
	return s.guard("", 0, func() models.Outcome {
		n, err := s.store.PruneOrphans(ctx)
		if err != nil {
			return models.Failed("", 0, models.FailureStorage, err)
		}
		s.log.Info(ctx, "orphaned transformations pruned", "count", n)
		out := models.Succeeded("", 0)
		out.Transformations = int(n)
		return out
	})
}
