package store

import (
	"context"
	"time"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
)

// Dependency sets of the live reads. A character read joins planets and
// transformations, so a commit to any of the three re-runs it.
var (
	CharacterTables = []string{TableCharacters, TablePlanets, TableTransformations}
	PlanetTables    = []string{TablePlanets}
)

// Characters reads every character with its relations from one snapshot.
func (s *Store) Characters(ctx context.Context) ([]models.CharacterWithRelations, error) {
	var out []models.CharacterWithRelations
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.Characters(ctx)
		return err
	})
	return out, err
}

// Character reads one character with its relations, or common.ErrorNotFound.
func (s *Store) Character(ctx context.Context, id int64) (*models.CharacterWithRelations, error) {
	var out *models.CharacterWithRelations
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.Character(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) Planets(ctx context.Context) ([]models.PlanetRow, error) {
	var out []models.PlanetRow
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.Planets(ctx)
		return err
	})
	return out, err
}

func (s *Store) Planet(ctx context.Context, id int64) (*models.PlanetRow, error) {
	var out *models.PlanetRow
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.Planet(ctx, id)
		return err
	})
	return out, err
}

// LastSynced returns the time of the last successful sync of kind, or the
// zero time.
func (s *Store) LastSynced(ctx context.Context, kind models.Kind) (time.Time, error) {
	var out time.Time
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.LastSynced(ctx, kind)
		return err
	})
	return out, err
}

// Metadata returns the bookkeeping entries: local id sequences and last sync
// times, keyed as "local_id_seq:<kind>" and "last_sync:<kind>".
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.Metadata(ctx)
		return err
	})
	return out, err
}

// PruneOrphans deletes transformations whose owning character was deleted
// and returns how many rows went away.
func (s *Store) PruneOrphans(ctx context.Context) (int64, error) {
	var n int64
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		n, err = tx.DeleteOrphans(ctx)
		return err
	})
	return n, err
}
