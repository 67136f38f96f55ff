package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/client/repositories/characters"
	"github.com/dmitrijs2005/dbcache/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dbcache/internal/client/repositories/planets"
	"github.com/dmitrijs2005/dbcache/internal/client/repositories/transformations"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/dmitrijs2005/dbcache/internal/dbx"
)

// Tx is the handle passed to Update and View. It must not be used after the
// callback returns.
type Tx struct {
	planets         planets.Repository
	characters      characters.Repository
	transformations transformations.Repository
	meta            metadata.Repository

	touched map[string]struct{}
}

func newTx(q dbx.DBTX) *Tx {
	return &Tx{
		planets:         planets.NewSQLiteRepository(q),
		characters:      characters.NewSQLiteRepository(q),
		transformations: transformations.NewSQLiteRepository(q),
		meta:            metadata.NewSQLiteRepository(q),
		touched:         make(map[string]struct{}),
	}
}

func (tx *Tx) touch(table string) { tx.touched[table] = struct{}{} }

// Touched returns the tables written so far, sorted.
func (tx *Tx) Touched() []string {
	out := make([]string, 0, len(tx.touched))
	for t := range tx.touched {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// UpsertPlanets writes remote planets. An empty slice is a no-op.
func (tx *Tx) UpsertPlanets(ctx context.Context, rows []models.PlanetRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.planets.Upsert(ctx, rows); err != nil {
		return err
	}
	tx.touch(TablePlanets)
	return nil
}

// UpsertCharacters writes remote characters. Origin planets must have been
// written first within the same transaction.
func (tx *Tx) UpsertCharacters(ctx context.Context, rows []models.CharacterRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.characters.Upsert(ctx, rows); err != nil {
		return err
	}
	tx.touch(TableCharacters)
	return nil
}

// UpsertTransformations writes transformations. Owners must have been
// written first within the same transaction.
func (tx *Tx) UpsertTransformations(ctx context.Context, rows []models.TransformationRow) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r.CharacterID == 0 {
			return fmt.Errorf("transformation %d has no owner: %w", r.ID, common.ErrorInvalidRecord)
		}
	}
	if err := tx.transformations.Upsert(ctx, rows); err != nil {
		return err
	}
	tx.touch(TableTransformations)
	return nil
}

// InsertTransformations adds the transformations of a locally created
// character. An id that is already cached fails with common.ErrorConflict.
func (tx *Tx) InsertTransformations(ctx context.Context, rows []models.TransformationRow) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r.CharacterID == 0 {
			return fmt.Errorf("transformation %d has no owner: %w", r.ID, common.ErrorInvalidRecord)
		}
	}
	if err := tx.transformations.Insert(ctx, rows); err != nil {
		return err
	}
	tx.touch(TableTransformations)
	return nil
}

// InsertPlanet adds a locally created planet.
func (tx *Tx) InsertPlanet(ctx context.Context, row models.PlanetRow) error {
	if err := tx.planets.Insert(ctx, row); err != nil {
		return err
	}
	tx.touch(TablePlanets)
	return nil
}

// InsertCharacter adds a locally created character.
func (tx *Tx) InsertCharacter(ctx context.Context, row models.CharacterRow) error {
	if err := tx.characters.Insert(ctx, row); err != nil {
		return err
	}
	tx.touch(TableCharacters)
	return nil
}

// DeleteByID removes one record. Deleting an absent id is not an error.
// Rows referencing the deleted record are left in place.
func (tx *Tx) DeleteByID(ctx context.Context, kind models.Kind, id int64) (bool, error) {
	var (
		deleted bool
		err     error
		table   string
	)
	switch kind {
	case models.KindCharacter:
		deleted, err = tx.characters.DeleteByID(ctx, id)
		table = TableCharacters
	case models.KindPlanet:
		deleted, err = tx.planets.DeleteByID(ctx, id)
		table = TablePlanets
	default:
		return false, fmt.Errorf("%w: %q", common.ErrorUnknownKind, kind)
	}
	if err != nil {
		return false, err
	}
	if deleted {
		tx.touch(table)
	}
	return deleted, nil
}

// SetFavorite writes only the favorite flag and reports whether the record exists.
func (tx *Tx) SetFavorite(ctx context.Context, kind models.Kind, id int64, favorite bool) (bool, error) {
	var (
		found bool
		err   error
		table string
	)
	switch kind {
	case models.KindCharacter:
		found, err = tx.characters.SetFavorite(ctx, id, favorite)
		table = TableCharacters
	case models.KindPlanet:
		found, err = tx.planets.SetFavorite(ctx, id, favorite)
		table = TablePlanets
	default:
		return false, fmt.Errorf("%w: %q", common.ErrorUnknownKind, kind)
	}
	if err != nil {
		return false, err
	}
	if found {
		tx.touch(table)
	}
	return found, nil
}

// Exists reports whether a record of kind with id is cached.
func (tx *Tx) Exists(ctx context.Context, kind models.Kind, id int64) (bool, error) {
	switch kind {
	case models.KindCharacter:
		return tx.characters.Exists(ctx, id)
	case models.KindPlanet:
		return tx.planets.Exists(ctx, id)
	}
	return false, fmt.Errorf("%w: %q", common.ErrorUnknownKind, kind)
}

func localSeqKey(kind models.Kind) string { return "local_id_seq:" + string(kind) }
func lastSyncKey(kind models.Kind) string { return "last_sync:" + string(kind) }

// NextLocalID allocates an id for a locally created record. Local ids count
// down from -1 so they never meet the positive ids handed out by the remote.
// Ids already present are skipped.
func (tx *Tx) NextLocalID(ctx context.Context, kind models.Kind) (int64, error) {
	for {
		id, err := tx.meta.Add(ctx, localSeqKey(kind), -1)
		if err != nil {
			return 0, err
		}
		taken, err := tx.Exists(ctx, kind, id)
		if err != nil {
			return 0, err
		}
		if !taken {
			tx.touch(TableMetadata)
			return id, nil
		}
	}
}

// SetLastSynced records the time of the last successful sync of kind.
func (tx *Tx) SetLastSynced(ctx context.Context, kind models.Kind, t time.Time) error {
	if err := tx.meta.SetTime(ctx, lastSyncKey(kind), t); err != nil {
		return err
	}
	tx.touch(TableMetadata)
	return nil
}

// LastSynced returns the zero time when kind was never synced.
func (tx *Tx) LastSynced(ctx context.Context, kind models.Kind) (time.Time, error) {
	return tx.meta.GetTime(ctx, lastSyncKey(kind))
}

// Metadata returns every bookkeeping entry as text.
func (tx *Tx) Metadata(ctx context.Context) (map[string]string, error) {
	raw, err := tx.meta.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = string(v)
	}
	return out, nil
}

// DeleteOrphans removes transformations whose owner is gone.
func (tx *Tx) DeleteOrphans(ctx context.Context) (int64, error) {
	n, err := tx.transformations.DeleteOrphans(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		tx.touch(TableTransformations)
	}
	return n, nil
}

// Characters returns every character joined with its relations, ordered by id.
func (tx *Tx) Characters(ctx context.Context) ([]models.CharacterWithRelations, error) {
	return tx.characters.GetAllWithRelations(ctx)
}

// Character returns one joined character or common.ErrorNotFound.
func (tx *Tx) Character(ctx context.Context, id int64) (*models.CharacterWithRelations, error) {
	return tx.characters.GetWithRelationsByID(ctx, id)
}

// Planets returns every planet ordered by id.
func (tx *Tx) Planets(ctx context.Context) ([]models.PlanetRow, error) {
	return tx.planets.GetAll(ctx)
}

// Planet returns one planet or common.ErrorNotFound.
func (tx *Tx) Planet(ctx context.Context, id int64) (*models.PlanetRow, error) {
	return tx.planets.GetByID(ctx, id)
}
