package characters

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/dmitrijs2005/dbcache/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
// The joined reads issue several statements; run them on a transaction to
// get a consistent snapshot.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const joinedSelect = `SELECT c.id, c.name, c.ki, c.max_ki, c.race, c.gender, c.description,
		c.image, c.affiliation, c.origin_planet_id, c.favorite,
		p.id, p.name, p.is_destroyed, p.description, p.image, p.favorite
	FROM characters c
	LEFT JOIN planets p ON p.id = c.origin_planet_id`

func (r *SQLiteRepository) Upsert(ctx context.Context, rows []models.CharacterRow) error {
	query := `INSERT INTO characters (id, name, ki, max_ki, race, gender, description, image, affiliation, origin_planet_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				ki = excluded.ki,
				max_ki = excluded.max_ki,
				race = excluded.race,
				gender = excluded.gender,
				description = excluded.description,
				image = excluded.image,
				affiliation = excluded.affiliation,
				origin_planet_id = excluded.origin_planet_id
	`
	for _, c := range rows {
		_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Ki, c.MaxKi, c.Race, c.Gender,
			c.Description, c.Image, c.Affiliation, nullableID(c.OriginPlanetID))
		if err != nil {
			return fmt.Errorf("failed to upsert character %d: %w", c.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, c models.CharacterRow) error {
	query := `INSERT INTO characters (id, name, ki, max_ki, race, gender, description, image, affiliation, origin_planet_id, favorite)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Ki, c.MaxKi, c.Race, c.Gender,
		c.Description, c.Image, c.Affiliation, nullableID(c.OriginPlanetID), c.Favorite)
	if err != nil {
		return fmt.Errorf("failed to insert character %d: %w", c.ID, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("character %d: %w", c.ID, common.ErrorConflict)
	}
	return nil
}

func (r *SQLiteRepository) GetAllWithRelations(ctx context.Context) ([]models.CharacterWithRelations, error) {
	rows, err := r.db.QueryContext(ctx, joinedSelect+` ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select characters: %w", err)
	}
	defer rows.Close()

	result := make([]models.CharacterWithRelations, 0)
	index := make(map[int64]int)
	for rows.Next() {
		item, err := scanJoined(rows)
		if err != nil {
			return nil, err
		}
		index[item.Character.ID] = len(result)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	trows, err := r.db.QueryContext(ctx, `SELECT t.id, t.name, t.image, t.ki, t.character_id
		FROM transformations t
		JOIN characters c ON c.id = t.character_id
		ORDER BY t.character_id, t.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select transformations: %w", err)
	}
	defer trows.Close()

	for trows.Next() {
		var t models.TransformationRow
		if err := trows.Scan(&t.ID, &t.Name, &t.Image, &t.Ki, &t.CharacterID); err != nil {
			return nil, fmt.Errorf("failed to scan transformation: %w", err)
		}
		if i, ok := index[t.CharacterID]; ok {
			result[i].Transformations = append(result[i].Transformations, t)
		}
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetWithRelationsByID(ctx context.Context, id int64) (*models.CharacterWithRelations, error) {
	rows, err := r.db.QueryContext(ctx, joinedSelect+` WHERE c.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select character %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, common.ErrorNotFound
	}
	item, err := scanJoined(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	trows, err := r.db.QueryContext(ctx, `SELECT id, name, image, ki, character_id
		FROM transformations WHERE character_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select transformations: %w", err)
	}
	defer trows.Close()

	for trows.Next() {
		var t models.TransformationRow
		if err := trows.Scan(&t.ID, &t.Name, &t.Image, &t.Ki, &t.CharacterID); err != nil {
			return nil, fmt.Errorf("failed to scan transformation: %w", err)
		}
		item.Transformations = append(item.Transformations, t)
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check character %d: %w", id, err)
	}
	return n > 0, nil
}

// DeleteByID removes the character row only. Its transformations stay in
// their table but are no longer reachable through the joined reads.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete character: %w", err)
	}
	return affected(res)
}

func (r *SQLiteRepository) SetFavorite(ctx context.Context, id int64, favorite bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE characters SET favorite = ? WHERE id = ?`, favorite, id)
	if err != nil {
		return false, fmt.Errorf("failed to update character favorite: %w", err)
	}
	return affected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJoined(s scanner) (models.CharacterWithRelations, error) {
	var (
		item     models.CharacterWithRelations
		originID sql.NullInt64
		pID      sql.NullInt64
		pName    sql.NullString
		pDestroy sql.NullBool
		pDesc    sql.NullString
		pImage   sql.NullString
		pFav     sql.NullBool
	)
	c := &item.Character
	err := s.Scan(&c.ID, &c.Name, &c.Ki, &c.MaxKi, &c.Race, &c.Gender, &c.Description,
		&c.Image, &c.Affiliation, &originID, &c.Favorite,
		&pID, &pName, &pDestroy, &pDesc, &pImage, &pFav)
	if err != nil {
		return item, fmt.Errorf("failed to scan character: %w", err)
	}
	if originID.Valid {
		id := originID.Int64
		c.OriginPlanetID = &id
	}
	if pID.Valid {
		item.Planet = &models.PlanetRow{
			ID:          pID.Int64,
			Name:        pName.String,
			IsDestroyed: pDestroy.Bool,
			Description: pDesc.String,
			Image:       pImage.String,
			Favorite:    pFav.Bool,
		}
	}
	return item, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func affected(res sql.Result) (bool, error) {
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

var _ Repository = (*SQLiteRepository)(nil)

