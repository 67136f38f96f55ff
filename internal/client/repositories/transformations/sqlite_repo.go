package transformations

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/dmitrijs2005/dbcache/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert replaces rows on conflict. Transformations have no local-only
// columns, so every column is overwritten.
func (r *SQLiteRepository) Upsert(ctx context.Context, rows []models.TransformationRow) error {
	query := `INSERT INTO transformations (id, name, image, ki, character_id)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				image = excluded.image,
				ki = excluded.ki,
				character_id = excluded.character_id
	`
	for _, t := range rows {
		if _, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Image, t.Ki, t.CharacterID); err != nil {
			return fmt.Errorf("failed to upsert transformation %d: %w", t.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, rows []models.TransformationRow) error {
	query := `INSERT INTO transformations (id, name, image, ki, character_id)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
	`
	for _, t := range rows {
		res, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Image, t.Ki, t.CharacterID)
		if err != nil {
			return fmt.Errorf("failed to insert transformation %d: %w", t.ID, err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if ra == 0 {
			return fmt.Errorf("transformation %d: %w", t.ID, common.ErrorConflict)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetByCharacterID(ctx context.Context, characterID int64) ([]models.TransformationRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, image, ki, character_id
		FROM transformations WHERE character_id = ? ORDER BY id`, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to select transformations: %w", err)
	}
	defer rows.Close()

	result := make([]models.TransformationRow, 0)
	for rows.Next() {
		var t models.TransformationRow
		if err := rows.Scan(&t.ID, &t.Name, &t.Image, &t.Ki, &t.CharacterID); err != nil {
			return nil, fmt.Errorf("failed to scan transformation: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transformations
		WHERE character_id NOT IN (SELECT id FROM characters)`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned transformations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
