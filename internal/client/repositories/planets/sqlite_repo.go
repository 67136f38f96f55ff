package planets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/dmitrijs2005/dbcache/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `id, name, is_destroyed, description, image, favorite`

func (r *SQLiteRepository) Upsert(ctx context.Context, rows []models.PlanetRow) error {
	query := `INSERT INTO planets (id, name, is_destroyed, description, image)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				is_destroyed = excluded.is_destroyed,
				description = excluded.description,
				image = excluded.image
	`
	for _, p := range rows {
		if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.IsDestroyed, p.Description, p.Image); err != nil {
			return fmt.Errorf("failed to upsert planet %d: %w", p.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, p models.PlanetRow) error {
	query := `INSERT INTO planets (id, name, is_destroyed, description, image, favorite)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.IsDestroyed, p.Description, p.Image, p.Favorite)
	if err != nil {
		return fmt.Errorf("failed to insert planet %d: %w", p.ID, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("planet %d: %w", p.ID, common.ErrorConflict)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.PlanetRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM planets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select planets: %w", err)
	}
	defer rows.Close()

	result := make([]models.PlanetRow, 0)
	for rows.Next() {
		var p models.PlanetRow
		if err := rows.Scan(&p.ID, &p.Name, &p.IsDestroyed, &p.Description, &p.Image, &p.Favorite); err != nil {
			return nil, fmt.Errorf("failed to scan planet: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.PlanetRow, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM planets WHERE id = ?`, id)

	p := &models.PlanetRow{}
	err := row.Scan(&p.ID, &p.Name, &p.IsDestroyed, &p.Description, &p.Image, &p.Favorite)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM planets WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check planet %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM planets WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete planet: %w", err)
	}
	return affected(res)
}

func (r *SQLiteRepository) SetFavorite(ctx context.Context, id int64, favorite bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE planets SET favorite = ? WHERE id = ?`, favorite, id)
	if err != nil {
		return false, fmt.Errorf("failed to update planet favorite: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}
