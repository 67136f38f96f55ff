package transformations

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/dbcache/internal/client/migrations"
	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	require.NoError(t, err)
	_, err = p.Up(context.Background())
	require.NoError(t, err)
	return db
}

func TestUpsert_OverwritesAllColumns(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []models.TransformationRow{
		{ID: 2, Name: "SSJ2", Ki: "2B", CharacterID: 1},
		{ID: 1, Name: "SSJ", Ki: "1B", CharacterID: 1},
	}))
	require.NoError(t, r.Upsert(ctx, []models.TransformationRow{{ID: 1, Name: "Super Saiyan", Ki: "1.5B", Image: "ssj.png", CharacterID: 1}}))

	got, err := r.GetByCharacterID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.TransformationRow{
		{ID: 1, Name: "Super Saiyan", Ki: "1.5B", Image: "ssj.png", CharacterID: 1},
		{ID: 2, Name: "SSJ2", Ki: "2B", CharacterID: 1},
	}, got)

	none, err := r.GetByCharacterID(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInsert_NeverOverwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []models.TransformationRow{{ID: 10, Name: "SSJ", Ki: "3B", CharacterID: 1}}))

	err := r.Insert(ctx, []models.TransformationRow{{ID: 10, Name: "Stolen", CharacterID: -1}})
	require.ErrorIs(t, err, common.ErrorConflict)

	require.NoError(t, r.Insert(ctx, []models.TransformationRow{{ID: 20, Name: "Fusion", CharacterID: -1}}))

	owner, err := r.GetByCharacterID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.TransformationRow{{ID: 10, Name: "SSJ", Ki: "3B", CharacterID: 1}}, owner)

	local, err := r.GetByCharacterID(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, []models.TransformationRow{{ID: 20, Name: "Fusion", CharacterID: -1}}, local)
}

func TestDeleteOrphans(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO characters (id, name) VALUES (1, 'Goku')`)
	require.NoError(t, err)
	require.NoError(t, r.Upsert(ctx, []models.TransformationRow{
		{ID: 1, Name: "SSJ", CharacterID: 1},
		{ID: 2, Name: "Fusion", CharacterID: 2},
		{ID: 3, Name: "Ultra Ego", CharacterID: 3},
	}))

	n, err := r.DeleteOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.DeleteOrphans(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	kept, err := r.GetByCharacterID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestUpsert_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO transformations`).
		WithArgs(int64(9), "SSJ", "", "", int64(1)).
		WillReturnError(errors.New("constraint failed"))

	err = NewSQLiteRepository(db).Upsert(context.Background(), []models.TransformationRow{{ID: 9, Name: "SSJ", CharacterID: 1}})
	require.ErrorContains(t, err, "failed to upsert transformation 9: constraint failed")
	require.NoError(t, mock.ExpectationsWereMet())
}
