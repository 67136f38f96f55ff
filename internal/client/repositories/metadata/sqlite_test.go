package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte("old")))
	require.NoError(t, r.Set(ctx, "k1", []byte("new")))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestList(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))
	require.NoError(t, r.Set(ctx, "a", []byte("x")))

	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("x"), "b": {0xBB, 0xCC}}, m)
}

func TestAdd_CountsDownFromZero(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n, err := r.Add(ctx, "local_id_seq:character", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)

	n, err = r.Add(ctx, "local_id_seq:character", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), n)
}

func TestAdd_RejectsNonInteger(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "seq", []byte("abc")))
	_, err := r.Add(ctx, "seq", 1)
	require.ErrorContains(t, err, "is not an integer")
}

func TestTimeRoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	zero, err := r.GetTime(ctx, "last_sync:planet")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	now := time.Date(2026, 10, 15, 12, 30, 0, 123, time.UTC)
	require.NoError(t, r.SetTime(ctx, "last_sync:planet", now))

	got, err := r.GetTime(ctx, "last_sync:planet")
	require.NoError(t, err)
	assert.True(t, now.Equal(got))
}

func TestGet_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	v, err := r.Get(context.Background(), "k")
	require.Nil(t, v)
	require.ErrorContains(t, err, "failed to get metadata[k]")
}

func TestList_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.List(context.Background())
	require.ErrorContains(t, err, "failed to list metadata")
}
