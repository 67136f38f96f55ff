package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/dbcache/internal/client/client"
	"github.com/dmitrijs2005/dbcache/internal/client/livequery"
	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/client/services"
	"github.com/dmitrijs2005/dbcache/internal/client/store"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	client.Client
	characters []models.WireCharacter
	err        error
}

func (f *fakeClient) ListCharacters(ctx context.Context, limit int) ([]models.WireCharacter, error) {
	return f.characters, f.err
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.Options{Path: filepath.Join(t.TempDir(), "cache.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func next[T any](t *testing.T, ch <-chan livequery.Snapshot[T]) T {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "stream closed")
		require.NoError(t, s.Err)
		return s.Value
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}

func upsertPlanets(t *testing.T, st *store.Store, rows ...models.PlanetRow) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error { return tx.UpsertPlanets(ctx, rows) }))
}

func TestObserveCollection_ScenarioA(t *testing.T) {
	st := openStore(t)
	fc := &fakeClient{characters: []models.WireCharacter{
		{ID: 1, Name: "Goku", Transformations: []models.WireTransformation{{ID: 1, Name: "SSJ"}, {ID: 2, Name: "SSJ2"}}},
		{ID: 2, Name: "Piccolo", OriginPlanet: &models.WirePlanet{ID: 3, Name: "Namek"}},
		{ID: 3, Name: "Krillin"},
	}}
	svc := services.NewSyncService(fc, st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := NewReader(st).ObserveCollection(ctx, models.KindCharacter)
	require.NoError(t, err)
	assert.Empty(t, next(t, ch))

	require.True(t, svc.Refresh(ctx, models.KindCharacter).OK())

	got := next(t, ch)
	require.Len(t, got, 3)
	assert.Len(t, got[0].Character.Transformations, 2)
	require.NotNil(t, got[1].Character.OriginPlanet)
	assert.Equal(t, "Namek", got[1].Character.OriginPlanet.Name)
}

func TestObserveCollection_ScenarioC_FailedRefreshKeepsStream(t *testing.T) {
	st := openStore(t)
	fc := &fakeClient{characters: []models.WireCharacter{
		{ID: 1, Name: "Goku"}, {ID: 2, Name: "Vegeta"}, {ID: 3, Name: "Gohan"}, {ID: 4, Name: "Trunks"}, {ID: 5, Name: "Goten"},
	}}
	svc := services.NewSyncService(fc, st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.True(t, svc.Refresh(ctx, models.KindCharacter).OK())

	ch := NewReader(st).ObserveCharacters(ctx)
	before := next(t, ch)
	require.Len(t, before, 5)

	fc.err = client.ErrUnavailable
	require.False(t, svc.Refresh(ctx, models.KindCharacter).OK())

	// nothing committed, so nothing re-emitted
	select {
	case s := <-ch:
		t.Fatalf("unexpected emission after failed refresh: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}

	again := NewReader(st).ObserveCharacters(ctx)
	assert.Equal(t, before, next(t, again))
}

func TestObserveByID_ScenarioD(t *testing.T) {
	st := openStore(t)
	svc := services.NewSyncService(&fakeClient{}, st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := svc.AddCharacter(ctx, models.Character{Name: "OC"})
	require.True(t, out.OK(), out.Cause())

	ch, err := NewReader(st).ObserveByID(ctx, models.KindCharacter, out.ID)
	require.NoError(t, err)

	rec := next(t, ch)
	require.NotNil(t, rec)
	assert.Equal(t, "OC", rec.Name())
	assert.False(t, rec.IsFavorite())

	require.True(t, svc.Delete(ctx, models.KindCharacter, out.ID).OK())
	assert.Nil(t, next(t, ch))
}

func TestObservePlanet_FollowsWrites(t *testing.T) {
	st := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := NewReader(st).ObservePlanet(ctx, 1)
	assert.Nil(t, next(t, ch))

	upsertPlanets(t, st, models.PlanetRow{ID: 1, Name: "Earth"})
	p := next(t, ch)
	require.NotNil(t, p)
	assert.Equal(t, "Earth", p.Name)

	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		_, err := tx.SetFavorite(ctx, models.KindPlanet, 1, true)
		return err
	}))
	p = next(t, ch)
	require.NotNil(t, p)
	assert.True(t, p.Favorite)
}

func TestObservePlanets_IgnoresUnrelatedTables(t *testing.T) {
	st := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := NewReader(st).ObservePlanets(ctx)
	assert.Empty(t, next(t, ch))

	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		return tx.UpsertCharacters(ctx, []models.CharacterRow{{ID: 1, Name: "Goku"}})
	}))
	select {
	case s := <-ch:
		t.Fatalf("planets stream re-emitted on a character write: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestObserveCharacter_SeesPlanetChanges(t *testing.T) {
	st := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	origin := int64(2)
	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		return tx.UpsertCharacters(ctx, []models.CharacterRow{{ID: 1, Name: "Vegeta", OriginPlanetID: &origin}})
	}))

	ch := NewReader(st).ObserveCharacter(ctx, 1)
	c := next(t, ch)
	require.NotNil(t, c)
	assert.Nil(t, c.OriginPlanet)

	upsertPlanets(t, st, models.PlanetRow{ID: 2, Name: "Vegeta", IsDestroyed: true})
	c = next(t, ch)
	require.NotNil(t, c.OriginPlanet)
	assert.True(t, c.OriginPlanet.IsDestroyed)
}

func TestObserve_CancelReleasesSubscription(t *testing.T) {
	st := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := NewReader(st).ObservePlanets(ctx)
	next(t, ch)
	require.Equal(t, 1, st.Registry().Len())

	cancel()
	require.Eventually(t, func() bool { return st.Registry().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestObserve_UnknownKind(t *testing.T) {
	r := NewReader(openStore(t))

	_, err := r.ObserveCollection(context.Background(), models.Kind("saga"))
	require.True(t, errors.Is(err, common.ErrorUnknownKind))

	_, err = r.ByID(context.Background(), models.Kind("saga"), 1)
	require.ErrorIs(t, err, common.ErrorUnknownKind)
}

func TestCollectionAndByID(t *testing.T) {
	st := openStore(t)
	upsertPlanets(t, st, models.PlanetRow{ID: 1, Name: "Earth"}, models.PlanetRow{ID: 2, Name: "Namek"})
	r := NewReader(st)
	ctx := context.Background()

	all, err := r.Collection(ctx, models.KindPlanet)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[1].ID())

	one, err := r.ByID(ctx, models.KindPlanet, 2)
	require.NoError(t, err)
	assert.Equal(t, "Namek", one.Name())

	none, err := r.ByID(ctx, models.KindCharacter, 2)
	require.NoError(t, err)
	assert.Nil(t, none)
}
