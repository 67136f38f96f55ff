package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCharacter_ScenarioD_LocalIDThenDelete(t *testing.T) {
	svc, st := newService(t, &fakeClient{})
	ctx := context.Background()

	out := svc.AddCharacter(ctx, models.Character{Name: "Custom Saiyan", Race: "Saiyan"})
	require.True(t, out.OK(), out.Cause())
	assert.Less(t, out.ID, int64(0))

	c, err := st.Character(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "Custom Saiyan", c.Character.Name)
	assert.False(t, c.Character.Favorite)

	require.True(t, svc.Delete(ctx, models.KindCharacter, out.ID).OK())
	_, err = st.Character(ctx, out.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	// deleting again is a no-op
	assert.True(t, svc.Delete(ctx, models.KindCharacter, out.ID).OK())
}

func TestAddCharacter_LocalIDsNeverMeetRemoteIDs(t *testing.T) {
	fc := &fakeClient{characters: pageA()}
	svc, _ := newService(t, fc)
	ctx := context.Background()

	require.True(t, svc.Refresh(ctx, models.KindCharacter).OK())

	a := svc.AddCharacter(ctx, models.Character{Name: "A"})
	b := svc.AddCharacter(ctx, models.Character{Name: "B"})
	require.True(t, a.OK())
	require.True(t, b.OK())
	assert.NotEqual(t, a.ID, b.ID)
	for _, c := range pageA() {
		assert.NotEqual(t, c.ID, a.ID)
		assert.NotEqual(t, c.ID, b.ID)
	}
}

func TestAddCharacter_Validation(t *testing.T) {
	fc := &fakeClient{characters: pageA()}
	svc, st := newService(t, fc)
	ctx := context.Background()
	require.True(t, svc.Refresh(ctx, models.KindCharacter).OK())

	tests := []struct {
		name string
		in   models.Character
		want models.FailureKind
	}{
		{"empty name", models.Character{Name: "  "}, models.FailureInvalid},
		{"uncached origin", models.Character{Name: "Zamasu", OriginPlanet: &models.Planet{ID: 99}}, models.FailureInvalid},
		{"taken id", models.Character{ID: 1, Name: "Fake Goku"}, models.FailureConflict},
		{"transformation without id", models.Character{Name: "X", Transformations: []models.Transformation{{Name: "SSJ"}}}, models.FailureInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := dump(t, st.DB())
			out := svc.AddCharacter(ctx, tt.in)
			assert.Equal(t, tt.want, out.Failure, out.Cause())
			assert.Equal(t, before, dump(t, st.DB()))
		})
	}
}

func TestAddCharacter_WithOriginAndTransformations(t *testing.T) {
	fc := &fakeClient{characters: pageA()}
	svc, st := newService(t, fc)
	ctx := context.Background()
	require.True(t, svc.Refresh(ctx, models.KindCharacter).OK())

	out := svc.AddCharacter(ctx, models.Character{
		ID:              500,
		Name:            "Nail",
		OriginPlanet:    &models.Planet{ID: 3},
		Transformations: []models.Transformation{{ID: 900, Name: "Fusion"}},
	})
	require.True(t, out.OK(), out.Cause())
	assert.Equal(t, int64(500), out.ID)
	assert.Equal(t, 1, out.Transformations)

	c, err := st.Character(ctx, 500)
	require.NoError(t, err)
	require.NotNil(t, c.Planet)
	assert.Equal(t, "Namek", c.Planet.Name)
	require.Len(t, c.Transformations, 1)
	assert.Equal(t, int64(500), c.Transformations[0].CharacterID)
}

func TestAddCharacter_TakenTransformationIDConflicts(t *testing.T) {
	fc := &fakeClient{characters: pageA()}
	svc, st := newService(t, fc)
	ctx := context.Background()
	require.True(t, svc.Refresh(ctx, models.KindCharacter).OK())
	before := dump(t, st.DB())

	out := svc.AddCharacter(ctx, models.Character{
		Name:            "Local",
		Transformations: []models.Transformation{{ID: 10, Name: "Copy"}},
	})
	assert.Equal(t, models.FailureConflict, out.Failure)
	assert.ErrorIs(t, out.Err, common.ErrorConflict)
	assert.Zero(t, out.ID)

	if diff := cmp.Diff(before, dump(t, st.DB())); diff != "" {
		t.Errorf("rejected add changed the store (-before +after):\n%s", diff)
	}

	goku, err := st.Character(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, goku.Transformations, 2)
}

func TestAddPlanet(t *testing.T) {
	svc, st := newService(t, &fakeClient{})
	ctx := context.Background()

	first := svc.AddPlanet(ctx, models.Planet{Name: "New Namek"})
	second := svc.AddPlanet(ctx, models.Planet{Name: "Planet Plant"})
	require.True(t, first.OK())
	require.True(t, second.OK())
	assert.Equal(t, int64(-1), first.ID)
	assert.Equal(t, int64(-2), second.ID)

	p, err := st.Planet(ctx, -2)
	require.NoError(t, err)
	assert.Equal(t, "Planet Plant", p.Name)

	dup := svc.AddPlanet(ctx, models.Planet{ID: -1, Name: "Again"})
	assert.Equal(t, models.FailureConflict, dup.Failure)

	assert.Equal(t, models.FailureInvalid, svc.AddPlanet(ctx, models.Planet{}).Failure)
}

func TestSetFavorite(t *testing.T) {
	fc := &fakeClient{planets: []models.WirePlanet{{ID: 1, Name: "Earth"}}}
	svc, st := newService(t, fc)
	ctx := context.Background()
	require.True(t, svc.Refresh(ctx, models.KindPlanet).OK())

	require.True(t, svc.SetFavorite(ctx, models.KindPlanet, 1, true).OK())
	p, err := st.Planet(ctx, 1)
	require.NoError(t, err)
	assert.True(t, p.Favorite)

	require.True(t, svc.SetFavorite(ctx, models.KindPlanet, 1, false).OK())
	p, err = st.Planet(ctx, 1)
	require.NoError(t, err)
	assert.False(t, p.Favorite)

	missing := svc.SetFavorite(ctx, models.KindPlanet, 77, true)
	assert.Equal(t, models.FailureNotFound, missing.Failure)

	bad := svc.SetFavorite(ctx, models.Kind("ship"), 1, true)
	assert.Equal(t, models.FailureInvalid, bad.Failure)
}

func TestDelete_LeavesTransformationsUntilPruned(t *testing.T) {
	fc := &fakeClient{characters: pageA()}
	svc, st := newService(t, fc)
	ctx := context.Background()
	require.True(t, svc.Refresh(ctx, models.KindCharacter).OK())

	require.True(t, svc.Delete(ctx, models.KindCharacter, 1).OK())
	assert.Equal(t, 2, count(t, st.DB(), "transformations"))

	all, err := st.Characters(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	out := svc.PruneOrphans(ctx)
	require.True(t, out.OK())
	assert.Equal(t, 2, out.Transformations)
	assert.Equal(t, 0, count(t, st.DB(), "transformations"))
}
