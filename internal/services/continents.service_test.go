package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContinentService(t *testing.T) {
	ctx := context.Background()
	svc := NewContinentService(newTestDB(t))

	_, err := svc.Create(ctx, CreateContinentRequest{ID: "Asia", Name: "Asia", Order: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateContinentRequest{ID: "europe", Name: "Europe", Order: 0, IsActive: ptrTo(false)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateContinentRequest{ID: "asia", Name: "Again"})
	requireKind(t, err, ErrConflict, "Continent with this ID already exists")

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "europe", all[0].ID)

	active, err := svc.List(ctx, ptrTo(true))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "asia", active[0].ID)

	inactive, err := svc.List(ctx, ptrTo(false))
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "europe", inactive[0].ID)

	updated, err := svc.Update(ctx, "ASIA", ContinentPatch{Description: ptrTo("APAC")})
	require.NoError(t, err)
	assert.Equal(t, "APAC", updated.Description)
	assert.Equal(t, "Asia", updated.Name)
	assert.True(t, updated.IsActive)

	_, err = svc.Update(ctx, "mars", ContinentPatch{})
	requireKind(t, err, ErrNotFound, "Continent not found")

	require.NoError(t, svc.Delete(ctx, "asia"))
	requireKind(t, svc.Delete(ctx, "asia"), ErrNotFound, "Continent not found")
}
