package services

import (
	"context"
	"ixadmin/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocation(id string) *models.Location {
	return &models.Location{
		ID:          id,
		Name:        "Test Location",
		Coordinates: []float64{77.2, 28.6},
		Code:        "tst",
		Region:      "test",
	}
}

func TestLocationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewLocationService(newTestDB(t))

	created, err := svc.Create(ctx, newLocation("TST"))
	require.NoError(t, err)
	assert.Equal(t, "tst", created.ID)
	assert.Equal(t, "TST", created.Code)
	assert.Equal(t, "TEST", created.Region)
	assert.Equal(t, models.LocationCurrent, created.Status)
	assert.Equal(t, 0, created.ASNs)
	assert.Equal(t, 0, created.Sites)
	assert.Equal(t, []string{"1G", "10G", "40G", "100G"}, created.PortSpeeds)

	got, err := svc.Get(ctx, "tst")
	require.NoError(t, err)
	assert.Equal(t, "Test Location", got.Name)
	assert.Equal(t, []float64{77.2, 28.6}, got.Coordinates)

	require.NoError(t, svc.Delete(ctx, "tst"))

	_, err = svc.Get(ctx, "tst")
	requireKind(t, err, ErrNotFound, "Location not found")

	err = svc.Delete(ctx, "tst")
	requireKind(t, err, ErrNotFound, "Location not found")
}

func TestLocationCreateDuplicateKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	svc := NewLocationService(newTestDB(t))

	_, err := svc.Create(ctx, newLocation("tst"))
	require.NoError(t, err)

	dup := newLocation("tst")
	dup.Name = "Other"
	_, err = svc.Create(ctx, dup)
	requireKind(t, err, ErrConflict, "Location with this ID already exists")

	got, err := svc.Get(ctx, "tst")
	require.NoError(t, err)
	assert.Equal(t, "Test Location", got.Name)
}

func TestLocationUpdateAppliesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	svc := NewLocationService(newTestDB(t))
	_, err := svc.Create(ctx, newLocation("tst"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "TST", LocationPatch{
		Name:   ptrTo("Renamed"),
		Status: ptrTo(models.LocationUpcoming),
		ASNList: &[]models.ASN{
			{ASNNumber: 13335, Name: "Cloudflare"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.LocationUpcoming, updated.Status)
	assert.Equal(t, "TST", updated.Code)
	assert.Equal(t, 1, updated.ASNs)
	assert.Equal(t, "Open", updated.ASNList[0].PeeringPolicy)

	_, err = svc.Update(ctx, "missing", LocationPatch{Name: ptrTo("x")})
	requireKind(t, err, ErrNotFound, "Location not found")
}

func TestLocationListFilters(t *testing.T) {
	ctx := context.Background()
	svc := NewLocationService(newTestDB(t))

	a := newLocation("aaa")
	a.Region = "north"
	b := newLocation("bbb")
	b.Region = "south"
	b.Status = models.LocationUpcoming
	b.ContinentID = "europe"
	for _, l := range []*models.Location{a, b} {
		_, err := svc.Create(ctx, l)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, LocationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	upcoming, err := svc.List(ctx, LocationFilter{Status: models.LocationUpcoming})
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "bbb", upcoming[0].ID)

	north, err := svc.List(ctx, LocationFilter{Region: "north"})
	require.NoError(t, err)
	require.Len(t, north, 1)
	assert.Equal(t, "aaa", north[0].ID)

	europe, err := svc.List(ctx, LocationFilter{ContinentID: "europe"})
	require.NoError(t, err)
	require.Len(t, europe, 1)

	none, err := svc.List(ctx, LocationFilter{Region: "west"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLocationASNs(t *testing.T) {
	ctx := context.Background()
	svc := NewLocationService(newTestDB(t))
	_, err := svc.Create(ctx, newLocation("tst"))
	require.NoError(t, err)

	asns, err := svc.AddASN(ctx, "tst", models.ASN{ASNNumber: 15169, Name: "Google"})
	require.NoError(t, err)
	require.Len(t, asns, 1)
	assert.Equal(t, "ACTIVE", asns[0].Status)

	_, err = svc.AddASN(ctx, "tst", models.ASN{ASNNumber: 15169, Name: "Google again"})
	requireKind(t, err, ErrConflict, "ASN already exists in this location")

	asns, err = svc.UpdateASN(ctx, "tst", 15169, ASNPatch{PeeringPolicy: ptrTo("Selective")})
	require.NoError(t, err)
	assert.Equal(t, "Selective", asns[0].PeeringPolicy)
	assert.Equal(t, "Google", asns[0].Name)

	_, err = svc.UpdateASN(ctx, "tst", 1, ASNPatch{})
	requireKind(t, err, ErrNotFound, "ASN not found in this location")

	loc, err := svc.Get(ctx, "tst")
	require.NoError(t, err)
	assert.Equal(t, 1, loc.ASNs)

	asns, err = svc.DeleteASN(ctx, "tst", 15169)
	require.NoError(t, err)
	assert.Empty(t, asns)

	loc, err = svc.Get(ctx, "tst")
	require.NoError(t, err)
	assert.Equal(t, 0, loc.ASNs)

	_, err = svc.DeleteASN(ctx, "tst", 15169)
	requireKind(t, err, ErrNotFound, "ASN not found in this location")

	_, err = svc.AddASN(ctx, "nope", models.ASN{ASNNumber: 1, Name: "x"})
	requireKind(t, err, ErrNotFound, "Location not found")
}

func TestLocationSites(t *testing.T) {
	ctx := context.Background()
	svc := NewLocationService(newTestDB(t))
	_, err := svc.Create(ctx, newLocation("tst"))
	require.NoError(t, err)

	site := models.EnabledSite{ID: "eqx-1", Name: "Equinix", Provider: "Equinix", Address: "1 Main St"}
	sites, err := svc.AddSite(ctx, "tst", site)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "available", sites[0].Status)

	_, err = svc.AddSite(ctx, "tst", site)
	requireKind(t, err, ErrConflict, "Site with this ID already exists in this location")

	sites, err = svc.UpdateSite(ctx, "tst", "eqx-1", SitePatch{Status: ptrTo("coming-soon")})
	require.NoError(t, err)
	assert.Equal(t, "coming-soon", sites[0].Status)

	_, err = svc.UpdateSite(ctx, "tst", "missing", SitePatch{})
	requireKind(t, err, ErrNotFound, "Site not found in this location")

	loc, err := svc.Get(ctx, "tst")
	require.NoError(t, err)
	assert.Equal(t, 1, loc.Sites)

	sites, err = svc.DeleteSite(ctx, "tst", "eqx-1")
	require.NoError(t, err)
	assert.Empty(t, sites)

	_, err = svc.DeleteSite(ctx, "tst", "eqx-1")
	requireKind(t, err, ErrNotFound, "Site not found in this location")
}
