package services

import (
	"context"
	"ixadmin/internal/models"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFirstReadCreatesDefaults(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewStatsService(db)

	ns, err := svc.NetworkStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4921, ns.ActiveNodes)
	assert.Equal(t, "ms", ns.GlobalLatency.Unit)

	fabric, err := svc.GlobalFabricStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5.2 Tbps", fabric.TotalCapacity)

	gs, err := svc.GlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tbps", gs.PeakTraffic.Unit)
	assert.Equal(t, "up", gs.PeakTraffic.Trend)
}

func TestStatsConcurrentFirstReadsKeepOneRow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewStatsService(db)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.NetworkStats(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&models.NetworkStats{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestStatsPartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewStatsService(newTestDB(t))

	ns, err := svc.UpdateNetworkStats(ctx, NetworkStatsPatch{
		GlobalLatency: &LatencyPatch{Value: ptrTo(0.7)},
		ActiveNodes:   ptrTo(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.7, ns.GlobalLatency.Value)
	assert.Equal(t, "ms", ns.GlobalLatency.Unit)
	assert.Equal(t, 5000, ns.ActiveNodes)
	assert.Equal(t, 124.0, ns.Throughput)

	again, err := svc.NetworkStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5000, again.ActiveNodes)

	fabric, err := svc.UpdateGlobalFabricStats(ctx, GlobalFabricStatsPatch{AvgLatency: ptrTo("<3ms")})
	require.NoError(t, err)
	assert.Equal(t, "<3ms", fabric.AvgLatency)
	assert.Equal(t, "100%", fabric.GlobalCoverage)
}

func TestStatsReplaceRequiresEveryField(t *testing.T) {
	ctx := context.Background()
	svc := NewStatsService(newTestDB(t))

	_, err := svc.ReplaceGlobalStats(ctx, GlobalStatsRequest{TotalCapacity: &models.StatValue{Value: 1, Unit: "Tbps"}})
	requireKind(t, err, ErrInvalid, "All stat fields are required")

	gs, err := svc.ReplaceGlobalStats(ctx, GlobalStatsRequest{
		TotalCapacity:     &models.StatValue{Value: 500, Unit: "Tbps"},
		PeakTraffic:       &models.StatValue{Value: 160, Unit: "Tbps", Trend: "down"},
		ConnectedNetworks: &models.StatValue{Value: 5000, Unit: "Peers"},
		IPv4Prefixes:      &models.StatValue{Value: 900000, Unit: "Routes"},
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, gs.TotalCapacity.Value)
	assert.Equal(t, "down", gs.PeakTraffic.Trend)
	assert.Empty(t, gs.ConnectedNetworks.Trend)
}
