package services

import (
	"context"
	"ixadmin/internal/config"
	"ixadmin/internal/grafana"
	"ixadmin/internal/models"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newUpstream(t *testing.T, h http.HandlerFunc) *UpstreamService {
	t.Helper()
	cfg := config.GrafanaConfig{
		APIKey:         "key",
		DatasourceUID:  "uid-1",
		DatasourceType: "alexanderzobnin-zabbix-datasource",
		Timeout:        time.Second,
		DashboardTTL:   time.Minute,
		TrafficQueries: config.DefaultTrafficQueries(),
	}
	if h != nil {
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		cfg.URL = srv.URL
	}
	return NewUpstreamService(cfg, grafana.NewClient(cfg), grafana.NewZabbixClient(config.ZabbixConfig{}, time.Second), "Applications")
}

func TestUpstreamStatusUnconfigured(t *testing.T) {
	svc := newUpstream(t, nil)
	st := svc.Status(context.Background())
	assert.False(t, st.Connected)
	assert.Equal(t, "Grafana not configured", st.Message)
	assert.Equal(t, "not set", st.GrafanaURL)
	assert.Equal(t, "configured", st.APIKey)
	assert.Nil(t, st.Zabbix)

	_, err := svc.Dashboards(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.Dashboard(context.Background(), "abc")
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.Hosts(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)

	assert.False(t, svc.Probe(context.Background()))
}

func TestUpstreamStatusConnected(t *testing.T) {
	svc := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"database":"ok","version":"10.4.1"}`))
	})
	st := svc.Status(context.Background())
	assert.True(t, st.Connected)
	assert.Equal(t, "Connected to Grafana", st.Message)
	assert.Equal(t, http.StatusOK, st.Status)
	assert.Equal(t, "10.4.1", st.Version)
	assert.Equal(t, "ok", st.Database)

	assert.True(t, svc.Probe(context.Background()))
}

func TestUpstreamStatusUnhealthy(t *testing.T) {
	svc := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{}`))
	})
	st := svc.Status(context.Background())
	assert.False(t, st.Connected)
	assert.Equal(t, "Connection failed", st.Message)
	assert.Equal(t, http.StatusServiceUnavailable, st.Status)
	assert.Equal(t, "unknown", st.Version)
}

func TestUpstreamStatusUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := config.GrafanaConfig{URL: url, APIKey: "key", Timeout: time.Second}
	svc := NewUpstreamService(cfg, grafana.NewClient(cfg), nil, "")
	st := svc.Status(context.Background())
	assert.False(t, st.Connected)
	assert.Equal(t, "Failed to connect to Grafana", st.Message)
	assert.NotEmpty(t, st.Error)
}

func TestUpstreamDashboardsAreCached(t *testing.T) {
	var calls atomic.Int32
	svc := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "dash-db", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`[{"uid":"abc","title":"Traffic"}]`))
	})

	for i := 0; i < 3; i++ {
		list, err := svc.Dashboards(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Traffic", gjson.GetBytes(list, "0.title").String())
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestUpstreamDashboardNotFound(t *testing.T) {
	svc := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := svc.Dashboard(context.Background(), "missing")
	requireKind(t, err, ErrNotFound, "Dashboard not found")
}

func TestUpstreamDashboardFailure(t *testing.T) {
	svc := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := svc.Dashboard(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUpstreamHosts(t *testing.T) {
	svc := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"A":{"frames":[{"schema":{"name":"LVSB SW-01: Bits sent"}}]}}}`))
	})
	list, err := svc.Hosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"LVSB SW-01"}, list.Hosts)
	assert.Equal(t, models.SourceGrafana, list.Source)
	assert.Equal(t, "uid-1", list.Datasource)
}

func TestUpstreamHostsFallBackToConfiguredQueries(t *testing.T) {
	svc := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"A":{"frames":[]}}}`))
	})
	list, err := svc.Hosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "config", list.Source)
	assert.Equal(t, []string{"LVSB SW-01", "MB2 SW-01"}, list.Hosts)
}
