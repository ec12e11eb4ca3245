package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"ixadmin/internal/config"
	"ixadmin/internal/database"
	"ixadmin/internal/grafana"
	"ixadmin/internal/models"
	"ixadmin/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type testApp struct {
	router      *gin.Engine
	hub         *services.LiveHub
	adminToken  string
	editorToken string
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        5000,
			Environment: config.EnvTest,
			BodyLimit:   1 << 20,
			RateLimit:   1000,
			RateBurst:   1000,
		},
		CORS:    config.CORSConfig{FrontendURL: "http://localhost:5173"},
		Grafana: config.GrafanaConfig{Timeout: time.Second, DashboardTTL: time.Second, TrafficQueries: config.DefaultTrafficQueries()},
		Live:    config.LiveConfig{Interval: 20 * time.Millisecond},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.OpenInMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	cfg := testConfig()
	services.InitAuthService("routes-test-secret-0123456789abcdef", time.Hour)

	ctx := context.Background()
	users := services.NewUserService(db)
	admin, err := users.Create(ctx, "admin@mx-ix.com", "admin123", "Admin", models.RoleAdmin)
	require.NoError(t, err)
	editor, err := users.Create(ctx, "editor@mx-ix.com", "editor123", "Editor", models.RoleEditor)
	require.NoError(t, err)

	client := grafana.NewClient(cfg.Grafana)
	zabbix := grafana.NewZabbixClient(cfg.Zabbix, cfg.Grafana.Timeout)
	traffic := services.NewTrafficService(client, cfg.Grafana.TrafficQueries)
	hub := services.NewLiveHub(cfg.Live.Interval, traffic.Realtime)
	hub.Start()
	t.Cleanup(hub.Stop)

	router := NewRouter(cfg, Services{
		Users:      users,
		Locations:  services.NewLocationService(db),
		Catalog:    services.NewCatalogService(db),
		Continents: services.NewContinentService(db),
		Contacts:   services.NewContactService(db),
		Stats:      services.NewStatsService(db),
		Traffic:    traffic,
		Upstream:   services.NewUpstreamService(cfg.Grafana, client, zabbix, "Applications"),
		Health:     services.NewHealthService(db),
		Hub:        hub,
	})

	app := &testApp{router: router, hub: hub}
	app.adminToken, err = services.GenerateToken(admin)
	require.NoError(t, err)
	app.editorToken, err = services.GenerateToken(editor)
	require.NoError(t, err)
	return app
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestLocationLifecycle(t *testing.T) {
	app := newTestApp(t)
	body := map[string]any{
		"id":          "TST",
		"name":        "Test City",
		"coordinates": []float64{100.5, 13.7},
		"code":        "tst",
		"region":      "asia",
	}

	status, env := app.do(t, http.MethodPost, "/api/locations", app.editorToken, body)
	require.Equal(t, http.StatusCreated, status, env.Error)
	assert.Equal(t, "Location created successfully", env.Message)
	created := decode[models.Location](t, env.Data)
	assert.Equal(t, "tst", created.ID)
	assert.Equal(t, "TST", created.Code)
	assert.Equal(t, "ASIA", created.Region)
	assert.Equal(t, 0, created.ASNs)
	assert.Equal(t, 0, created.Sites)
	assert.Equal(t, models.LocationCurrent, created.Status)

	status, env = app.do(t, http.MethodPost, "/api/locations", app.adminToken, body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Location with this ID already exists", env.Error)

	status, env = app.do(t, http.MethodPut, "/api/locations/tst", app.editorToken, map[string]any{
		"name": "Renamed",
		"asns": 99,
		"id":   "other",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	updated := decode[models.Location](t, env.Data)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "tst", updated.ID)
	assert.Equal(t, 0, updated.ASNs)

	status, env = app.do(t, http.MethodPost, "/api/locations/tst/asns", app.editorToken, map[string]any{
		"asnNumber": 64500,
		"name":      "Example Net",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	asns := decode[[]models.ASN](t, env.Data)
	require.Len(t, asns, 1)
	assert.Equal(t, "Open", asns[0].PeeringPolicy)

	status, env = app.do(t, http.MethodDelete, "/api/locations/tst/asns/notanumber", app.editorToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ASN not found in this location", env.Error)

	status, env = app.do(t, http.MethodGet, "/api/locations/TST", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[models.Location](t, env.Data).ASNs)

	status, env = app.do(t, http.MethodDelete, "/api/locations/tst", app.editorToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Admin access required.", env.Error)

	status, _ = app.do(t, http.MethodDelete, "/api/locations/tst", app.adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = app.do(t, http.MethodGet, "/api/locations/tst", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Location not found", env.Error)
}

func TestLocationValidation(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/api/locations", app.adminToken, map[string]any{
		"id":          "bad",
		"name":        "Bad",
		"coordinates": []float64{1},
		"code":        "BAD",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "coordinates (len)")
	assert.Contains(t, env.Error, "region (required)")
}

func TestLocationNestedValidation(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/api/locations", app.adminToken, map[string]any{
		"id":           "nst",
		"name":         "Nested",
		"coordinates":  []float64{1, 2},
		"code":         "NST",
		"region":       "asia",
		"asnList":      []map[string]any{{"status": "BOGUS", "peeringPolicy": "Whatever"}},
		"enabledSites": []map[string]any{{"status": "nope"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "asnList[0].asnNumber (required)")
	assert.Contains(t, env.Error, "asnList[0].status (oneof)")
	assert.Contains(t, env.Error, "enabledSites[0].id (required)")

	status, _ = app.do(t, http.MethodGet, "/api/locations/nst", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = app.do(t, http.MethodPost, "/api/locations", app.adminToken, map[string]any{
		"id":          "nst",
		"name":        "Nested",
		"coordinates": []float64{1, 2},
		"code":        "NST",
		"region":      "asia",
		"pricing":     []map[string]any{{"portSpeed": "10G", "monthlyPrice": 0}},
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	created := decode[models.Location](t, env.Data)
	require.Len(t, created.Pricing, 1)
	assert.Equal(t, "USD", created.Pricing[0].Currency)

	status, env = app.do(t, http.MethodPut, "/api/locations/nst", app.adminToken, map[string]any{
		"asnList": []map[string]any{{"asnNumber": 1, "name": "a", "status": "BOGUS"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "asnList[0].status (oneof)")

	status, env = app.do(t, http.MethodPut, "/api/locations/nst", app.adminToken, map[string]any{
		"pricing": []map[string]any{{"portSpeed": "1G"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "pricing[0].monthlyPrice (required)")

	status, env = app.do(t, http.MethodGet, "/api/locations/nst", "", nil)
	require.Equal(t, http.StatusOK, status)
	stored := decode[models.Location](t, env.Data)
	assert.Empty(t, stored.ASNList)
	require.Len(t, stored.Pricing, 1)
	assert.Equal(t, "10G", stored.Pricing[0].PortSpeed)
}

func TestServiceItemStatsValidation(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/api/services", app.adminToken, map[string]any{
		"id":          "bad-items",
		"category":    "Peering",
		"tagline":     "t",
		"description": "d",
		"items":       []map[string]any{{"name": "only name"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "items[0].description (required)")

	status, env = app.do(t, http.MethodPost, "/api/services", app.adminToken, map[string]any{
		"id":          "bad-stats",
		"category":    "Peering",
		"tagline":     "t",
		"description": "d",
		"items": []map[string]any{{
			"name":        "Item",
			"description": "Item",
			"stats":       []map[string]any{{"label": "Uptime"}},
		}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "items[0].stats[0].value (required)")
}

func TestMutationsRequireToken(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/api/continents", "", map[string]any{"id": "asia", "name": "Asia"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access denied. No token provided.", env.Error)

	status, _ = app.do(t, http.MethodPut, "/api/stats", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = app.do(t, http.MethodGet, "/api/continents", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ADMIN@mx-ix.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", env.Error)

	status, env = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "admin@mx-ix.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email and password are required", env.Error)

	status, env = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "admin@mx-ix.com", "password": "admin123"})
	require.Equal(t, http.StatusOK, status, env.Error)
	login := decode[struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}](t, env.Data)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, models.RoleAdmin, login.User.Role)

	status, env = app.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "admin@mx-ix.com")
	assert.NotContains(t, string(env.Data), "password")

	status, env = app.do(t, http.MethodPut, "/api/auth/password", login.Token, map[string]any{
		"currentPassword": "admin123",
		"newPassword":     "123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "New password must be at least 6 characters", env.Error)
}

func TestServiceItems(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/api/services", app.adminToken, map[string]any{
		"id":          "peering",
		"category":    "Peering",
		"tagline":     "Connect",
		"description": "Public peering",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = app.do(t, http.MethodPost, "/api/services/peering/items", app.editorToken, map[string]any{
		"name":        "Route servers",
		"description": "Multilateral peering",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	items := decode[[]models.ServiceItem](t, env.Data)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Order)
	assert.Equal(t, 0, *items[0].Order)

	status, env = app.do(t, http.MethodPut, "/api/services/peering/items/abc", app.editorToken, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Service item not found", env.Error)

	status, _ = app.do(t, http.MethodDelete, "/api/services/peering/items/5", app.editorToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = app.do(t, http.MethodGet, "/api/services?active=true", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Service](t, env.Data), 1)
}

func TestStatsEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodGet, "/api/network-stats", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4921, decode[models.NetworkStats](t, env.Data).ActiveNodes)

	status, env = app.do(t, http.MethodPut, "/api/network-stats", app.editorToken, map[string]any{"activeNodes": 5000})
	require.Equal(t, http.StatusOK, status, env.Error)
	ns := decode[models.NetworkStats](t, env.Data)
	assert.Equal(t, 5000, ns.ActiveNodes)
	assert.Equal(t, 0.4, ns.GlobalLatency.Value)

	status, env = app.do(t, http.MethodPut, "/api/stats", app.editorToken, map[string]any{
		"totalCapacity": map[string]any{"value": 500, "unit": "Tbps"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "All stat fields are required", env.Error)
}

func TestContactsEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPut, "/api/contacts/Sales/BKK", app.editorToken, map[string]any{
		"phone": "+66 2 000 0000",
		"email": "Sales@MX-IX.com",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	contact := decode[models.ContactInfo](t, env.Data)
	assert.Equal(t, "sales", contact.Department)
	assert.Equal(t, "bkk", contact.LocationID)

	status, env = app.do(t, http.MethodPut, "/api/contacts/marketing/bkk", app.editorToken, map[string]any{
		"phone": "1",
		"email": "m@mx-ix.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = app.do(t, http.MethodDelete, "/api/contacts/sales/bkk", app.adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, env = app.do(t, http.MethodGet, "/api/contacts/sales/bkk", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Contact not found", env.Error)
}

func TestGrafanaUnconfigured(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodGet, "/api/grafana/traffic", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	snap := decode[models.TrafficSnapshot](t, env.Data)
	assert.Equal(t, models.SourceMock, snap.Source)
	assert.Equal(t, "Gbps", snap.Unit)

	status, env = app.do(t, http.MethodGet, "/api/grafana/realtime", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.SourceMock, decode[models.RealtimeMetrics](t, env.Data).Source)

	status, env = app.do(t, http.MethodGet, "/api/grafana/status", "", nil)
	require.Equal(t, http.StatusOK, status)
	st := decode[models.UpstreamStatus](t, env.Data)
	assert.False(t, st.Connected)
	assert.Equal(t, "Grafana not configured", st.Message)
	assert.Equal(t, "not set", st.GrafanaURL)

	for _, path := range []string{"/api/grafana/dashboards", "/api/grafana/dashboard/abc", "/api/grafana/hosts"} {
		status, env = app.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, status, path)
		assert.Equal(t, "Grafana not configured", env.Error, path)
	}
}

func TestPlatformEndpoints(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Database string `json:"database"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "MX-IX Admin API is running", health.Message)
	assert.Equal(t, "connected", health.Data.Database)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	status, env := app.do(t, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route GET /api/unknown not found", env.Error)

	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ixadmin_http_requests_total")

	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Body.String(), `"documentation":"/api/health"`)
}

func TestLiveWebSocket(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/grafana/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))

	seen := map[string]bool{}
	for !seen["pong"] || !seen["realtime"] {
		var msg services.LiveMessage
		require.NoError(t, conn.ReadJSON(&msg))
		seen[msg.Type] = true
	}

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}
