package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ixadmin/internal/config"
	"ixadmin/internal/grafana"
	"ixadmin/internal/logging"
	"ixadmin/internal/metrics"
	"ixadmin/internal/models"
	"net/http"

	"github.com/samber/lo"
)

const errGrafanaNotConfigured = "Grafana not configured"

// UpstreamService serves the pass-through Grafana endpoints: connection
// status, dashboards and hosts.
type UpstreamService struct {
	cfg        config.GrafanaConfig
	grafana    *grafana.Client
	zabbix     *grafana.ZabbixClient
	hostGroup  string
	dashboards *TTLCache[json.RawMessage]
}

func NewUpstreamService(cfg config.GrafanaConfig, client *grafana.Client, zabbix *grafana.ZabbixClient, hostGroup string) *UpstreamService {
	return &UpstreamService{
		cfg:        cfg,
		grafana:    client,
		zabbix:     zabbix,
		hostGroup:  hostGroup,
		dashboards: NewTTLCache[json.RawMessage](cfg.DashboardTTL),
	}
}

// Status always succeeds; connection problems are reported in the payload.
func (s *UpstreamService) Status(ctx context.Context) models.UpstreamStatus {
	if !s.grafana.Configured() {
		return models.UpstreamStatus{
			Connected:  false,
			Message:    errGrafanaNotConfigured,
			GrafanaURL: configuredOrNot(s.cfg.URL),
			APIKey:     configuredOrNot(s.cfg.APIKey),
			Zabbix:     s.zabbixStatus(ctx),
		}
	}

	status := models.UpstreamStatus{Zabbix: s.zabbixStatus(ctx)}
	h, err := s.grafana.Health(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("[GRAFANA] Status check failed")
		status.Message = "Failed to connect to Grafana"
		status.Error = err.Error()
		return status
	}

	status.Connected = h.StatusCode >= 200 && h.StatusCode < 300
	status.Message = "Connection failed"
	if status.Connected {
		status.Message = "Connected to Grafana"
	}
	status.Status = h.StatusCode
	status.Version = lo.Ternary(h.Version != "", h.Version, "unknown")
	status.Database = lo.Ternary(h.Database != "", h.Database, "unknown")
	return status
}

func (s *UpstreamService) zabbixStatus(ctx context.Context) *models.ZabbixStatus {
	if !s.zabbix.Configured() {
		return nil
	}
	version, err := s.zabbix.Version(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("[GRAFANA] Zabbix version check failed")
		return &models.ZabbixStatus{Connected: false, Error: err.Error()}
	}
	return &models.ZabbixStatus{Connected: true, Version: version}
}

// Probe reports whether Grafana answers its health check. It feeds the
// upstream gauge.
func (s *UpstreamService) Probe(ctx context.Context) bool {
	if !s.grafana.Configured() {
		metrics.UpstreamUp.Set(0)
		return false
	}
	h, err := s.grafana.Health(ctx)
	up := err == nil && h.StatusCode >= 200 && h.StatusCode < 300
	if up {
		metrics.UpstreamUp.Set(1)
	} else {
		metrics.UpstreamUp.Set(0)
		logging.Warn().Err(err).Msg("[PROBE] Grafana health probe failed")
	}
	return up
}

// Dashboards lists Grafana dashboards, cached for the configured TTL.
func (s *UpstreamService) Dashboards(ctx context.Context) (json.RawMessage, error) {
	if !s.grafana.Configured() {
		return nil, notConfigured(errGrafanaNotConfigured)
	}
	list, err := s.dashboards.GetOrLoad("search", func() (json.RawMessage, error) {
		return s.grafana.SearchDashboards(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search dashboards: %w", err)
	}
	return list, nil
}

func (s *UpstreamService) Dashboard(ctx context.Context, uid string) (json.RawMessage, error) {
	if !s.grafana.Configured() {
		return nil, notConfigured(errGrafanaNotConfigured)
	}
	dash, err := s.grafana.Dashboard(ctx, uid)
	var se *grafana.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil, notFound("Dashboard not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard %s: %w", uid, err)
	}
	return dash, nil
}

// Hosts lists monitored hosts. Zabbix is asked directly when configured,
// otherwise Grafana; an empty answer falls back to the hosts named in the
// traffic queries.
func (s *UpstreamService) Hosts(ctx context.Context) (*models.HostList, error) {
	if !s.grafana.Configured() {
		return nil, notConfigured(errGrafanaNotConfigured)
	}

	list := &models.HostList{Datasource: s.grafana.DatasourceUID()}
	var err error
	if s.zabbix.Configured() {
		list.Source = "zabbix"
		list.Hosts, err = s.zabbix.Hosts(ctx)
	} else {
		list.Source = models.SourceGrafana
		list.Hosts, err = s.grafana.QueryHosts(ctx, s.hostGroup)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hosts: %w", err)
	}

	if len(list.Hosts) == 0 {
		list.Source = "config"
		list.Hosts = lo.Uniq(lo.Map(s.cfg.TrafficQueries, func(q models.TrafficQuery, _ int) string {
			return q.Host
		}))
	}
	return list, nil
}

func configuredOrNot(v string) string {
	if v == "" {
		return "not set"
	}
	return "configured"
}
