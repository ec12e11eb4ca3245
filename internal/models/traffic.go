package models

import "time"

// Direction tags which way a monitored counter flows.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Snapshot sources reported to clients.
const (
	SourceGrafana  = "grafana"
	SourceMock     = "mock"
	SourceFallback = "fallback"
	SourceError    = "error"
)

// TrafficQuery identifies one Zabbix interface counter exposed through the
// Grafana datasource.
type TrafficQuery struct {
	Group     string    `json:"group" koanf:"group"`
	Host      string    `json:"host" koanf:"host"`
	Item      string    `json:"item" koanf:"item"`
	ItemTag   string    `json:"itemTag,omitempty" koanf:"item_tag"`
	Direction Direction `json:"direction" koanf:"direction"`
}

// TimeRange uses Grafana relative expressions such as "now-5m".
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TrafficDetails splits current traffic by direction.
type TrafficDetails struct {
	Inbound  float64 `json:"inbound"`
	Outbound float64 `json:"outbound"`
}

// TrafficSnapshot is the aggregate served by GET /api/grafana/traffic.
// It is computed per request and never stored.
type TrafficSnapshot struct {
	CurrentTraffic float64        `json:"currentTraffic"`
	Unit           string         `json:"unit"`
	PeakTraffic    float64        `json:"peakTraffic"`
	PeakTime       time.Time      `json:"peakTime"`
	AvgTraffic     float64        `json:"avgTraffic"`
	Timestamp      time.Time      `json:"timestamp"`
	Source         string         `json:"source"`
	Details        TrafficDetails `json:"details"`
}

type RealtimeTraffic struct {
	Current float64 `json:"current"`
	Peak    float64 `json:"peak"`
	Average float64 `json:"average"`
	Unit    string  `json:"unit"`
}

type RealtimeConnections struct {
	Active int `json:"active"`
	Peak   int `json:"peak"`
	Total  int `json:"total"`
}

type RealtimeLatency struct {
	Global float64 `json:"global"`
	Unit   string  `json:"unit"`
}

// RealtimeMetrics is the aggregate served by GET /api/grafana/realtime and
// pushed over the live websocket.
type RealtimeMetrics struct {
	Traffic     RealtimeTraffic     `json:"traffic"`
	Connections RealtimeConnections `json:"connections"`
	Latency     RealtimeLatency     `json:"latency"`
	Uptime      float64             `json:"uptime"`
	Timestamp   time.Time           `json:"timestamp"`
	Source      string              `json:"source"`
	DataPoints  int                 `json:"dataPoints"`
}

// UpstreamStatus is the payload of GET /api/grafana/status.
type UpstreamStatus struct {
	Connected  bool          `json:"connected"`
	Message    string        `json:"message"`
	Status     int           `json:"status,omitempty"`
	Version    string        `json:"version,omitempty"`
	Database   string        `json:"database,omitempty"`
	GrafanaURL string        `json:"grafanaUrl,omitempty"`
	APIKey     string        `json:"apiKey,omitempty"`
	Error      string        `json:"error,omitempty"`
	Zabbix     *ZabbixStatus `json:"zabbix,omitempty"`
}

type ZabbixStatus struct {
	Connected bool   `json:"connected"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HostList is the payload of GET /api/grafana/hosts.
type HostList struct {
	Hosts      []string `json:"hosts"`
	Datasource string   `json:"datasource"`
	Source     string   `json:"source"`
}
