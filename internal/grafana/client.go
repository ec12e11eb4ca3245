package grafana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"ixadmin/internal/config"
	"ixadmin/internal/logging"
	"ixadmin/internal/metrics"
	"ixadmin/internal/models"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// maxBody caps how much of an upstream response is read.
const maxBody = 16 << 20

// StatusError reports a non-2xx answer from Grafana.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("grafana %s returned %d", e.Endpoint, e.Code)
}

// Health is the subset of /api/health the status endpoint reports.
type Health struct {
	StatusCode int
	Database   string `json:"database"`
	Version    string `json:"version"`
}

// Client talks to the Grafana HTTP API. Query and dashboard calls share one
// circuit breaker; health checks bypass it so the probe can observe recovery.
type Client struct {
	baseURL        string
	apiKey         string
	datasourceUID  string
	datasourceType string
	http           *http.Client
	breaker        *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg config.GrafanaConfig) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		apiKey:         cfg.APIKey,
		datasourceUID:  cfg.DatasourceUID,
		datasourceType: cfg.DatasourceType,
		http:           &http.Client{Timeout: cfg.Timeout},
		breaker:        newBreaker("grafana-api"),
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

func (c *Client) DatasourceUID() string {
	return c.datasourceUID
}

type filter struct {
	Filter string `json:"filter"`
}

type queryOptions struct {
	ShowDisabledItems bool   `json:"showDisabledItems"`
	SkipEmptyValues   bool   `json:"skipEmptyValues"`
	UseTrends         string `json:"useTrends"`
}

type datasourceRef struct {
	Type string `json:"type"`
	UID  string `json:"uid"`
}

type dsQuery struct {
	RefID      string        `json:"refId"`
	Datasource datasourceRef `json:"datasource"`
	QueryType  string        `json:"queryType"`
	Group      filter        `json:"group"`
	Host       filter        `json:"host"`
	Item       filter        `json:"item"`
	ItemTag    filter        `json:"itemTag"`
	Options    queryOptions  `json:"options"`
}

type dsRequest struct {
	Queries []dsQuery `json:"queries"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}

func (c *Client) buildQuery(q models.TrafficQuery, tr models.TimeRange) dsRequest {
	return dsRequest{
		Queries: []dsQuery{{
			RefID:      "A",
			Datasource: datasourceRef{Type: c.datasourceType, UID: c.datasourceUID},
			QueryType:  "0",
			Group:      filter{q.Group},
			Host:       filter{q.Host},
			Item:       filter{q.Item},
			ItemTag:    filter{q.ItemTag},
			Options:    queryOptions{UseTrends: "default"},
		}},
		From: tr.From,
		To:   tr.To,
	}
}

// QuerySeries fetches one counter's samples in bits per second.
func (c *Client) QuerySeries(ctx context.Context, q models.TrafficQuery, tr models.TimeRange) (*Series, error) {
	payload, err := json.Marshal(c.buildQuery(q, tr))
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	body, err := c.execute(ctx, "ds_query", http.MethodPost, "/api/ds/query", payload)
	if err != nil {
		return nil, err
	}
	series, err := parseSeries(body)
	if err != nil {
		return nil, err
	}
	logging.Debug().Str("host", q.Host).Str("item", q.Item).Int("points", len(series.Values)).Msg("[GRAFANA] Series received")
	return series, nil
}

// QueryHosts lists the host names the datasource reports for group.
func (c *Client) QueryHosts(ctx context.Context, group string) ([]string, error) {
	req := c.buildQuery(models.TrafficQuery{Group: group, Host: "/.*/", Item: "/.*/"}, models.TimeRange{From: "now-5m", To: "now"})
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	body, err := c.execute(ctx, "ds_query", http.MethodPost, "/api/ds/query", payload)
	if err != nil {
		return nil, err
	}
	return parseHostNames(body), nil
}

// SearchDashboards returns Grafana's dashboard search result verbatim.
func (c *Client) SearchDashboards(ctx context.Context) (json.RawMessage, error) {
	return c.execute(ctx, "search", http.MethodGet, "/api/search?type=dash-db", nil)
}

func (c *Client) Dashboard(ctx context.Context, uid string) (json.RawMessage, error) {
	return c.execute(ctx, "dashboard", http.MethodGet, "/api/dashboards/uid/"+url.PathEscape(uid), nil)
}

// Health calls /api/health without the breaker. Any HTTP answer is a
// result; only transport and decode failures are errors.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	start := time.Now()
	defer metrics.ObserveUpstream("health", start)

	resp, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	h := &Health{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(h); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return h, nil
}

// execute runs one breaker-guarded request and returns the raw body of a
// 2xx answer.
func (c *Client) execute(ctx context.Context, endpoint, method, path string, payload []byte) ([]byte, error) {
	start := time.Now()
	defer metrics.ObserveUpstream(endpoint, start)

	body, err := c.breaker.Execute(guarded(ctx, func() ([]byte, error) {
		resp, err := c.do(ctx, method, path, payload)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: truncate(string(data), 500)}
		}
		return data, nil
	}))
	recordBreakerResult("grafana-api", err)
	return body, err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
