package grafana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"ixadmin/internal/config"
	"ixadmin/internal/metrics"
	"net/http"
	"sync/atomic"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
)

// ZabbixClient speaks the Zabbix JSON-RPC API directly. It is optional: the
// proxy works through Grafana alone.
type ZabbixClient struct {
	endpoint  string
	token     string
	hostGroup string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	nextID    atomic.Int64
}

func NewZabbixClient(cfg config.ZabbixConfig, timeout time.Duration) *ZabbixClient {
	return &ZabbixClient{
		endpoint:  cfg.URL,
		token:     cfg.APIToken,
		hostGroup: cfg.HostGroup,
		http:      &http.Client{Timeout: timeout},
		breaker:   newBreaker("zabbix-api"),
	}
}

func (z *ZabbixClient) Configured() bool {
	return z != nil && z.endpoint != ""
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

// Version calls apiinfo.version, which needs no authentication.
func (z *ZabbixClient) Version(ctx context.Context) (string, error) {
	result, err := z.call(ctx, "apiinfo.version", map[string]any{}, false)
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

// Hosts returns the visible names of the hosts in the configured group, or
// of every host when no group is set.
func (z *ZabbixClient) Hosts(ctx context.Context) ([]string, error) {
	params := map[string]any{"output": []string{"host", "name"}, "sortfield": "name"}
	if z.hostGroup != "" {
		groups, err := z.call(ctx, "hostgroup.get", map[string]any{
			"output": []string{"groupid"},
			"filter": map[string]any{"name": []string{z.hostGroup}},
		}, true)
		if err != nil {
			return nil, err
		}
		ids := []string{}
		for _, g := range groups.Array() {
			ids = append(ids, g.Get("groupid").String())
		}
		if len(ids) == 0 {
			return []string{}, nil
		}
		params["groupids"] = ids
	}

	result, err := z.call(ctx, "host.get", params, true)
	if err != nil {
		return nil, err
	}
	hosts := []string{}
	for _, h := range result.Array() {
		name := h.Get("name").String()
		if name == "" {
			name = h.Get("host").String()
		}
		hosts = append(hosts, name)
	}
	return hosts, nil
}

func (z *ZabbixClient) call(ctx context.Context, method string, params any, auth bool) (gjson.Result, error) {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: z.nextID.Add(1)})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to encode %s: %w", method, err)
	}

	start := time.Now()
	defer metrics.ObserveUpstream("zabbix_"+method, start)

	body, err := z.breaker.Execute(guarded(ctx, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json-rpc")
		if auth && z.token != "" {
			req.Header.Set("Authorization", "Bearer "+z.token)
		}
		resp, err := z.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s response: %w", method, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Endpoint: method, Code: resp.StatusCode, Body: truncate(string(data), 500)}
		}
		return data, nil
	}))
	recordBreakerResult("zabbix-api", err)
	if err != nil {
		return gjson.Result{}, err
	}

	if rpcErr := gjson.GetBytes(body, "error"); rpcErr.Exists() {
		return gjson.Result{}, fmt.Errorf("zabbix %s: %s %s", method, rpcErr.Get("message").String(), rpcErr.Get("data").String())
	}
	return gjson.GetBytes(body, "result"), nil
}
