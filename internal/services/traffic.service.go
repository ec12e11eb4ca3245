package services

import (
	"context"
	"errors"
	"ixadmin/internal/grafana"
	"ixadmin/internal/logging"
	"ixadmin/internal/metrics"
	"ixadmin/internal/models"
	"math"
	"math/rand/v2"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	trafficWindow  = models.TimeRange{From: "now-5m", To: "now"}
	realtimeWindow = models.TimeRange{From: "now-1m", To: "now"}
)

// SeriesQuerier fetches one traffic counter. *grafana.Client satisfies it.
type SeriesQuerier interface {
	Configured() bool
	QuerySeries(ctx context.Context, q models.TrafficQuery, tr models.TimeRange) (*grafana.Series, error)
}

// TrafficService aggregates the configured interface counters into the
// public traffic figures. It never fails: when the upstream is missing,
// silent or broken it answers with synthetic data tagged by source.
type TrafficService struct {
	client  SeriesQuerier
	queries []models.TrafficQuery
	now     func() time.Time
}

func NewTrafficService(client SeriesQuerier, queries []models.TrafficQuery) *TrafficService {
	return &TrafficService{client: client, queries: queries, now: time.Now}
}

// Traffic averages every sample of the last five minutes.
func (s *TrafficService) Traffic(ctx context.Context) (snap models.TrafficSnapshot) {
	now := s.now().UTC()
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Msg("[GRAFANA] Traffic aggregation failed, serving synthetic data")
			snap = SyntheticTraffic(now, models.SourceError)
		}
		metrics.TrafficSnapshots.WithLabelValues("traffic", snap.Source).Inc()
	}()

	if !s.client.Configured() {
		return SyntheticTraffic(now, models.SourceMock)
	}

	var inBits, outBits, peakBits float64
	points := 0
	for i, series := range s.fetch(ctx, trafficWindow) {
		if series == nil {
			continue
		}
		for _, v := range series.Values {
			if s.queries[i].Direction == models.DirectionIn {
				inBits += v
			} else {
				outBits += v
			}
			peakBits = math.Max(peakBits, v)
			points++
		}
	}

	if points == 0 {
		logging.Warn().Int("queries", len(s.queries)).Msg("[GRAFANA] No traffic samples, serving fallback data")
		return SyntheticTraffic(now, models.SourceFallback)
	}

	current := bitsToGbps((inBits + outBits) / float64(points))
	half := float64(points) / 2
	return models.TrafficSnapshot{
		CurrentTraffic: current,
		Unit:           "Gbps",
		PeakTraffic:    bitsToGbps(peakBits),
		PeakTime:       now,
		AvgTraffic:     round(current*0.85, 2),
		Timestamp:      now,
		Source:         models.SourceGrafana,
		Details: models.TrafficDetails{
			Inbound:  bitsToGbps(inBits / half),
			Outbound: bitsToGbps(outBits / half),
		},
	}
}

// Realtime sums the newest sample of each counter over the last minute.
func (s *TrafficService) Realtime(ctx context.Context) (m models.RealtimeMetrics) {
	now := s.now().UTC()
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Msg("[GRAFANA] Realtime aggregation failed, serving synthetic data")
			m = SyntheticRealtime(now, models.SourceError)
		}
		metrics.TrafficSnapshots.WithLabelValues("realtime", m.Source).Inc()
	}()

	if !s.client.Configured() {
		return SyntheticRealtime(now, models.SourceMock)
	}

	var currentBits, peakBits float64
	dataPoints := 0
	for _, series := range s.fetch(ctx, realtimeWindow) {
		latest, ok := series.Latest()
		if !ok {
			continue
		}
		currentBits += latest
		peakBits = math.Max(peakBits, series.Max())
		dataPoints++
	}

	if dataPoints == 0 {
		logging.Warn().Int("queries", len(s.queries)).Msg("[GRAFANA] No realtime samples, serving fallback data")
		return SyntheticRealtime(now, models.SourceFallback)
	}

	current := bitsToGbps(currentBits)
	return models.RealtimeMetrics{
		Traffic: models.RealtimeTraffic{
			Current: current,
			Peak:    bitsToGbps(peakBits),
			Average: round(current*0.85, 2),
			Unit:    "Gbps",
		},
		// Connection and latency figures have no Zabbix item yet.
		Connections: models.RealtimeConnections{Active: 4500 + rand.IntN(500), Peak: 5200, Total: 45000},
		Latency:     models.RealtimeLatency{Global: 0.4, Unit: "ms"},
		Uptime:      99.99,
		Timestamp:   now,
		Source:      models.SourceGrafana,
		DataPoints:  dataPoints,
	}
}

// fetch runs every query concurrently, one attempt each. A failed query
// leaves a nil entry and is logged and counted.
func (s *TrafficService) fetch(ctx context.Context, tr models.TimeRange) []*grafana.Series {
	results := make([]*grafana.Series, len(s.queries))
	var g errgroup.Group
	for i, q := range s.queries {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					metrics.UpstreamQueryFailures.WithLabelValues(q.Host, string(q.Direction), "panic").Inc()
					logging.Error().Interface("panic", r).Str("host", q.Host).Msg("[GRAFANA] Query panicked, treating as no data")
				}
			}()
			series, err := s.client.QuerySeries(ctx, q, tr)
			if err != nil {
				reason := failureReason(err)
				metrics.UpstreamQueryFailures.WithLabelValues(q.Host, string(q.Direction), reason).Inc()
				logging.Warn().Err(err).
					Str("host", q.Host).
					Str("item", q.Item).
					Str("direction", string(q.Direction)).
					Str("reason", reason).
					Msg("[GRAFANA] Query failed, treating as no data")
				return nil
			}
			results[i] = series
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func failureReason(err error) string {
	var se *grafana.StatusError
	var ne net.Error
	switch {
	case grafana.IsBreakerOpen(err):
		return "circuit_open"
	case errors.As(err, &se):
		return "http_status"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), errors.As(err, &ne):
		return "transport"
	default:
		return "decode"
	}
}

// bitsToGbps converts bits per second to Gbps rounded to two decimals.
func bitsToGbps(bits float64) float64 {
	return round(bits/1e9, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// SyntheticTraffic produces a plausible snapshot that drifts slowly with the
// wall clock. Current traffic stays within [797.5, 897.5] Gbps, floored at 600.
func SyntheticTraffic(now time.Time, source string) models.TrafficSnapshot {
	wave := math.Sin(float64(now.UnixMilli())/60000) * 50
	current := math.Max(600, 847.5+wave)
	return models.TrafficSnapshot{
		CurrentTraffic: round(current, 1),
		Unit:           "Gbps",
		PeakTraffic:    1240.3,
		PeakTime:       now.Add(-time.Hour),
		AvgTraffic:     623.8,
		Timestamp:      now,
		Source:         source,
		Details: models.TrafficDetails{
			Inbound:  round(current*0.52, 1),
			Outbound: round(current*0.48, 1),
		},
	}
}

// SyntheticRealtime oscillates around 750 Gbps with a ten second period
// and a little noise.
func SyntheticRealtime(now time.Time, source string) models.RealtimeMetrics {
	wave := math.Sin(float64(now.UnixMilli())/10000) * 150
	noise := (rand.Float64() - 0.5) * 50
	current := math.Max(0, 750+wave+noise)
	return models.RealtimeMetrics{
		Traffic: models.RealtimeTraffic{
			Current: round(current, 1),
			Peak:    round(current*1.4, 1),
			Average: round(current*0.8, 1),
			Unit:    "Gbps",
		},
		Connections: models.RealtimeConnections{Active: 4500 + rand.IntN(500), Peak: 5200, Total: 45000},
		Latency:     models.RealtimeLatency{Global: round(0.3+rand.Float64()*0.2, 1), Unit: "ms"},
		Uptime:      99.99,
		Timestamp:   now,
		Source:      source,
	}
}

