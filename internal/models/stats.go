package models

import "time"

// SingletonID is the fixed primary key of every single-row stats table.
// Writes upsert on it, so two concurrent first reads converge on one row.
const SingletonID uint = 1

type LatencyValue struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// NetworkStats feeds the headline figures on the landing page.
type NetworkStats struct {
	ID            uint         `json:"-" gorm:"primaryKey;autoIncrement:false"`
	GlobalLatency LatencyValue `json:"globalLatency" gorm:"embedded;embeddedPrefix:global_latency_"`
	ActiveNodes   int          `json:"activeNodes"`
	Throughput    float64      `json:"throughput"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func DefaultNetworkStats() NetworkStats {
	return NetworkStats{
		ID:            SingletonID,
		GlobalLatency: LatencyValue{Value: 0.4, Unit: "ms"},
		ActiveNodes:   4921,
		Throughput:    124,
	}
}

// GlobalFabricStats are display strings for the fabric overview panel.
type GlobalFabricStats struct {
	ID             uint      `json:"-" gorm:"primaryKey;autoIncrement:false"`
	TotalCapacity  string    `json:"totalCapacity"`
	ActiveRoutes   string    `json:"activeRoutes"`
	AvgLatency     string    `json:"avgLatency"`
	GlobalCoverage string    `json:"globalCoverage"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func DefaultGlobalFabricStats() GlobalFabricStats {
	return GlobalFabricStats{
		ID:             SingletonID,
		TotalCapacity:  "5.2 Tbps",
		ActiveRoutes:   "10,000+",
		AvgLatency:     "<5ms",
		GlobalCoverage: "100%",
	}
}

// StatValue is a figure with an optional trend indicator.
type StatValue struct {
	Value      float64 `json:"value"`
	Unit       string  `json:"unit" binding:"required"`
	Trend      string  `json:"trend,omitempty" binding:"omitempty,oneof=up down stable"`
	TrendValue string  `json:"trendValue,omitempty"`
}

// GlobalStats backs the stats band on the traffic page.
type GlobalStats struct {
	ID                uint      `json:"-" gorm:"primaryKey;autoIncrement:false"`
	TotalCapacity     StatValue `json:"totalCapacity" gorm:"embedded;embeddedPrefix:total_capacity_"`
	PeakTraffic       StatValue `json:"peakTraffic" gorm:"embedded;embeddedPrefix:peak_traffic_"`
	ConnectedNetworks StatValue `json:"connectedNetworks" gorm:"embedded;embeddedPrefix:connected_networks_"`
	IPv4Prefixes      StatValue `json:"ipv4Prefixes" gorm:"embedded;embeddedPrefix:ipv4_prefixes_"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func DefaultGlobalStats() GlobalStats {
	return GlobalStats{
		ID:                SingletonID,
		TotalCapacity:     StatValue{Value: 450, Unit: "Tbps"},
		PeakTraffic:       StatValue{Value: 156.2, Unit: "Tbps", Trend: "up", TrendValue: "+8.1%"},
		ConnectedNetworks: StatValue{Value: 4921, Unit: "Peers", Trend: "up", TrendValue: "+47"},
		IPv4Prefixes:      StatValue{Value: 892345, Unit: "Routes", Trend: "stable"},
	}
}
