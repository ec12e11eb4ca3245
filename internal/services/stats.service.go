package services

import (
	"context"
	"fmt"
	"ixadmin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LatencyPatch struct {
	Value *float64 `json:"value"`
	Unit  *string  `json:"unit"`
}

type NetworkStatsPatch struct {
	GlobalLatency *LatencyPatch `json:"globalLatency"`
	ActiveNodes   *int          `json:"activeNodes"`
	Throughput    *float64      `json:"throughput"`
}

type GlobalFabricStatsPatch struct {
	TotalCapacity  *string `json:"totalCapacity"`
	ActiveRoutes   *string `json:"activeRoutes"`
	AvgLatency     *string `json:"avgLatency"`
	GlobalCoverage *string `json:"globalCoverage"`
}

// GlobalStatsRequest replaces every figure at once.
type GlobalStatsRequest struct {
	TotalCapacity     *models.StatValue `json:"totalCapacity" binding:"required"`
	PeakTraffic       *models.StatValue `json:"peakTraffic" binding:"required"`
	ConnectedNetworks *models.StatValue `json:"connectedNetworks" binding:"required"`
	IPv4Prefixes      *models.StatValue `json:"ipv4Prefixes" binding:"required"`
}

// StatsService owns the three single-row stats tables. Every read first
// inserts the default row with ON CONFLICT DO NOTHING on the fixed key, so
// concurrent first reads converge on one row instead of racing.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

func (s *StatsService) NetworkStats(ctx context.Context) (*models.NetworkStats, error) {
	row := models.DefaultNetworkStats()
	if err := loadSingleton(s.db.WithContext(ctx), &row); err != nil {
		return nil, fmt.Errorf("failed to load network stats: %w", err)
	}
	return &row, nil
}

func (s *StatsService) UpdateNetworkStats(ctx context.Context, patch NetworkStatsPatch) (*models.NetworkStats, error) {
	row := models.DefaultNetworkStats()
	err := updateSingleton(s.db.WithContext(ctx), &row, func() {
		if patch.GlobalLatency != nil {
			set(&row.GlobalLatency.Value, patch.GlobalLatency.Value)
			set(&row.GlobalLatency.Unit, patch.GlobalLatency.Unit)
		}
		set(&row.ActiveNodes, patch.ActiveNodes)
		set(&row.Throughput, patch.Throughput)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update network stats: %w", err)
	}
	return &row, nil
}

func (s *StatsService) GlobalFabricStats(ctx context.Context) (*models.GlobalFabricStats, error) {
	row := models.DefaultGlobalFabricStats()
	if err := loadSingleton(s.db.WithContext(ctx), &row); err != nil {
		return nil, fmt.Errorf("failed to load global fabric stats: %w", err)
	}
	return &row, nil
}

func (s *StatsService) UpdateGlobalFabricStats(ctx context.Context, patch GlobalFabricStatsPatch) (*models.GlobalFabricStats, error) {
	row := models.DefaultGlobalFabricStats()
	err := updateSingleton(s.db.WithContext(ctx), &row, func() {
		set(&row.TotalCapacity, patch.TotalCapacity)
		set(&row.ActiveRoutes, patch.ActiveRoutes)
		set(&row.AvgLatency, patch.AvgLatency)
		set(&row.GlobalCoverage, patch.GlobalCoverage)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update global fabric stats: %w", err)
	}
	return &row, nil
}

func (s *StatsService) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	row := models.DefaultGlobalStats()
	if err := loadSingleton(s.db.WithContext(ctx), &row); err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return &row, nil
}

// ReplaceGlobalStats overwrites all four figures.
func (s *StatsService) ReplaceGlobalStats(ctx context.Context, req GlobalStatsRequest) (*models.GlobalStats, error) {
	if req.TotalCapacity == nil || req.PeakTraffic == nil || req.ConnectedNetworks == nil || req.IPv4Prefixes == nil {
		return nil, invalid("All stat fields are required")
	}
	row := models.DefaultGlobalStats()
	err := updateSingleton(s.db.WithContext(ctx), &row, func() {
		row.TotalCapacity = *req.TotalCapacity
		row.PeakTraffic = *req.PeakTraffic
		row.ConnectedNetworks = *req.ConnectedNetworks
		row.IPv4Prefixes = *req.IPv4Prefixes
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}
	return &row, nil
}

// loadSingleton ensures the row exists and reads it into row. row must
// hold the defaults and the fixed key on entry.
func loadSingleton[T any](db *gorm.DB, row *T) error {
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return err
	}
	return db.First(row, models.SingletonID).Error
}

// updateSingleton reads the row, applies fn to it and writes it back, all in
// one transaction.
func updateSingleton[T any](db *gorm.DB, row *T, fn func()) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := loadSingleton(tx, row); err != nil {
			return err
		}
		fn()
		return tx.Save(row).Error
	})
}
