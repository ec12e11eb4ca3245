package services

import (
	"context"
	"ixadmin/internal/logging"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"gorm.io/gorm"
)

// HostStats are best-effort figures for the machine running the API.
type HostStats struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	Load1         float64 `json:"load1"`
}

// Health is the data block of GET /api/health.
type Health struct {
	Uptime   float64    `json:"uptime"`
	Database string     `json:"database"`
	Host     *HostStats `json:"host,omitempty"`
}

// HealthService reports process uptime, database reachability and host load.
type HealthService struct {
	db      *gorm.DB
	started time.Time
	host    *TTLCache[*HostStats]
}

func NewHealthService(db *gorm.DB) *HealthService {
	return &HealthService{
		db:      db,
		started: time.Now(),
		// Sampling the host is slower than the request it serves.
		host: NewTTLCache[*HostStats](5 * time.Second),
	}
}

func (s *HealthService) Check(ctx context.Context) Health {
	h := Health{
		Uptime:   time.Since(s.started).Seconds(),
		Database: "connected",
	}
	if err := s.ping(ctx); err != nil {
		logging.Warn().Err(err).Msg("[DB] Health ping failed")
		h.Database = "disconnected"
	}
	host, err := s.host.GetOrLoad("host", func() (*HostStats, error) {
		return sampleHost(ctx)
	})
	if err == nil {
		h.Host = host
	}
	return h
}

func (s *HealthService) ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// sampleHost reads CPU, memory and load. Each figure is optional; only a
// total failure is an error.
func sampleHost(ctx context.Context) (*HostStats, error) {
	stats := &HostStats{}
	var firstErr error
	note := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		note(err)
	} else if len(pct) > 0 {
		stats.CPUPercent = round(pct[0], 2)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		note(err)
	} else {
		stats.MemoryPercent = round(vm.UsedPercent, 2)
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		note(err)
	} else {
		stats.Load1 = avg.Load1
	}

	if firstErr != nil && *stats == (HostStats{}) {
		logging.Debug().Err(firstErr).Msg("[HEALTH] Host sampling unavailable")
		return nil, firstErr
	}
	return stats, nil
}
