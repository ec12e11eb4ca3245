package services

import (
	"context"
	"fmt"
	"ixadmin/internal/logging"
	"time"

	"github.com/robfig/cron/v3"
)

// Prober checks one upstream and records the outcome.
type Prober interface {
	Probe(ctx context.Context) bool
}

// ProbeScheduler runs the upstream health probe on a cron schedule such as
// "@every 1m".
type ProbeScheduler struct {
	cron     *cron.Cron
	schedule string
	target   Prober
	timeout  time.Duration
}

func NewProbeScheduler(schedule string, target Prober, timeout time.Duration) (*ProbeScheduler, error) {
	ps := &ProbeScheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		schedule: schedule,
		target:   target,
		timeout:  timeout,
	}
	if _, err := ps.cron.AddFunc(schedule, ps.run); err != nil {
		return nil, fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}
	return ps, nil
}

func (ps *ProbeScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), ps.timeout)
	defer cancel()
	if ps.target.Probe(ctx) {
		logging.Debug().Msg("[PROBE] Upstream healthy")
	}
}

// Start runs one probe immediately and then follows the schedule.
func (ps *ProbeScheduler) Start() {
	go ps.run()
	ps.cron.Start()
	logging.Info().Str("schedule", ps.schedule).Msg("[PROBE] ✓ Upstream probe scheduled")
}

// Stop waits for a running probe to finish.
func (ps *ProbeScheduler) Stop() {
	<-ps.cron.Stop().Done()
}
