/*
scheduler.go - Automated payroll scheduler

PURPOSE:
  Periodically runs the full payroll and records each run in the shared
  RunLog, where GET /api/payroll/runs shows it next to API-triggered runs.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Does not run on start; the first run happens one interval later
  - A run that returns an error is logged and the schedule continues
  - Each run gets the interval as its deadline

CONFIGURATION:
  - Interval: How often to run (default: 720h, about monthly)
  - Enabled:  Whether scheduler is active (default: false)

USAGE:
  scheduler := NewPayrollScheduler(sys, handler.Runs, &logger)
  scheduler.Enabled = true
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunPayroll endpoint (manual runs)
  - payroll/system.go: RunPayroll
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/payroll-engine/payroll"
)

// Run triggers.
const (
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"
)

// DefaultRunLogSize is how many runs a RunLog keeps by default.
const DefaultRunLogSize = 50

// =============================================================================
// RUN LOG
// =============================================================================

// RunLog keeps the most recent payroll runs in memory.
type RunLog struct {
	mu   sync.RWMutex
	max  int
	runs []RunDTO
}

// NewRunLog creates a log that keeps at most size runs.
func NewRunLog(size int) *RunLog {
	if size <= 0 {
		size = DefaultRunLogSize
	}
	return &RunLog{max: size}
}

// Add records a run, dropping the oldest one when full.
func (l *RunLog) Add(run RunDTO) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.runs = append(l.runs, run)
	if len(l.runs) > l.max {
		l.runs = l.runs[len(l.runs)-l.max:]
	}
}

// List returns recorded runs, newest first.
func (l *RunLog) List() []RunDTO {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]RunDTO, len(l.runs))
	for i, run := range l.runs {
		out[len(l.runs)-1-i] = run
	}
	return out
}

// =============================================================================
// SCHEDULER
// =============================================================================

// PayrollScheduler runs the payroll on a fixed interval.
type PayrollScheduler struct {
	System   *payroll.System
	Runs     *RunLog
	Interval time.Duration
	Enabled  bool

	log    zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPayrollScheduler creates a disabled scheduler with the default
// interval.
func NewPayrollScheduler(sys *payroll.System, runs *RunLog, logger *zerolog.Logger) *PayrollScheduler {
	ps := &PayrollScheduler{
		System:   sys,
		Runs:     runs,
		Interval: 720 * time.Hour,
		log:      zerolog.Nop(),
	}
	if logger != nil {
		ps.log = logger.With().Str("component", "scheduler").Logger()
	}
	return ps
}

// Start begins the scheduler.
func (ps *PayrollScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		ps.log.Info().Msg("scheduler disabled, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	ps.ticker = time.NewTicker(ps.Interval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)

	go ps.run(ps.ticker.C, ps.stop)

	ps.log.Info().Dur("interval", ps.Interval).Msg("scheduler started")
}

// Stop stops the scheduler and waits for an in-flight run.
func (ps *PayrollScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		close(ps.stop)
		ps.wg.Wait()
		ps.ticker = nil
		ps.log.Info().Msg("scheduler stopped")
	}
}

func (ps *PayrollScheduler) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer ps.wg.Done()

	for {
		select {
		case <-tick:
			ps.RunNow()
		case <-stop:
			return
		}
	}
}

// RunNow runs the payroll immediately and records the run.
func (ps *PayrollScheduler) RunNow() (*RunDTO, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ps.Interval)
	defer cancel()

	run, err := ps.System.RunPayroll(ctx)
	if err != nil {
		ps.log.Error().Err(err).Msg("scheduled payroll run failed")
		return nil, err
	}

	dto := toRunDTO(run, TriggerScheduler, "")
	if ps.Runs != nil {
		ps.Runs.Add(dto)
	}
	ps.log.Info().
		Str("run_id", dto.RunID).
		Int("paid", dto.Paid).
		Int("failed", dto.Failed).
		Msg("scheduled payroll run completed")
	return &dto, nil
}

// NextRunTime returns roughly when the next scheduled run will occur.
func (ps *PayrollScheduler) NextRunTime() time.Time {
	return time.Now().Add(ps.Interval)
}
