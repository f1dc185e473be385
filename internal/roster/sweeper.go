package roster

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Sweeper runs the freshness check on a cron schedule, so a demo nobody
// is calling still rolls back instead of waiting for the next request.
type Sweeper struct {
	cron    *cron.Cron
	service *Service
	logger  *slog.Logger
}

// NewSweeper schedules service's freshness check with spec, any format
// robfig/cron accepts ("@every 1m", "*/5 * * * *").
func NewSweeper(service *Service, spec string, logger *slog.Logger) (*Sweeper, error) {
	sw := &Sweeper{
		cron:    cron.New(),
		service: service,
		logger:  logger.With(slog.String("component", "reset_sweeper")),
	}

	if _, err := sw.cron.AddFunc(spec, sw.Sweep); err != nil {
		return nil, err
	}

	return sw, nil
}

// Sweep performs one freshness check.
func (sw *Sweeper) Sweep() {
	sw.service.mu.Lock()
	defer sw.service.mu.Unlock()

	reset, err := sw.service.ensureFreshLocked(CauseSweep)
	if err != nil {
		sw.logger.Error("sweep failed", slog.String("error", err.Error()))
		return
	}
	if reset {
		sw.logger.Debug("idle roster rolled back")
	}
}

// Start runs the schedule in the background.
func (sw *Sweeper) Start() {
	sw.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (sw *Sweeper) Stop() {
	<-sw.cron.Stop().Done()
}
