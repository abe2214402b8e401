package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/glaucius/back-to-the-loop/repositories"
	"github.com/glaucius/back-to-the-loop/services"
)

const (
	DefaultInterval     = 30 * time.Second
	DefaultErrorBackoff = 60 * time.Second
)

// TimeLimitMonitor sweeps active loops in the background and marks as DNF
// the athletes still running past the loop's time limit. It only eliminates;
// closing the loop and seeding the next one stays a manual organizer action.
type TimeLimitMonitor struct {
	loopRepo     repositories.LoopRepository
	raceService  services.RaceService
	logger       *slog.Logger
	interval     time.Duration
	errorBackoff time.Duration
	now          func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func New(loopRepo repositories.LoopRepository, raceService services.RaceService, logger *slog.Logger, interval, errorBackoff time.Duration) *TimeLimitMonitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if errorBackoff <= 0 {
		errorBackoff = DefaultErrorBackoff
	}
	return &TimeLimitMonitor{
		loopRepo:     loopRepo,
		raceService:  raceService,
		logger:       logger,
		interval:     interval,
		errorBackoff: errorBackoff,
		now:          time.Now,
	}
}

// Start launches the sweep goroutine. The first sweep runs immediately.
func (m *TimeLimitMonitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		m.logger.Info("time limit monitor started",
			slog.Duration("interval", m.interval),
			slog.Duration("error_backoff", m.errorBackoff))

		wait := time.Duration(0)
		for {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				m.logger.Info("time limit monitor stopped")
				return
			case <-timer.C:
			}

			if err := m.Sweep(ctx); err != nil {
				m.logger.Error("time limit sweep failed", slog.Any("error", err))
				wait = m.errorBackoff
			} else {
				wait = m.interval
			}
		}
	}()
}

// Stop cancels the sweep goroutine and waits for it to exit.
func (m *TimeLimitMonitor) Stop() {
	m.once.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}
		if m.done != nil {
			<-m.done
		}
	})
}

// Sweep runs one pass over all active loops. Errors on individual loops are
// logged and do not stop the pass; only the listing error aborts it.
func (m *TimeLimitMonitor) Sweep(ctx context.Context) error {
	loops, err := m.loopRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	now := m.now()
	for _, loop := range loops {
		if !loop.TimedOut(now) {
			continue
		}
		eliminated, err := m.raceService.EliminateAthletesByTime(ctx, loop.ID)
		if err != nil {
			m.logger.Error("failed to eliminate athletes by time",
				slog.Int("loop_id", loop.ID),
				slog.Int("backyard_id", loop.BackyardID),
				slog.Any("error", err))
			continue
		}
		if eliminated > 0 {
			m.logger.Info("athletes eliminated by time limit",
				slog.Int("loop_id", loop.ID),
				slog.Int("backyard_id", loop.BackyardID),
				slog.Int("numero_loop", loop.NumeroLoop),
				slog.Int("eliminated", eliminated))
		}
	}
	return nil
}
