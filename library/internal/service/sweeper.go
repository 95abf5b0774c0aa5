package service

import (
	"context"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type sweepRunner interface {
	RunMaintenanceSweep(ctx context.Context, now time.Time) (model.SweepReport, error)
}

// Sweeper runs the maintenance sweep on a fixed interval.
type Sweeper struct {
	svc      sweepRunner
	clock    clockwork.Clock
	interval time.Duration
	log      *zap.Logger
	// ran receives each report; tests use it to wait for a pass.
	ran chan model.SweepReport
}

func NewSweeper(svc sweepRunner, clock clockwork.Clock, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		svc:      svc,
		clock:    clock,
		interval: interval,
		log:      log.Named("sweeper"),
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info("sweeper started", zap.Duration("interval", s.interval))
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return nil
		case <-ticker.Chan():
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	report, err := s.svc.RunMaintenanceSweep(ctx, s.clock.Now())
	if err != nil {
		s.log.Error("sweep", zap.Error(err))
	}
	if s.ran != nil {
		select {
		case s.ran <- report:
		case <-ctx.Done():
		}
	}
}
