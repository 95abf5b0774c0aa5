package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRunner struct {
	mu   sync.Mutex
	seen []time.Time
}

func (c *countingRunner) RunMaintenanceSweep(_ context.Context, now time.Time) (model.SweepReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, now)
	return model.SweepReport{Now: now}, nil
}

func TestSweeper_Run(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	runner := &countingRunner{}
	s := NewSweeper(runner, clock, time.Minute, zap.NewNop())
	s.ran = make(chan model.SweepReport)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	first := <-s.ran
	require.Equal(t, clock.Now(), first.Now)

	// the ticker exists before the first pass runs
	clock.Advance(time.Minute)
	second := <-s.ran
	require.Equal(t, clock.Now(), second.Now)

	cancel()
	require.NoError(t, <-done)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.Len(t, runner.seen, 2)
}
