package circuit_breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/library-lending/pkg/circuit_breaker"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()

	successfulService := func() error { return nil }
	errService := errors.New("service error")
	failingService := func() error { return errService }

	type fields struct {
		recordLength     int
		timeout          time.Duration
		percentile       float64
		recoveryRequests int
	}
	tests := []struct {
		name   string
		fields fields
		run    func(t *testing.T, cb circuit_breaker.CircuitBreaker, clock clockwork.FakeClock)
	}{
		{
			name:   "stays closed on success",
			fields: fields{recordLength: 10, timeout: 2 * time.Second, percentile: 0.3, recoveryRequests: 3},
			run: func(t *testing.T, cb circuit_breaker.CircuitBreaker, _ clockwork.FakeClock) {
				for i := 0; i < 50; i++ {
					require.NoError(t, cb.Call(successfulService))
				}
				require.Equal(t, circuit_breaker.Closed, cb.State())
			},
		},
		{
			name:   "opens after failure ratio and rejects calls",
			fields: fields{recordLength: 10, timeout: 2 * time.Second, percentile: 0.3, recoveryRequests: 3},
			run: func(t *testing.T, cb circuit_breaker.CircuitBreaker, _ clockwork.FakeClock) {
				for i := 0; i < 3; i++ {
					require.ErrorIs(t, cb.Call(failingService), errService)
				}
				require.Equal(t, circuit_breaker.Open, cb.State())
				require.ErrorIs(t, cb.Call(successfulService), circuit_breaker.ErrOpenCB)
			},
		},
		{
			name:   "half-open recovers to closed",
			fields: fields{recordLength: 4, timeout: time.Second, percentile: 0.5, recoveryRequests: 2},
			run: func(t *testing.T, cb circuit_breaker.CircuitBreaker, clock clockwork.FakeClock) {
				require.Error(t, cb.Call(failingService))
				require.Error(t, cb.Call(failingService))
				require.Equal(t, circuit_breaker.Open, cb.State())

				clock.Advance(2 * time.Second)
				require.NoError(t, cb.Call(successfulService))
				require.Equal(t, circuit_breaker.HalfOpen, cb.State())
				require.NoError(t, cb.Call(successfulService))
				require.Equal(t, circuit_breaker.Closed, cb.State())
			},
		},
		{
			name:   "half-open failure reopens",
			fields: fields{recordLength: 4, timeout: time.Second, percentile: 0.5, recoveryRequests: 2},
			run: func(t *testing.T, cb circuit_breaker.CircuitBreaker, clock clockwork.FakeClock) {
				require.Error(t, cb.Call(failingService))
				require.Error(t, cb.Call(failingService))

				clock.Advance(2 * time.Second)
				require.ErrorIs(t, cb.Call(failingService), errService)
				require.Equal(t, circuit_breaker.Open, cb.State())
				require.ErrorIs(t, cb.Call(successfulService), circuit_breaker.ErrOpenCB)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			clock := clockwork.NewFakeClock()
			cb := circuit_breaker.NewCircuitBreakerWithClock(clock,
				tt.fields.recordLength, tt.fields.timeout, tt.fields.percentile, tt.fields.recoveryRequests)
			tt.run(t, cb, clock)
		})
	}
}
