package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFailed = errors.New("failed")

func run(b *Breaker, success bool) error {
	return b.Execute(func() error {
		if success {
			return nil
		}
		return errFailed
	})
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		settings      Settings
		requests      []bool // true = success, false = failure
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			settings:      Settings{Timeout: time.Minute},
			requests:      []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name: "opens after consecutive failures",
			settings: Settings{
				Timeout:     time.Minute,
				ReadyToTrip: ConsecutiveFailures(3),
			},
			requests:      []bool{false, false, false},
			expectedState: StateOpen,
		},
		{
			name: "success resets the failure streak",
			settings: Settings{
				Timeout:     time.Minute,
				ReadyToTrip: ConsecutiveFailures(2),
			},
			requests:      []bool{false, true, false, true},
			expectedState: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := New("test", tt.settings)

			for _, success := range tt.requests {
				_ = run(breaker, success)
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	breaker := New("test", Settings{Timeout: time.Minute})

	require.NoError(t, run(breaker, true))

	counts := breaker.Counts()
	assert.Equal(t, uint32(1), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.ConsecutiveSuccesses)
	assert.Equal(t, uint32(0), counts.TotalFailures)

	assert.ErrorIs(t, run(breaker, false), errFailed)

	counts = breaker.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, uint32(0), counts.ConsecutiveSuccesses)
}

func TestBreakerOpenFailsFast(t *testing.T) {
	breaker := New("test", Settings{
		Timeout:     time.Minute,
		ReadyToTrip: ConsecutiveFailures(2),
	})

	for i := 0; i < 2; i++ {
		_ = run(breaker, false)
	}
	require.Equal(t, StateOpen, breaker.State())

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "open breaker must not call through")
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	breaker := New("test", Settings{
		Probes:      2,
		Timeout:     30 * time.Millisecond,
		ReadyToTrip: ConsecutiveFailures(2),
	})

	for i := 0; i < 2; i++ {
		_ = run(breaker, false)
	}
	assert.Equal(t, StateOpen, breaker.State())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, breaker.State())

	for i := 0; i < 2; i++ {
		require.NoError(t, run(breaker, true))
	}
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	breaker := New("test", Settings{
		Timeout:     20 * time.Millisecond,
		ReadyToTrip: ConsecutiveFailures(1),
	})

	_ = run(breaker, false)
	time.Sleep(40 * time.Millisecond)
	require.Equal(t, StateHalfOpen, breaker.State())

	assert.ErrorIs(t, run(breaker, false), errFailed)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerHalfOpenLimitsProbes(t *testing.T) {
	breaker := New("test", Settings{
		Probes:      1,
		Timeout:     20 * time.Millisecond,
		ReadyToTrip: ConsecutiveFailures(1),
	})

	_ = run(breaker, false)
	time.Sleep(40 * time.Millisecond)

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = breaker.Execute(func() error {
			<-release
			return nil
		})
	}()

	// Wait until the probe has been admitted
	require.Eventually(t, func() bool {
		return breaker.Counts().Requests == 1
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, run(breaker, true), ErrTooManyRequests)

	close(release)
	wg.Wait()
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	breaker := New("test", Settings{
		Timeout:     time.Minute,
		ReadyToTrip: ConsecutiveFailures(1),
	})

	assert.Panics(t, func() {
		_ = breaker.Execute(func() error { panic("boom") })
	})
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerIsSuccessful(t *testing.T) {
	errRejected := errors.New("rejected input")
	breaker := New("test", Settings{
		Timeout:     time.Minute,
		ReadyToTrip: ConsecutiveFailures(2),
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRejected)
		},
	})

	for i := 0; i < 4; i++ {
		err := breaker.Execute(func() error { return errRejected })
		assert.ErrorIs(t, err, errRejected, "accepted errors are still returned")
	}
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, uint32(4), breaker.Counts().TotalSuccesses)
	assert.Zero(t, breaker.Counts().TotalFailures)

	require.ErrorIs(t, run(breaker, false), errFailed)
	require.ErrorIs(t, run(breaker, false), errFailed)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerCallbacks(t *testing.T) {
	var transitions []string

	breaker := New("solver", Settings{
		Timeout:     10 * time.Millisecond,
		ReadyToTrip: ConsecutiveFailures(2),
		OnStateChange: func(name string, from State, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	for i := 0; i < 2; i++ {
		_ = run(breaker, false)
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, breaker.State())

	assert.Equal(t, []string{"solver:closed->open", "solver:open->half-open"}, transitions)
}
