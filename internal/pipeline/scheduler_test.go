package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func keysN(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("unit-%d", i)
	}
	return keys
}

func TestSchedulerRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	s := &Scheduler{Limit: 3, Logger: hclog.NewNullLogger()}

	summary := s.Run(context.Background(), keysN(20), func(ctx context.Context, i int) (State, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return Completed, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, 20, summary.Completed)
	assert.Equal(t, 20, summary.Total())
}

func TestSchedulerIsolatesFailures(t *testing.T) {
	s := &Scheduler{Limit: 4, Logger: hclog.NewNullLogger()}

	summary := s.Run(context.Background(), keysN(10), func(ctx context.Context, i int) (State, error) {
		switch i {
		case 3:
			return Failed, errors.New("connection reset")
		case 5:
			panic("unexpected")
		case 7:
			return Skipped, nil
		}
		return Completed, nil
	})

	require.Len(t, summary.Outcomes, 10)
	assert.Equal(t, 7, summary.Completed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Failed)

	assert.Equal(t, "unit-3", summary.Outcomes[3].Key)
	assert.EqualError(t, summary.Outcomes[3].Err, "connection reset")
	assert.Equal(t, Failed, summary.Outcomes[5].State)
	assert.Contains(t, summary.Outcomes[5].Err.Error(), "panicked")
	for _, o := range summary.Outcomes {
		assert.True(t, o.State.Terminal(), o.Key)
	}
}

func TestSchedulerRejectsNonTerminalState(t *testing.T) {
	s := &Scheduler{Limit: 1}

	summary := s.Run(context.Background(), keysN(1), func(ctx context.Context, i int) (State, error) {
		return Dispatched, nil
	})

	assert.Equal(t, Failed, summary.Outcomes[0].State)
	assert.Error(t, summary.Outcomes[0].Err)
}

func TestSchedulerOnTerminalCountsUnits(t *testing.T) {
	var calls []int
	s := &Scheduler{
		Limit:      2,
		Logger:     hclog.NewNullLogger(),
		OnTerminal: func(ctx context.Context, done int) { calls = append(calls, done) },
	}

	s.Run(context.Background(), keysN(5), func(ctx context.Context, i int) (State, error) {
		return Completed, nil
	})

	assert.Equal(t, []int{1, 2, 3, 4, 5}, calls)
}

func TestSchedulerCancelledContextFailsPendingUnits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		Limit:   1,
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
		Logger:  hclog.NewNullLogger(),
	}

	var ran atomic.Int32
	summary := s.Run(ctx, keysN(3), func(ctx context.Context, i int) (State, error) {
		ran.Add(1)
		cancel()
		return Completed, nil
	})

	assert.Equal(t, int32(1), ran.Load())
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 2, summary.Failed)
	assert.ErrorIs(t, summary.Outcomes[1].Err, context.Canceled)
}

func TestNewSchedulerPacing(t *testing.T) {
	assert.Nil(t, NewScheduler(5, 0, nil).Limiter)
	assert.NotNil(t, NewScheduler(5, 2, nil).Limiter)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "state(42)", State(42).String())
}
