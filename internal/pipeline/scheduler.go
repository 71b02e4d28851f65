// Package pipeline runs the scan and classify stages over many independent units.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// State is the lifecycle position of one unit.
type State int

const (
	Pending State = iota
	Dispatched
	Completed
	Skipped
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Dispatched:
		return "dispatched"
	case Completed:
		return "completed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == Completed || s == Skipped || s == Failed
}

// Task processes unit i. It returns Completed, Skipped or Failed; an error implies Failed.
type Task func(ctx context.Context, i int) (State, error)

// Outcome is the terminal record of one unit.
type Outcome struct {
	Key      string
	State    State
	Err      error
	Duration time.Duration
}

// Summary holds one Outcome per unit, in input order.
type Summary struct {
	Outcomes  []Outcome
	Completed int
	Skipped   int
	Failed    int
}

// Total returns the number of units.
func (s *Summary) Total() int {
	return len(s.Outcomes)
}

// Scheduler dispatches tasks with at most Limit in flight.
type Scheduler struct {
	Limit   int
	Limiter *rate.Limiter
	Logger  hclog.Logger
	// OnTerminal, when set, is called after each unit reaches a terminal state.
	// Calls are serialised; done counts terminal units so far.
	OnTerminal func(ctx context.Context, done int)
}

// NewScheduler creates a Scheduler. A non-positive rps disables pacing.
func NewScheduler(limit int, rps float64, logger hclog.Logger) *Scheduler {
	s := &Scheduler{Limit: limit, Logger: logger}
	if rps > 0 {
		s.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return s
}

// Run executes task for every key and returns once all units are terminal.
// A failing or panicking task never cancels its siblings.
func (s *Scheduler) Run(ctx context.Context, keys []string, task Task) *Summary {
	logger := s.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	limit := s.Limit
	if limit <= 0 {
		limit = 1
	}

	summary := &Summary{Outcomes: make([]Outcome, len(keys))}
	for i, key := range keys {
		summary.Outcomes[i] = Outcome{Key: key, State: Pending}
	}
	logger.Info("dispatch starting", "total", len(keys), "limit", limit)

	var (
		mu   sync.Mutex
		done int
	)
	finish := func(i int, state State, err error, started time.Time) {
		if err != nil {
			state = Failed
		}
		mu.Lock()
		summary.Outcomes[i].State = state
		summary.Outcomes[i].Err = err
		summary.Outcomes[i].Duration = time.Since(started)
		done++
		n := done
		if err != nil {
			logger.Warn("unit failed", "#", i+1, "key", keys[i], "error", err)
		} else {
			logger.Debug("unit finished", "#", i+1, "key", keys[i], "state", state)
		}
		if s.OnTerminal != nil {
			s.OnTerminal(ctx, n)
		}
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range keys {
		i := i
		g.Go(func() error {
			started := time.Now()
			if s.Limiter != nil {
				if err := s.Limiter.Wait(ctx); err != nil {
					finish(i, Failed, fmt.Errorf("dispatch cancelled: %w", err), started)
					return nil
				}
			}
			if err := ctx.Err(); err != nil {
				finish(i, Failed, fmt.Errorf("dispatch cancelled: %w", err), started)
				return nil
			}

			mu.Lock()
			summary.Outcomes[i].State = Dispatched
			mu.Unlock()
			logger.Debug("unit dispatched", "#", i+1, "key", keys[i])

			state, err := runTask(ctx, task, i)
			finish(i, state, err, started)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range summary.Outcomes {
		switch o.State {
		case Completed:
			summary.Completed++
		case Skipped:
			summary.Skipped++
		case Failed:
			summary.Failed++
		}
	}
	logger.Info("dispatch finished", "total", len(keys), "completed", summary.Completed, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary
}

func runTask(ctx context.Context, task Task, i int) (state State, err error) {
	defer func() {
		if r := recover(); r != nil {
			state, err = Failed, fmt.Errorf("unit panicked: %v", r)
		}
	}()

	state, err = task(ctx, i)
	if err == nil && !state.Terminal() {
		err = fmt.Errorf("unit returned non-terminal state %s", state)
	}
	return state, err
}
