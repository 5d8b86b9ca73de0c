package sched

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultLimit is the default number of jobs in flight.
const DefaultLimit = 32

// Priority orders dispatch. Lower values are dispatched first.
type Priority int

const (
	// PriorityLocal is for jobs that only read the local repository.
	PriorityLocal Priority = iota
	// PriorityNetwork is for jobs that talk to a remote host.
	PriorityNetwork
)

// Job is one independent unit of work.
type Job struct {
	ID       int
	Name     string
	Priority Priority
	Run      func(ctx context.Context) (any, error)
}

// Outcome is what became of a job.
type Outcome struct {
	Value any
	Err   error
	// TimedOut is set when the job exceeded the per-job timeout and was abandoned.
	TimedOut bool
	// Canceled is set when the job was never dispatched.
	Canceled bool
	Elapsed  time.Duration
}

// Scheduler runs jobs on a bounded pool.
type Scheduler struct {
	limit   int
	timeout time.Duration
	hard    context.Context
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithHardContext binds running jobs to ctx. Cancelling it kills in-flight
// work; cancelling the context passed to Run only stops dispatch.
func WithHardContext(ctx context.Context) Option {
	return func(s *Scheduler) { s.hard = ctx }
}

// New creates a scheduler running at most limit jobs at once, each bounded
// by timeout. A limit <= 0 uses DefaultLimit; a timeout <= 0 disables it.
func New(limit int, timeout time.Duration, opts ...Option) *Scheduler {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Scheduler{limit: limit, timeout: timeout, hard: context.Background()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limit returns the maximum number of jobs in flight.
func (s *Scheduler) Limit() int {
	return s.limit
}

// Run dispatches jobs in priority order and blocks until every job has an
// outcome. done is called exactly once per job, possibly from several
// goroutines at once.
//
// When ctx is done, no further jobs are started and the rest report
// Canceled; jobs already running continue until they finish or time out.
// A failing job never affects its siblings.
func (s *Scheduler) Run(ctx context.Context, jobs []Job, done func(Job, Outcome)) {
	ordered := make([]Job, len(jobs))
	copy(ordered, jobs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	// slots gates dispatch so a done ctx can stop it; the group owns the
	// workers and never cancels them.
	slots := semaphore.NewWeighted(int64(s.limit))
	var g errgroup.Group
	g.SetLimit(s.limit)

	for i, job := range ordered {
		err := slots.Acquire(ctx, 1)
		if err == nil && ctx.Err() != nil {
			// Acquire may succeed on a done ctx; a done ctx always wins.
			slots.Release(1)
			err = ctx.Err()
		}
		if err != nil {
			for _, rest := range ordered[i:] {
				done(rest, Outcome{Err: err, Canceled: true})
			}
			break
		}

		g.Go(func() error {
			out := s.execute(job)
			slots.Release(1)
			done(job, out)
			return nil
		})
	}

	_ = g.Wait()
}

type result struct {
	value any
	err   error
}

// execute runs job under its own deadline. A job that overstays is
// abandoned: its goroutine may still be running, but its result is dropped.
func (s *Scheduler) execute(job Job) Outcome {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(s.hard, s.timeout)
	} else {
		ctx, cancel = context.WithCancel(s.hard)
	}
	defer cancel()

	start := time.Now()
	ch := make(chan result, 1)
	go func() {
		v, err := job.Run(ctx)
		ch <- result{value: v, err: err}
	}()

	select {
	case r := <-ch:
		out := Outcome{Value: r.value, Err: r.err, Elapsed: time.Since(start)}
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			out.Value = nil
			out.TimedOut = true
			out.Err = context.DeadlineExceeded
		}
		return out
	case <-ctx.Done():
		out := Outcome{Err: ctx.Err(), Elapsed: time.Since(start)}
		out.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
		return out
	}
}
