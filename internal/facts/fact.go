package facts

import (
	"context"
	"errors"
)

// State is the lifecycle position of a Fact.
type State int

const (
	// Absent means the fact was never requested for this row.
	Absent State = iota
	// Pending means a job has been scheduled and has not finished.
	Pending
	// Available means the value is known. Terminal.
	Available
	// TimedOut means the job exceeded its budget. Terminal.
	TimedOut
	// Failed means the job returned an error. Terminal.
	Failed
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Pending:
		return "pending"
	case Available:
		return "available"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s != Pending
}

// Fact is one datum about a row. A Fact moves from Absent to Pending once,
// and from Pending to exactly one terminal state; later writes are ignored.
type Fact[T any] struct {
	State State
	Value T
	Err   error
}

// Get returns the value and whether it is available.
func (f Fact[T]) Get() (T, bool) {
	return f.Value, f.State == Available
}

// Known reports whether the value is available.
func (f Fact[T]) Known() bool {
	return f.State == Available
}

// Request marks an absent fact as pending.
func (f *Fact[T]) Request() {
	if f.State == Absent {
		f.State = Pending
	}
}

// Resolve settles a pending fact from a fetch result. A deadline error marks
// the fact TimedOut, any other error Failed. Returns false if the fact was
// not pending, leaving it untouched.
func (f *Fact[T]) Resolve(v T, err error) bool {
	if f.State != Pending {
		return false
	}
	switch {
	case err == nil:
		f.State, f.Value = Available, v
	case errors.Is(err, context.DeadlineExceeded):
		f.State, f.Err = TimedOut, err
	default:
		f.State, f.Err = Failed, err
	}
	return true
}

// Expire settles a pending fact as TimedOut.
func (f *Fact[T]) Expire() bool {
	if f.State != Pending {
		return false
	}
	f.State, f.Err = TimedOut, context.DeadlineExceeded
	return true
}
