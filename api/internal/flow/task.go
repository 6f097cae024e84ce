package flow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Phase int

const (
	Idle Phase = iota
	Pending
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of a flow's request state. Result is set only when Succeeded,
// Err only when Failed.
type State[T any] struct {
	Phase  Phase
	Result T
	Err    error
}

// Message is the inline text a view shows for a failed state.
func (s State[T]) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Task is one submission. It resolves exactly once.
type Task[T any] struct {
	ID        string
	StartedAt time.Time

	done  chan struct{}
	state State[T]
}

func newTask[T any]() *Task[T] {
	return &Task[T]{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		done:      make(chan struct{}),
		state:     State[T]{Phase: Pending},
	}
}

func (t *Task[T]) Done() <-chan struct{} { return t.done }

func (t *Task[T]) State() State[T] {
	select {
	case <-t.done:
		return t.state
	default:
		return State[T]{Phase: Pending}
	}
}

// Wait blocks until the task resolves or ctx ends. Giving up on the wait does not
// cancel the request.
func (t *Task[T]) Wait(ctx context.Context) (State[T], error) {
	select {
	case <-t.done:
		return t.state, nil
	case <-ctx.Done():
		return State[T]{Phase: Pending}, ctx.Err()
	}
}

func (t *Task[T]) resolve(s State[T]) {
	t.state = s
	close(t.done)
}
