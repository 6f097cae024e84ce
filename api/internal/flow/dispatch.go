package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Option func(*options)

type options struct {
	timeout time.Duration
	log     *zap.Logger
}

// WithTimeout bounds every request of the flow; 0 leaves requests unbounded.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// dispatcher holds the request state of one flow and allows a single pending task.
type dispatcher[T any] struct {
	name    string
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	busy    bool
	state   State[T]
	current *Task[T]
}

func newDispatcher[T any](name string, o options) *dispatcher[T] {
	return &dispatcher[T]{name: name, timeout: o.timeout, log: o.log.With(zap.String("flow", name))}
}

func (d *dispatcher[T]) snapshot() State[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *dispatcher[T]) pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// fail resolves a submission that never reached the network.
// While a task is pending it is a no-op and returns that task.
func (d *dispatcher[T]) fail(err error) (*Task[T], bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return d.current, false
	}
	d.state = State[T]{Phase: Failed, Err: err}
	t := newTask[T]()
	t.resolve(d.state)
	d.current = t
	return t, true
}

// start moves the flow to Pending and runs call in its own goroutine.
// While a task is pending it is a no-op and returns that task.
func (d *dispatcher[T]) start(ctx context.Context, call func(context.Context) (T, error)) (*Task[T], bool) {
	d.mu.Lock()
	if d.busy {
		t := d.current
		d.mu.Unlock()
		d.log.Debug("submit ignored, request pending", zap.String("task", t.ID))
		return t, false
	}
	d.busy = true
	d.state = State[T]{Phase: Pending}
	t := newTask[T]()
	d.current = t
	d.mu.Unlock()

	d.log.Debug("request dispatched", zap.String("task", t.ID))
	go d.run(ctx, t, call)
	return t, true
}

func (d *dispatcher[T]) run(ctx context.Context, t *Task[T], call func(context.Context) (T, error)) {
	var st State[T]
	defer func() {
		// паника движка не должна оставить флоу без результата
		if p := recover(); p != nil {
			d.log.Error("request panicked", zap.String("task", t.ID), zap.Any("panic", p), zap.Stack("stack"))
			st = State[T]{Phase: Failed, Err: &Error{Kind: KindTransport, Msg: fmt.Sprintf("Request failed: %v", p)}}
		}
		d.finish(t, st)
	}()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res, err := call(ctx)
	if err != nil {
		st = State[T]{Phase: Failed, Err: err}
		return
	}
	st = State[T]{Phase: Succeeded, Result: res}
}

// finish always clears the busy flag; the flow state is published before the task resolves.
func (d *dispatcher[T]) finish(t *Task[T], st State[T]) {
	d.mu.Lock()
	d.busy = false
	d.state = st
	d.mu.Unlock()

	d.log.Debug("request resolved",
		zap.String("task", t.ID),
		zap.Stringer("phase", st.Phase),
		zap.Duration("took", time.Since(t.StartedAt)))
	t.resolve(st)
}

// reset clears a displayed outcome. A pending request is left alone and will still
// publish its result when it resolves.
func (d *dispatcher[T]) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.busy {
		d.state = State[T]{}
	}
}
