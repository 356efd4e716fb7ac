package executor

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Cancellation causes attached to a task's context.
var (
	ErrCanceled   = errors.New("task canceled")
	ErrTimedOut   = errors.New("task timed out")
	ErrPoolClosed = errors.New("executor closed")
	ErrQueueFull  = errors.New("executor queue full")
)

// State is the lifecycle state of a Task.
type State int32

// State enum values.
const (
	StatePending State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateTimedOut
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	case StateCanceled:
		return "canceled"
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s >= StateCompleted
}

// TaskFunc is the work a Task runs. The context is canceled when the task is
// canceled or expired; context.Cause reports which.
type TaskFunc func(ctx context.Context) error

// Task is a cancelable handle to submitted work.
type Task struct {
	ID   uuid.UUID
	Name string

	ctx    context.Context
	cancel context.CancelCauseFunc
	fn     TaskFunc
	done   chan struct{}

	mu      sync.Mutex
	state   State
	expired bool
	err     error
}

type taskKey struct{}

func newTask(parent context.Context, name string, fn TaskFunc) *Task {
	t := &Task{
		ID:    uuid.New(),
		Name:  name,
		fn:    fn,
		done:  make(chan struct{}),
		state: StatePending,
	}
	t.ctx, t.cancel = context.WithCancelCause(context.WithValue(parent, taskKey{}, t))
	return t
}

// TaskFromContext returns the Task whose TaskFunc received ctx.
func TaskFromContext(ctx context.Context) (*Task, bool) {
	t, ok := ctx.Value(taskKey{}).(*Task)
	return t, ok
}

// State returns the task's current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the error the task finished with, if any.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel cancels the task's context with cause. A nil cause means
// ErrCanceled. Canceling a finished task does nothing.
func (t *Task) Cancel(cause error) {
	if cause == nil {
		cause = ErrCanceled
	}
	t.cancel(cause)
}

// Expire marks a pending or running task as timed out, runs onExpire and
// then cancels the task's context with ErrTimedOut. It returns false, without
// running onExpire, when the task had already finished. onExpire runs with
// the task locked and must not call the task's methods.
func (t *Task) Expire(onExpire func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return false
	}
	t.expired = true
	if onExpire != nil {
		onExpire()
	}
	t.cancel(ErrTimedOut)
	return true
}

// reject finishes a task that will never be queued.
func (t *Task) reject(cause error) {
	t.Cancel(cause)
	t.run()
}

func (t *Task) run() {
	if !t.start() {
		t.finish(nil)
		return
	}
	t.finish(t.fn(t.ctx))
}

func (t *Task) start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctx.Err() != nil {
		return false
	}
	t.state = StateRunning
	return true
}

func (t *Task) finish(err error) {
	t.mu.Lock()
	cause := context.Cause(t.ctx)
	switch {
	case t.expired:
		t.state = StateTimedOut
	case cause != nil:
		t.state = StateCanceled
	case err != nil:
		t.state = StateFailed
	default:
		t.state = StateCompleted
	}
	if err == nil {
		err = cause
	}
	t.err = err
	t.mu.Unlock()

	t.cancel(nil)
	close(t.done)
}
