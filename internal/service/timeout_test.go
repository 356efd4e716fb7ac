package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/windoze95/saltybytes-recipefeed/internal/executor"
)

// manualScheduler records scheduled callbacks so tests can fire them.
type manualScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
	fns    []func()
}

func (m *manualScheduler) ScheduleAfter(delay time.Duration, fn func()) *time.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, delay)
	m.fns = append(m.fns, fn)
	timer := time.NewTimer(delay)
	timer.Stop()
	return timer
}

func (m *manualScheduler) fire(i int) {
	m.mu.Lock()
	fn := m.fns[i]
	m.mu.Unlock()
	fn()
}

func TestTimeoutGuard_ArmUsesFixedTimeout(t *testing.T) {
	pool := executor.NewPool(1)
	defer pool.Close()
	sched := &manualScheduler{}
	guard := NewTimeoutGuard(3*time.Second, sched)

	task := pool.Submit("search", func(ctx context.Context) error { return nil })
	guard.Arm(task, nil)
	waitDone(t, task)

	if len(sched.delays) != 1 || sched.delays[0] != 3*time.Second {
		t.Errorf("scheduled delays = %v, want [3s]", sched.delays)
	}
}

func TestTimeoutGuard_ExpireRunningTask(t *testing.T) {
	pool := executor.NewPool(1)
	defer pool.Close()
	sched := &manualScheduler{}
	guard := NewTimeoutGuard(time.Second, sched)

	started := make(chan struct{})
	task := pool.Submit("lookup", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	var order []string
	guard.Arm(task, func() {
		order = append(order, "on_expire")
		select {
		case <-task.Done():
			t.Error("onExpire should run before the task is interrupted")
		default:
		}
	})
	<-started
	sched.fire(0)
	waitDone(t, task)

	if len(order) != 1 {
		t.Fatalf("onExpire ran %d times, want 1", len(order))
	}
	if task.State() != executor.StateTimedOut {
		t.Errorf("state = %s, want timed_out", task.State())
	}
}

func TestTimeoutGuard_FiringAfterCompletionIsNoOp(t *testing.T) {
	pool := executor.NewPool(1)
	defer pool.Close()
	sched := &manualScheduler{}
	guard := NewTimeoutGuard(time.Second, sched)

	task := pool.Submit("lookup", func(ctx context.Context) error { return nil })
	called := false
	guard.Arm(task, func() { called = true })
	waitDone(t, task)
	sched.fire(0)

	if called {
		t.Error("onExpire should not run for a finished task")
	}
	if task.State() != executor.StateCompleted {
		t.Errorf("state = %s, want completed", task.State())
	}
}
