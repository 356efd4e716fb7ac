// Package executor runs blocking network work on a fixed set of workers and
// schedules deadline callbacks independently of them.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/windoze95/saltybytes-recipefeed/internal/logger"
	"go.uber.org/zap"
)

const defaultQueueSize = 64

// Pool runs submitted tasks on a fixed number of worker goroutines.
type Pool struct {
	queue chan *Task
	quit  chan struct{}
	wg    sync.WaitGroup

	ctx    context.Context
	cancel context.CancelCauseFunc

	mu     sync.RWMutex
	closed bool
}

// NewPool starts a pool with the given number of workers.
func NewPool(workers int) *Pool {
	return newPool(workers, defaultQueueSize)
}

func newPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	p := &Pool{
		queue:  make(chan *Task, queueSize),
		quit:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	logger.Get().Info("executor started", zap.Int("workers", workers))
	return p
}

// Submit queues fn and returns its handle. It never blocks: when the pool is
// closed or its queue is full the returned task has already finished as
// canceled, with ErrPoolClosed or ErrQueueFull as its Err.
func (p *Pool) Submit(name string, fn TaskFunc) *Task {
	t := newTask(p.ctx, name, fn)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		t.reject(ErrPoolClosed)
		return t
	}
	select {
	case p.queue <- t:
	default:
		logger.Get().Warn("executor queue full, rejecting task", zap.String("name", name))
		t.reject(ErrQueueFull)
	}
	return t
}

// ScheduleAfter runs fn on its own goroutine once delay has elapsed.
func (p *Pool) ScheduleAfter(delay time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(delay, fn)
}

// Close cancels every outstanding task and stops the workers. Tasks still
// queued finish as canceled without running.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel(ErrPoolClosed)
	close(p.quit)
	p.wg.Wait()

	for {
		select {
		case t := <-p.queue:
			t.run()
		default:
			logger.Get().Info("executor stopped")
			return
		}
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case t := <-p.queue:
			t.run()
		}
	}
}
