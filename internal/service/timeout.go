package service

import (
	"time"

	"github.com/windoze95/saltybytes-recipefeed/internal/executor"
	"github.com/windoze95/saltybytes-recipefeed/internal/logger"
	"go.uber.org/zap"
)

// Scheduler runs a callback after a delay, independently of the workers that
// execute tasks.
type Scheduler interface {
	ScheduleAfter(delay time.Duration, fn func()) *time.Timer
}

// TimeoutGuard enforces one fixed deadline on every task it arms.
type TimeoutGuard struct {
	Timeout   time.Duration
	Scheduler Scheduler
}

// NewTimeoutGuard creates a TimeoutGuard.
func NewTimeoutGuard(timeout time.Duration, scheduler Scheduler) *TimeoutGuard {
	return &TimeoutGuard{Timeout: timeout, Scheduler: scheduler}
}

// Arm schedules the task's deadline. When it fires on a task that has not
// finished, onExpire runs and the task is then canceled with
// executor.ErrTimedOut, aborting its in-flight request. The timer is not
// stopped when the task finishes; firing on a finished task does nothing.
func (g *TimeoutGuard) Arm(task *executor.Task, onExpire func()) *time.Timer {
	return g.Scheduler.ScheduleAfter(g.Timeout, func() {
		if task.Expire(onExpire) {
			logger.ForTask(task.Name, task.ID.String()).Warn("request timed out",
				zap.Duration("timeout", g.Timeout),
			)
		}
	})
}
