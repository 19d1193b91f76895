// Package world owns the gameworld's single mutable-state writer (C5):
// the dispatcher, its scheduled-task timers, and the spectator
// broadcast fan-out. Sessions never touch world state directly — they
// submit closures here (§4.5, §9 "global dispatcher and game instance").
package world

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is a unit of work the dispatcher executes serially. Tasks never
// block on I/O (§5 "Suspension points") — blocking work is offloaded
// to a worker pool and its result reposted as a new task.
type Task func()

type queuedTask struct {
	fn       Task
	deadline time.Time // zero means "never expires"
}

// TimerHandle cancels a task scheduled with ScheduleAfter.
type TimerHandle struct {
	timer *time.Timer
}

// Cancel stops the timer if it has not already fired. Safe to call
// more than once.
func (h TimerHandle) Cancel() {
	if h.timer != nil {
		h.timer.Stop()
	}
}

// Dispatcher is the single logical writer for all world state. Run
// drains tasks on one goroutine; everything else only ever enqueues.
type Dispatcher struct {
	log    *slog.Logger
	ch     chan queuedTask
	closed chan struct{}
	once   sync.Once
}

// NewDispatcher creates a dispatcher with the given queue depth.
func NewDispatcher(log *slog.Logger, queueDepth int) *Dispatcher {
	return &Dispatcher{
		log:    log,
		ch:     make(chan queuedTask, queueDepth),
		closed: make(chan struct{}),
	}
}

// Post enqueues fn to run in FIFO order relative to every other posted
// task, with no expiry.
func (d *Dispatcher) Post(fn Task) {
	select {
	case d.ch <- queuedTask{fn: fn}:
	case <-d.closed:
	}
}

// PostExpiring enqueues fn but drops it unexecuted if it is still
// queued past deadline when its turn comes — used for opcodes where a
// stale action (look-at, use-item, turn) queued behind a head-of-line
// stall is worse than silently skipping it (§4.5, SPEC_FULL.md open
// question 2).
func (d *Dispatcher) PostExpiring(fn Task, deadline time.Time) {
	select {
	case d.ch <- queuedTask{fn: fn, deadline: deadline}:
	case <-d.closed:
	}
}

// ScheduleAfter runs fn on the dispatcher after dur elapses. The
// returned handle cancels it if it hasn't fired yet (e.g. a
// replacement-login reconnect whose session tore down first, §4.3/§5).
func (d *Dispatcher) ScheduleAfter(dur time.Duration, fn Task) TimerHandle {
	t := time.AfterFunc(dur, func() { d.Post(fn) })
	return TimerHandle{timer: t}
}

// Run drains tasks until ctx is canceled. Call once, typically from
// cmd/gameserver/main.go in its own goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.once.Do(func() { close(d.closed) })
			return
		case qt := <-d.ch:
			if !qt.deadline.IsZero() && time.Now().After(qt.deadline) {
				d.log.Debug("dropping expired dispatcher task")
				continue
			}
			qt.fn()
		}
	}
}
