package world

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), 64)
}

func runDispatcher(t *testing.T, d *Dispatcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestDispatcherPostRunsInFIFOOrder(t *testing.T) {
	d := newTestDispatcher()
	runDispatcher(t, d)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		i := i
		d.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("tasks ran out of FIFO order: %v", order)
		}
	}
}

func TestDispatcherScheduleAfterFires(t *testing.T) {
	d := newTestDispatcher()
	runDispatcher(t, d)

	fired := make(chan struct{})
	d.ScheduleAfter(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled task never fired")
	}
}

func TestDispatcherScheduleAfterCanceledNeverFires(t *testing.T) {
	d := newTestDispatcher()
	runDispatcher(t, d)

	fired := make(chan struct{})
	handle := d.ScheduleAfter(30*time.Millisecond, func() { close(fired) })
	handle.Cancel()

	select {
	case <-fired:
		t.Fatal("canceled task fired anyway")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherPostExpiringDropsStaleTask(t *testing.T) {
	d := newTestDispatcher()

	ran := make(chan struct{}, 1)
	// Queue the expiring task before Run starts draining, with a
	// deadline already in the past by the time it's popped.
	d.PostExpiring(func() { ran <- struct{}{} }, time.Now().Add(-time.Minute))

	runDispatcher(t, d)

	// Give the dispatcher a moment to pop and evaluate the task.
	select {
	case <-ran:
		t.Fatal("expired task ran")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherCancelDoubleCallSafe(t *testing.T) {
	d := newTestDispatcher()
	runDispatcher(t, d)

	handle := d.ScheduleAfter(time.Hour, func() {})
	handle.Cancel()
	handle.Cancel() // must not panic
}

func TestDispatcherZeroValueTimerHandleCancelSafe(t *testing.T) {
	var handle TimerHandle
	handle.Cancel() // must not panic on a never-scheduled handle
}
