package world

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// WorkerPool offloads blocking collaborator calls (persistence loads
// and saves) off the dispatcher goroutine, reposting the result back
// onto it once the call returns (§5 "Suspension points": dispatcher
// tasks must not block on I/O).
type WorkerPool struct {
	dispatcher *Dispatcher
	sem        *semaphore.Weighted
}

// NewWorkerPool bounds concurrent blocking jobs to maxConcurrent.
func NewWorkerPool(dispatcher *Dispatcher, maxConcurrent int64) *WorkerPool {
	return &WorkerPool{dispatcher: dispatcher, sem: semaphore.NewWeighted(maxConcurrent)}
}

// Submit runs job on its own goroutine (gated by the pool's
// concurrency limit) and posts onDone back to the dispatcher with
// job's result once it returns.
func (wp *WorkerPool) Submit(ctx context.Context, job func() error, onDone func(error)) {
	if err := wp.sem.Acquire(ctx, 1); err != nil {
		wp.dispatcher.Post(func() { onDone(err) })
		return
	}
	go func() {
		defer wp.sem.Release(1)
		err := job()
		wp.dispatcher.Post(func() { onDone(err) })
	}()
}
