package rpc

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

const defaultMaxWorkers = 10

// workerPool caps concurrent invocations. Admission is unbounded: callers
// beyond the cap wait in Acquire until a slot frees up.
type workerPool struct {
	sem     *semaphore.Weighted
	waiting atomic.Int64
	active  atomic.Int64
}

func newWorkerPool(size int) *workerPool {
	if size < 1 {
		size = 1
	}
	return &workerPool{
		sem: semaphore.NewWeighted(int64(size)),
	}
}

// acquire fails only when ctx ends first
func (p *workerPool) acquire(ctx context.Context) error {
	p.waiting.Add(1)
	defer p.waiting.Add(-1)
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.active.Add(1)
	return nil
}

func (p *workerPool) release() {
	p.active.Add(-1)
	p.sem.Release(1)
}
