// Package worker runs fire-and-forget side effects (message sends, deletes,
// exchange dispatch) off the command path.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Task is a unit of background work. A returned error is logged by the pool.
type Task func(ctx context.Context) error

// Pool executes tasks with bounded concurrency. Tasks have no result handle
// and are never cancelled once submitted.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
	ctx context.Context
}

// NewPool creates a Pool running at most maxConcurrent tasks at once.
// maxConcurrent defaults to 16 if not positive.
func NewPool(maxConcurrent int64) *Pool {
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}
	return &Pool{
		sem: semaphore.NewWeighted(maxConcurrent),
		ctx: context.Background(),
	}
}

// Go submits fn to run as soon as a slot is free.
func (p *Pool) Go(name string, fn Task) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(name, fn)
	}()
}

// After submits fn to run once d has elapsed.
func (p *Pool) After(d time.Duration, name string, fn Task) {
	if d <= 0 {
		p.Go(name, fn)
		return
	}
	p.wg.Add(1)
	time.AfterFunc(d, func() {
		defer p.wg.Done()
		p.run(name, fn)
	})
}

// Wait blocks until every submitted task, including delayed ones, has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(name string, fn Task) {
	if err := p.sem.Acquire(p.ctx, 1); err != nil {
		slog.Warn("worker: acquire failed", "task", name, "err", err)
		return
	}
	defer p.sem.Release(1)

	if err := safeCall(p.ctx, fn); err != nil {
		slog.Warn("worker: task failed", "task", name, "err", err)
	}
}

func safeCall(ctx context.Context, fn Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}
