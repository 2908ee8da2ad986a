package service

import (
	"context"
	"sync"
)

// TaskGroup runs fire-and-forget persistence work and lets the owner wait
// for everything it has issued.
type TaskGroup struct {
	wg sync.WaitGroup
}

// Go runs fn on its own goroutine
func (g *TaskGroup) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// Wait blocks until every issued task has returned
func (g *TaskGroup) Wait() {
	g.wg.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() when the context
// ends first; the tasks keep running.
func (g *TaskGroup) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
