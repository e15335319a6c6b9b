// Package executor dispatches background computations.
//
// Dispatch is fire-and-forget: the caller learns nothing about completion or
// failure. Tasks report their own failures; executors only report what they
// themselves observe (panics, dropped tasks).
package executor

import (
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Executor runs tasks asynchronously.
type Executor interface {
	Dispatch(task func())
}

// Rejecter is implemented by executors that may refuse a task. TryDispatch
// reports whether task was accepted; a rejected task never runs.
type Rejecter interface {
	TryDispatch(task func()) bool
}

// PanicFunc receives a recovered task panic.
type PanicFunc func(r *panics.Recovered)

// Goroutines runs every task on its own goroutine. The zero value is ready to
// use. Panics are recovered and passed to OnPanic (or dropped if nil).
type Goroutines struct {
	OnPanic PanicFunc

	wg conc.WaitGroup
}

var _ Executor = (*Goroutines)(nil)

func (g *Goroutines) Dispatch(task func()) {
	g.wg.Go(func() { run(task, g.OnPanic) })
}

// Wait blocks until every dispatched task has returned.
func (g *Goroutines) Wait() { g.wg.Wait() }

// Default is used when a cache is configured without an executor.
var Default = &Goroutines{}

// Inline runs the task on the dispatching goroutine.
// Background computations then complete before Call returns; handy in tests
// and for CLIs that exit right after a call.
type Inline struct {
	OnPanic PanicFunc
}

var _ Executor = Inline{}

func (i Inline) Dispatch(task func()) { run(task, i.OnPanic) }

// Pool runs tasks on a fixed set of workers fed by a bounded queue.
// When the queue is full the task is dropped and OnDrop is called, so a burst
// of refreshes never blocks callers.
type Pool struct {
	OnDrop  func()
	OnPanic PanicFunc

	q    chan func()
	wg   sync.WaitGroup
	mu   sync.RWMutex
	done bool
}

var (
	_ Executor = (*Pool)(nil)
	_ Rejecter = (*Pool)(nil)
)

func NewPool(workers, qlen int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	p := &Pool{q: make(chan func(), qlen)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for f := range p.q {
				run(f, p.OnPanic)
			}
		}()
	}
	return p
}

func (p *Pool) Dispatch(task func()) { p.TryDispatch(task) }

// TryDispatch queues task, or drops it and calls OnDrop when the queue is
// full or the pool is closed.
func (p *Pool) TryDispatch(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.done {
		p.drop()
		return false
	}
	select {
	case p.q <- task:
		return true
	default:
		p.drop()
		return false
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	close(p.q)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) drop() {
	if p.OnDrop != nil {
		p.OnDrop()
	}
}

func run(task func(), onPanic PanicFunc) {
	var pc panics.Catcher
	pc.Try(task)
	if r := pc.Recovered(); r != nil && onPanic != nil {
		onPanic(r)
	}
}
