// Package worker implements the bounded-parallel task executor: a
// semaphore-capped pool of "active recipe" slots plus a per-target
// memoisation table so that two concurrent requests for the same target
// share one execution.
package worker

import (
	"github.com/xake-build/xake/src/cmap"
	"github.com/xake-build/xake/src/core"
)

// ExecStatus is the outcome of executing (or not executing) a target.
type ExecStatus int

// The three outcomes a submitted target can resolve to.
const (
	Succeeded ExecStatus = iota
	Skipped
	JustFile
)

func (s ExecStatus) String() string {
	switch s {
	case Succeeded:
		return "Succeeded"
	case Skipped:
		return "Skipped"
	case JustFile:
		return "JustFile"
	default:
		return "?"
	}
}

// Result is what a submitted target's future resolves to.
type Result struct {
	Status ExecStatus
	Dep    core.Dependency
	Err    error
}

// A Pool is a bounded-concurrency executor with per-target memoisation.
// The zero value is not usable; construct with NewPool.
type Pool struct {
	sem     chan struct{}
	futures *cmap.Map[string, Result]
}

// NewPool constructs a pool that allows up to threads recipes to be
// actively executing their own body at once.
func NewPool(threads int) *Pool {
	if threads <= 0 {
		threads = 1
	}
	return &Pool{
		sem:     make(chan struct{}, threads),
		futures: cmap.New[string, Result](cmap.DefaultShardCount, cmap.StringHasher),
	}
}

// Acquire claims one permit, blocking until one is available. Callers
// release it with Release once they're done running, or before suspending
// on a nested need (see Release's doc comment).
func (p *Pool) Acquire() {
	p.sem <- struct{}{}
}

// Release gives back a permit previously claimed with Acquire. A recipe
// that is about to block waiting on other targets (via need) must call
// Release before blocking and Acquire again once it resumes, so that a
// chain of nested need calls cannot deadlock against the pool's cap.
func (p *Pool) Release() {
	<-p.sem
}

// Submit runs body for target under the pool's concurrency cap, unless
// target is already running or has already completed in this pool's
// lifetime, in which case the caller is handed the same Result that the
// original (or now-complete) execution produced. Two concurrent Submit
// calls for the same target therefore always agree.
func (p *Pool) Submit(target core.Target, body func() Result) Result {
	key := target.String()
	if won, wait := p.futures.Reserve(key); won {
		p.Acquire()
		result := body()
		p.Release()
		p.futures.Set(key, result)
		return result
	} else if wait != nil {
		<-wait
	}
	result, _ := p.futures.Load(key)
	return result
}
