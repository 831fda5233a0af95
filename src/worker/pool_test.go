package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xake-build/xake/src/core"
)

func TestMemoisation(t *testing.T) {
	p := NewPool(4)
	target := core.Phony("shared")
	var runs int32
	var wg sync.WaitGroup
	results := make([]Result, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Submit(target, func() Result {
				atomic.AddInt32(&runs, 1)
				return Result{Status: Succeeded}
			})
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 1, runs, "recipe body must run exactly once per target")
	for _, r := range results {
		assert.Equal(t, Succeeded, r.Status)
	}
}

// TestNoDeadlockUnderCapOne exercises the release/reacquire protocol a
// chain of nested `need` calls must follow: with a cap of 1, a target whose
// body itself submits (and waits on) another target must not deadlock.
func TestNoDeadlockUnderCapOne(t *testing.T) {
	p := NewPool(1)
	const depth = 8
	var build func(n int) Result
	build = func(n int) Result {
		target := core.Phony(string(rune('a' + n)))
		return p.Submit(target, func() Result {
			if n == 0 {
				return Result{Status: Succeeded}
			}
			// Simulates a recipe calling need(): release our permit before
			// recursing, then reacquire before returning to "recipe code".
			p.Release()
			inner := build(n - 1)
			p.Acquire()
			return inner
		})
	}
	done := make(chan Result, 1)
	go func() { done <- build(depth) }()
	select {
	case r := <-done:
		assert.Equal(t, Succeeded, r.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("deadlocked")
	}
}
