package store

import (
	"sync"
	"testing"
)

// TestWorkerPool_HomeIsStableAndRoundRobin mirrors spec.md §5's pinning
// requirement: the same home-thread index always maps to the same
// worker, and distinct indices spread across the pool round robin.
func TestWorkerPool_HomeIsStableAndRoundRobin(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Stop()

	if pool.Home(0) != pool.Home(0) {
		t.Fatal("Home(0) returned different workers on repeated calls")
	}
	if pool.Home(1) != pool.Home(4) {
		t.Fatal("Home(1) and Home(4) should round-robin to the same worker in a pool of 3")
	}
	if pool.Home(0) == pool.Home(1) {
		t.Fatal("Home(0) and Home(1) should map to different workers in a pool of 3")
	}
}

// TestWorker_RunIsSequentialPerWorker checks the single-threaded-queue
// guarantee: concurrent Run calls against the same worker never overlap.
func TestWorker_RunIsSequentialPerWorker(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Stop()
	w := pool.Home(0)

	var mu sync.Mutex
	var active, maxActive int
	var wg sync.WaitGroup
	const n = 20
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			w.Run(func() {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("observed %d tasks running concurrently on one worker, want at most 1", maxActive)
	}
}

// TestWorker_RunBlocksUntilComplete checks Run's scope-exit contract:
// the caller only resumes once f has actually returned.
func TestWorker_RunBlocksUntilComplete(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Stop()
	w := pool.Home(0)

	ran := false
	w.Run(func() {
		ran = true
	})
	if !ran {
		t.Fatal("Run() returned before f ran")
	}
}
