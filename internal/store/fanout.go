package store

import "sync"

// Fanout runs f(0)..f(n-1) concurrently and joins all of them before
// returning, the parallelism primitive spec.md §5 uses for bring-up,
// teardown, and timestamper broadcast. errs[i] holds f(i)'s result.
func Fanout(n int, f func(i int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = f(i)
		}(i)
	}
	wg.Wait()
	return errs
}

// FanoutVoid is Fanout for side-effecting work with no error to report,
// used for the timestamper broadcast in coordinator.go.
func FanoutVoid(n int, f func(i int)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			f(i)
		}(i)
	}
	wg.Wait()
}
