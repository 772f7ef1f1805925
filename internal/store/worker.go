package store

// WorkerPool is num_worker_threads fixed worker goroutines, each running
// a single-threaded task queue. It is the Go rendering of spec.md §5's
// cooperative scheduling model: rather than a real OS-thread hop, moving
// work onto a specific worker is a message send-and-wait on that
// worker's channel, which gives the same "at most one goroutine touches
// this shard's state at a time" guarantee without shared mutable state
// guarded by a lock.
type WorkerPool struct {
	workers []*Worker
}

type Worker struct {
	tasks chan func()
}

func NewWorkerPool(n int) *WorkerPool {
	p := &WorkerPool{workers: make([]*Worker, n)}
	for i := range p.workers {
		w := &Worker{tasks: make(chan func(), 64)}
		p.workers[i] = w
		go w.loop()
	}
	return p
}

func (w *Worker) loop() {
	for task := range w.tasks {
		task()
	}
}

// Home returns the worker for home-thread index i mod the pool size.
func (p *WorkerPool) Home(i int) *Worker {
	return p.workers[i%len(p.workers)]
}

func (p *WorkerPool) Size() int {
	return len(p.workers)
}

// Stop closes every worker's queue once all pending tasks have drained.
// Callers must not submit further work after calling Stop.
func (p *WorkerPool) Stop() {
	for _, w := range p.workers {
		// A no-op hop returns only after every task queued ahead of it ran.
		w.Run(func() {})
		close(w.tasks)
	}
}

// Run performs the scoped thread hop: it suspends the calling goroutine,
// runs f on w's worker goroutine, and resumes the caller once f returns
// — the caller is "back on its originating thread" on return, exactly as
// spec.md §5 describes the hop's scope-exit behavior.
func (w *Worker) Run(f func()) {
	done := make(chan struct{})
	w.tasks <- func() {
		f()
		close(done)
	}
	<-done
}
