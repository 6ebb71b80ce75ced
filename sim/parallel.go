package sim

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// tally is a worker's share of the verification reduction. Both fields are
// plain sums, so the total does not depend on how work was divided.
type tally struct {
	verification uint64
	evaluations  uint64
}

func (t *tally) add(o tally) {
	t.verification += o.verification
	t.evaluations += o.evaluations
}

// fold records one macroscopic lookup.
func fold[T Float](t *tally, xs XSVector[T]) {
	t.verification += uint64(xs.MaxChannel() + 1)
	t.evaluations++
}

// workerPool is a fixed set of goroutines forked for one parallel region
// and joined before it returns.
type workerPool struct {
	threads int
	pin     bool
}

// run splits [0, n) into chunks that workers claim from a shared cursor
// until none remain, then sums the per-worker tallies. body has no error
// result, so every worker goroutine returns nil and the group is used only
// to fork and join.
func (p workerPool) run(n, chunk int, body func(worker, lo, hi int) tally) tally {
	threads := max(p.threads, 1)
	chunk = max(chunk, 1)
	partials := make([]tally, threads)
	var cursor atomic.Int64
	var g errgroup.Group
	for w := range threads {
		g.Go(func() error {
			if p.pin {
				pinWorker(w)
			}
			var local tally
			for {
				lo := int(cursor.Add(int64(chunk))) - chunk
				if lo >= n {
					break
				}
				local.add(body(w, lo, min(lo+chunk, n)))
			}
			partials[w] = local
			return nil
		})
	}
	_ = g.Wait() // always nil: no worker returns an error

	var total tally
	for _, part := range partials {
		total.add(part)
	}
	return total
}

// forEach calls fn(i) for every i in [0, n) on nThreads goroutines.
func forEach(nThreads, n int, fn func(i int)) {
	workerPool{threads: nThreads}.run(n, 1, func(_, lo, hi int) tally {
		for i := lo; i < hi; i++ {
			fn(i)
		}
		return tally{}
	})
}
