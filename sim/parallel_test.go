package sim

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_VisitsEveryIndexOnce(t *testing.T) {
	for _, tc := range []struct{ threads, n, chunk int }{{1, 10, 3}, {4, 1000, 7}, {16, 5, 100}, {3, 0, 1}, {0, 9, 0}} {
		visits := make([]atomic.Int32, tc.n)
		total := workerPool{threads: tc.threads}.run(tc.n, tc.chunk, func(w, lo, hi int) tally {
			for i := lo; i < hi; i++ {
				visits[i].Add(1)
			}
			return tally{verification: uint64(hi - lo), evaluations: 1}
		})
		assert.Equal(t, uint64(tc.n), total.verification, "%+v", tc)
		for i := range visits {
			assert.Equal(t, int32(1), visits[i].Load(), "%+v index %d", tc, i)
		}
	}
}

func TestForEach(t *testing.T) {
	var sum atomic.Int64
	forEach(8, 100, func(i int) { sum.Add(int64(i)) })
	assert.Equal(t, int64(4950), sum.Load())
}
