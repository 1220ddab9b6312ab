package parallel

import (
	"sync/atomic"
	"testing"
)

func TestPool(t *testing.T) {
	for _, workers := range []int{1, 4, 0} {
		pool := Start(workers)
		if workers > 0 && pool.Workers() != workers {
			t.Fatalf("expected(%d) != actual(%d)", workers, pool.Workers())
		}

		var sum atomic.Int64
		for i := 1; i <= 100; i++ {
			pool.Do(func() { sum.Add(int64(i)) })
		}
		pool.Wait(true)

		if sum.Load() != 5050 {
			t.Fatalf("%d workers: expected(5050) != actual(%d)", workers, sum.Load())
		}
		if pool.Ran() != 100 {
			t.Fatalf("%d workers: expected(100) != actual(%d)", workers, pool.Ran())
		}
		pool.Cancel()
	}
}
