package dynamo

import (
	"errors"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
)

// chunkRecorder collects the (start, end) ranges handed to workers.
type chunkRecorder struct {
	mu     sync.Mutex
	chunks [][2]int
}

func (c *chunkRecorder) add(start, end int) {
	c.mu.Lock()
	c.chunks = append(c.chunks, [2]int{start, end})
	c.mu.Unlock()
}

func (c *chunkRecorder) sorted() [][2]int {
	sort.Slice(c.chunks, func(i, j int) bool { return c.chunks[i][0] < c.chunks[j][0] })
	return c.chunks
}

func TestStateClone(t *testing.T) {
	x := State{1, 2, 3}
	c := x.Clone()
	c[0] = 99
	if x[0] != 1 {
		t.Error("clone must not alias the original")
	}
}

func TestStateIsValid(t *testing.T) {
	if !(State{1, -2, 0}).IsValid() {
		t.Error("finite state should be valid")
	}
	if (State{1, math.NaN()}).IsValid() {
		t.Error("NaN should be invalid")
	}
	if (State{math.Inf(-1)}).IsValid() {
		t.Error("Inf should be invalid")
	}
}

func TestStateNormAndSub(t *testing.T) {
	if n := (State{3, 4}).Norm(); math.Abs(n-5) > 1e-15 {
		t.Errorf("norm %v, want 5", n)
	}
	d := State{3, 4}.Sub(State{1, 1})
	if d[0] != 2 || d[1] != 3 {
		t.Errorf("sub mismatch: %v", d)
	}
}

func TestStepErrorUnwraps(t *testing.T) {
	err := &StepError{Time: 1.5, Step: 7, Wrapped: ErrNonConvergence}
	if !errors.Is(err, ErrNonConvergence) {
		t.Error("StepError must unwrap to its cause")
	}
	var target *StepError
	if !errors.As(error(err), &target) || target.Step != 7 {
		t.Error("StepError fields should be reachable via errors.As")
	}
}

func TestParallelForCoversRangeExactlyOnce(t *testing.T) {
	for _, n := range []int{0, 1, 5, 16, 100, 1000} {
		visits := make([]int32, n)
		ParallelFor(n, 4, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&visits[i], 1)
			}
		})
		for i, v := range visits {
			if v != 1 {
				t.Errorf("n=%d index %d visited %d times", n, i, v)
			}
		}
	}
}

func TestParallelForChunksAreDeterministic(t *testing.T) {
	n := 100
	record := func() [][2]int {
		var mu chunkRecorder
		ParallelFor(n, 4, func(start, end int) {
			mu.add(start, end)
		})
		return mu.sorted()
	}

	first := record()
	for i := 0; i < 5; i++ {
		if again := record(); len(again) != len(first) {
			t.Fatalf("chunk count changed: %d != %d", len(again), len(first))
		} else {
			for j := range again {
				if again[j] != first[j] {
					t.Fatalf("chunk %d changed: %v != %v", j, again[j], first[j])
				}
			}
		}
	}
}
