package concurrency

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLimiterBoundsConcurrency(t *testing.T) {
	l := New(3)
	var current, max int64

	tasks := make([]Task[int], 20)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (int, error) {
			n := atomic.AddInt64(&current, 1)
			for {
				m := atomic.LoadInt64(&max)
				if n <= m || atomic.CompareAndSwapInt64(&max, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&current, -1)
			return 0, nil
		}
	}

	RunAll(context.Background(), l, tasks)

	if max > 3 {
		t.Errorf("observed %d concurrent tasks, limit was 3", max)
	}
}

func TestLimiterFIFOAdmission(t *testing.T) {
	l := New(1)
	var order []int
	ch := make(chan int, 5)

	for i := 0; i < 5; i++ {
		i := i
		go func() {
			l.Go(context.Background(), func(ctx context.Context) error {
				ch <- i
				return nil
			})
		}()
		time.Sleep(2 * time.Millisecond) // ensure submission order
	}

	for i := 0; i < 5; i++ {
		order = append(order, <-ch)
	}
	for i, v := range order {
		if v != i {
			t.Errorf("expected FIFO admission order, got %v", order)
			break
		}
	}
}
