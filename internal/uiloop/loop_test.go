package uiloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l, cancel
}

func TestPostRunsInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	var snapshot []int
	_ = l.Do(context.Background(), func() { snapshot = append(snapshot, got...) })
	if len(snapshot) != 100 {
		t.Fatalf("ran %d tasks, want 100", len(snapshot))
	}
	for i, v := range snapshot {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestConcurrentPostersNeverOverlap(t *testing.T) {
	l, _ := startLoop(t)

	var (
		inFlight int
		overlaps int
		total    int
		wg       sync.WaitGroup
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Post(func() {
					inFlight++
					if inFlight > 1 {
						overlaps++
					}
					total++
					inFlight--
				})
			}
		}()
	}
	wg.Wait()

	var gotTotal, gotOverlaps int
	if err := l.Do(context.Background(), func() { gotTotal, gotOverlaps = total, overlaps }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotTotal != 400 || gotOverlaps != 0 {
		t.Fatalf("total=%d overlaps=%d, want 400 and 0", gotTotal, gotOverlaps)
	}
}

func TestOwnership(t *testing.T) {
	l, _ := startLoop(t)

	if l.OnLoop() {
		t.Fatalf("OnLoop() true while idle")
	}

	var owned bool
	_ = l.Do(context.Background(), func() {
		defer func() { owned = recover() == nil }()
		l.MustOwn()
	})
	if !owned {
		t.Fatalf("MustOwn panicked on the loop")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("MustOwn did not panic off the loop")
		}
	}()
	l.MustOwn()
}

func TestPanicDoesNotKillLoop(t *testing.T) {
	l, _ := startLoop(t)

	l.Post(func() { panic("boom") })
	ran := false
	if err := l.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !ran {
		t.Fatalf("loop stopped after a panicking task")
	}
}

func TestDoAfterStop(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop")
	}

	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("Do after stop = %v, want ErrStopped", err)
	}
	l.Post(func() { t.Errorf("posted work ran after stop") })
}

func TestDoHonorsContext(t *testing.T) {
	l := New(nil) // never started
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do = %v, want deadline exceeded", err)
	}
}
