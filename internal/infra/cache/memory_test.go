package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/clock"
)

func TestMemoryStore_TTL(t *testing.T) {
	clk := clock.NewFixed(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewMemoryStore(clk)
	ctx := context.Background()

	ok, _ := s.SetNX(ctx, "k", "1", time.Minute)
	if !ok {
		t.Fatal("first SetNX should store")
	}
	ok, _ = s.SetNX(ctx, "k", "2", time.Minute)
	if ok {
		t.Fatal("second SetNX should be rejected")
	}
	if seen, _ := s.Exists(ctx, "k"); !seen {
		t.Fatal("key should exist")
	}

	clk.Advance(time.Minute)

	if seen, _ := s.Exists(ctx, "k"); seen {
		t.Fatal("key should expire")
	}
	if ok, _ := s.SetNX(ctx, "k", "3", time.Minute); !ok {
		t.Fatal("expired key should be settable")
	}
}

func TestMemoryLocker_Serializes(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "salon-1")
			if err != nil {
				t.Error(err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("critical section entered by %d goroutines at once", maxInside)
	}
}

func TestMemoryLocker_Timeout(t *testing.T) {
	l := NewMemoryLocker()

	unlock, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := l.Lock(ctx, "k"); err != ErrLockTimeout {
		t.Fatalf("want ErrLockTimeout, got %v", err)
	}

	// other keys are independent
	other, err := l.Lock(context.Background(), "other")
	if err != nil {
		t.Fatal(err)
	}
	other()
}
