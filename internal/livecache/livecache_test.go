package livecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/oracle/memoracle"
	"github.com/discochess/coach/internal/stats"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestFingerprint(t *testing.T) {
	a := Fingerprint("alice", "e2e4", startFEN, 14, 8)
	if len(a) != 40 {
		t.Fatalf("Fingerprint() length = %d, want 40", len(a))
	}
	if b := Fingerprint("alice", "e2e4", startFEN, 14, 8); a != b {
		t.Error("Fingerprint() not deterministic")
	}

	variants := []string{
		Fingerprint("bob", "e2e4", startFEN, 14, 8),
		Fingerprint("alice", "d2d4", startFEN, 14, 8),
		Fingerprint("alice", "e2e4", startFEN, 12, 8),
		Fingerprint("alice", "e2e4", startFEN, 14, 6),
	}
	for i, v := range variants {
		if v == a {
			t.Errorf("variant %d collides with base fingerprint", i)
		}
	}
}

func TestGetOrComputeCachesSuccess(t *testing.T) {
	rec := stats.NewRecorder()
	c, err := NewLRU[int](DefaultCapacity, rec)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	v, cached, err := c.GetOrCompute(context.Background(), "k", compute)
	if err != nil || v != 42 || cached {
		t.Fatalf("first GetOrCompute() = %d, %v, %v", v, cached, err)
	}
	v, cached, err = c.GetOrCompute(context.Background(), "k", compute)
	if err != nil || v != 42 || !cached {
		t.Fatalf("second GetOrCompute() = %d, %v, %v", v, cached, err)
	}

	if calls != 1 {
		t.Errorf("compute calls = %d, want 1", calls)
	}
	if got := rec.Counter(stats.MetricCacheHits); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
	if got := rec.Counter(stats.MetricCacheMisses); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if got := rec.Gauge(stats.MetricCacheSize); got != 1 {
		t.Errorf("size gauge = %d, want 1", got)
	}
}

func TestGetOrComputeDoesNotStoreFailures(t *testing.T) {
	c, err := NewLRU[string](4, nil)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}

	boom := errors.New("boom")
	_, _, err = c.GetOrCompute(context.Background(), "k", func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("GetOrCompute() error = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after failure, want 0", c.Len())
	}

	v, cached, err := c.GetOrCompute(context.Background(), "k", func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || v != "ok" || cached {
		t.Errorf("retry GetOrCompute() = %q, %v, %v", v, cached, err)
	}
}

func TestGetOrComputeEvicts(t *testing.T) {
	c, err := NewLRU[int](2, nil)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}
	for i, k := range []string{"a", "b", "c"} {
		if _, _, err := c.GetOrCompute(context.Background(), k, func(context.Context) (int, error) {
			return i, nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) hit, want evicted")
	}
}

func TestGetOrComputeThroughGuardIsIdempotent(t *testing.T) {
	engine := memoracle.New(memoracle.Material)
	guard := oracle.NewGuard(engine)
	defer guard.Close()

	c, err := NewLRU[int](DefaultCapacity, nil)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}
	key := Fingerprint("alice", "e2e4", startFEN, 14, 8)

	compute := func(ctx context.Context) (int, error) {
		var score int
		err := guard.Do(ctx, func(ev *oracle.Evaluator) error {
			var err error
			score, err = ev.Evaluate(ctx, startFEN, oracle.Depth(14))
			return err
		})
		return score, err
	}

	var (
		wg     sync.WaitGroup
		misses atomic.Int64
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, cached, err := c.GetOrCompute(context.Background(), key, compute)
			if err != nil {
				t.Errorf("GetOrCompute() error = %v", err)
			}
			if !cached {
				misses.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := engine.Calls(); got != 1 {
		t.Errorf("engine calls = %d, want 1", got)
	}
	if misses.Load() < 1 {
		t.Error("no caller computed the value")
	}
}

func TestGetOrComputeWaiterSurvivesLeaderCancel(t *testing.T) {
	c, err := NewLRU[int](4, nil)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	started := make(chan struct{})
	compute := func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 42, nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, _, err := c.GetOrCompute(leaderCtx, "k", compute)
		leaderErr <- err
	}()
	<-started

	waiter := make(chan int, 1)
	go func() {
		v, _, err := c.GetOrCompute(context.Background(), "k", compute)
		if err != nil {
			t.Errorf("waiter GetOrCompute() error = %v", err)
		}
		waiter <- v
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("leader error = %v, want context.Canceled", err)
	}
	if v := <-waiter; v != 42 {
		t.Errorf("waiter value = %d, want 42", v)
	}
	if v, ok := c.Get("k"); !ok || v != 42 {
		t.Errorf("Get() = %d, %v; want 42, true", v, ok)
	}
}
