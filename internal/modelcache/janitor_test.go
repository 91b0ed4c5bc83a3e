package modelcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func startJanitor(t *testing.T, j *Janitor) (cancel func(), done chan struct{}) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done = make(chan struct{})
	go func() {
		defer close(done)
		j.Run(ctx)
	}()
	// Let Run register its tickers with the mock clock before tests advance it.
	time.Sleep(10 * time.Millisecond)
	return stop, done
}

func TestJanitorEvictsIdleHandles(t *testing.T) {
	mock := clock.NewMock()
	c := NewCache(mock)
	h := &fakeHandle{name: "v1"}
	if _, err := c.GetOrLoad(context.Background(), "v1", loaderOf(h, nil)); err != nil {
		t.Fatal(err)
	}

	j := NewJanitor(c, JanitorConfig{
		SweepInterval:   30 * time.Second,
		EvictionTTL:     10 * time.Minute,
		ReclaimInterval: time.Hour,
	}, mock, nil)
	j.reclaim = func() {}

	cancel, done := startJanitor(t, j)
	defer func() {
		cancel()
		<-done
	}()

	// Several sweeps inside the TTL: handle stays.
	mock.Add(5 * time.Minute)
	waitFor(t, func() bool { return c.Len() == 1 })

	// Past the TTL: the next sweep removes and releases it.
	mock.Add(11 * time.Minute)
	waitFor(t, func() bool { return c.Len() == 0 && h.closed.Load() })
}

func TestJanitorReclaimIndependentOfEviction(t *testing.T) {
	mock := clock.NewMock()
	c := NewCache(mock)

	var reclaims atomic.Int32
	j := NewJanitor(c, JanitorConfig{
		SweepInterval:   time.Hour, // no sweeps during this test
		EvictionTTL:     time.Hour,
		ReclaimInterval: time.Minute,
	}, mock, nil)
	j.reclaim = func() { reclaims.Add(1) }

	cancel, done := startJanitor(t, j)
	defer func() {
		cancel()
		<-done
	}()

	mock.Add(3 * time.Minute)
	waitFor(t, func() bool { return reclaims.Load() >= 3 })
}

func TestJanitorStopsCleanly(t *testing.T) {
	mock := clock.NewMock()
	c := NewCache(mock)
	j := NewJanitor(c, JanitorConfig{}, mock, nil)
	j.reclaim = func() {}

	cancel, done := startJanitor(t, j)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not exit after cancellation")
	}
}

// waitFor polls cond, failing the test if it does not hold within a second.
// The janitor loop runs on its own goroutine, so mock-clock advances are
// observed asynchronously.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
