package store

import (
	"fmt"
	"sync"
	"time"

	"taskdeck/internal/domain"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{t: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type recordingPersister struct {
	mu    sync.Mutex
	saves []domain.State
}

func (r *recordingPersister) Save(state domain.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, state)
}

func (r *recordingPersister) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recordingPersister) last() domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves[len(r.saves)-1]
}

var baseTime = time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC)

func newTestStore(opts ...Option) (*Store, *testClock) {
	clock := newTestClock(baseTime)
	all := append([]Option{WithClock(clock.Now), WithIDGenerator(sequentialIDs())}, opts...)
	return New(all...), clock
}
