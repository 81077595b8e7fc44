package inmemory

import (
	"sync"
	"testing"
	"time"

	storepkg "github.com/sharetube/roomy/internal/store"
	"github.com/sharetube/roomy/internal/store/storetest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (storepkg.Store, func(time.Duration)) {
		clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		return NewStore(WithClock(clock.Now)), clock.Advance
	})
}
