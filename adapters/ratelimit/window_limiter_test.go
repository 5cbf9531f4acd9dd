package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/layer-3/tipgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestWindowLimiter_LimitPerIdentity(t *testing.T) {
	c := newClock()
	l := NewWindowLimiter(5, 60*time.Second, 100, WithClock(c.Now))

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Admit("I"), "request %d", i+1)
		c.Advance(time.Second)
	}

	err := l.Admit("I")
	require.ErrorIs(t, err, core.ErrRateLimited)

	var rlErr *core.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 55*time.Second, rlErr.RetryAfter)

	assert.NoError(t, l.Admit("J"))
}

func TestWindowLimiter_ResetsAfterWindow(t *testing.T) {
	c := newClock()
	l := NewWindowLimiter(2, time.Minute, 100, WithClock(c.Now))

	require.NoError(t, l.Admit("I"))
	require.NoError(t, l.Admit("I"))
	require.Error(t, l.Admit("I"))

	c.Advance(time.Minute)
	assert.NoError(t, l.Admit("I"))
	assert.NoError(t, l.Admit("I"))
	assert.Error(t, l.Admit("I"))
}

func TestWindowLimiter_TableIsBounded(t *testing.T) {
	c := newClock()
	l := NewWindowLimiter(1, time.Minute, 2, WithClock(c.Now))

	require.NoError(t, l.Admit("a"))
	require.NoError(t, l.Admit("b"))
	require.NoError(t, l.Admit("c"))
	assert.Equal(t, 2, l.(*WindowLimiter).Len())

	// "a" was evicted, so it starts a fresh window.
	assert.NoError(t, l.Admit("a"))
	// "c" is still tracked.
	assert.Error(t, l.Admit("c"))
}

func TestWindowLimiter_ConcurrentAdmits(t *testing.T) {
	l := NewWindowLimiter(50, time.Hour, 10)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("I") == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, admitted)
}

func TestNewWindowLimiter_Defaults(t *testing.T) {
	l := NewWindowLimiter(0, 0, 0).(*WindowLimiter)
	assert.Equal(t, DefaultLimit, l.limit)
	assert.Equal(t, DefaultWindow, l.window)
}
