package ratelimit

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
)

const (
	DefaultLimit     = 5
	DefaultWindow    = time.Minute
	DefaultTableSize = 10000
)

type counter struct {
	start time.Time
	count int
}

// WindowLimiter is a fixed-window counter per identity held in a bounded
// LRU table: once the table is full the least recently seen identity is
// evicted. State lives for one serving process only, so with N instances
// the effective global limit is limit*N.
type WindowLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	table lru.BasicLRU[string, *counter]
}

// Option configures a WindowLimiter
type Option func(*WindowLimiter)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(l *WindowLimiter) {
		l.now = now
	}
}

// NewWindowLimiter admits at most limit requests per identity per window,
// tracking at most tableSize identities.
func NewWindowLimiter(limit int, window time.Duration, tableSize int, opts ...Option) ports.RateLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if tableSize <= 0 {
		tableSize = DefaultTableSize
	}

	l := &WindowLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		table:  lru.NewBasicLRU[string, *counter](tableSize),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit increments the identity's counter for the current window and
// rejects once the count exceeds the limit.
func (l *WindowLimiter) Admit(identity string) error {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.table.Get(identity)
	if !ok || now.Sub(w.start) >= l.window {
		w = &counter{start: now}
		l.table.Add(identity, w)
	}

	w.count++
	if w.count > l.limit {
		return &core.RateLimitError{RetryAfter: w.start.Add(l.window).Sub(now)}
	}
	return nil
}

// Len returns the number of identities currently tracked
func (l *WindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.Len()
}
