// Package ratelimit implements the cold-start limiter and background
// sweeper from spec.md §4.5 "Cold-start path" and §5 "Rate limiting".
package ratelimit

import (
	"sync"
	"time"

	"go.lsp.dev/protocol"
)

const (
	// DefaultMinInterval is the per-URI minimum interval between
	// cold-start loads, per spec.md §4.5.
	DefaultMinInterval = 100 * time.Millisecond

	// sweepInterval is how often the background sweeper runs.
	sweepInterval = time.Minute

	// sweepMaxAge evicts limiter entries older than this, per spec.md §5.
	sweepMaxAge = 5 * time.Minute
)

// Limiter records the last cold-start attempt per URI and denies a new
// attempt within minInterval of the last one.
type Limiter struct {
	minInterval time.Duration

	mu   sync.Mutex
	last map[protocol.DocumentURI]time.Time

	stop chan struct{}
	once sync.Once
}

// New constructs a Limiter and starts its background sweeper. Callers must
// call Close when the server shuts down.
func New(minInterval time.Duration) *Limiter {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	l := &Limiter{
		minInterval: minInterval,
		last:        make(map[protocol.DocumentURI]time.Time),
		stop:        make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow reports whether a cold-start load for uri may proceed now. A denial
// does not reset the recorded timestamp; the clock keeps running from the
// last permitted attempt.
func (l *Limiter) Allow(uri protocol.DocumentURI) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.last[uri]; ok && now.Sub(last) < l.minInterval {
		return false
	}
	l.last[uri] = now
	return true
}

// Close stops the background sweeper.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep(time.Now())
		}
	}
}

func (l *Limiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for uri, last := range l.last {
		if now.Sub(last) > sweepMaxAge {
			delete(l.last, uri)
		}
	}
}

// Len reports the number of tracked URIs, for tests.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}
