package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Store holds one token bucket per key. Buckets idle for longer than the
// retention are dropped by Sweep.
type Store struct {
	mu        sync.Mutex
	limiters  map[string]*keyedLimiter
	limit     rate.Limit
	burst     int
	retention time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewStore allows requests per period with bursts up to requests.
func NewStore(requests int, period time.Duration, retention time.Duration) *Store {
	if requests <= 0 {
		requests = 10
	}
	if period <= 0 {
		period = time.Minute
	}

	return &Store{
		limiters:  make(map[string]*keyedLimiter),
		limit:     rate.Every(period / time.Duration(requests)),
		burst:     requests,
		retention: retention,
		stop:      make(chan struct{}),
	}
}

func (s *Store) Limiter(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.limiters[key]; ok {
		v.lastSeen = now
		return v.limiter
	}

	l := rate.NewLimiter(s.limit, s.burst)
	s.limiters[key] = &keyedLimiter{limiter: l, lastSeen: now}
	return l
}

func (s *Store) Burst() int {
	return s.burst
}

func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, v := range s.limiters {
		if now.Sub(v.lastSeen) > s.retention {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// StartCleanup sweeps stale buckets every interval until Close is called.
func (s *Store) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				s.Sweep(now)
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}
