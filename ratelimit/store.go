// Package ratelimit implements a fixed-window request throttle backed by an
// in-memory store. The store is explicitly constructed and injectable, so
// tests instantiate independent stores instead of sharing process state.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the number of tracked identifiers under sustained
// abusive load. Exceeding it evicts the soonest-to-expire records.
const DefaultCapacity = 10000

// Limit is one logical limit class. Distinct classes (score submission,
// polling, token checks) are different configurations of the same store,
// not different code paths.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
}

// Default limit classes guarding the write-heavy endpoints.
var (
	SubmitLimit = Limit{Name: "submit", Max: 10, Window: time.Minute}
	PollLimit   = Limit{Name: "poll", Max: 120, Window: time.Minute}
	TokenLimit  = Limit{Name: "token", Max: 30, Window: time.Minute}
)

// Result reports a single admission decision. RetryAfter is only set on a
// rejected request and holds the remaining window time.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type record struct {
	count       int
	windowReset time.Time
}

// Store counts requests per identifier in fixed windows. Window rollover is
// lazy: a request arriving after the stored reset time restarts the window,
// so no background sweep is needed. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	records  map[string]*record
	capacity int

	// now is swapped out in tests to simulate time passing.
	now func() time.Time
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		records:  make(map[string]*record),
		capacity: capacity,
		now:      time.Now,
	}
}

// Check admits or rejects one request for the identifier under the given
// limit class. Every call also purges expired records and, if the store has
// grown past its capacity, evicts the soonest-to-expire records until it is
// back under the cap.
func (s *Store) Check(identifier string, limit Limit) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := limit.Name + ":" + identifier

	s.purgeExpired(now)

	rec, ok := s.records[key]
	if !ok || !now.Before(rec.windowReset) {
		if !ok && len(s.records) >= s.capacity {
			s.evictSoonest(len(s.records) - s.capacity + 1)
		}
		s.records[key] = &record{count: 1, windowReset: now.Add(limit.Window)}
		return Result{Allowed: true, Remaining: limit.Max - 1}
	}

	if rec.count >= limit.Max {
		return Result{Allowed: false, Remaining: 0, RetryAfter: rec.windowReset.Sub(now)}
	}

	rec.count++
	return Result{Allowed: true, Remaining: limit.Max - rec.count}
}

// Len reports the number of tracked records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Clear drops every tracked record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*record)
}

func (s *Store) purgeExpired(now time.Time) {
	for key, rec := range s.records {
		if !now.Before(rec.windowReset) {
			delete(s.records, key)
		}
	}
}

// evictSoonest removes the n records closest to expiry. Linear scans are
// fine here: the store size is bounded by capacity.
func (s *Store) evictSoonest(n int) {
	for ; n > 0 && len(s.records) > 0; n-- {
		var victim string
		var soonest time.Time
		for key, rec := range s.records {
			if victim == "" || rec.windowReset.Before(soonest) {
				victim = key
				soonest = rec.windowReset
			}
		}
		delete(s.records, victim)
	}
}
