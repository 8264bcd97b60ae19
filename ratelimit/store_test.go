package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

func newTestStore(capacity int) (*Store, *time.Time) {
	s := NewStore(capacity)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }
	return s, &current
}

func TestCheckCountsDownAndRejects(t *testing.T) {
	s, _ := newTestStore(100)
	limit := Limit{Name: "test", Max: 3, Window: time.Minute}

	for i, wantRemaining := range []int{2, 1, 0} {
		result := s.Check("player-1", limit)
		if !result.Allowed {
			t.Fatalf("request %d rejected, expected allowed", i+1)
		}
		if result.Remaining != wantRemaining {
			t.Fatalf("request %d remaining = %d, expected %d", i+1, result.Remaining, wantRemaining)
		}
	}

	result := s.Check("player-1", limit)
	if result.Allowed {
		t.Fatal("fourth request allowed, expected rejection")
	}
	if result.RetryAfter != time.Minute {
		t.Fatalf("RetryAfter = %v, expected the full window", result.RetryAfter)
	}
}

func TestCheckIsolatesIdentifiersAndClasses(t *testing.T) {
	s, _ := newTestStore(100)
	limit := Limit{Name: "submit", Max: 1, Window: time.Minute}
	other := Limit{Name: "poll", Max: 1, Window: time.Minute}

	if !s.Check("player-1", limit).Allowed {
		t.Fatal("first request rejected")
	}
	if s.Check("player-1", limit).Allowed {
		t.Fatal("player-1 exceeded its quota but was allowed")
	}
	if !s.Check("player-2", limit).Allowed {
		t.Fatal("player-2 throttled by player-1's usage")
	}
	if !s.Check("player-1", other).Allowed {
		t.Fatal("poll class throttled by submit class usage")
	}
}

func TestCheckWindowRollover(t *testing.T) {
	s, current := newTestStore(100)
	limit := Limit{Name: "test", Max: 1, Window: time.Minute}

	if !s.Check("player-1", limit).Allowed {
		t.Fatal("first request rejected")
	}
	if s.Check("player-1", limit).Allowed {
		t.Fatal("second request in the same window allowed")
	}

	*current = current.Add(time.Minute)

	result := s.Check("player-1", limit)
	if !result.Allowed {
		t.Fatal("request after window expiry rejected")
	}
	if result.Remaining != 0 {
		t.Fatalf("rolled-over window remaining = %d, expected 0", result.Remaining)
	}
}

func TestCheckPurgesExpiredRecords(t *testing.T) {
	s, current := newTestStore(100)
	limit := Limit{Name: "test", Max: 5, Window: time.Minute}

	for i := 0; i < 10; i++ {
		s.Check(fmt.Sprintf("player-%d", i), limit)
	}
	if s.Len() != 10 {
		t.Fatalf("expected 10 tracked records, got %d", s.Len())
	}

	*current = current.Add(2 * time.Minute)

	s.Check("fresh", limit)
	if s.Len() != 1 {
		t.Fatalf("expected expired records purged down to 1, got %d", s.Len())
	}
}

func TestCheckEvictsSoonestToExpireAtCapacity(t *testing.T) {
	s, current := newTestStore(3)
	limit := Limit{Name: "test", Max: 5, Window: time.Minute}

	// Stagger the windows so "player-0" expires first.
	for i := 0; i < 3; i++ {
		s.Check(fmt.Sprintf("player-%d", i), limit)
		*current = current.Add(time.Second)
	}
	if s.Len() != 3 {
		t.Fatalf("expected store at capacity 3, got %d", s.Len())
	}

	s.Check("player-3", limit)
	if s.Len() != 3 {
		t.Fatalf("expected store to stay at capacity 3, got %d", s.Len())
	}

	// player-0's window was evicted, so its next request starts fresh.
	result := s.Check("player-0", limit)
	if result.Remaining != limit.Max-1 {
		t.Fatalf("expected evicted identifier to restart its window, remaining = %d", result.Remaining)
	}
	// player-2 kept its original count.
	if got := s.Check("player-2", limit).Remaining; got != limit.Max-2 {
		t.Fatalf("expected surviving identifier to keep its count, remaining = %d", got)
	}
}

func TestClear(t *testing.T) {
	s, _ := newTestStore(100)
	limit := Limit{Name: "test", Max: 5, Window: time.Minute}

	s.Check("player-1", limit)
	s.Check("player-2", limit)
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected empty store after Clear, got %d records", s.Len())
	}
}
