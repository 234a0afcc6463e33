package lru

import (
	"testing"
	"time"
)

func future(d time.Duration) time.Time {
	return time.Now().Add(d)
}

// TestInsertGetRoundTrip verifies a stored value is immediately retrievable.
func TestInsertGetRoundTrip(t *testing.T) {
	s := New[string, string](1024)

	s.Insert("a", "hello", 5, future(time.Minute))

	v, ok := s.Get("a")
	if !ok || v != "hello" {
		t.Fatalf("expected hit with value %q, got (%q, %v)", "hello", v, ok)
	}
}

// TestGetPromotesRecency verifies a Get saves a key from the next eviction.
func TestGetPromotesRecency(t *testing.T) {
	s := New[string, string](10)

	s.Insert("a", "aaaaa", 5, future(time.Minute))
	s.Insert("b", "bbbbb", 5, future(time.Minute))

	// Touch "a" so it is no longer the least-recently-used entry.
	if _, ok := s.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}

	// Inserting "c" must evict "b" (now LRU), not "a".
	s.Insert("c", "ccccc", 5, future(time.Minute))

	if _, ok := s.Get("b"); ok {
		t.Error("expected b to have been evicted")
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("expected a to still be present")
	}
	if _, ok := s.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

// TestOversizeRejected verifies a value larger than the budget is not
// stored, but a previous value under the same key is still evicted and
// returned.
func TestOversizeRejected(t *testing.T) {
	s := New[string, string](10)

	s.Insert("a", "small", 5, future(time.Minute))

	prev, hadPrev := s.Insert("a", "toolarge", 20, future(time.Minute))
	if !hadPrev || prev != "small" {
		t.Fatalf("expected previous value %q, got (%q, %v)", "small", prev, hadPrev)
	}

	if _, ok := s.Get("a"); ok {
		t.Error("expected oversize insert to leave key absent")
	}
	if s.UsedBytes() != 0 {
		t.Errorf("expected 0 used bytes after oversize insert, got %d", s.UsedBytes())
	}
}

// TestExpiryIsStrict verifies an entry whose expiry has already passed is
// treated as expired by Get, Peek, and Contains (strict greater-than gate).
func TestExpiryIsStrict(t *testing.T) {
	s := New[string, string](1024)

	past := time.Now().Add(-time.Millisecond)
	s.Insert("a", "stale", 5, past)

	if _, ok := s.Get("a"); ok {
		t.Error("expected expired entry to be absent from Get")
	}
	if _, ok := s.Peek("a"); ok {
		t.Error("expected expired entry to be absent from Peek")
	}
	if s.Contains("a") {
		t.Error("expected expired entry to be absent from Contains")
	}
}

// TestPeekDoesNotPromote verifies Peek leaves recency order untouched.
func TestPeekDoesNotPromote(t *testing.T) {
	s := New[string, string](10)

	s.Insert("a", "aaaaa", 5, future(time.Minute))
	s.Insert("b", "bbbbb", 5, future(time.Minute))

	if _, ok := s.Peek("a"); !ok {
		t.Fatal("expected a to be present")
	}

	// "a" was only peeked, so it remains the LRU entry and must be evicted.
	s.Insert("c", "ccccc", 5, future(time.Minute))

	if _, ok := s.Get("a"); ok {
		t.Error("expected a to have been evicted despite the peek")
	}
	if _, ok := s.Get("b"); !ok {
		t.Error("expected b to still be present")
	}
}

// TestRemoveReclaimsBytes verifies Remove frees the entry's memory charge.
func TestRemoveReclaimsBytes(t *testing.T) {
	s := New[string, string](10)
	s.Insert("a", "aaaaa", 5, future(time.Minute))

	v, ok := s.Remove("a")
	if !ok || v != "aaaaa" {
		t.Fatalf("expected removed value %q, got (%q, %v)", "aaaaa", v, ok)
	}
	if s.UsedBytes() != 0 {
		t.Errorf("expected 0 used bytes after remove, got %d", s.UsedBytes())
	}
	if s.Contains("a") {
		t.Error("expected a to be gone")
	}
}

// TestClearResetsState verifies Clear drops every entry and usage counter.
func TestClearResetsState(t *testing.T) {
	s := New[string, string](100)
	s.Insert("a", "a", 1, future(time.Minute))
	s.Insert("b", "b", 1, future(time.Minute))

	s.Clear()

	if s.Len() != 0 || s.UsedBytes() != 0 {
		t.Fatalf("expected empty store after clear, got len=%d usedBytes=%d", s.Len(), s.UsedBytes())
	}
}

// TestLenExcludesExpired verifies Len only counts live entries.
func TestLenExcludesExpired(t *testing.T) {
	s := New[string, string](1024)
	s.Insert("a", "a", 1, future(time.Minute))
	s.Insert("b", "b", 1, time.Now().Add(-time.Second))

	if got := s.Len(); got != 1 {
		t.Errorf("expected len 1, got %d", got)
	}
}

// TestExactBudgetFits verifies an entry exactly at the byte budget is
// accepted when the store is otherwise empty.
func TestExactBudgetFits(t *testing.T) {
	s := New[string, string](5)
	s.Insert("a", "aaaaa", 5, future(time.Minute))

	if _, ok := s.Get("a"); !ok {
		t.Error("expected entry exactly at budget to be stored")
	}
}

// TestEvictionFreesEnoughRoom verifies eviction proceeds until the
// incoming entry fits within the budget.
func TestEvictionFreesEnoughRoom(t *testing.T) {
	s := New[string, string](10)
	s.Insert("a", "aa", 2, future(time.Minute))
	s.Insert("b", "bb", 2, future(time.Minute))
	s.Insert("c", "cc", 2, future(time.Minute))

	// A 9-byte entry needs to evict a, b, and c: with only a and b gone,
	// 2 bytes remain used and 2+9 still exceeds the 10-byte budget.
	s.Insert("d", "ddddddddd", 9, future(time.Minute))

	if !s.Contains("d") {
		t.Fatal("expected d to be stored")
	}
	if s.Contains("a") || s.Contains("b") || s.Contains("c") {
		t.Error("expected a, b, and c to have been evicted to make room")
	}
	if s.UsedBytes() != 9 {
		t.Errorf("expected used bytes 9, got %d", s.UsedBytes())
	}
}
