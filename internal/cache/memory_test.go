package cache

import (
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	m := NewMemoryCache()

	m.Set("k", []byte(`"hello"`), time.Minute)
	got, ok := m.Get("k")
	if !ok {
		t.Fatal("expected hit immediately after Set")
	}
	if string(got) != `"hello"` {
		t.Errorf("got %q", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	m := NewMemoryCache()

	m.Set("k", []byte("v"), 20*time.Millisecond)
	if _, ok := m.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := m.Get("k"); ok {
		t.Error("expected miss after TTL elapsed")
	}
	if m.Len() != 0 {
		t.Errorf("expected timer eviction, %d entries remain", m.Len())
	}
}

func TestMemoryCacheExpiredReadIsMissBeforeTimerFires(t *testing.T) {
	m := NewMemoryCache()

	// Insert an entry whose expiry instant is already in the past by giving
	// it the shortest meaningful TTL, then read without yielding to timers.
	m.Set("k", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, ok := m.Get("k"); ok {
		t.Error("expired entry must read as a miss even if unswept")
	}
}

func TestMemoryCacheOverwriteKeepsNewValue(t *testing.T) {
	m := NewMemoryCache()

	m.Set("k", []byte("old"), 10*time.Millisecond)
	m.Set("k", []byte("new"), time.Minute)

	// The first entry's timer window passes; the overwrite must survive it.
	time.Sleep(50 * time.Millisecond)
	got, ok := m.Get("k")
	if !ok || string(got) != "new" {
		t.Errorf("got %q ok=%v, want new value to survive stale timer", got, ok)
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	m := NewMemoryCache()

	m.Set("k", []byte("v"), time.Minute)
	if !m.Delete("k") {
		t.Error("Delete on present key should report true")
	}
	if m.Delete("k") {
		t.Error("Delete on absent key should report false")
	}
	if _, ok := m.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCacheNonPositiveTTLDeletes(t *testing.T) {
	m := NewMemoryCache()

	m.Set("k", []byte("v"), time.Minute)
	m.Set("k", []byte("v2"), 0)
	if _, ok := m.Get("k"); ok {
		t.Error("zero TTL should drop the entry")
	}
}

func TestMemoryCacheFlush(t *testing.T) {
	m := NewMemoryCache()

	m.Set("a", []byte("1"), time.Minute)
	m.Set("b", []byte("2"), time.Minute)
	m.Flush()
	if m.Len() != 0 {
		t.Errorf("expected empty cache after Flush, got %d entries", m.Len())
	}
}
