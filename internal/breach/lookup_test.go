package breach

import (
	"context"
	"errors"
	"testing"
	"time"

	"privacyguard/internal/cache"
	"privacyguard/internal/config"
)

type fakeCounter struct {
	count int
	err   error
	calls int
}

func (f *fakeCounter) CountForDomain(ctx context.Context, domain string) (int, error) {
	f.calls++
	return f.count, f.err
}

func (f *fakeCounter) CountForEmail(ctx context.Context, email string) (int, error) {
	f.calls++
	return f.count, f.err
}

func newTestLookup(counter Counter) *Lookup {
	return NewLookup(counter, cache.New(nil), &config.BreachConfig{
		SuccessTTL: time.Hour,
		FailureTTL: time.Minute,
	})
}

func TestDomainCountCachedAfterFirstFetch(t *testing.T) {
	counter := &fakeCounter{count: 4}
	l := newTestLookup(counter)
	ctx := context.Background()

	if got := l.DomainCountOrZero(ctx, "example.com"); got != 4 {
		t.Fatalf("first lookup = %d, want 4", got)
	}
	if got := l.DomainCountOrZero(ctx, "example.com"); got != 4 {
		t.Fatalf("second lookup = %d, want 4", got)
	}
	if counter.calls != 1 {
		t.Errorf("upstream called %d times, want 1", counter.calls)
	}
}

func TestEmptyDomainSkipsEverything(t *testing.T) {
	counter := &fakeCounter{count: 9}
	l := newTestLookup(counter)

	if got := l.DomainCountOrZero(context.Background(), ""); got != 0 {
		t.Errorf("empty domain = %d, want 0", got)
	}
	if counter.calls != 0 {
		t.Errorf("upstream called %d times for empty domain, want 0", counter.calls)
	}
}

func TestFailureDegradesToZeroAndCaches(t *testing.T) {
	counter := &fakeCounter{err: errors.New("upstream down")}
	l := newTestLookup(counter)
	ctx := context.Background()

	if got := l.DomainCountOrZero(ctx, "down.example"); got != 0 {
		t.Fatalf("failed lookup = %d, want 0", got)
	}
	// The zero is cached; the dead upstream is not hit again.
	if got := l.DomainCountOrZero(ctx, "down.example"); got != 0 {
		t.Fatalf("cached failure = %d, want 0", got)
	}
	if counter.calls != 1 {
		t.Errorf("upstream called %d times, want 1 (failure must be cached)", counter.calls)
	}
}

func TestInternalErrorPathStaysVisible(t *testing.T) {
	counter := &fakeCounter{err: errors.New("boom")}
	l := newTestLookup(counter)

	if _, err := l.domainCount(context.Background(), "x.example"); err == nil {
		t.Error("domainCount must surface the upstream error; only the adapter degrades")
	}
}

func TestEmailCountKeyedByDigest(t *testing.T) {
	counter := &fakeCounter{count: 2}
	l := newTestLookup(counter)
	ctx := context.Background()

	if got := l.EmailCountOrZero(ctx, "user@example.com", "digest-1"); got != 2 {
		t.Fatalf("first scan = %d, want 2", got)
	}
	if got := l.EmailCountOrZero(ctx, "user@example.com", "digest-1"); got != 2 {
		t.Fatalf("cached scan = %d, want 2", got)
	}
	if counter.calls != 1 {
		t.Errorf("upstream called %d times, want 1", counter.calls)
	}

	// Missing digest means no safe cache key: short-circuit.
	if got := l.EmailCountOrZero(ctx, "user@example.com", ""); got != 0 {
		t.Errorf("digestless scan = %d, want 0", got)
	}
}
