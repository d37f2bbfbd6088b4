package breach

import (
	"context"
	"time"

	"go.uber.org/zap"

	"privacyguard/internal/cache"
	"privacyguard/internal/config"
	"privacyguard/internal/util"
)

const (
	domainKeyPrefix = "breach:domain:"
	emailKeyPrefix  = "breach:email:"
)

// Counter is the upstream the lookup reads through. Satisfied by *Client.
type Counter interface {
	CountForDomain(ctx context.Context, domain string) (int, error)
	CountForEmail(ctx context.Context, email string) (int, error)
}

// Lookup is the cached breach-count service. Successful answers cache for
// SuccessTTL (24h default); failures cache a zero for FailureTTL (1h default)
// so a dead upstream is not hammered.
type Lookup struct {
	counter    Counter
	cache      *cache.Cache
	successTTL time.Duration
	failureTTL time.Duration
}

func NewLookup(counter Counter, c *cache.Cache, cfg *config.BreachConfig) *Lookup {
	return &Lookup{
		counter:    counter,
		cache:      c,
		successTTL: cfg.SuccessTTL,
		failureTTL: cfg.FailureTTL,
	}
}

// DomainCountOrZero is the degrade-to-zero adapter around domainCount: any
// lookup error becomes a zero count, observable only in the log. An empty
// domain short-circuits without touching cache or network.
func (l *Lookup) DomainCountOrZero(ctx context.Context, domain string) int {
	if domain == "" {
		return 0
	}

	count, err := l.domainCount(ctx, domain)
	if err != nil {
		util.Warn("Breach lookup degraded to zero",
			zap.String("domain", domain),
			zap.Error(err))
		return 0
	}
	return count
}

// domainCount carries the real error so the degrade policy stays visible at
// the adapter instead of buried in the fetch path.
func (l *Lookup) domainCount(ctx context.Context, domain string) (int, error) {
	key := domainKeyPrefix + domain

	var cached int
	if l.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	count, err := l.counter.CountForDomain(ctx, domain)
	if err != nil {
		// Cache the miss briefly so the upstream gets a breather.
		l.cache.Set(ctx, key, 0, l.failureTTL)
		return 0, err
	}

	l.cache.Set(ctx, key, count, l.successTTL)
	util.Debug("Breach count fetched",
		zap.String("domain", domain),
		zap.Int("count", count))
	return count, nil
}

// EmailCountOrZero looks up breaches for an email address, caching under the
// caller-supplied digest so raw addresses never become cache keys.
func (l *Lookup) EmailCountOrZero(ctx context.Context, email, digest string) int {
	if email == "" || digest == "" {
		return 0
	}

	key := emailKeyPrefix + digest

	var cached int
	if l.cache.Get(ctx, key, &cached) {
		return cached
	}

	count, err := l.counter.CountForEmail(ctx, email)
	if err != nil {
		l.cache.Set(ctx, key, 0, l.failureTTL)
		util.Warn("Email breach lookup degraded to zero",
			zap.String("email_digest", digest),
			zap.Error(err))
		return 0
	}

	l.cache.Set(ctx, key, count, l.successTTL)
	return count
}
