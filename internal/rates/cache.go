package rates

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// The system quotes exactly one live pair; every conversion routes
// through it directly or as its reciprocal.
const (
	BaseCurrency  = "USD"
	QuoteCurrency = "ARS"

	DefaultTTL = time.Hour
)

// ErrRateUnavailable means the provider failed and no cached rate exists.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// StoredRate is a persisted rate entry, unique per (base, quote).
type StoredRate struct {
	Base      string
	Quote     string
	Rate      decimal.Decimal
	FetchedAt time.Time
	Source    string
}

// Store persists rate entries keyed by currency pair.
type Store interface {
	FindRate(ctx context.Context, base, quote string) (*StoredRate, error)
	UpsertRate(ctx context.Context, base, quote string, rate decimal.Decimal, fetchedAt time.Time, source string) error
}

// RateInfo is the resolved rate handed to callers. IsStale marks a value
// served from cache after a failed refresh.
type RateInfo struct {
	Rate      decimal.Decimal
	FetchedAt time.Time
	IsStale   bool
	Source    string
}

// Cache wraps the store with a TTL policy over the external provider.
// A stale entry triggers a refresh; if the refresh fails the last known
// value is served with IsStale set rather than surfacing the error.
type Cache struct {
	store    Store
	provider Provider
	ttl      time.Duration
	log      *logrus.Logger

	group singleflight.Group
	now   func() time.Time
}

func NewCache(store Store, provider Provider, ttl time.Duration, log *logrus.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: store, provider: provider, ttl: ttl, log: log, now: time.Now}
}

func (c *Cache) GetRate(ctx context.Context, base, quote string) (RateInfo, error) {
	cached, err := c.store.FindRate(ctx, base, quote)
	if err != nil {
		c.log.Warnf("rate lookup failed for %s/%s: %v", base, quote, err)
		cached = nil
	}
	if cached != nil && c.now().Sub(cached.FetchedAt) <= c.ttl {
		return RateInfo{Rate: cached.Rate, FetchedAt: cached.FetchedAt, Source: cached.Source}, nil
	}

	// Concurrent refreshes of the same pair collapse into one provider call.
	v, err, _ := c.group.Do(base+"/"+quote, func() (interface{}, error) {
		return c.refresh(ctx, base, quote)
	})
	if err == nil {
		return v.(RateInfo), nil
	}

	if cached != nil {
		c.log.Warnf("rate refresh failed for %s/%s, serving stale value from %s: %v",
			base, quote, cached.FetchedAt.Format(time.RFC3339), err)
		return RateInfo{Rate: cached.Rate, FetchedAt: cached.FetchedAt, IsStale: true, Source: cached.Source}, nil
	}
	c.log.Errorf("rate refresh failed for %s/%s with no cached fallback: %v", base, quote, err)
	return RateInfo{}, ErrRateUnavailable
}

func (c *Cache) refresh(ctx context.Context, base, quote string) (RateInfo, error) {
	rate, source, err := c.provider.FetchRate(ctx)
	if err != nil {
		return RateInfo{}, err
	}
	fetchedAt := c.now().UTC()
	if err := c.store.UpsertRate(ctx, base, quote, rate, fetchedAt, source); err != nil {
		c.log.Warnf("persist refreshed rate for %s/%s failed: %v", base, quote, err)
	}
	return RateInfo{Rate: rate, FetchedAt: fetchedAt, Source: source}, nil
}

// SaveRate upserts a rate for the pair, stamping fetchedAt with the
// current time.
func (c *Cache) SaveRate(ctx context.Context, base, quote string, rate decimal.Decimal, source string) error {
	return c.store.UpsertRate(ctx, base, quote, rate, c.now().UTC(), source)
}

// Prewarm resolves the live pair once so the first request after startup
// does not pay the provider round trip. Best effort.
func (c *Cache) Prewarm(ctx context.Context) {
	info, err := c.GetRate(ctx, BaseCurrency, QuoteCurrency)
	if err != nil {
		c.log.Warnf("rate cache prewarm failed: %v", err)
		return
	}
	c.log.Infof("rate cache prewarmed: %s/%s = %s (%s)", BaseCurrency, QuoteCurrency, info.Rate, info.Source)
}
