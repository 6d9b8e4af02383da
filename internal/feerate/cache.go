package feerate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/polybridge/clob-bridge/pkg/cache"
	"github.com/polybridge/clob-bridge/pkg/types"
)

// Entry is a cached fee rate for one instrument. Entries are owned by the
// cache; Resolve hands out the bps value by copy, never the entry itself.
type Entry struct {
	TokenID    string
	FeeRateBps int
	FetchedAt  time.Time
}

// CachedClient resolves fee rates with caching and fetch coalescing.
// Fee rates change rarely, so entries have no expiry unless a TTL is set.
type CachedClient struct {
	fetcher Fetcher
	cache   cache.Cache
	ttl     time.Duration
	group   singleflight.Group
	logger  *zap.Logger
}

// NewCachedClient creates a cached fee rate resolver. A zero ttl means
// entries never expire within the process lifetime.
func NewCachedClient(fetcher Fetcher, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedClient {
	return &CachedClient{
		fetcher: fetcher,
		cache:   c,
		ttl:     ttl,
		logger:  logger,
	}
}

// Resolve returns the taker fee rate for tokenID.
//
// If override is non-nil the caller already knows the rate: it is returned
// as-is without touching the cache. Otherwise the cache is consulted, and on
// a miss exactly one fetch per token is issued; concurrent callers for the
// same token await that single in-flight fetch. A failed fetch fails the
// resolve call with FeeRateUnavailableError: zero is never substituted.
func (c *CachedClient) Resolve(ctx context.Context, tokenID string, override *int) (int, error) {
	if override != nil {
		c.logger.Debug("fee-rate-override",
			zap.String("token-id", tokenID),
			zap.Int("fee-rate-bps", *override))
		return *override, nil
	}

	if tokenID == "" {
		return 0, &types.FeeRateUnavailableError{
			TokenID: tokenID,
			Cause:   fmt.Errorf("empty token id"),
		}
	}

	if bps, ok := c.lookup(tokenID); ok {
		return bps, nil
	}

	v, err, shared := c.group.Do(tokenID, func() (interface{}, error) {
		// A caller that lost the singleflight race may enter here after the
		// winner already populated the cache.
		if bps, ok := c.lookup(tokenID); ok {
			return bps, nil
		}

		bps, err := c.fetcher.FetchFeeRate(ctx, tokenID)
		if err != nil {
			FetchErrorsTotal.Inc()
			return 0, &types.FeeRateUnavailableError{TokenID: tokenID, Cause: err}
		}
		FetchesTotal.Inc()

		c.store(tokenID, bps)

		c.logger.Debug("fee-rate-fetched",
			zap.String("token-id", tokenID),
			zap.Int("fee-rate-bps", bps))

		return bps, nil
	})
	if err != nil {
		return 0, err
	}

	if shared {
		CoalescedWaitsTotal.Inc()
	}

	return v.(int), nil
}

func (c *CachedClient) lookup(tokenID string) (int, bool) {
	cached, ok := c.cache.Get(cacheKey(tokenID))
	if !ok {
		return 0, false
	}

	entry, ok := cached.(*Entry)
	if !ok {
		return 0, false
	}

	return entry.FeeRateBps, true
}

func (c *CachedClient) store(tokenID string, bps int) {
	entry := &Entry{
		TokenID:    tokenID,
		FeeRateBps: bps,
		FetchedAt:  time.Now(),
	}
	c.cache.Set(cacheKey(tokenID), entry, c.ttl)

	// Ristretto applies writes asynchronously. Flush so the next resolve
	// for this token hits the cache instead of fetching again.
	if w, ok := c.cache.(interface{ Wait() }); ok {
		w.Wait()
	}
}

func cacheKey(tokenID string) string {
	return "feerate:" + tokenID
}
