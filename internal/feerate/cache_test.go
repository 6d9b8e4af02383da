package feerate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/pkg/cache"
	"github.com/polybridge/clob-bridge/pkg/types"
)

// countingFetcher counts fetches and can be made to fail or block.
type countingFetcher struct {
	mu      sync.Mutex
	fetches int32
	rate    int
	err     error
	delay   time.Duration
}

func (f *countingFetcher) FetchFeeRate(ctx context.Context, tokenID string) (int, error) {
	atomic.AddInt32(&f.fetches, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.rate, nil
}

func (f *countingFetcher) count() int32 {
	return atomic.LoadInt32(&f.fetches)
}

func newTestCachedClient(t *testing.T, fetcher Fetcher, ttl time.Duration) *CachedClient {
	t.Helper()

	c, err := cache.NewRistrettoCache(cache.DefaultRistrettoConfig(zap.NewNop()))
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(c.Close)

	return NewCachedClient(fetcher, c, ttl, zap.NewNop())
}

func TestCachedClient_SecondResolveHitsCache(t *testing.T) {
	fetcher := &countingFetcher{rate: 25}
	client := newTestCachedClient(t, fetcher, 0)
	ctx := context.Background()

	bps, err := client.Resolve(ctx, "token-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bps != 25 {
		t.Errorf("expected 25, got %d", bps)
	}

	bps, err = client.Resolve(ctx, "token-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bps != 25 {
		t.Errorf("expected 25, got %d", bps)
	}

	if fetcher.count() != 1 {
		t.Errorf("expected exactly one fetch for two resolves, got %d", fetcher.count())
	}
}

func TestCachedClient_ConcurrentResolvesCoalesce(t *testing.T) {
	fetcher := &countingFetcher{rate: 42, delay: 50 * time.Millisecond}
	client := newTestCachedClient(t, fetcher, 0)

	const callers = 16
	results := make([]int, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.Resolve(context.Background(), "token-1", nil)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if results[i] != 42 {
			t.Errorf("caller %d: expected 42, got %d", i, results[i])
		}
	}

	if fetcher.count() != 1 {
		t.Errorf("expected exactly one fetch for %d concurrent resolves, got %d", callers, fetcher.count())
	}
}

func TestCachedClient_FetchFailureIsNeverZero(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("connection refused")}
	client := newTestCachedClient(t, fetcher, 0)

	_, err := client.Resolve(context.Background(), "token-1", nil)
	if err == nil {
		t.Fatal("expected error on fetch failure, got nil")
	}

	var unavailable *types.FeeRateUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected FeeRateUnavailableError, got %T: %v", err, err)
	}
	if unavailable.TokenID != "token-1" {
		t.Errorf("expected token-1 in error, got %q", unavailable.TokenID)
	}
}

func TestCachedClient_FailureIsNotCached(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("temporary outage")}
	client := newTestCachedClient(t, fetcher, 0)
	ctx := context.Background()

	if _, err := client.Resolve(ctx, "token-1", nil); err == nil {
		t.Fatal("expected error on first resolve")
	}

	// Venue recovers; the next resolve must fetch again instead of serving
	// a cached failure.
	fetcher.mu.Lock()
	fetcher.err = nil
	fetcher.rate = 15
	fetcher.mu.Unlock()

	bps, err := client.Resolve(ctx, "token-1", nil)
	if err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if bps != 15 {
		t.Errorf("expected 15 after recovery, got %d", bps)
	}

	if fetcher.count() != 2 {
		t.Errorf("expected two fetches (fail then retry), got %d", fetcher.count())
	}
}

func TestCachedClient_OverrideSkipsCacheAndFetch(t *testing.T) {
	fetcher := &countingFetcher{rate: 99}
	client := newTestCachedClient(t, fetcher, 0)

	override := 7
	bps, err := client.Resolve(context.Background(), "token-1", &override)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bps != 7 {
		t.Errorf("expected override value 7, got %d", bps)
	}

	if fetcher.count() != 0 {
		t.Errorf("expected no fetch when override given, got %d", fetcher.count())
	}
}

func TestCachedClient_ZeroOverrideIsExplicit(t *testing.T) {
	fetcher := &countingFetcher{rate: 99}
	client := newTestCachedClient(t, fetcher, 0)

	override := 0
	bps, err := client.Resolve(context.Background(), "token-1", &override)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bps != 0 {
		t.Errorf("expected explicit zero override, got %d", bps)
	}
	if fetcher.count() != 0 {
		t.Errorf("expected no fetch for explicit override, got %d", fetcher.count())
	}
}

func TestCachedClient_EmptyTokenID(t *testing.T) {
	fetcher := &countingFetcher{rate: 10}
	client := newTestCachedClient(t, fetcher, 0)

	_, err := client.Resolve(context.Background(), "", nil)
	if err == nil {
		t.Fatal("expected error for empty token id")
	}

	var unavailable *types.FeeRateUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected FeeRateUnavailableError, got %T", err)
	}
}

func TestCachedClient_TTLExpiryRefetches(t *testing.T) {
	fetcher := &countingFetcher{rate: 30}
	client := newTestCachedClient(t, fetcher, 50*time.Millisecond)
	ctx := context.Background()

	if _, err := client.Resolve(ctx, "token-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	if _, err := client.Resolve(ctx, "token-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fetcher.count() != 2 {
		t.Errorf("expected refetch after TTL expiry, got %d fetches", fetcher.count())
	}
}

func TestCachedClient_DistinctTokensFetchSeparately(t *testing.T) {
	fetcher := &countingFetcher{rate: 5}
	client := newTestCachedClient(t, fetcher, 0)
	ctx := context.Background()

	if _, err := client.Resolve(ctx, "token-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Resolve(ctx, "token-2", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fetcher.count() != 2 {
		t.Errorf("expected one fetch per token, got %d", fetcher.count())
	}
}
