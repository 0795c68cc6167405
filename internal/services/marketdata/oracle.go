package marketdata

import (
	"context"
	"sync"
	"time"

	errs "moonex/internal/errors"
	"moonex/internal/logger"
	"moonex/internal/models"
	"moonex/internal/repositories/cache"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval = 30 * time.Second
	quoteCachePrefix    = "quote"
)

// Oracle polls the price provider at a fixed interval and holds the
// last successful quote per asset. Reads never fail because of a
// provider outage; they return the last-known value marked stale.
type Oracle struct {
	fetcher  PriceFetcher
	cache    *cache.CacheService
	assets   []models.Asset
	interval time.Duration
	log      *logrus.Entry

	mu     sync.RWMutex
	quotes map[string]Quote
}

// NewOracle creates a price oracle for the supported assets. The cache
// is optional.
func NewOracle(fetcher PriceFetcher, cacheSvc *cache.CacheService, interval time.Duration) *Oracle {
	if interval == 0 {
		interval = DefaultPollInterval
	}
	return &Oracle{
		fetcher:  fetcher,
		cache:    cacheSvc,
		assets:   models.SupportedAssets,
		interval: interval,
		log:      logger.WithComponent("marketdata"),
		quotes:   make(map[string]Quote),
	}
}

// Start refreshes once immediately, then polls until ctx is cancelled.
func (o *Oracle) Start(ctx context.Context) {
	if err := o.Refresh(ctx); err != nil {
		o.log.WithError(err).Warn("initial price refresh failed")
	}

	go func() {
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := o.Refresh(ctx); err != nil {
					o.log.WithError(err).Warn("price refresh failed, serving stale quotes")
				}
			}
		}
	}()
}

// Refresh fetches fresh prices for every supported asset. On failure the
// previous quotes are kept and flagged stale.
func (o *Oracle) Refresh(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, o.interval)
	defer cancel()

	points, err := o.fetcher.SimplePrice(fetchCtx, models.AssetIDs())
	if err != nil {
		o.markStale()
		return err
	}

	now := time.Now().UTC()
	o.mu.Lock()
	for _, asset := range o.assets {
		point, ok := points[asset.ID]
		if !ok {
			// The provider dropped this asset from the payload; its old
			// quote is no longer fresh.
			if q, held := o.quotes[asset.ID]; held {
				q.Stale = true
				o.quotes[asset.ID] = q
			}
			continue
		}
		q := Quote{
			CoinID:       asset.ID,
			USD:          point.USD,
			ChangePct24h: point.Change24h,
			AsOf:         now,
		}
		o.quotes[asset.ID] = q
		o.cacheQuote(ctx, q)
	}
	o.mu.Unlock()

	return nil
}

// Quote returns the current quote for a coin. ErrStalePriceData is only
// returned when there has never been a successful fetch.
func (o *Oracle) Quote(ctx context.Context, coinID string) (Quote, error) {
	if _, ok := models.AssetByID(coinID); !ok {
		return Quote{}, errs.ErrInvalidInput
	}

	o.mu.RLock()
	q, ok := o.quotes[coinID]
	o.mu.RUnlock()
	if ok {
		return q, nil
	}

	// Cold start: another instance may have a cached quote.
	if o.cache != nil {
		var cached Quote
		if found, err := o.cache.Get(ctx, o.quoteKey(coinID), &cached); err == nil && found {
			cached.Stale = true
			return cached, nil
		}
	}

	return Quote{}, errs.ErrStalePriceData
}

// Quotes returns all known quotes in supported-asset order.
func (o *Oracle) Quotes(ctx context.Context) []Quote {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]Quote, 0, len(o.assets))
	for _, asset := range o.assets {
		if q, ok := o.quotes[asset.ID]; ok {
			out = append(out, q)
		}
	}
	return out
}

func (o *Oracle) markStale() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, q := range o.quotes {
		q.Stale = true
		o.quotes[id] = q
	}
}

func (o *Oracle) quoteKey(coinID string) string {
	return quoteCachePrefix + ":" + coinID
}

func (o *Oracle) cacheQuote(ctx context.Context, q Quote) {
	if o.cache == nil {
		return
	}
	if err := o.cache.SetWithTTL(ctx, o.quoteKey(q.CoinID), q, 10*o.interval); err != nil {
		o.log.WithError(err).Debug("failed to cache quote")
	}
}
