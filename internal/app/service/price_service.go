package service

import (
	"context"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/infrastructure/httpclient"
	"portfolio_dashboard/internal/pkg/cache"
	"portfolio_dashboard/internal/pkg/metrics"
)

// nativePriceCacheKey is address-independent: one spot price serves every
// wallet.
const nativePriceCacheKey = "native_price_usd"

// priceServiceImpl implements port.PriceOracle. Quotes are cached for the
// freshness window; a failed fetch degrades to the configured fallback price
// and is never surfaced as an error.
type priceServiceImpl struct {
	priceClient      httpclient.PriceClient
	cache            *cache.Store
	logger           port.Logger
	fallbackPriceUSD float64
	requestTimeout   time.Duration
}

// NewPriceService creates a new instance of priceServiceImpl.
func NewPriceService(
	pc httpclient.PriceClient,
	store *cache.Store,
	l port.Logger,
	fallbackPriceUSD float64,
	requestTimeout time.Duration,
) port.PriceOracle {
	return &priceServiceImpl{
		priceClient:      pc,
		cache:            store,
		logger:           l,
		fallbackPriceUSD: fallbackPriceUSD,
		requestTimeout:   requestTimeout,
	}
}

// NativePrice implements port.PriceOracle.
func (s *priceServiceImpl) NativePrice(ctx context.Context) port.PriceQuote {
	if v, ok := s.cache.Get(nativePriceCacheKey); ok {
		if price, ok := v.(float64); ok {
			metrics.ObserveCache("price", true)
			return port.PriceQuote{PriceUSD: price}
		}
	}
	metrics.ObserveCache("price", false)

	fetchCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	price, err := s.priceClient.NativePriceUSD(fetchCtx)
	if err != nil {
		s.logger.Warn("Native price fetch failed, using fallback price",
			"fallback_usd", s.fallbackPriceUSD, "error", err)
		metrics.UpstreamFailures.WithLabelValues("price").Inc()
		return port.PriceQuote{PriceUSD: s.fallbackPriceUSD, Fallback: true}
	}

	s.cache.Set(nativePriceCacheKey, price)
	return port.PriceQuote{PriceUSD: price}
}
