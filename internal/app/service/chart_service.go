package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/pkg/cache"
	"portfolio_dashboard/internal/pkg/metrics"

	"github.com/shopspring/decimal"
)

// chartServiceImpl implements port.ChartService: it replays the wallet's
// token transfers across evenly spaced bucket boundaries to produce the
// running-balance series the profit chart plots.
type chartServiceImpl struct {
	historySvc port.HistoryService
	cache      *cache.Store
	logger     port.Logger
	cfg        *configloader.Config

	// now is stubbed in tests.
	now func() time.Time
}

// NewChartService creates a new instance of chartServiceImpl.
func NewChartService(
	hs port.HistoryService,
	store *cache.Store,
	l port.Logger,
	config *configloader.Config,
) port.ChartService {
	return &chartServiceImpl{
		historySvc: hs,
		cache:      store,
		logger:     l,
		cfg:        config,
		now:        time.Now,
	}
}

func (s *chartServiceImpl) chartCacheKey(address string, period entity.ChartPeriod) string {
	return fmt.Sprintf("chart:%d:%s:%s", s.cfg.Chain.ChainID, strings.ToLower(address), period)
}

// ChartSeries implements port.ChartService. The series always has
// intervals+1 points in ascending timestamp order; an empty history yields a
// flat placeholder series so the UI always has something to plot.
func (s *chartServiceImpl) ChartSeries(ctx context.Context, walletAddress string, period entity.ChartPeriod) ([]entity.ChartPoint, error) {
	lookback, intervals, err := period.Spec()
	if err != nil {
		return nil, err
	}

	key := s.chartCacheKey(walletAddress, period)
	if v, ok := s.cache.Get(key); ok {
		if series, ok := v.([]entity.ChartPoint); ok {
			metrics.ObserveCache("chart", true)
			return series, nil
		}
	}
	metrics.ObserveCache("chart", false)

	transfers, _ := s.historySvc.TransferHistory(ctx, walletAddress)
	tokenTransfers := make([]entity.Transfer, 0, len(transfers))
	for _, t := range transfers {
		if t.Asset == entity.AssetToken {
			tokenTransfers = append(tokenTransfers, t)
		}
	}
	// History arrives newest-first; the clamped replay needs chronological order.
	sort.SliceStable(tokenTransfers, func(i, j int) bool {
		return tokenTransfers[i].Timestamp.Before(tokenTransfers[j].Timestamp)
	})

	now := s.now()
	start := now.Add(-lookback)
	step := lookback / time.Duration(intervals)

	series := make([]entity.ChartPoint, 0, intervals+1)
	for i := 0; i <= intervals; i++ {
		boundary := start.Add(step * time.Duration(i))
		series = append(series, entity.ChartPoint{
			Value:     replayBalance(tokenTransfers, boundary),
			Timestamp: boundary,
		})
	}

	s.cache.Set(key, series)
	return series, nil
}

// replayBalance applies every token transfer with timestamp <= boundary to a
// running balance, clamped at zero throughout. O(transfers) per boundary,
// fine at the <=30 transfers x <=50 buckets scale.
func replayBalance(transfers []entity.Transfer, boundary time.Time) decimal.Decimal {
	running := decimal.Zero
	for _, t := range transfers {
		if t.Timestamp.After(boundary) {
			continue
		}
		if t.Direction == entity.DirectionIn {
			running = running.Add(t.TokenAmount)
		} else {
			running = running.Sub(t.TokenAmount)
		}
		if running.Sign() < 0 {
			running = decimal.Zero
		}
	}
	return running
}
