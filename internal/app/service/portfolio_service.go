package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/pkg/cache"
	"portfolio_dashboard/internal/pkg/metrics"
	"portfolio_dashboard/internal/pkg/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Token metadata fallbacks used when the contract read fails. The dashboard
// tracks a USD stablecoin, so a zero balance with USDC labeling keeps the
// figures coherent.
const (
	fallbackTokenSymbol   = "USDC"
	fallbackTokenDecimals = 6
)

// SnapshotCacheKey is the cache key of a wallet's balance snapshot. Shared
// with the transfer service, which invalidates it after a confirmed
// submission.
func SnapshotCacheKey(chainID int64, address string) string {
	return fmt.Sprintf("snapshot:%d:%s", chainID, strings.ToLower(address))
}

// ValidWalletAddress reports whether address matches the chain's syntax
// (0x-prefixed, 40 hex digits).
func ValidWalletAddress(address string) bool {
	return addressPattern.MatchString(address)
}

// PortfolioServiceImpl implements port.PortfolioService.
type PortfolioServiceImpl struct {
	chainClient port.BlockchainClient
	priceOracle port.PriceOracle
	historySvc  port.HistoryService
	chartSvc    port.ChartService
	cache       *cache.Store
	logger      port.Logger
	cfg         *configloader.Config
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
// chainClient may be nil when the RPC endpoint is unconfigured; every call
// then fails with a configuration error.
func NewPortfolioService(
	cc port.BlockchainClient,
	po port.PriceOracle,
	hs port.HistoryService,
	cs port.ChartService,
	store *cache.Store,
	l port.Logger,
	config *configloader.Config,
) *PortfolioServiceImpl {
	return &PortfolioServiceImpl{
		chainClient: cc,
		priceOracle: po,
		historySvc:  hs,
		chartSvc:    cs,
		cache:       store,
		logger:      l,
		cfg:         config,
	}
}

// BalanceSnapshot implements port.PortfolioService. The native balance fetch
// must succeed; token metadata, price and history degrade to fallbacks.
func (s *PortfolioServiceImpl) BalanceSnapshot(ctx context.Context, walletAddress string) (*entity.BalanceSnapshot, error) {
	if !ValidWalletAddress(walletAddress) {
		metrics.SnapshotRequests.WithLabelValues("invalid_address").Inc()
		return nil, errors.Wrap(entity.ErrInvalidAddress, walletAddress)
	}
	if s.chainClient == nil || !configloader.IsConfigured(s.cfg.Chain.RPCEndpoint) {
		metrics.SnapshotRequests.WithLabelValues("config_error").Inc()
		return nil, entity.NewConfigurationError("RPC endpoint")
	}

	key := SnapshotCacheKey(s.cfg.Chain.ChainID, walletAddress)
	if v, ok := s.cache.Get(key); ok {
		if snapshot, ok := v.(*entity.BalanceSnapshot); ok {
			metrics.ObserveCache("snapshot", true)
			metrics.SnapshotRequests.WithLabelValues("ok").Inc()
			return snapshot, nil
		}
	}
	metrics.ObserveCache("snapshot", false)

	var (
		nativeRaw  = decimal.Zero
		tokenState port.TokenState
		tokenErr   error
		quote      port.PriceQuote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.chainClient.GetNativeBalance(gctx, walletAddress)
		if err != nil {
			return err
		}
		nativeRaw = utils.FromBaseUnits(raw, nativeDecimals)
		return nil
	})
	g.Go(func() error {
		// Tolerated failure, captured separately so it cannot cancel the group.
		tokenState, tokenErr = s.chainClient.GetTokenState(gctx, walletAddress)
		return nil
	})
	g.Go(func() error {
		quote = s.priceOracle.NativePrice(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.SnapshotRequests.WithLabelValues("error").Inc()
		return nil, &entity.AggregationError{Cause: err}
	}

	tokenBalance := decimal.Zero
	tokenSymbol := fallbackTokenSymbol
	tokenDecimals := uint8(fallbackTokenDecimals)
	if tokenErr != nil {
		s.logger.Warn("Token state fetch failed, using fallback token metadata",
			"address", walletAddress, "error", tokenErr)
		metrics.UpstreamFailures.WithLabelValues("token_metadata").Inc()
	} else {
		tokenBalance = utils.FromBaseUnits(tokenState.Balance, tokenState.Decimals)
		tokenSymbol = tokenState.Symbol
		tokenDecimals = tokenState.Decimals
	}

	transfers, degraded := s.historySvc.TransferHistory(ctx, walletAddress)
	if degraded {
		s.logger.Debug("Transfer history degraded, profit figures based on empty history",
			"address", walletAddress)
	}

	profit, profitPercent := entity.ProfitLoss(tokenBalance, transfers)

	nativeValue, _ := nativeRaw.Mul(decimal.NewFromFloat(quote.PriceUSD)).Float64()
	tokenValue, _ := tokenBalance.Float64()

	snapshot := &entity.BalanceSnapshot{
		NativeBalance:     nativeRaw,
		TokenBalance:      tokenBalance,
		TokenSymbol:       tokenSymbol,
		TokenDecimals:     tokenDecimals,
		PortfolioValueUSD: nativeValue + tokenValue,
		Profit:            profit,
		ProfitPercent:     profitPercent,
		NativePriceUSD:    quote.PriceUSD,
		PriceIsFallback:   quote.Fallback,
		Transfers:         transfers,
	}

	s.cache.Set(key, snapshot)
	metrics.SnapshotRequests.WithLabelValues("ok").Inc()
	s.logger.Info("Balance snapshot built",
		"address", walletAddress,
		"portfolio_value_usd", snapshot.PortfolioValueUSD,
		"profit_percent", snapshot.ProfitPercent)
	return snapshot, nil
}

// ProfitLoss implements port.PortfolioService: the snapshot's profit figures
// plus the default-period chart series.
func (s *PortfolioServiceImpl) ProfitLoss(ctx context.Context, walletAddress string) (*entity.ProfitReport, error) {
	snapshot, err := s.BalanceSnapshot(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	series, err := s.chartSvc.ChartSeries(ctx, walletAddress, entity.DefaultChartPeriod)
	if err != nil {
		return nil, err
	}
	return &entity.ProfitReport{
		Profit:            snapshot.Profit,
		ProfitPercent:     snapshot.ProfitPercent,
		PortfolioValueUSD: snapshot.PortfolioValueUSD,
		Series:            series,
	}, nil
}

var _ port.PortfolioService = (*PortfolioServiceImpl)(nil)
