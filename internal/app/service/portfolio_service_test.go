package service

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotWallet = "0x6666666666666666666666666666666666666666"

func newPortfolioServiceForTest(chain port.BlockchainClient, history *stubHistory) *PortfolioServiceImpl {
	return NewPortfolioService(
		chain,
		&stubOracle{quote: port.PriceQuote{PriceUSD: 2000}},
		history,
		&stubChart{},
		cache.New(time.Minute),
		nopLogger{},
		newTestConfig(),
	)
}

func healthyChain() *stubChain {
	return &stubChain{
		nativeBalance: big.NewInt(2_000_000_000_000_000_000), // 2 ETH
		tokenState: port.TokenState{
			Balance:  big.NewInt(80_000_000), // 80 USDC at 6 decimals
			Decimals: 6,
			Symbol:   "USDC",
		},
	}
}

func TestBalanceSnapshot_AggregatesBalances(t *testing.T) {
	history := &stubHistory{transfers: []entity.Transfer{
		tokenTransfer("0xh1", "0xother", snapshotWallet, snapshotWallet, 100, time.Now().Add(-time.Hour)),
	}}
	svc := newPortfolioServiceForTest(healthyChain(), history)

	snapshot, err := svc.BalanceSnapshot(context.Background(), snapshotWallet)
	require.NoError(t, err)

	assert.Equal(t, "2", snapshot.NativeBalance.String())
	assert.Equal(t, "80", snapshot.TokenBalance.String())
	assert.Equal(t, "USDC", snapshot.TokenSymbol)
	assert.Equal(t, uint8(6), snapshot.TokenDecimals)
	// 2 ETH * 2000 USD + 80 USDC
	assert.InDelta(t, 4080, snapshot.PortfolioValueUSD, 1e-9)
	assert.Equal(t, float64(2000), snapshot.NativePriceUSD)
	assert.False(t, snapshot.PriceIsFallback)
	// invested 100, balance 80
	assert.Equal(t, "-20", snapshot.Profit.String())
	assert.InDelta(t, -20, snapshot.ProfitPercent, 1e-9)
	assert.Len(t, snapshot.Transfers, 1)
}

func TestBalanceSnapshot_InvalidAddress(t *testing.T) {
	svc := newPortfolioServiceForTest(healthyChain(), &stubHistory{})

	_, err := svc.BalanceSnapshot(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)
}

func TestBalanceSnapshot_UnconfiguredChain(t *testing.T) {
	svc := newPortfolioServiceForTest(nil, &stubHistory{})

	_, err := svc.BalanceSnapshot(context.Background(), snapshotWallet)
	var cfgErr *entity.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestBalanceSnapshot_NativeBalanceFailureIsFatal(t *testing.T) {
	chain := healthyChain()
	chain.nativeErr = errors.New("rpc down")
	svc := newPortfolioServiceForTest(chain, &stubHistory{})

	_, err := svc.BalanceSnapshot(context.Background(), snapshotWallet)
	var aggErr *entity.AggregationError
	require.ErrorAs(t, err, &aggErr)
	assert.Contains(t, aggErr.Error(), "rpc down")
}

func TestBalanceSnapshot_TokenMetadataFailureTolerated(t *testing.T) {
	chain := healthyChain()
	chain.tokenErr = errors.New("contract read failed")
	svc := newPortfolioServiceForTest(chain, &stubHistory{})

	snapshot, err := svc.BalanceSnapshot(context.Background(), snapshotWallet)
	require.NoError(t, err)

	assert.True(t, snapshot.TokenBalance.IsZero())
	assert.Equal(t, "USDC", snapshot.TokenSymbol)
	assert.Equal(t, uint8(6), snapshot.TokenDecimals)
	// native figure still present
	assert.InDelta(t, 4000, snapshot.PortfolioValueUSD, 1e-9)
}

func TestBalanceSnapshot_IdempotentWithinWindow(t *testing.T) {
	chain := healthyChain()
	svc := newPortfolioServiceForTest(chain, &stubHistory{})

	first, err := svc.BalanceSnapshot(context.Background(), snapshotWallet)
	require.NoError(t, err)
	second, err := svc.BalanceSnapshot(context.Background(), snapshotWallet)
	require.NoError(t, err)

	assert.Same(t, first, second, "second call must be a pure cache hit")
	assert.Equal(t, 1, chain.nativeCalls)
}

func TestProfitLoss_ComposesSnapshotAndChart(t *testing.T) {
	series := []entity.ChartPoint{
		{Timestamp: time.Now().Add(-time.Hour)},
		{Timestamp: time.Now()},
	}
	svc := NewPortfolioService(
		healthyChain(),
		&stubOracle{quote: port.PriceQuote{PriceUSD: 2000}},
		&stubHistory{},
		&stubChart{series: series},
		cache.New(time.Minute),
		nopLogger{},
		newTestConfig(),
	)

	report, err := svc.ProfitLoss(context.Background(), snapshotWallet)
	require.NoError(t, err)

	// no token transfers at all: profit pinned to zero regardless of balance
	assert.True(t, report.Profit.IsZero())
	assert.Zero(t, report.ProfitPercent)
	assert.InDelta(t, 4080, report.PortfolioValueUSD, 1e-9)
	assert.Len(t, report.Series, 2)
}
