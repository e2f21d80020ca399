package service

import (
	"context"
	"math/big"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/infrastructure/httpclient"

	"github.com/shopspring/decimal"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}

func newTestConfig() *configloader.Config {
	return &configloader.Config{
		Chain: configloader.ChainConfig{
			RPCEndpoint:   "https://rpc.test.invalid",
			ChainID:       1,
			TokenContract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			RPCTimeoutMs:  1000,
		},
		Explorer: configloader.ExplorerConfig{
			BaseURL:              "https://api.etherscan.test.invalid",
			APIKey:               "testkey",
			RequestTimeoutMillis: 1000,
			RateLimitPerSec:      100,
			RateLimitBurst:       10,
		},
		PriceAPI: configloader.PriceAPIConfig{
			BaseURL:              "https://price.test.invalid",
			AssetID:              "ethereum",
			RequestTimeoutMillis: 1000,
			FallbackPriceUSD:     2500,
		},
		Transfer: configloader.TransferConfig{
			DepositAddress:            "0x1111111111111111111111111111111111111111",
			PrivateKey:                "abc123",
			ConfirmationTimeoutSecond: 1,
		},
		Cache: configloader.CacheConfig{FreshnessWindowSeconds: 60},
	}
}

type stubExplorer struct {
	nativeTxs   []httpclient.ExplorerTx
	tokenTxs    []httpclient.ExplorerTx
	err         error
	nativeCalls int
	tokenCalls  int
}

func (s *stubExplorer) NativeTxList(ctx context.Context, address string) ([]httpclient.ExplorerTx, error) {
	s.nativeCalls++
	return s.nativeTxs, s.err
}

func (s *stubExplorer) TokenTxList(ctx context.Context, address, contractAddress string) ([]httpclient.ExplorerTx, error) {
	s.tokenCalls++
	return s.tokenTxs, s.err
}

type stubPriceClient struct {
	price float64
	err   error
	calls int
}

func (s *stubPriceClient) NativePriceUSD(ctx context.Context) (float64, error) {
	s.calls++
	return s.price, s.err
}

type stubHistory struct {
	transfers []entity.Transfer
	degraded  bool
	calls     int
}

func (s *stubHistory) TransferHistory(ctx context.Context, walletAddress string) ([]entity.Transfer, bool) {
	s.calls++
	return s.transfers, s.degraded
}

type stubOracle struct {
	quote port.PriceQuote
}

func (s *stubOracle) NativePrice(ctx context.Context) port.PriceQuote {
	return s.quote
}

type stubChart struct {
	series []entity.ChartPoint
}

func (s *stubChart) ChartSeries(ctx context.Context, walletAddress string, period entity.ChartPeriod) ([]entity.ChartPoint, error) {
	return s.series, nil
}

type stubChain struct {
	nativeBalance *big.Int
	nativeErr     error
	nativeCalls   int

	tokenState port.TokenState
	tokenErr   error

	sender string

	submitHash  string
	submitErr   error
	submitCalls int
	submittedTo string
	submitted   *big.Int

	waitErr    error
	waitBlocks bool
}

func (s *stubChain) GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	s.nativeCalls++
	return s.nativeBalance, s.nativeErr
}

func (s *stubChain) GetTokenState(ctx context.Context, walletAddress string) (port.TokenState, error) {
	return s.tokenState, s.tokenErr
}

func (s *stubChain) SenderAddress() string {
	return s.sender
}

func (s *stubChain) SubmitTokenTransfer(ctx context.Context, toAddress string, amount *big.Int) (string, error) {
	s.submitCalls++
	s.submittedTo = toAddress
	s.submitted = amount
	return s.submitHash, s.submitErr
}

func (s *stubChain) WaitForConfirmation(ctx context.Context, txHash string) error {
	if s.waitBlocks {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.waitErr
}

func tokenTransfer(hash, from, to, wallet string, amount int64, ts time.Time) entity.Transfer {
	return entity.NewTransfer(hash, from, to, wallet, decimal.NewFromInt(amount), ts, entity.AssetToken)
}
