package port

import (
	"context"

	"portfolio_dashboard/internal/domain/entity"
)

// PortfolioService defines the interface for the balance/portfolio aggregate.
type PortfolioService interface {
	// BalanceSnapshot builds (or serves from cache) the full dashboard
	// aggregate for a wallet.
	BalanceSnapshot(ctx context.Context, walletAddress string) (*entity.BalanceSnapshot, error)

	// ProfitLoss composes the snapshot's profit figures with the
	// default-period chart series.
	ProfitLoss(ctx context.Context, walletAddress string) (*entity.ProfitReport, error)
}

// HistoryService fetches and normalizes the wallet's transfer history.
// The second return value reports degraded mode: the history could not be
// fetched and an empty list stands in for "no data", not "zero transfers".
type HistoryService interface {
	TransferHistory(ctx context.Context, walletAddress string) ([]entity.Transfer, bool)
}

// ChartService produces the running-balance series the profit chart plots.
type ChartService interface {
	ChartSeries(ctx context.Context, walletAddress string, period entity.ChartPeriod) ([]entity.ChartPoint, error)
}

// TransferService submits deposits and withdrawals. Failures are reported in
// the result, never raised.
type TransferService interface {
	Deposit(ctx context.Context, amount string) entity.TransferResult
	Withdraw(ctx context.Context, toAddress, amount string) entity.TransferResult
}
