package entity

import (
	"github.com/shopspring/decimal"
)

// BalanceSnapshot is the aggregate the dashboard renders: on-chain balances,
// USD valuation, profit estimate and the recent transfer list. Built fresh on
// every uncached aggregation, never mutated afterwards.
type BalanceSnapshot struct {
	NativeBalance     decimal.Decimal `json:"nativeBalance"`
	TokenBalance      decimal.Decimal `json:"tokenBalance"`
	TokenSymbol       string          `json:"tokenSymbol"`
	TokenDecimals     uint8           `json:"tokenDecimals"`
	PortfolioValueUSD float64         `json:"portfolioValueUsd"`
	Profit            decimal.Decimal `json:"profit"`
	ProfitPercent     float64         `json:"profitPercent"`
	NativePriceUSD    float64         `json:"nativePriceUsd"`
	PriceIsFallback   bool            `json:"priceIsFallback"`
	Transfers         []Transfer      `json:"transfers"`
}

// ProfitReport combines the snapshot-level profit figures with the historical
// series the profit chart plots.
type ProfitReport struct {
	Profit            decimal.Decimal `json:"profit"`
	ProfitPercent     float64         `json:"profitPercent"`
	PortfolioValueUSD float64         `json:"portfolioValueUsd"`
	Series            []ChartPoint    `json:"series"`
}
