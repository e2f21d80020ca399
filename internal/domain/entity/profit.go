package entity

import "github.com/shopspring/decimal"

// ProfitLoss derives a coarse token-denominated profit estimate from the
// wallet's transfer history and its current token balance.
//
// Only token-asset transfers participate. invested = sum(in) - sum(out).
// When invested <= 0 the wallet has withdrawn at least as much as it
// deposited, and the whole current balance is treated as profit; the 100%
// figure reported for invested < 0 is a display convention kept for
// compatibility, not a financially meaningful percentage.
func ProfitLoss(tokenBalance decimal.Decimal, transfers []Transfer) (profit decimal.Decimal, profitPercent float64) {
	totalIn := decimal.Zero
	totalOut := decimal.Zero
	seen := false
	for _, t := range transfers {
		if t.Asset != AssetToken {
			continue
		}
		seen = true
		if t.Direction == DirectionIn {
			totalIn = totalIn.Add(t.TokenAmount)
		} else {
			totalOut = totalOut.Add(t.TokenAmount)
		}
	}
	if !seen {
		return decimal.Zero, 0
	}

	invested := totalIn.Sub(totalOut)
	if invested.Sign() <= 0 {
		if invested.Sign() < 0 {
			return tokenBalance, 100
		}
		return tokenBalance, 0
	}

	profit = tokenBalance.Sub(invested)
	percent, _ := profit.Div(invested).Mul(decimal.NewFromInt(100)).Float64()
	return profit, percent
}
