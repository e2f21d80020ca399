package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FromBaseUnits converts a raw on-chain amount to a decimal in whole units.
// Example: amount=1234500000000000000, decimals=18 => 1.2345
func FromBaseUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// ToBaseUnits converts a whole-unit decimal amount to raw base units,
// truncating precision beyond the contract's decimals.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt()
}
