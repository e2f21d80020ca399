package port

import "context"

// PriceQuote is a native-coin spot price in USD. Fallback marks a quote that
// was substituted after an upstream failure; callers can distinguish a real
// quote from the recovery constant without exception handling.
type PriceQuote struct {
	PriceUSD float64
	Fallback bool
}

// PriceOracle provides the native coin's spot price. It never fails: on any
// upstream problem it returns a fallback quote instead.
type PriceOracle interface {
	NativePrice(ctx context.Context) PriceQuote
}
