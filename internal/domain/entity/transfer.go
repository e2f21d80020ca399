package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransferDirection marks a transfer as inbound or outbound relative to the
// queried wallet address.
type TransferDirection string

const (
	DirectionIn  TransferDirection = "in"
	DirectionOut TransferDirection = "out"
)

// AssetKind distinguishes the chain's base coin from the tracked token.
type AssetKind string

const (
	AssetNative AssetKind = "native"
	AssetToken  AssetKind = "token"
)

// Transfer is a normalized ledger event for a wallet. Exactly one of
// NativeAmount/TokenAmount is non-zero, determined by Asset. Immutable once
// constructed.
type Transfer struct {
	Hash         string            `json:"hash"`
	From         string            `json:"from"`
	To           string            `json:"to"`
	NativeAmount decimal.Decimal   `json:"nativeAmount"`
	TokenAmount  decimal.Decimal   `json:"tokenAmount"`
	Timestamp    time.Time         `json:"timestamp"`
	Direction    TransferDirection `json:"direction"`
	Asset        AssetKind         `json:"asset"`
}

// NewTransfer builds a Transfer for the given wallet, deriving the direction
// from the recipient (case-insensitive comparison).
func NewTransfer(hash, from, to, walletAddress string, amount decimal.Decimal, ts time.Time, asset AssetKind) Transfer {
	t := Transfer{
		Hash:      hash,
		From:      from,
		To:        to,
		Timestamp: ts,
		Direction: DirectionFor(to, walletAddress),
		Asset:     asset,
	}
	if asset == AssetNative {
		t.NativeAmount = amount
	} else {
		t.TokenAmount = amount
	}
	return t
}

// DirectionFor reports in when the recipient is the queried wallet, out
// otherwise. Addresses are compared case-insensitively.
func DirectionFor(to, walletAddress string) TransferDirection {
	if strings.EqualFold(to, walletAddress) {
		return DirectionIn
	}
	return DirectionOut
}

// Amount returns the transfer amount of whichever asset the record carries.
func (t Transfer) Amount() decimal.Decimal {
	if t.Asset == AssetNative {
		return t.NativeAmount
	}
	return t.TokenAmount
}
