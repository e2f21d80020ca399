package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/httpclient"
	"portfolio_dashboard/internal/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyWallet = "0x4444444444444444444444444444444444444444"

func nativeRecord(i int, ts int64, to string) httpclient.ExplorerTx {
	return httpclient.ExplorerTx{
		Hash:      fmt.Sprintf("0xn%02d", i),
		From:      "0x5555555555555555555555555555555555555555",
		To:        to,
		Value:     "1500000000000000000", // 1.5 ETH in wei
		TimeStamp: fmt.Sprintf("%d", ts),
	}
}

func tokenRecord(i int, ts int64, to string) httpclient.ExplorerTx {
	return httpclient.ExplorerTx{
		Hash:         fmt.Sprintf("0xt%02d", i),
		From:         "0x5555555555555555555555555555555555555555",
		To:           to,
		Value:        "250000000", // 250 tokens at 6 decimals
		TimeStamp:    fmt.Sprintf("%d", ts),
		TokenDecimal: "6",
		TokenSymbol:  "USDC",
	}
}

func newHistoryServiceForTest(explorer *stubExplorer) *historyServiceImpl {
	return NewHistoryService(explorer, cache.New(time.Minute), nopLogger{}, newTestConfig()).(*historyServiceImpl)
}

func TestTransferHistory_NormalizesAndMerges(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).Unix()
	explorer := &stubExplorer{
		nativeTxs: []httpclient.ExplorerTx{nativeRecord(1, base+100, historyWallet)},
		tokenTxs:  []httpclient.ExplorerTx{tokenRecord(1, base+200, "0x5555555555555555555555555555555555555555")},
	}
	svc := newHistoryServiceForTest(explorer)

	transfers, degraded := svc.TransferHistory(context.Background(), historyWallet)
	require.False(t, degraded)
	require.Len(t, transfers, 2)

	// newest first: the token transfer
	token := transfers[0]
	assert.Equal(t, entity.AssetToken, token.Asset)
	assert.Equal(t, entity.DirectionOut, token.Direction, "wallet is the sender, not the recipient")
	assert.Equal(t, "250", token.TokenAmount.String())
	assert.True(t, token.NativeAmount.IsZero())

	native := transfers[1]
	assert.Equal(t, entity.AssetNative, native.Asset)
	assert.Equal(t, entity.DirectionIn, native.Direction)
	assert.Equal(t, "1.5", native.NativeAmount.String())
	assert.True(t, native.TokenAmount.IsZero())
}

func TestTransferHistory_CapsAndSortsDescending(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).Unix()

	var nativeTxs, tokenTxs []httpclient.ExplorerTx
	for i := 0; i < 15; i++ {
		nativeTxs = append(nativeTxs, nativeRecord(i, base+int64(1000-i), historyWallet))
	}
	for i := 0; i < 25; i++ {
		tokenTxs = append(tokenTxs, tokenRecord(i, base+int64(900-i), historyWallet))
	}

	svc := newHistoryServiceForTest(&stubExplorer{nativeTxs: nativeTxs, tokenTxs: tokenTxs})
	transfers, degraded := svc.TransferHistory(context.Background(), historyWallet)
	require.False(t, degraded)

	// 15 native capped to 10, 25 token capped to 20, merged capped to 30
	require.Len(t, transfers, 30)
	for i := 1; i < len(transfers); i++ {
		assert.False(t, transfers[i].Timestamp.After(transfers[i-1].Timestamp),
			"merged history must be sorted newest first")
	}
}

func TestTransferHistory_MissingAPIKey(t *testing.T) {
	explorer := &stubExplorer{}
	cfg := newTestConfig()
	cfg.Explorer.APIKey = "your_etherscan_api_key"
	svc := NewHistoryService(explorer, cache.New(time.Minute), nopLogger{}, cfg).(*historyServiceImpl)

	transfers, degraded := svc.TransferHistory(context.Background(), historyWallet)
	assert.Empty(t, transfers)
	assert.True(t, degraded)
	assert.Zero(t, explorer.nativeCalls, "no request may be issued without a credential")
	assert.Zero(t, explorer.tokenCalls)
}

func TestTransferHistory_UpstreamFailure(t *testing.T) {
	svc := newHistoryServiceForTest(&stubExplorer{err: errors.New("boom")})

	transfers, degraded := svc.TransferHistory(context.Background(), historyWallet)
	assert.Empty(t, transfers)
	assert.True(t, degraded, "an empty degraded history means no data, not zero transfers")
}

func TestTransferHistory_DropsUnparseableRecords(t *testing.T) {
	bad := nativeRecord(1, 0, historyWallet)
	bad.TimeStamp = "not-a-number"
	good := tokenRecord(1, time.Now().Unix(), historyWallet)

	svc := newHistoryServiceForTest(&stubExplorer{
		nativeTxs: []httpclient.ExplorerTx{bad},
		tokenTxs:  []httpclient.ExplorerTx{good},
	})

	transfers, degraded := svc.TransferHistory(context.Background(), historyWallet)
	require.False(t, degraded)
	require.Len(t, transfers, 1)
	assert.Equal(t, entity.AssetToken, transfers[0].Asset)
}

func TestTransferHistory_CachesResult(t *testing.T) {
	explorer := &stubExplorer{
		tokenTxs: []httpclient.ExplorerTx{tokenRecord(1, time.Now().Unix(), historyWallet)},
	}
	svc := newHistoryServiceForTest(explorer)

	first, _ := svc.TransferHistory(context.Background(), historyWallet)
	second, degraded := svc.TransferHistory(context.Background(), historyWallet)

	assert.False(t, degraded)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, explorer.nativeCalls, "second call must be served from cache")
	assert.Equal(t, 1, explorer.tokenCalls)
}
