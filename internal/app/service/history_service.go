package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/infrastructure/httpclient"
	"portfolio_dashboard/internal/pkg/cache"
	"portfolio_dashboard/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	nativeDecimals = 18

	// Per-list caps applied before merging, and the overall cap after.
	maxNativeTransfers = 10
	maxTokenTransfers  = 20
	maxMergedTransfers = 30
)

// historyServiceImpl implements port.HistoryService. It fan-outs the two
// explorer list calls, normalizes the raw records into entity.Transfer and
// caches the merged result per address.
type historyServiceImpl struct {
	explorer httpclient.ExplorerClient
	cache    *cache.Store
	logger   port.Logger
	cfg      *configloader.Config
}

// NewHistoryService creates a new instance of historyServiceImpl.
func NewHistoryService(
	ec httpclient.ExplorerClient,
	store *cache.Store,
	l port.Logger,
	config *configloader.Config,
) port.HistoryService {
	return &historyServiceImpl{
		explorer: ec,
		cache:    store,
		logger:   l,
		cfg:      config,
	}
}

func (s *historyServiceImpl) historyCacheKey(address string) string {
	return fmt.Sprintf("history:%d:%s", s.cfg.Chain.ChainID, strings.ToLower(address))
}

// TransferHistory implements port.HistoryService. The address is not
// validated here; callers do that upstream. The degraded flag (second return
// value) is true when the returned list is a stand-in for data that could
// not be fetched.
func (s *historyServiceImpl) TransferHistory(ctx context.Context, walletAddress string) ([]entity.Transfer, bool) {
	key := s.historyCacheKey(walletAddress)
	if v, ok := s.cache.Get(key); ok {
		if transfers, ok := v.([]entity.Transfer); ok {
			metrics.ObserveCache("history", true)
			return transfers, false
		}
	}
	metrics.ObserveCache("history", false)

	if !configloader.IsConfigured(s.cfg.Explorer.APIKey) {
		s.logger.Debug("Explorer API key not configured, transfer history unavailable")
		return []entity.Transfer{}, true
	}

	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Explorer.RequestTimeoutMillis)*time.Millisecond)
	defer cancel()

	var nativeTxs, tokenTxs []httpclient.ExplorerTx
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		var err error
		nativeTxs, err = s.explorer.NativeTxList(gctx, walletAddress)
		return err
	})
	g.Go(func() error {
		var err error
		tokenTxs, err = s.explorer.TokenTxList(gctx, walletAddress, s.cfg.Chain.TokenContract)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Transfer history fetch failed, returning empty history",
			"address", walletAddress, "error", err)
		metrics.UpstreamFailures.WithLabelValues("explorer").Inc()
		return []entity.Transfer{}, true
	}

	if len(nativeTxs) > maxNativeTransfers {
		nativeTxs = nativeTxs[:maxNativeTransfers]
	}
	if len(tokenTxs) > maxTokenTransfers {
		tokenTxs = tokenTxs[:maxTokenTransfers]
	}

	merged := make([]entity.Transfer, 0, len(nativeTxs)+len(tokenTxs))
	for _, tx := range nativeTxs {
		if t, ok := s.normalize(tx, walletAddress, entity.AssetNative); ok {
			merged = append(merged, t)
		}
	}
	for _, tx := range tokenTxs {
		if t, ok := s.normalize(tx, walletAddress, entity.AssetToken); ok {
			merged = append(merged, t)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	if len(merged) > maxMergedTransfers {
		merged = merged[:maxMergedTransfers]
	}

	s.cache.Set(key, merged)
	s.logger.Debug("Transfer history fetched",
		"address", walletAddress, "native", len(nativeTxs), "token", len(tokenTxs), "merged", len(merged))
	return merged, false
}

// normalize converts one raw explorer record into a Transfer. Records with
// unparseable numeric fields are dropped with a warning.
func (s *historyServiceImpl) normalize(tx httpclient.ExplorerTx, walletAddress string, asset entity.AssetKind) (entity.Transfer, bool) {
	unix, err := strconv.ParseInt(tx.TimeStamp, 10, 64)
	if err != nil {
		s.logger.Warn("Dropping transfer with invalid timestamp", "hash", tx.Hash, "timestamp", tx.TimeStamp)
		return entity.Transfer{}, false
	}

	rawValue, err := decimal.NewFromString(tx.Value)
	if err != nil {
		s.logger.Warn("Dropping transfer with invalid value", "hash", tx.Hash, "value", tx.Value)
		return entity.Transfer{}, false
	}

	decimals := int64(nativeDecimals)
	if asset == entity.AssetToken {
		decimals, err = strconv.ParseInt(tx.TokenDecimal, 10, 32)
		if err != nil {
			s.logger.Warn("Dropping token transfer with invalid decimals", "hash", tx.Hash, "tokenDecimal", tx.TokenDecimal)
			return entity.Transfer{}, false
		}
	}
	amount := rawValue.Shift(int32(-decimals))

	return entity.NewTransfer(tx.Hash, tx.From, tx.To, walletAddress, amount, time.Unix(unix, 0).UTC(), asset), true
}
