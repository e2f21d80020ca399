package service

import (
	"context"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/pkg/cache"
	"portfolio_dashboard/internal/pkg/metrics"
	"portfolio_dashboard/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

// User-facing failure messages. These are rendered verbatim by the UI.
const (
	msgInvalidAmount      = "Please enter a valid amount"
	msgNoPrivateKey       = "Wallet private key not configured"
	msgNoDepositAddress   = "Deposit wallet address not configured"
	msgInvalidRecipient   = "Invalid recipient address"
	msgInsufficientFunds  = "Insufficient balance"
	msgSubmissionFailed   = "Transaction submission failed"
	msgConfirmationTimout = "Transaction confirmation timed out"
	msgTransactionFailed  = "Transaction failed on-chain"
)

// transferServiceImpl implements port.TransferService. Every failure path
// resolves to a TransferResult; nothing is raised and nothing is retried.
type transferServiceImpl struct {
	chainClient port.BlockchainClient
	cache       *cache.Store
	logger      port.Logger
	cfg         *configloader.Config
}

// NewTransferService creates a new instance of transferServiceImpl.
// chainClient may be nil when the RPC endpoint is unconfigured.
func NewTransferService(
	cc port.BlockchainClient,
	store *cache.Store,
	l port.Logger,
	config *configloader.Config,
) port.TransferService {
	return &transferServiceImpl{
		chainClient: cc,
		cache:       store,
		logger:      l,
		cfg:         config,
	}
}

// Deposit implements port.TransferService: sends the given token amount to
// the configured deposit destination.
func (s *transferServiceImpl) Deposit(ctx context.Context, amount string) entity.TransferResult {
	parsed, ok := parseAmount(amount)
	if !ok {
		metrics.Submissions.WithLabelValues("deposit", "invalid_amount").Inc()
		return entity.TransferFailed(msgInvalidAmount)
	}
	if s.chainClient == nil || !configloader.IsConfigured(s.cfg.Transfer.PrivateKey) {
		metrics.Submissions.WithLabelValues("deposit", "config_error").Inc()
		return entity.TransferFailed(msgNoPrivateKey)
	}
	if !configloader.IsConfigured(s.cfg.Transfer.DepositAddress) {
		metrics.Submissions.WithLabelValues("deposit", "config_error").Inc()
		return entity.TransferFailed(msgNoDepositAddress)
	}

	destination := s.cfg.Transfer.DepositAddress
	result := s.submit(ctx, "deposit", destination, parsed)
	if result.Success {
		s.cache.Invalidate(SnapshotCacheKey(s.cfg.Chain.ChainID, destination))
	}
	return result
}

// Withdraw implements port.TransferService: sends the given token amount
// from the configured wallet to toAddress, after a balance check.
func (s *transferServiceImpl) Withdraw(ctx context.Context, toAddress, amount string) entity.TransferResult {
	parsed, ok := parseAmount(amount)
	if !ok {
		metrics.Submissions.WithLabelValues("withdraw", "invalid_amount").Inc()
		return entity.TransferFailed(msgInvalidAmount)
	}
	if s.chainClient == nil || !configloader.IsConfigured(s.cfg.Transfer.PrivateKey) {
		metrics.Submissions.WithLabelValues("withdraw", "config_error").Inc()
		return entity.TransferFailed(msgNoPrivateKey)
	}
	if !ValidWalletAddress(toAddress) {
		metrics.Submissions.WithLabelValues("withdraw", "invalid_recipient").Inc()
		return entity.TransferFailed(msgInvalidRecipient)
	}

	sender := s.chainClient.SenderAddress()
	state, err := s.chainClient.GetTokenState(ctx, sender)
	if err != nil {
		s.logger.Warn("Balance check failed before withdrawal", "error", err)
		metrics.Submissions.WithLabelValues("withdraw", "error").Inc()
		return entity.TransferFailed(msgSubmissionFailed)
	}
	if utils.FromBaseUnits(state.Balance, state.Decimals).LessThan(parsed) {
		metrics.Submissions.WithLabelValues("withdraw", "insufficient_balance").Inc()
		return entity.TransferFailed(msgInsufficientFunds)
	}

	result := s.submit(ctx, "withdraw", toAddress, parsed)
	if result.Success {
		s.cache.Invalidate(SnapshotCacheKey(s.cfg.Chain.ChainID, sender))
		s.cache.Invalidate(SnapshotCacheKey(s.cfg.Chain.ChainID, toAddress))
	}
	return result
}

// submit converts the amount to base units, sends the transfer and waits for
// confirmation bounded by the configured timeout. A timed-out wait does not
// cancel the on-chain transaction; the returned result carries the tx hash
// so its true fate stays queryable.
func (s *transferServiceImpl) submit(ctx context.Context, operation, toAddress string, amount decimal.Decimal) entity.TransferResult {
	decimals := uint8(fallbackTokenDecimals)
	if state, err := s.chainClient.GetTokenState(ctx, s.chainClient.SenderAddress()); err == nil {
		decimals = state.Decimals
	} else {
		s.logger.Warn("Token decimals lookup failed, assuming fallback", "decimals", decimals, "error", err)
	}

	txHash, err := s.chainClient.SubmitTokenTransfer(ctx, toAddress, utils.ToBaseUnits(amount, decimals))
	if err != nil {
		s.logger.Error("Token transfer submission failed", "operation", operation, "error", err)
		metrics.Submissions.WithLabelValues(operation, "error").Inc()
		return entity.TransferFailed(msgSubmissionFailed)
	}

	confirmationTimeout := time.Duration(s.cfg.Transfer.ConfirmationTimeoutSecond) * time.Second
	confCtx, cancel := context.WithTimeout(ctx, confirmationTimeout)
	defer cancel()

	if err := s.chainClient.WaitForConfirmation(confCtx, txHash); err != nil {
		result := entity.TransferFailed(msgTransactionFailed)
		outcome := "reverted"
		if confCtx.Err() != nil {
			result = entity.TransferFailed(msgConfirmationTimout)
			outcome = "timeout"
		}
		result.TxHash = txHash
		s.logger.Warn("Token transfer not confirmed",
			"operation", operation, "txHash", txHash, "outcome", outcome, "error", err)
		metrics.Submissions.WithLabelValues(operation, outcome).Inc()
		return result
	}

	s.logger.Info("Token transfer confirmed", "operation", operation, "txHash", txHash)
	metrics.Submissions.WithLabelValues(operation, "ok").Inc()
	return entity.TransferOK(txHash)
}

// parseAmount accepts a positive decimal string.
func parseAmount(amount string) (decimal.Decimal, bool) {
	parsed, err := decimal.NewFromString(amount)
	if err != nil || parsed.Sign() <= 0 {
		return decimal.Zero, false
	}
	return parsed, true
}
