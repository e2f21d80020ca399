package client

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"portfolio_dashboard/internal/app/port"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	tokenAddress   common.Address
	chainID        *big.Int
	signingKey     *ecdsa.PrivateKey // nil when no key is configured
	senderAddress  common.Address
	rpcCallTimeout time.Duration
	logger         *zap.Logger
}

// ERC20 ABI, minimal part: read methods plus transfer.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"payable":false,"stateMutability":"nonpayable","type":"function"}
]`

const (
	receiptPollInterval = 2 * time.Second
	fallbackGasLimit    = 100_000
)

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			// erc20ABI is a compile-time constant, a parse failure is a programming error
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
}

// NewEVMClient dials the RPC endpoint and builds a client bound to one token
// contract. privateKeyHex may be empty; submission methods then report the
// missing key. The key is parsed eagerly so a malformed one fails here, not
// at submit time.
func NewEVMClient(
	rpcURL string,
	tokenContract string,
	chainID int64,
	privateKeyHex string,
	connectionTimeout time.Duration,
	rpcCallTimeout time.Duration,
	logger *zap.Logger,
) (port.BlockchainClient, error) {
	initParsedERC20ABI()

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	ethClient, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	c := &EVMClient{
		ethClient:      ethClient,
		tokenAddress:   common.HexToAddress(tokenContract),
		chainID:        big.NewInt(chainID),
		rpcCallTimeout: rpcCallTimeout,
		logger:         logger.Named("EVMClient"),
	}

	// The configured chain id is what transactions are signed with; a node on
	// a different chain would make every submission invalid.
	if nodeChainID, err := ethClient.ChainID(ctx); err != nil {
		c.logger.Warn("Failed to query node chain id", zap.Error(err))
	} else if nodeChainID.Cmp(c.chainID) != 0 {
		return nil, fmt.Errorf("node reports chain id %s, configured chain id is %s", nodeChainID, c.chainID)
	}

	if privateKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse signing key: %w", err)
		}
		c.signingKey = key
		c.senderAddress = crypto.PubkeyToAddress(key.PublicKey)
	}

	return c, nil
}

// GetNativeBalance fetches the native coin balance for a wallet.
func (c *EVMClient) GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	balance, err := c.ethClient.BalanceAt(callCtx, common.HexToAddress(walletAddress), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch native balance for %s: %w", walletAddress, err)
	}
	return balance, nil
}

// GetTokenState reads balanceOf, decimals and symbol from the token contract.
func (c *EVMClient) GetTokenState(ctx context.Context, walletAddress string) (port.TokenState, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	var state port.TokenState

	var balance *big.Int
	if err := c.readContract(callCtx, "balanceOf", []any{common.HexToAddress(walletAddress)}, &balance); err != nil {
		return state, err
	}
	var decimals uint8
	if err := c.readContract(callCtx, "decimals", nil, &decimals); err != nil {
		return state, err
	}
	var symbol string
	if err := c.readContract(callCtx, "symbol", nil, &symbol); err != nil {
		return state, err
	}

	state.Balance = balance
	state.Decimals = decimals
	state.Symbol = symbol
	return state, nil
}

// readContract performs one eth_call against the token contract and unpacks
// the single return value into out (a pointer).
func (c *EVMClient) readContract(ctx context.Context, method string, args []any, out any) error {
	callData, err := parsedERC20ABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	raw, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &c.tokenAddress, Data: callData}, nil)
	if err != nil {
		return fmt.Errorf("%s call failed for contract %s: %w", method, c.tokenAddress.Hex(), err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%s call returned no data for contract %s", method, c.tokenAddress.Hex())
	}

	if err := parsedERC20ABI.UnpackIntoInterface(out, method, raw); err != nil {
		return fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return nil
}

// SenderAddress returns the configured signing address, or "".
func (c *EVMClient) SenderAddress() string {
	if c.signingKey == nil {
		return ""
	}
	return c.senderAddress.Hex()
}

// SubmitTokenTransfer signs and sends an ERC-20 transfer from the configured
// signing address.
func (c *EVMClient) SubmitTokenTransfer(ctx context.Context, toAddress string, amount *big.Int) (string, error) {
	if c.signingKey == nil {
		return "", fmt.Errorf("no signing key configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	callData, err := parsedERC20ABI.Pack("transfer", common.HexToAddress(toAddress), amount)
	if err != nil {
		return "", fmt.Errorf("failed to pack transfer call: %w", err)
	}

	nonce, err := c.ethClient.PendingNonceAt(callCtx, c.senderAddress)
	if err != nil {
		return "", fmt.Errorf("failed to fetch pending nonce for %s: %w", c.senderAddress.Hex(), err)
	}
	gasPrice, err := c.ethClient.SuggestGasPrice(callCtx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas price: %w", err)
	}

	gasLimit, err := c.ethClient.EstimateGas(callCtx, ethereum.CallMsg{
		From: c.senderAddress,
		To:   &c.tokenAddress,
		Data: callData,
	})
	if err != nil {
		c.logger.Warn("Gas estimation failed, using fallback limit",
			zap.Uint64("fallbackGasLimit", fallbackGasLimit), zap.Error(err))
		gasLimit = fallbackGasLimit
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.tokenAddress,
		Value:    big.NewInt(0),
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     callData,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := c.ethClient.SendTransaction(callCtx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	txHash := signedTx.Hash().Hex()
	c.logger.Info("Token transfer submitted",
		zap.String("txHash", txHash),
		zap.String("to", toAddress),
		zap.String("amount", amount.String()))
	return txHash, nil
}

// WaitForConfirmation polls for the transaction receipt until the context
// expires. The caller bounds the wait with its context deadline; on timeout
// the transaction may still be mined later.
func (c *EVMClient) WaitForConfirmation(ctx context.Context, txHash string) error {
	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction %s reverted on-chain", txHash)
			}
			return nil
		}
		if err != ethereum.NotFound {
			c.logger.Debug("Receipt poll failed, retrying", zap.String("txHash", txHash), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation wait for %s aborted: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}
