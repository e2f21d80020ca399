package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExplorerClient defines the interface for the ledger-indexing REST API
// (Etherscan-compatible). Both calls request the full block range in
// descending time order.
type ExplorerClient interface {
	NativeTxList(ctx context.Context, address string) ([]ExplorerTx, error)
	TokenTxList(ctx context.Context, address, contractAddress string) ([]ExplorerTx, error)
}

// ExplorerTx is a raw transaction record as the explorer returns it. Numeric
// fields arrive as decimal strings.
type ExplorerTx struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TimeStamp       string `json:"timeStamp"`
	ContractAddress string `json:"contractAddress,omitempty"`
	TokenSymbol     string `json:"tokenSymbol,omitempty"`
	TokenDecimal    string `json:"tokenDecimal,omitempty"`
	IsError         string `json:"isError,omitempty"`
}

// explorerEnvelope is the common Etherscan response wrapper. Result is kept
// raw because the API returns a string instead of an array on some error
// statuses.
type explorerEnvelope struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Result  jsoniter.RawMessage `json:"result"`
}

// etherscanClientImpl is the implementation of ExplorerClient.
type etherscanClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewEtherscanClient creates a new instance of etherscanClientImpl. The rate
// limiter keeps the client inside the explorer's requests-per-second quota.
func NewEtherscanClient(baseURL, apiKey string, timeout time.Duration, rps float64, burst int, logger *zap.Logger) ExplorerClient {
	return &etherscanClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger.Named("EtherscanClient"),
	}
}

// NativeTxList implements the ExplorerClient interface.
func (c *etherscanClientImpl) NativeTxList(ctx context.Context, address string) ([]ExplorerTx, error) {
	requestURL := fmt.Sprintf(
		"%s?module=account&action=txlist&address=%s&startblock=0&endblock=99999999&sort=desc&apikey=%s",
		c.baseURL, address, c.apiKey)
	return c.fetchTxList(ctx, requestURL, "txlist")
}

// TokenTxList implements the ExplorerClient interface.
func (c *etherscanClientImpl) TokenTxList(ctx context.Context, address, contractAddress string) ([]ExplorerTx, error) {
	requestURL := fmt.Sprintf(
		"%s?module=account&action=tokentx&address=%s&contractaddress=%s&startblock=0&endblock=99999999&sort=desc&apikey=%s",
		c.baseURL, address, contractAddress, c.apiKey)
	return c.fetchTxList(ctx, requestURL, "tokentx")
}

func (c *etherscanClientImpl) fetchTxList(ctx context.Context, requestURL, action string) ([]ExplorerTx, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted for %s: %w", action, err)
	}

	c.logger.Debug("Requesting transaction list from explorer", zap.String("action", action))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute explorer request", zap.String("action", action), zap.Error(err))
			return nil, fmt.Errorf("failed to execute explorer %s request: %w", action, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute explorer request (with default timeout)", zap.String("action", action), zap.Error(err))
			return nil, fmt.Errorf("failed to execute explorer %s request with default timeout: %w", action, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Explorer API request failed",
			zap.String("action", action),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("explorer %s request failed with status %d", action, resp.StatusCode())
	}

	var envelope explorerEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		c.logger.Error("Failed to unmarshal explorer response envelope",
			zap.String("action", action), zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal explorer %s response: %w", action, err)
	}

	// Status "0" covers both "no transactions found" and API-side errors; the
	// contract with callers is "no data" either way.
	if envelope.Status != "1" {
		c.logger.Debug("Explorer returned non-success status, treating as no data",
			zap.String("action", action),
			zap.String("status", envelope.Status),
			zap.String("message", envelope.Message))
		return []ExplorerTx{}, nil
	}

	var txs []ExplorerTx
	if err := json.Unmarshal(envelope.Result, &txs); err != nil {
		c.logger.Error("Failed to unmarshal explorer result array",
			zap.String("action", action), zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal explorer %s result: %w", action, err)
	}

	c.logger.Debug("Explorer request succeeded", zap.String("action", action), zap.Int("txCount", len(txs)))
	return txs, nil
}
