package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// PriceClient defines the interface for the spot price quote service.
type PriceClient interface {
	// NativePriceUSD returns the native coin's USD spot price.
	NativePriceUSD(ctx context.Context) (float64, error)
}

// coinGeckoClientImpl is the implementation of PriceClient backed by the
// CoinGecko simple price endpoint.
type coinGeckoClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	assetID string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new instance of coinGeckoClientImpl.
func NewCoinGeckoClient(baseURL, assetID string, timeout time.Duration, logger *zap.Logger) PriceClient {
	return &coinGeckoClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		assetID: assetID,
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// NativePriceUSD implements the PriceClient interface.
func (c *coinGeckoClientImpl) NativePriceUSD(ctx context.Context) (float64, error) {
	requestURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, c.assetID)

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
			return 0, fmt.Errorf("failed to execute price request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return 0, fmt.Errorf("failed to execute price request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("Price API request failed",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return 0, fmt.Errorf("price API request failed with status %d", resp.StatusCode())
	}

	// Response shape: { "<assetID>": { "usd": <number> } }
	var quotes map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.Unmarshal(rawBody, &quotes); err != nil {
		return 0, fmt.Errorf("failed to unmarshal price response: %w", err)
	}

	quote, ok := quotes[c.assetID]
	if !ok || quote.USD <= 0 {
		return 0, fmt.Errorf("price response missing a positive usd quote for %q", c.assetID)
	}

	c.logger.Debug("Fetched native coin spot price", zap.Float64("usd", quote.USD))
	return quote.USD, nil
}
