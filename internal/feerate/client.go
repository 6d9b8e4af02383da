package feerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Fetcher resolves the taker fee rate (in basis points) for an instrument.
type Fetcher interface {
	FetchFeeRate(ctx context.Context, tokenID string) (int, error)
}

// Client fetches fee rates from the CLOB REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new fee rate client against the given CLOB host.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchFeeRate fetches the taker fee rate for a token.
// The venue contract is GET /fee-rate?token_id=<id> -> {"fee_rate_bps": int}.
// Any failure is an error: the caller must never treat a failed fetch as a
// zero fee rate.
func (c *Client) FetchFeeRate(ctx context.Context, tokenID string) (int, error) {
	reqURL := fmt.Sprintf("%s/fee-rate?token_id=%s", c.baseURL, url.QueryEscape(tokenID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("fetch fee rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fee rate API error: status %d", resp.StatusCode)
	}

	// The field is decoded through a pointer so a response that omits it is
	// rejected instead of being read as a zero fee rate.
	var data struct {
		FeeRateBps *int `json:"fee_rate_bps"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode fee rate response: %w", err)
	}

	if data.FeeRateBps == nil {
		return 0, fmt.Errorf("fee rate response missing fee_rate_bps field")
	}

	if *data.FeeRateBps < 0 {
		return 0, fmt.Errorf("fee rate response has negative fee_rate_bps: %d", *data.FeeRateBps)
	}

	return *data.FeeRateBps, nil
}
