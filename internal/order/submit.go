package order

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/polymarket/go-order-utils/pkg/model"
	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/pkg/types"
)

// Submitter posts signed orders to the CLOB with L2 (HMAC) authentication.
type Submitter struct {
	host       string
	address    string // EOA address, goes in POLY_ADDRESS
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSubmitter creates a submitter for the given CLOB host. address must be
// the EOA address the credentials were derived for, not the funder.
func NewSubmitter(host, address string, logger *zap.Logger) *Submitter {
	return &Submitter{
		host:       host,
		address:    address,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Submit posts a signed order and interprets the venue's response.
//
// A response the venue actually produced, 2xx or not, is returned as a
// SubmissionResult: the venue declining an order is a recoverable verdict,
// not a pipeline failure. Only transport-level failures return an error.
func (s *Submitter) Submit(ctx context.Context, signedOrder *model.SignedOrder, orderType types.OrderType, creds types.APICredentials) (types.SubmissionResult, error) {
	request := types.OrderSubmissionRequest{
		Order:     ToJSON(signedOrder),
		Owner:     creds.Key, // "owner" is the API key, not the maker address
		OrderType: string(orderType),
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return types.SubmissionResult{}, fmt.Errorf("marshal request: %w", err)
	}

	const method = http.MethodPost
	const requestPath = "/order"

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature, err := hmacSignature(creds.Secret, timestamp, method, requestPath, reqBody)
	if err != nil {
		return types.SubmissionResult{}, fmt.Errorf("sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.host+requestPath, bytes.NewReader(reqBody))
	if err != nil {
		return types.SubmissionResult{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("POLY_API_KEY", creds.Key)
	req.Header.Set("POLY_SIGNATURE", signature)
	req.Header.Set("POLY_TIMESTAMP", timestamp)
	req.Header.Set("POLY_PASSPHRASE", creds.Passphrase)
	req.Header.Set("POLY_ADDRESS", s.address)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	SubmitDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return types.SubmissionResult{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.SubmissionResult{}, fmt.Errorf("read response: %w", err)
	}

	result := Interpret(body)
	if result.Success {
		SubmissionsTotal.WithLabelValues("success").Inc()
	} else {
		SubmissionsTotal.WithLabelValues("rejected").Inc()
	}

	s.logger.Info("order-submitted",
		zap.Int("status", resp.StatusCode),
		zap.Bool("success", result.Success),
		zap.String("order-type", string(orderType)))

	return result, nil
}

// hmacSignature builds the L2 request signature: HMAC-SHA256 over
// timestamp+method+path+body keyed by the URL-safe base64 decoded secret,
// encoded back as URL-safe base64 (matching the official client).
func hmacSignature(secret, timestamp, method, path string, body []byte) (string, error) {
	secretBytes, err := base64.URLEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}

	payload := timestamp + method + path + string(body)

	h := hmac.New(sha256.New, secretBytes)
	h.Write([]byte(payload))

	return base64.URLEncoding.EncodeToString(h.Sum(nil)), nil
}
