package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/internal/bridge"
	"github.com/polybridge/clob-bridge/internal/testutil"
	"github.com/polybridge/clob-bridge/pkg/healthprobe"
	"github.com/polybridge/clob-bridge/pkg/types"
)

const testPrivateKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) (*Server, *healthprobe.Probe) {
	t.Helper()

	probe := healthprobe.New()
	server := New(&Config{
		Port:     "0",
		Logger:   zap.NewNop(),
		Probe:    probe,
		Pipeline: bridge.NewPipeline(0, nil, zap.NewNop()),
	})

	return server, probe
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyEndpoint(t *testing.T) {
	server, probe := newTestServer(t)

	rec := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before ready, got %d", rec.Code)
	}

	probe.SetReady()
	rec = httptest.NewRecorder()
	server.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 after ready, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestPostOrder_MalformedTask(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/order", strings.NewReader(`{"action": `))
	rec := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestPostOrder_FullPipeline(t *testing.T) {
	venue := testutil.NewMockClob()
	defer venue.Close()

	server, _ := newTestServer(t)

	body := `{
		"action": "post_order",
		"payload": {
			"host": "` + venue.URL + `",
			"chainId": 137,
			"privateKey": "` + testPrivateKey + `",
			"orderType": "FOK",
			"order": {"tokenID": "123456", "side": "BUY", "amount": 100, "price": 0.5}
		}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/order", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result types.SubmissionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success {
		t.Errorf("expected success, got %+v", result)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input", &types.InputError{Field: "action", Message: "missing"}, http.StatusBadRequest},
		{"config", &types.InvalidConfigurationError{Field: "host", Reason: "empty"}, http.StatusBadRequest},
		{"validation", &types.OrderValidationError{Field: "amount", Reason: "bad"}, http.StatusBadRequest},
		{"fee-rate", &types.FeeRateUnavailableError{TokenID: "1", Cause: errors.New("down")}, http.StatusBadGateway},
		{"other", errors.New("transport"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
