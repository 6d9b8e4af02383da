package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/polybridge/clob-bridge/pkg/types"
)

// MockClob is an HTTP server that simulates the CLOB REST API: L1 credential
// derivation, fee rate lookups, and order submission. Counters record how
// many network calls each concern actually made, which is how coalescing and
// memoization assertions work.
type MockClob struct {
	*httptest.Server

	mu          sync.Mutex
	createCalls int
	deriveCalls int
	feeCalls    int
	orderCalls  int
	lastOrder   types.OrderSubmissionRequest

	// Behavior knobs, set before the first request.
	Credentials    types.APICredentials
	FeeRateBps     int
	FeeRateFails   bool
	CreateKeyFails bool // force the fallback to GET /auth/derive-api-key
	OrderStatus    int
	OrderResponse  string
}

// NewMockClob creates a mock venue with a happy-path default behavior:
// credentials derive on the first try, the fee rate is 37 bps, and orders
// are accepted.
func NewMockClob() *MockClob {
	mock := &MockClob{
		Credentials: types.APICredentials{
			Key:        "key-1",
			Secret:     "dGVzdC1zZWNyZXQ=",
			Passphrase: "phrase-1",
		},
		FeeRateBps:    37,
		OrderStatus:   http.StatusOK,
		OrderResponse: `{"success": true, "orderID": "0xabc"}`,
	}

	mock.Server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

func (m *MockClob) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/auth/api-key" && r.Method == http.MethodPost:
		m.mu.Lock()
		m.createCalls++
		fails := m.CreateKeyFails
		m.mu.Unlock()

		if !m.checkL1Headers(w, r) {
			return
		}
		if fails {
			http.Error(w, `{"error": "key already exists"}`, http.StatusBadRequest)
			return
		}
		m.writeCredentials(w)

	case r.URL.Path == "/auth/derive-api-key" && r.Method == http.MethodGet:
		m.mu.Lock()
		m.deriveCalls++
		m.mu.Unlock()

		if !m.checkL1Headers(w, r) {
			return
		}
		m.writeCredentials(w)

	case r.URL.Path == "/fee-rate" && r.Method == http.MethodGet:
		m.mu.Lock()
		m.feeCalls++
		fails, bps := m.FeeRateFails, m.FeeRateBps
		m.mu.Unlock()

		if fails {
			http.Error(w, `{"error": "internal error"}`, http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("token_id") == "" {
			http.Error(w, `{"error": "missing token_id"}`, http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"fee_rate_bps": %d}`, bps)

	case r.URL.Path == "/order" && r.Method == http.MethodPost:
		if !m.checkL2Headers(w, r) {
			return
		}

		m.mu.Lock()
		m.orderCalls++
		err := json.NewDecoder(r.Body).Decode(&m.lastOrder)
		status, response := m.OrderStatus, m.OrderResponse
		m.mu.Unlock()

		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		fmt.Fprint(w, response)

	default:
		http.NotFound(w, r)
	}
}

func (m *MockClob) checkL1Headers(w http.ResponseWriter, r *http.Request) bool {
	for _, h := range []string{"POLY_ADDRESS", "POLY_SIGNATURE", "POLY_TIMESTAMP", "POLY_NONCE"} {
		if r.Header.Get(h) == "" {
			http.Error(w, `{"error": "missing `+h+`"}`, http.StatusUnauthorized)
			return false
		}
	}
	return true
}

func (m *MockClob) checkL2Headers(w http.ResponseWriter, r *http.Request) bool {
	for _, h := range []string{"POLY_API_KEY", "POLY_SIGNATURE", "POLY_TIMESTAMP", "POLY_PASSPHRASE", "POLY_ADDRESS"} {
		if r.Header.Get(h) == "" {
			http.Error(w, `{"error": "missing `+h+`"}`, http.StatusUnauthorized)
			return false
		}
	}
	return true
}

func (m *MockClob) writeCredentials(w http.ResponseWriter) {
	m.mu.Lock()
	creds := m.Credentials
	m.mu.Unlock()
	_ = json.NewEncoder(w).Encode(creds)
}

// AuthCalls returns the total credential derivation requests seen, across
// both the create and derive endpoints.
func (m *MockClob) AuthCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls + m.deriveCalls
}

// DeriveCalls returns the requests to the derive fallback endpoint.
func (m *MockClob) DeriveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deriveCalls
}

// FeeCalls returns the fee rate fetches seen.
func (m *MockClob) FeeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.feeCalls
}

// OrderCalls returns the order submissions seen.
func (m *MockClob) OrderCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orderCalls
}

// LastOrder returns the most recently submitted order request.
func (m *MockClob) LastOrder() types.OrderSubmissionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOrder
}

// SetOrderResponse configures the body and status returned by POST /order.
func (m *MockClob) SetOrderResponse(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderStatus = status
	m.OrderResponse = body
}
