package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/pkg/types"
)

const testPrivateKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// newMockAuthServer simulates the venue's credential endpoints. If
// createFails is true, POST /auth/api-key returns 400 and the session must
// fall back to GET /auth/derive-api-key.
func newMockAuthServer(t *testing.T, createFails bool, calls *int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		if r.Header.Get("POLY_ADDRESS") == "" || r.Header.Get("POLY_SIGNATURE") == "" ||
			r.Header.Get("POLY_TIMESTAMP") == "" || r.Header.Get("POLY_NONCE") == "" {
			http.Error(w, "missing L1 auth headers", http.StatusUnauthorized)
			return
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/api-key":
			if createFails {
				http.Error(w, `{"error":"api key already exists"}`, http.StatusBadRequest)
				return
			}
		case r.Method == http.MethodGet && r.URL.Path == "/auth/derive-api-key":
			// fine
		default:
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"apiKey":"key-1","secret":"c2VjcmV0","passphrase":"pass-1"}`))
	}))
}

func newTestSession(t *testing.T, host string) *Session {
	t.Helper()

	session, err := NewSession(&SessionConfig{
		Host:       host,
		ChainID:    137,
		PrivateKey: testPrivateKey,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return session
}

func TestNewSession_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  SessionConfig
	}{
		{"empty-host", SessionConfig{Host: "", ChainID: 137, PrivateKey: testPrivateKey}},
		{"zero-chain-id", SessionConfig{Host: "https://clob.polymarket.com", ChainID: 0, PrivateKey: testPrivateKey}},
		{"empty-key", SessionConfig{Host: "https://clob.polymarket.com", ChainID: 137, PrivateKey: ""}},
		{"garbage-key", SessionConfig{Host: "https://clob.polymarket.com", ChainID: 137, PrivateKey: "not-hex"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(&tt.cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var invalid *types.InvalidConfigurationError
			if !errors.As(err, &invalid) {
				t.Errorf("expected InvalidConfigurationError, got %T: %v", err, err)
			}
		})
	}
}

func TestNewSession_DerivesAddress(t *testing.T) {
	session := newTestSession(t, "https://clob.polymarket.com/")

	if session.Address() == "" {
		t.Error("expected address derived from private key")
	}
	if session.Host() != "https://clob.polymarket.com" {
		t.Errorf("expected trailing slash trimmed, got %q", session.Host())
	}
	if session.Authenticated() {
		t.Error("new session must start unauthenticated")
	}
}

func TestSession_MakerAddress(t *testing.T) {
	session := newTestSession(t, "https://clob.polymarket.com")
	if session.MakerAddress() != session.Address() {
		t.Error("without a funder, maker must be the EOA address")
	}

	funded, err := NewSession(&SessionConfig{
		Host:          "https://clob.polymarket.com",
		ChainID:       137,
		PrivateKey:    testPrivateKey,
		FunderAddress: "0x1111111111111111111111111111111111111111",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if funded.MakerAddress() != "0x1111111111111111111111111111111111111111" {
		t.Errorf("expected funder as maker, got %q", funded.MakerAddress())
	}
}

func TestSession_DeriveCredentials_Create(t *testing.T) {
	var calls int32
	server := newMockAuthServer(t, false, &calls)
	defer server.Close()

	session := newTestSession(t, server.URL)

	creds, err := session.DeriveCredentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if creds.Key != "key-1" || creds.Secret != "c2VjcmV0" || creds.Passphrase != "pass-1" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if !session.Authenticated() {
		t.Error("expected session to be authenticated")
	}
}

func TestSession_DeriveCredentials_FallsBackToDerive(t *testing.T) {
	var calls int32
	server := newMockAuthServer(t, true, &calls)
	defer server.Close()

	session := newTestSession(t, server.URL)

	creds, err := session.DeriveCredentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.Key != "key-1" {
		t.Errorf("expected derived key, got %q", creds.Key)
	}

	// POST failed, GET succeeded.
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected two auth calls (create then derive), got %d", calls)
	}
}

func TestSession_DeriveCredentials_Idempotent(t *testing.T) {
	var calls int32
	server := newMockAuthServer(t, false, &calls)
	defer server.Close()

	session := newTestSession(t, server.URL)
	ctx := context.Background()

	first, err := session.DeriveCredentials(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := session.DeriveCredentials(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected identical credentials on repeated derivation")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected one network call for repeated derivation, got %d", calls)
	}
}

func TestSession_CredentialsBeforeDerivation(t *testing.T) {
	session := newTestSession(t, "https://clob.polymarket.com")

	if _, err := session.Credentials(); err == nil {
		t.Fatal("expected error before derivation, got nil")
	}
}

func TestSession_DeriveCredentials_VenueDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	session := newTestSession(t, server.URL)

	if _, err := session.DeriveCredentials(context.Background()); err == nil {
		t.Fatal("expected error when venue is down, got nil")
	}
	if session.Authenticated() {
		t.Error("failed derivation must not authenticate the session")
	}
}

func TestSignClobAuth(t *testing.T) {
	session := newTestSession(t, "https://clob.polymarket.com")

	sig, err := signClobAuth(session.Signer(), 137, session.Address(), "1700000000", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 65-byte signature, hex encoded with 0x prefix.
	if len(sig) != 2+65*2 {
		t.Errorf("expected 132-char signature, got %d chars", len(sig))
	}
	if sig[:2] != "0x" {
		t.Errorf("expected 0x prefix, got %q", sig[:2])
	}

	// Deterministic inputs must produce a deterministic signature.
	sig2, err := signClobAuth(session.Signer(), 137, session.Address(), "1700000000", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != sig2 {
		t.Error("expected deterministic signature for identical inputs")
	}
}
