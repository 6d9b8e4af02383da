package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/pkg/types"
)

// testCreds uses a URL-safe base64 secret, matching what the venue issues.
var testCreds = types.APICredentials{
	Key:        "test-api-key",
	Secret:     "dGVzdC1zZWNyZXQ=",
	Passphrase: "test-passphrase",
}

func TestSubmitter_Submit_Success(t *testing.T) {
	var captured types.OrderSubmissionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}

		// L2 auth headers must all be present.
		for _, h := range []string{"POLY_API_KEY", "POLY_SIGNATURE", "POLY_TIMESTAMP", "POLY_PASSPHRASE", "POLY_ADDRESS"} {
			if r.Header.Get(h) == "" {
				http.Error(w, "missing header "+h, http.StatusUnauthorized)
				return
			}
		}

		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "orderID": "0xabc", "status": "matched"}`))
	}))
	defer server.Close()

	b := newTestBuilder(t)
	intent := &Intent{TokenID: "123456", Side: types.SideBuy, Amount: 100, Price: floatPtr(0.5)}
	signedOrder, err := b.Build(intent, types.OrderTypeFOK, 37)
	if err != nil {
		t.Fatalf("failed to build order: %v", err)
	}

	submitter := NewSubmitter(server.URL, b.session.Address(), zap.NewNop())

	result, err := submitter.Submit(context.Background(), signedOrder, types.OrderTypeFOK, testCreds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success verdict, got %+v", result)
	}

	// The submitted payload must carry exactly the fee rate that was signed.
	if captured.Order.FeeRateBps != "37" {
		t.Errorf("expected submitted feeRateBps \"37\", got %q", captured.Order.FeeRateBps)
	}
	if captured.Order.FeeRateBps != signedOrder.FeeRateBps.String() {
		t.Errorf("submitted fee rate %q diverges from signed %q",
			captured.Order.FeeRateBps, signedOrder.FeeRateBps.String())
	}

	if captured.Owner != testCreds.Key {
		t.Errorf("expected owner to be the API key, got %q", captured.Owner)
	}
	if captured.OrderType != "FOK" {
		t.Errorf("expected order type FOK, got %q", captured.OrderType)
	}
}

func TestSubmitter_Submit_RejectionIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "not enough balance / allowance"}`))
	}))
	defer server.Close()

	b := newTestBuilder(t)
	intent := &Intent{TokenID: "123456", Side: types.SideBuy, Amount: 100, Price: floatPtr(0.5)}
	signedOrder, err := b.Build(intent, types.OrderTypeGTC, 0)
	if err != nil {
		t.Fatalf("failed to build order: %v", err)
	}

	submitter := NewSubmitter(server.URL, b.session.Address(), zap.NewNop())

	result, err := submitter.Submit(context.Background(), signedOrder, types.OrderTypeGTC, testCreds)
	if err != nil {
		t.Fatalf("venue rejection must not be a pipeline error, got: %v", err)
	}

	if result.Success {
		t.Error("expected failure verdict")
	}
	if result.Error != "not enough balance / allowance" {
		t.Errorf("expected venue message, got %q", result.Error)
	}
}

func TestSubmitter_Submit_BadSecret(t *testing.T) {
	b := newTestBuilder(t)
	intent := &Intent{TokenID: "123456", Side: types.SideBuy, Amount: 100, Price: floatPtr(0.5)}
	signedOrder, err := b.Build(intent, types.OrderTypeFOK, 0)
	if err != nil {
		t.Fatalf("failed to build order: %v", err)
	}

	submitter := NewSubmitter("http://localhost:1", b.session.Address(), zap.NewNop())

	badCreds := types.APICredentials{Key: "k", Secret: "%%%not-base64%%%", Passphrase: "p"}
	if _, err := submitter.Submit(context.Background(), signedOrder, types.OrderTypeFOK, badCreds); err == nil {
		t.Fatal("expected error for undecodable secret")
	}
}

func TestSubmitter_Submit_TransportError(t *testing.T) {
	b := newTestBuilder(t)
	intent := &Intent{TokenID: "123456", Side: types.SideBuy, Amount: 100, Price: floatPtr(0.5)}
	signedOrder, err := b.Build(intent, types.OrderTypeFOK, 0)
	if err != nil {
		t.Fatalf("failed to build order: %v", err)
	}

	// Nothing listens here: transport failures are real errors, unlike
	// venue rejections.
	submitter := NewSubmitter("http://127.0.0.1:1", b.session.Address(), zap.NewNop())

	if _, err := submitter.Submit(context.Background(), signedOrder, types.OrderTypeFOK, testCreds); err == nil {
		t.Fatal("expected transport error")
	}
}
