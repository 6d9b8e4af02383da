package auth

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/pkg/types"
)

type state int

const (
	stateUnauthenticated state = iota
	stateAuthenticated
)

// Session holds a wallet's connection to the CLOB. It starts unauthenticated
// and has exactly one transition: DeriveCredentials, after which the venue's
// L2 credential set is fixed for the life of the session.
//
// The derivation call itself is signed by the wallet (L1 auth) but is not an
// authenticated request; that is why the two phases cannot be collapsed.
type Session struct {
	host          string
	chainID       int64
	privateKey    *ecdsa.PrivateKey
	address       string
	signatureType types.SignatureType
	funderAddress string
	httpClient    *http.Client
	logger        *zap.Logger

	mu    sync.Mutex
	state state
	creds types.APICredentials
}

// SessionConfig holds the wallet and venue parameters for a session.
type SessionConfig struct {
	Host          string
	ChainID       int64
	PrivateKey    string
	SignatureType types.SignatureType
	FunderAddress string
	Logger        *zap.Logger
}

// NewSession creates an unauthenticated session. Missing host, chain id, or
// an unparseable private key fail with InvalidConfigurationError.
func NewSession(cfg *SessionConfig) (*Session, error) {
	host := strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if host == "" {
		return nil, &types.InvalidConfigurationError{Field: "host", Reason: "is empty"}
	}

	if cfg.ChainID <= 0 {
		return nil, &types.InvalidConfigurationError{
			Field:  "chainId",
			Reason: fmt.Sprintf("must be positive, got %d", cfg.ChainID),
		}
	}

	keyHex := strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x")
	if keyHex == "" {
		return nil, &types.InvalidConfigurationError{Field: "privateKey", Reason: "is empty"}
	}

	privateKey, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, &types.InvalidConfigurationError{
			Field:  "privateKey",
			Reason: fmt.Sprintf("parse: %v", err),
		}
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, &types.InvalidConfigurationError{Field: "privateKey", Reason: "not an ECDSA key"}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		host:          host,
		chainID:       cfg.ChainID,
		privateKey:    privateKey,
		address:       crypto.PubkeyToAddress(*publicKey).Hex(),
		signatureType: cfg.SignatureType,
		funderAddress: strings.TrimSpace(cfg.FunderAddress),
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		logger:        logger,
		state:         stateUnauthenticated,
	}, nil
}

// Host returns the CLOB base URL without a trailing slash.
func (s *Session) Host() string {
	return s.host
}

// ChainID returns the chain the session signs for.
func (s *Session) ChainID() int64 {
	return s.chainID
}

// Address returns the EOA address derived from the private key.
func (s *Session) Address() string {
	return s.address
}

// MakerAddress returns the funder address if one is configured (proxy or
// safe wallets), otherwise the EOA address.
func (s *Session) MakerAddress() string {
	if s.funderAddress != "" {
		return s.funderAddress
	}
	return s.address
}

// SignatureType returns the account model the session signs under.
func (s *Session) SignatureType() types.SignatureType {
	return s.signatureType
}

// Signer returns the wallet key used for order signing.
func (s *Session) Signer() *ecdsa.PrivateKey {
	return s.privateKey
}

// Authenticated reports whether DeriveCredentials has completed.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateAuthenticated
}

// Credentials returns a copy of the derived credential set. Calling it
// before DeriveCredentials is an error.
func (s *Session) Credentials() (types.APICredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateAuthenticated {
		return types.APICredentials{}, fmt.Errorf("session not authenticated: derive credentials first")
	}
	return s.creds, nil
}

// DeriveCredentials transitions the session to Authenticated. It asks the
// venue to create an API key set for the wallet and falls back to deriving
// the existing set: the venue issues one credential set per (wallet, nonce),
// so a second derivation returns the same credentials. The call is
// idempotent within a session too; once authenticated it returns the held
// credentials without another network call.
func (s *Session) DeriveCredentials(ctx context.Context) (types.APICredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateAuthenticated {
		return s.creds, nil
	}

	creds, err := s.createAPIKey(ctx)
	if err != nil || creds.Key == "" {
		if err != nil {
			s.logger.Debug("create-api-key-failed, deriving instead", zap.Error(err))
		}
		creds, err = s.deriveAPIKey(ctx)
		if err != nil {
			return types.APICredentials{}, fmt.Errorf("derive api key: %w", err)
		}
	}

	if creds.Key == "" || creds.Secret == "" || creds.Passphrase == "" {
		return types.APICredentials{}, fmt.Errorf("venue returned incomplete credentials")
	}

	s.creds = creds
	s.state = stateAuthenticated

	s.logger.Info("session-authenticated",
		zap.String("address", s.address),
		zap.String("signature-type", s.signatureType.String()))

	return s.creds, nil
}

func (s *Session) createAPIKey(ctx context.Context) (types.APICredentials, error) {
	return s.l1Request(ctx, http.MethodPost, "/auth/api-key")
}

func (s *Session) deriveAPIKey(ctx context.Context) (types.APICredentials, error) {
	return s.l1Request(ctx, http.MethodGet, "/auth/derive-api-key")
}

// l1Request performs a request authenticated by the wallet signature alone.
// Nonce is fixed at 0: credential derivation depends on the same nonce every
// time, matching the official client's default.
func (s *Session) l1Request(ctx context.Context, method, path string) (types.APICredentials, error) {
	const nonce = 0
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	signature, err := signClobAuth(s.privateKey, s.chainID, s.address, timestamp, nonce)
	if err != nil {
		return types.APICredentials{}, fmt.Errorf("sign clob auth: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.host+path, nil)
	if err != nil {
		return types.APICredentials{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("POLY_ADDRESS", s.address)
	req.Header.Set("POLY_SIGNATURE", signature)
	req.Header.Set("POLY_TIMESTAMP", timestamp)
	req.Header.Set("POLY_NONCE", fmt.Sprintf("%d", nonce))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return types.APICredentials{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.APICredentials{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return types.APICredentials{}, fmt.Errorf("auth API error (status %d): %s", resp.StatusCode, string(body))
	}

	var creds types.APICredentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return types.APICredentials{}, fmt.Errorf("parse credentials: %w", err)
	}

	return creds, nil
}
