package bridge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/internal/auth"
	"github.com/polybridge/clob-bridge/internal/feerate"
	"github.com/polybridge/clob-bridge/internal/order"
	"github.com/polybridge/clob-bridge/internal/storage"
	"github.com/polybridge/clob-bridge/pkg/cache"
	"github.com/polybridge/clob-bridge/pkg/types"
)

// Pipeline runs order tasks end to end: authenticate, resolve the fee rate,
// build and sign, submit, interpret.
//
// Sessions and fee rate resolvers are memoized, so a long-lived pipeline
// (serve mode) authenticates each wallet once and keeps one fee cache per
// venue host across requests. A one-shot pipeline pays a single derivation
// and a single fetch, same as before.
type Pipeline struct {
	feeRateTTL time.Duration
	store      storage.Storage // nil disables the audit log
	logger     *zap.Logger

	mu        sync.Mutex
	sessions  map[string]*auth.Session
	resolvers map[string]*feerate.CachedClient
}

// NewPipeline creates a pipeline. store may be nil when no audit log is
// configured.
func NewPipeline(feeRateTTL time.Duration, store storage.Storage, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		feeRateTTL: feeRateTTL,
		store:      store,
		logger:     logger,
		sessions:   make(map[string]*auth.Session),
		resolvers:  make(map[string]*feerate.CachedClient),
	}
}

// Run executes one task.
//
// The returned SubmissionResult carries the venue's verdict, including
// rejections. An error return means the pipeline itself failed (bad input,
// bad configuration, unresolvable fee rate, auth or transport failure) and
// no verdict exists.
func (p *Pipeline) Run(ctx context.Context, task *Task) (types.SubmissionResult, error) {
	start := time.Now()

	result, err := p.run(ctx, task)
	TaskDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		TasksTotal.WithLabelValues("error").Inc()
	case result.Success:
		TasksTotal.WithLabelValues("success").Inc()
	default:
		TasksTotal.WithLabelValues("rejected").Inc()
	}

	return result, err
}

func (p *Pipeline) run(ctx context.Context, task *Task) (types.SubmissionResult, error) {
	if task.Action != ActionPostOrder {
		return types.SubmissionResult{}, &types.InputError{
			Field:   "action",
			Message: fmt.Sprintf("unsupported action %q", task.Action),
		}
	}

	payload := &task.Payload
	orderType := types.ParseOrderType(payload.OrderType)
	intent := payload.Order.Intent()

	override, err := payload.Order.FeeRateOverride()
	if err != nil {
		return types.SubmissionResult{}, err
	}

	session, err := p.session(payload)
	if err != nil {
		return types.SubmissionResult{}, err
	}

	// Credentials before fee rate: an unauthenticatable wallet should fail
	// fast instead of after a fetch it will never use.
	creds, err := session.DeriveCredentials(ctx)
	if err != nil {
		return types.SubmissionResult{}, fmt.Errorf("authenticate: %w", err)
	}

	feeRateBps, err := p.resolver(session.Host()).Resolve(ctx, intent.TokenID, override)
	if err != nil {
		return types.SubmissionResult{}, err
	}

	signedOrder, err := order.NewBuilder(session, p.logger).Build(intent, orderType, feeRateBps)
	if err != nil {
		return types.SubmissionResult{}, err
	}

	submitter := order.NewSubmitter(session.Host(), session.Address(), p.logger)
	result, err := submitter.Submit(ctx, signedOrder, orderType, creds)
	if err != nil {
		return types.SubmissionResult{}, fmt.Errorf("submit order: %w", err)
	}

	p.audit(ctx, intent, orderType, feeRateBps, result)

	return result, nil
}

// RunIO decodes one task from r, runs it, and writes the result JSON to w.
// Errors are returned to the caller for out-of-band reporting; nothing is
// written to w unless the venue produced a verdict.
func (p *Pipeline) RunIO(ctx context.Context, r io.Reader, w io.Writer) error {
	task, err := DecodeTask(r)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, task)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}

// session returns the memoized session for the payload's wallet and venue
// parameters, creating it on first use. Two payloads share a session only if
// every credential-relevant field matches.
func (p *Pipeline) session(payload *Payload) (*auth.Session, error) {
	key := sessionKey(payload)

	p.mu.Lock()
	defer p.mu.Unlock()

	if session, ok := p.sessions[key]; ok {
		return session, nil
	}

	session, err := auth.NewSession(&auth.SessionConfig{
		Host:          payload.Host,
		ChainID:       payload.ChainID,
		PrivateKey:    payload.PrivateKey,
		SignatureType: types.ParseSignatureType(payload.SignatureType),
		FunderAddress: payload.FunderAddress,
		Logger:        p.logger,
	})
	if err != nil {
		return nil, err
	}

	p.sessions[key] = session
	return session, nil
}

// resolver returns the fee rate resolver for a venue host, creating it with
// its own cache on first use.
func (p *Pipeline) resolver(host string) *feerate.CachedClient {
	p.mu.Lock()
	defer p.mu.Unlock()

	if resolver, ok := p.resolvers[host]; ok {
		return resolver
	}

	feeCache, err := cache.NewRistrettoCache(cache.DefaultRistrettoConfig(p.logger))
	if err != nil {
		// Ristretto only fails on invalid sizing constants. Run uncached
		// rather than not at all; resolve still coalesces in-flight fetches.
		p.logger.Warn("fee-rate-cache-unavailable", zap.Error(err))
		feeCache = cache.NewNopCache()
	}

	resolver := feerate.NewCachedClient(feerate.NewClient(host), feeCache, p.feeRateTTL, p.logger)
	p.resolvers[host] = resolver
	return resolver
}

func (p *Pipeline) audit(ctx context.Context, intent *order.Intent, orderType types.OrderType, feeRateBps int, result types.SubmissionResult) {
	if p.store == nil {
		return
	}

	rec := &storage.SubmissionRecord{
		ID:          uuid.New().String(),
		TokenID:     intent.TokenID,
		Side:        intent.Side.String(),
		OrderType:   string(orderType),
		FeeRateBps:  feeRateBps,
		Success:     result.Success,
		OrderID:     order.ExtractOrderID(result),
		Error:       result.Error,
		SubmittedAt: time.Now().UTC(),
	}

	if err := p.store.StoreSubmission(ctx, rec); err != nil {
		p.logger.Warn("audit-store-failed",
			zap.String("record-id", rec.ID),
			zap.Error(err))
	}
}

// sessionKey hashes the credential-relevant payload fields. The private key
// is part of the hash input but never of the key itself.
func sessionKey(payload *Payload) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%v|%s|%s",
		payload.Host,
		payload.ChainID,
		types.ParseSignatureType(payload.SignatureType),
		payload.FunderAddress,
		payload.PrivateKey)
	return hex.EncodeToString(h.Sum(nil))
}
