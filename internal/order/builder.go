package order

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polymarket/go-order-utils/pkg/builder"
	"github.com/polymarket/go-order-utils/pkg/model"
	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/internal/auth"
	"github.com/polybridge/clob-bridge/pkg/types"
)

// zeroAddress is the public taker: anyone may fill the order.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// Marketable price bounds used when an intent carries no limit price.
// A market BUY is signed as a limit at the top of the price range, a market
// SELL at the bottom; paired with FOK/FAK the venue fills at book price or
// not at all.
const (
	marketBuyPrice  = 0.99
	marketSellPrice = 0.01
)

// Intent is the caller's order intent. Amount is denominated in USDC for
// BUY orders and in shares for SELL orders, following the official client.
type Intent struct {
	TokenID    string
	Side       types.Side
	Amount     float64
	Price      *float64 // nil for market orders
	NegRisk    bool     // multi-outcome markets verify against a different exchange contract
	Expiration int64    // unix seconds, required for GTD
}

// Builder assembles and signs canonical exchange orders for one session.
type Builder struct {
	session      *auth.Session
	orderBuilder builder.ExchangeOrderBuilder
	logger       *zap.Logger
}

// NewBuilder creates an order builder bound to the session's wallet and
// chain.
func NewBuilder(session *auth.Session, logger *zap.Logger) *Builder {
	return &Builder{
		session:      session,
		orderBuilder: builder.NewExchangeOrderBuilderImpl(big.NewInt(session.ChainID()), nil),
		logger:       logger,
	}
}

// Build validates the intent, assembles the canonical order record with the
// resolved fee rate, and signs its typed-data encoding with the session key.
//
// feeRateBps must be the value the fee rate cache (or an explicit caller
// override) resolved for this instrument: the signed payload and the
// submitted payload must always agree on it.
func (b *Builder) Build(intent *Intent, orderType types.OrderType, feeRateBps int) (*model.SignedOrder, error) {
	if intent.TokenID == "" {
		return nil, &types.OrderValidationError{Field: types.FieldTokenID, Reason: "missing token id"}
	}

	if math.IsNaN(intent.Amount) || math.IsInf(intent.Amount, 0) {
		return nil, &types.OrderValidationError{Field: types.FieldAmount, Reason: "amount is not a finite number"}
	}
	if intent.Amount <= 0 {
		return nil, &types.OrderValidationError{
			Field:  types.FieldAmount,
			Reason: fmt.Sprintf("amount must be positive, got %v", intent.Amount),
		}
	}

	price, err := resolvePrice(intent)
	if err != nil {
		return nil, err
	}

	if feeRateBps < 0 {
		return nil, fmt.Errorf("fee rate must be non-negative, got %d", feeRateBps)
	}

	expiration := "0"
	if orderType == types.OrderTypeGTD {
		if intent.Expiration <= 0 {
			return nil, &types.OrderValidationError{
				Field:  "expiration",
				Reason: "GTD orders require an expiration timestamp",
			}
		}
		expiration = fmt.Sprintf("%d", intent.Expiration)
	}

	makerAmount, takerAmount, side := computeAmounts(intent.Side, intent.Amount, price)

	orderData := &model.OrderData{
		Maker:         b.session.MakerAddress(),
		Signer:        b.session.Address(),
		Taker:         zeroAddress,
		TokenId:       intent.TokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Side:          side,
		Expiration:    expiration,
		Nonce:         "0",
		FeeRateBps:    types.FormatFeeRateBps(feeRateBps),
		SignatureType: model.SignatureType(b.session.SignatureType()),
	}

	contract := model.CTFExchange
	if intent.NegRisk {
		contract = model.NegRiskCTFExchange
	}

	signedOrder, err := b.orderBuilder.BuildSignedOrder(b.session.Signer(), orderData, contract)
	if err != nil {
		return nil, fmt.Errorf("build signed order: %w", err)
	}

	b.logger.Debug("order-signed",
		zap.String("token-id", intent.TokenID),
		zap.String("side", intent.Side.String()),
		zap.String("maker-amount", makerAmount),
		zap.String("taker-amount", takerAmount),
		zap.String("fee-rate-bps", orderData.FeeRateBps))

	return signedOrder, nil
}

// resolvePrice validates an explicit limit price or substitutes the
// marketable bound for priceless intents.
func resolvePrice(intent *Intent) (float64, error) {
	if intent.Price == nil {
		if intent.Side == types.SideSell {
			return marketSellPrice, nil
		}
		return marketBuyPrice, nil
	}

	p := *intent.Price
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, &types.OrderValidationError{Field: types.FieldPrice, Reason: "price is not a finite number"}
	}
	if p <= 0 || p > 1 {
		return 0, &types.OrderValidationError{
			Field:  types.FieldPrice,
			Reason: fmt.Sprintf("price must be in (0, 1], got %v", p),
		}
	}

	return p, nil
}

// computeAmounts converts the intent amount into the raw 6-decimal
// maker/taker amounts the exchange contract expects.
//
// BUY:  maker gives USDC, taker gives shares (shares = USDC / price).
// SELL: maker gives shares, taker gives USDC (USDC = shares * price).
func computeAmounts(side types.Side, amount, price float64) (makerAmount, takerAmount string, orderSide model.Side) {
	if side == types.SideSell {
		return toRawAmount(amount), toRawAmount(amount * price), model.SELL
	}
	return toRawAmount(amount), toRawAmount(amount / price), model.BUY
}

// toRawAmount converts a human-readable amount to the 6-decimal raw integer
// string used on-chain (USDC and outcome shares both carry 6 decimals).
func toRawAmount(v float64) string {
	return fmt.Sprintf("%d", int64(math.Round(v*1_000_000)))
}

// ToJSON converts a signed order into the JSON shape the submission API
// expects. The fee rate string is carried over verbatim from the signed
// order so the submitted payload can never diverge from what was signed.
func ToJSON(order *model.SignedOrder) types.SignedOrderJSON {
	sideStr := "BUY"
	if order.Side.Uint64() == uint64(model.SELL) {
		sideStr = "SELL"
	}

	return types.SignedOrderJSON{
		Salt:          order.Salt.Int64(),
		Maker:         order.Maker.Hex(),
		Signer:        order.Signer.Hex(),
		Taker:         order.Taker.Hex(),
		TokenID:       order.TokenId.String(),
		MakerAmount:   order.MakerAmount.String(),
		TakerAmount:   order.TakerAmount.String(),
		Side:          sideStr,
		Expiration:    order.Expiration.String(),
		Nonce:         order.Nonce.String(),
		FeeRateBps:    order.FeeRateBps.String(),
		SignatureType: int(order.SignatureType.Int64()),
		Signature:     "0x" + common.Bytes2Hex(order.Signature),
	}
}
