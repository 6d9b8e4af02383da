package bridge

import (
	"io"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/polybridge/clob-bridge/internal/order"
	"github.com/polybridge/clob-bridge/pkg/types"
)

// ActionPostOrder is the only action the bridge handles today.
const ActionPostOrder = "post_order"

// Task is one bridge invocation: an action name plus its payload, read as a
// single JSON object off the input stream.
type Task struct {
	Action  string  `json:"action"`
	Payload Payload `json:"payload"`
}

// Payload carries the wallet, venue, and order parameters for one task.
type Payload struct {
	Host          string       `json:"host"`
	ChainID       int64        `json:"chainId"`
	PrivateKey    string       `json:"privateKey"`
	SignatureType interface{}  `json:"signatureType"`
	FunderAddress string       `json:"funderAddress"`
	OrderType     interface{}  `json:"orderType"`
	Order         OrderPayload `json:"order"`
}

// OrderPayload is the order intent as it arrives on the wire. Numeric fields
// are decoded as interface{} because callers have been observed sending
// numbers, numeric strings, and outright junk; coercion happens here so a
// malformed value surfaces as the matching per-field validation error
// instead of failing the decode of the whole task.
type OrderPayload struct {
	TokenID    string      `json:"tokenID"`
	Side       interface{} `json:"side"`
	Amount     interface{} `json:"amount"`
	Price      interface{} `json:"price"`
	FeeRateBps interface{} `json:"feeRateBps"`
	NegRisk    bool        `json:"negRisk"`
	Expiration int64       `json:"expiration"`
}

// DecodeTask reads one task from r and checks its framing. Anything that is
// not a well-formed, supported task is an InputError.
func DecodeTask(r io.Reader) (*Task, error) {
	var task Task
	if err := json.NewDecoder(r).Decode(&task); err != nil {
		return nil, &types.InputError{Message: "malformed task JSON: " + err.Error()}
	}

	if task.Action == "" {
		return nil, &types.InputError{Field: "action", Message: "is missing"}
	}
	if task.Action != ActionPostOrder {
		return nil, &types.InputError{
			Field:   "action",
			Message: "unsupported action " + strconv.Quote(task.Action),
		}
	}

	return &task, nil
}

// Intent converts the wire-shape order into a builder intent. Unparseable
// amounts and prices become NaN, which the builder rejects as non-finite;
// that keeps "amount": "abc" reporting an amount error, not a decode error.
func (o *OrderPayload) Intent() *order.Intent {
	intent := &order.Intent{
		TokenID:    strings.TrimSpace(o.TokenID),
		Side:       types.ParseSide(o.Side),
		Amount:     toFloat(o.Amount),
		NegRisk:    o.NegRisk,
		Expiration: o.Expiration,
	}

	if o.Price != nil {
		price := toFloat(o.Price)
		intent.Price = &price
	}

	return intent
}

// FeeRateOverride returns the caller-supplied fee rate, or nil when the
// payload leaves resolution to the fee rate cache.
func (o *OrderPayload) FeeRateOverride() (*int, error) {
	if o.FeeRateBps == nil {
		return nil, nil
	}

	switch val := o.FeeRateBps.(type) {
	case float64:
		bps := int(val)
		return &bps, nil
	case string:
		bps, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, &types.InputError{
				Field:   "feeRateBps",
				Message: "not an integer: " + strconv.Quote(val),
			}
		}
		return &bps, nil
	default:
		return nil, &types.InputError{Field: "feeRateBps", Message: "must be a number"}
	}
}

// toFloat coerces a loosely typed numeric wire value. Anything unparseable
// comes back as NaN for the order validator to reject.
func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
