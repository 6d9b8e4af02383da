package types

import "fmt"

// InputError indicates a malformed or missing top-level bridge request field.
// Fatal: the whole pipeline aborts.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// InvalidConfigurationError indicates missing or unusable connection
// configuration (host, chain id, private key). Fatal.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// FeeRateUnavailableError indicates the taker fee rate for an instrument
// could not be resolved. Signing must not proceed: a defaulted fee rate
// produces an economically wrong signed order.
type FeeRateUnavailableError struct {
	TokenID string
	Cause   error
}

func (e *FeeRateUnavailableError) Error() string {
	return fmt.Sprintf("fee rate unavailable for token %s: %v", e.TokenID, e.Cause)
}

func (e *FeeRateUnavailableError) Unwrap() error {
	return e.Cause
}

// OrderValidationError indicates the order intent itself is unusable
// (missing token, non-finite amount or price). Fatal for the request.
type OrderValidationError struct {
	Field  string
	Reason string
}

func (e *OrderValidationError) Error() string {
	return fmt.Sprintf("invalid order: %s: %s", e.Field, e.Reason)
}

// Order validation fields.
const (
	FieldTokenID = "tokenID"
	FieldAmount  = "amount"
	FieldPrice   = "price"
)

// Known Polymarket CLOB API error codes.
const (
	ErrInvalidMinTickSize = "INVALID_ORDER_MIN_TICK_SIZE"
	ErrNotEnoughBalance   = "INVALID_ORDER_NOT_ENOUGH_BALANCE"
	ErrFOKNotFilled       = "FOK_ORDER_NOT_FILLED_ERROR"
	ErrMarketNotReady     = "MARKET_NOT_READY"
	ErrUnmatched          = "UNMATCHED"
	ErrUnknownStatus      = "UNKNOWN_STATUS"
)
