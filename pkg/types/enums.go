package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Side is the order side. Numeric values match the CLOB exchange contract
// (BUY = 0, SELL = 1).
type Side int

const (
	SideBuy Side = iota
	SideSell
)

// String returns the canonical API representation ("BUY" or "SELL").
func (s Side) String() string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

// ParseSide resolves a loosely-typed side input. Accepts strings (any case)
// and numeric codes. Unrecognized or absent input resolves to SideBuy.
func ParseSide(v interface{}) Side {
	switch val := v.(type) {
	case string:
		if strings.EqualFold(strings.TrimSpace(val), "SELL") {
			return SideSell
		}
	case int:
		if val == int(SideSell) {
			return SideSell
		}
	case float64: // JSON numbers decode as float64
		if int(val) == int(SideSell) {
			return SideSell
		}
	}
	return SideBuy
}

// OrderType is the venue time-in-force for an order.
type OrderType string

const (
	OrderTypeFOK OrderType = "FOK" // fill-or-kill
	OrderTypeFAK OrderType = "FAK" // fill-and-kill (immediate-or-cancel)
	OrderTypeGTC OrderType = "GTC" // good-till-cancelled
	OrderTypeGTD OrderType = "GTD" // good-till-date, requires expiration
)

// ParseOrderType resolves a loosely-typed order type input.
// Unrecognized or absent input resolves to OrderTypeFOK.
func ParseOrderType(v interface{}) OrderType {
	s, ok := v.(string)
	if !ok {
		return OrderTypeFOK
	}

	switch OrderType(strings.ToUpper(strings.TrimSpace(s))) {
	case OrderTypeFAK:
		return OrderTypeFAK
	case OrderTypeGTC:
		return OrderTypeGTC
	case OrderTypeGTD:
		return OrderTypeGTD
	default:
		return OrderTypeFOK
	}
}

// SignatureType is the account model authorizing an order.
// Numeric values match the CLOB exchange contract.
type SignatureType int

const (
	SignatureTypeEOA            SignatureType = 0 // externally-owned account
	SignatureTypePolyProxy      SignatureType = 1 // Polymarket proxy contract
	SignatureTypePolyGnosisSafe SignatureType = 2 // Gnosis Safe contract
)

// String returns the canonical name for known signature types and the raw
// numeric code otherwise.
func (t SignatureType) String() string {
	switch t {
	case SignatureTypeEOA:
		return "EOA"
	case SignatureTypePolyProxy:
		return "POLY_PROXY"
	case SignatureTypePolyGnosisSafe:
		return "POLY_GNOSIS_SAFE"
	default:
		return strconv.Itoa(int(t))
	}
}

// ParseSignatureType resolves a loosely-typed signature type input. Known
// names match case-insensitively; non-negative numeric codes pass through
// unchanged so new venue account models do not require a code change here.
// Anything else resolves to SignatureTypeEOA.
func ParseSignatureType(v interface{}) SignatureType {
	switch val := v.(type) {
	case string:
		switch strings.ToUpper(strings.TrimSpace(val)) {
		case "POLY_PROXY":
			return SignatureTypePolyProxy
		case "POLY_GNOSIS_SAFE", "GNOSIS_SAFE":
			return SignatureTypePolyGnosisSafe
		case "EOA":
			return SignatureTypeEOA
		}
		// Numeric codes arrive as strings from some callers.
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil && n >= 0 {
			return SignatureType(n)
		}
	case int:
		if val >= 0 {
			return SignatureType(val)
		}
	case float64:
		if val >= 0 {
			return SignatureType(int(val))
		}
	}
	return SignatureTypeEOA
}

// FormatFeeRateBps renders a fee rate as the fixed decimal string encoding
// the EIP-712 order schema requires.
func FormatFeeRateBps(bps int) string {
	return fmt.Sprintf("%d", bps)
}
