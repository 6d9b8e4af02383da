package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSide(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected Side
	}{
		{"upper-sell", "SELL", SideSell},
		{"lower-sell", "sell", SideSell},
		{"mixed-case-sell", "SeLl", SideSell},
		{"whitespace-sell", "  sell ", SideSell},
		{"upper-buy", "BUY", SideBuy},
		{"lower-buy", "buy", SideBuy},
		{"numeric-sell", 1, SideSell},
		{"json-numeric-sell", float64(1), SideSell},
		{"numeric-buy", 0, SideBuy},
		{"unrecognized-string", "HOLD", SideBuy},
		{"empty-string", "", SideBuy},
		{"nil-defaults-to-buy", nil, SideBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSide(tt.input))
		})
	}
}

func TestSide_String(t *testing.T) {
	assert.Equal(t, "BUY", SideBuy.String())
	assert.Equal(t, "SELL", SideSell.String())
}

func TestParseOrderType(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected OrderType
	}{
		{"fok", "FOK", OrderTypeFOK},
		{"fak-lower", "fak", OrderTypeFAK},
		{"gtc-mixed", "Gtc", OrderTypeGTC},
		{"gtd", "GTD", OrderTypeGTD},
		{"whitespace", " gtc ", OrderTypeGTC},
		{"unrecognized", "IOC", OrderTypeFOK},
		{"empty", "", OrderTypeFOK},
		{"nil-defaults-to-fok", nil, OrderTypeFOK},
		{"non-string-defaults-to-fok", 3, OrderTypeFOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseOrderType(tt.input))
		})
	}
}

func TestParseSignatureType(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected SignatureType
	}{
		{"eoa", "EOA", SignatureTypeEOA},
		{"eoa-lower", "eoa", SignatureTypeEOA},
		{"poly-proxy", "POLY_PROXY", SignatureTypePolyProxy},
		{"poly-proxy-lower", "poly_proxy", SignatureTypePolyProxy},
		{"gnosis-safe", "POLY_GNOSIS_SAFE", SignatureTypePolyGnosisSafe},
		{"gnosis-safe-short", "gnosis_safe", SignatureTypePolyGnosisSafe},
		{"numeric-passthrough", 2, SignatureTypePolyGnosisSafe},
		{"json-numeric-passthrough", float64(1), SignatureTypePolyProxy},
		{"numeric-string", "2", SignatureTypePolyGnosisSafe},
		{"unknown-numeric-passthrough", 7, SignatureType(7)},
		{"negative-defaults-to-eoa", -1, SignatureTypeEOA},
		{"unrecognized-string", "MULTISIG", SignatureTypeEOA},
		{"nil-defaults-to-eoa", nil, SignatureTypeEOA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSignatureType(tt.input))
		})
	}
}

func TestSignatureType_String(t *testing.T) {
	assert.Equal(t, "EOA", SignatureTypeEOA.String())
	assert.Equal(t, "POLY_PROXY", SignatureTypePolyProxy.String())
	assert.Equal(t, "POLY_GNOSIS_SAFE", SignatureTypePolyGnosisSafe.String())
	assert.Equal(t, "7", SignatureType(7).String())
}

func TestFormatFeeRateBps(t *testing.T) {
	assert.Equal(t, "0", FormatFeeRateBps(0))
	assert.Equal(t, "37", FormatFeeRateBps(37))
	assert.Equal(t, "1000", FormatFeeRateBps(1000))
}
