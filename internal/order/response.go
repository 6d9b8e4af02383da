package order

import (
	"encoding/json"
	"strconv"

	"github.com/polybridge/clob-bridge/pkg/types"
)

// rejectedFallback is used when a failed response carries no message at all.
const rejectedFallback = "Order rejected by exchange"

// Field names the venue has been observed to use for order identifiers and
// error messages, across API versions.
var (
	orderIDFields = []string{"orderID", "orderId", "id", "order_id"}
	errorFields   = []string{"error", "message", "errorMsg"}
)

// Interpret collapses a venue response of unknown, possibly nested shape
// into a single verdict. Priority order, first match wins:
//
//  1. success == true            -> success
//  2. truthy order identifier    -> success (top level, then inside "data")
//  3. otherwise                  -> failure, message from error/message/errorMsg
//     (top level, then inside "data"), else a fixed fallback.
//
// The raw response is always echoed under Data so callers can audit what the
// venue actually said, regardless of verdict.
func Interpret(raw []byte) types.SubmissionResult {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return types.SubmissionResult{
			Success: false,
			Error:   rejectedFallback,
			Data:    string(raw),
		}
	}

	if success, ok := payload["success"].(bool); ok && success {
		return types.SubmissionResult{Success: true, Data: payload}
	}

	if hasOrderID(payload) {
		return types.SubmissionResult{Success: true, Data: payload}
	}
	if nested, ok := payload["data"].(map[string]interface{}); ok && hasOrderID(nested) {
		return types.SubmissionResult{Success: true, Data: payload}
	}

	message := errorMessage(payload)
	if message == "" {
		if nested, ok := payload["data"].(map[string]interface{}); ok {
			message = errorMessage(nested)
		}
	}
	if message == "" {
		message = rejectedFallback
	}

	return types.SubmissionResult{Success: false, Error: message, Data: payload}
}

// ExtractOrderID returns the venue-assigned order identifier from an
// interpreted result, or "" if the response carried none.
func ExtractOrderID(result types.SubmissionResult) string {
	obj, ok := result.Data.(map[string]interface{})
	if !ok {
		return ""
	}

	if id := firstOrderID(obj); id != "" {
		return id
	}
	if nested, ok := obj["data"].(map[string]interface{}); ok {
		return firstOrderID(nested)
	}
	return ""
}

func firstOrderID(obj map[string]interface{}) string {
	for _, field := range orderIDFields {
		switch val := obj[field].(type) {
		case string:
			if val != "" {
				return val
			}
		case float64:
			if val != 0 {
				return strconv.FormatFloat(val, 'f', -1, 64)
			}
		}
	}
	return ""
}

func hasOrderID(obj map[string]interface{}) bool {
	for _, field := range orderIDFields {
		if truthy(obj[field]) {
			return true
		}
	}
	return false
}

func errorMessage(obj map[string]interface{}) string {
	for _, field := range errorFields {
		if s, ok := obj[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// truthy mirrors the loose presence check callers of the venue API rely on:
// non-empty strings, non-zero numbers, and true are truthy.
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case string:
		return val != ""
	case float64:
		return val != 0
	case bool:
		return val
	default:
		return false
	}
}
