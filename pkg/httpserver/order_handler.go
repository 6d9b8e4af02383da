package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/internal/bridge"
	"github.com/polybridge/clob-bridge/pkg/types"
)

// OrderHandler exposes the order pipeline over HTTP.
type OrderHandler struct {
	pipeline *bridge.Pipeline
	logger   *zap.Logger
}

// NewOrderHandler creates an order handler backed by the given pipeline.
func NewOrderHandler(pipeline *bridge.Pipeline, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// ErrorResponse is the JSON body returned for pipeline failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandlePostOrder handles POST /api/v1/order. The request body is one bridge
// task. A venue verdict, including a rejection, is a 200 with the result
// JSON; pipeline failures map to an error status.
func (h *OrderHandler) HandlePostOrder(w http.ResponseWriter, r *http.Request) {
	task, err := bridge.DecodeTask(r.Body)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.Run(r.Context(), task)
	if err != nil {
		h.logger.Warn("order-task-failed", zap.Error(err))
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// statusFor maps the error taxonomy onto HTTP statuses: caller mistakes are
// 400s, upstream venue trouble is a 502.
func statusFor(err error) int {
	var (
		inputErr      *types.InputError
		configErr     *types.InvalidConfigurationError
		validationErr *types.OrderValidationError
		feeRateErr    *types.FeeRateUnavailableError
	)

	switch {
	case errors.As(err, &inputErr), errors.As(err, &configErr), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &feeRateErr):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func (h *OrderHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
