package storage

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by logging records instead of persisting
// them. Default when no database is configured.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	return &ConsoleStorage{logger: logger}
}

// StoreSubmission logs a submission record.
func (c *ConsoleStorage) StoreSubmission(ctx context.Context, rec *SubmissionRecord) error {
	c.logger.Info("order-submission",
		zap.String("submission-id", rec.ID),
		zap.String("token-id", rec.TokenID),
		zap.String("side", rec.Side),
		zap.String("order-type", rec.OrderType),
		zap.Int("fee-rate-bps", rec.FeeRateBps),
		zap.Bool("success", rec.Success),
		zap.String("order-id", rec.OrderID),
		zap.String("error", rec.Error),
		zap.Time("submitted-at", rec.SubmittedAt))

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	return nil
}
