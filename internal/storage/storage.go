package storage

import (
	"context"
	"time"
)

// SubmissionRecord is the audit entry persisted for each completed order
// submission, successful or rejected.
type SubmissionRecord struct {
	ID          string
	TokenID     string
	Side        string
	OrderType   string
	FeeRateBps  int
	Success     bool
	OrderID     string
	Error       string
	SubmittedAt time.Time
}

// Storage is the interface for persisting submission audit records.
type Storage interface {
	// StoreSubmission stores one submission record.
	StoreSubmission(ctx context.Context, rec *SubmissionRecord) error

	// Close closes the storage connection.
	Close() error
}
