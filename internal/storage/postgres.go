package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StoreSubmission stores a submission record in PostgreSQL.
func (p *PostgresStorage) StoreSubmission(ctx context.Context, rec *SubmissionRecord) error {
	query := `
		INSERT INTO order_submissions (
			id, token_id, side, order_type, fee_rate_bps,
			success, order_id, error, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.ID,
		rec.TokenID,
		rec.Side,
		rec.OrderType,
		rec.FeeRateBps,
		rec.Success,
		rec.OrderID,
		rec.Error,
		rec.SubmittedAt,
	)

	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	p.logger.Debug("submission-stored",
		zap.String("submission-id", rec.ID),
		zap.String("token-id", rec.TokenID),
		zap.Bool("success", rec.Success))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
