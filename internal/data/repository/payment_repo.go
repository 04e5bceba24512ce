package repository

import (
	"context"
	"fmt"
	"time"

	"ev-service-center/internal/data/entity"
	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *entity.PaymentTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentTransaction, error)
	FindByPGTransactionID(ctx context.Context, pgID string) (*entity.PaymentTransaction, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.PaymentTransaction, error)
	FindAll(ctx context.Context) ([]*entity.PaymentTransaction, error)
	FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*entity.PaymentTransaction, error)

	// RatchetStatus moves a transaction out of pending. The conditional
	// WHERE enforces the one-way ratchet: once a terminal status landed,
	// nothing else wins. Returns false when the row was not pending.
	RatchetStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) (bool, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, invoice_id, user_id, amount, method, pg_transaction_id, status, payment_data_json, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.PaymentTransaction, error) {
	var tx entity.PaymentTransaction
	err := row.Scan(
		&tx.ID,
		&tx.InvoiceID,
		&tx.UserID,
		&tx.Amount,
		&tx.Method,
		&tx.PGTransactionID,
		&tx.Status,
		&tx.PaymentDataJSON,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *paymentRepository) Create(ctx context.Context, tx *entity.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (id, invoice_id, user_id, amount, method, pg_transaction_id, status, payment_data_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		tx.ID,
		tx.InvoiceID,
		tx.UserID,
		tx.Amount,
		tx.Method,
		tx.PGTransactionID,
		tx.Status,
		tx.PaymentDataJSON,
		tx.CreatedAt,
		tx.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("gateway transaction %s already exists: %w", tx.PGTransactionID, apperr.ErrConflict)
	}
	if err != nil {
		r.log.Error("Failed to create payment transaction",
			zap.Error(err),
			zap.String("invoice_id", tx.InvoiceID.String()),
			zap.String("pg_transaction_id", tx.PGTransactionID),
		)
		return fmt.Errorf("create payment transaction %s: %w", tx.PGTransactionID, err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE id = $1`

	tx, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("payment transaction %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find payment transaction by ID",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, fmt.Errorf("find payment transaction by ID %s: %w", id.String(), err)
	}

	return tx, nil
}

func (r *paymentRepository) FindByPGTransactionID(ctx context.Context, pgID string) (*entity.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE pg_transaction_id = $1`

	tx, err := scanPayment(r.db.QueryRow(ctx, query, pgID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("payment transaction with PG ID %s: %w", pgID, apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find payment transaction by PG ID",
			zap.Error(err),
			zap.String("pg_transaction_id", pgID),
		)
		return nil, fmt.Errorf("find payment transaction by PG ID %s: %w", pgID, err)
	}

	return tx, nil
}

func (r *paymentRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find payment transactions by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find payment transactions by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return collectPayments(rows, r.log)
}

func (r *paymentRepository) FindAll(ctx context.Context) ([]*entity.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list payment transactions", zap.Error(err))
		return nil, fmt.Errorf("list payment transactions: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows, r.log)
}

func (r *paymentRepository) FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*entity.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE status = 'pending' AND created_at < $1`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to find stale pending transactions", zap.Error(err))
		return nil, fmt.Errorf("find pending transactions older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	defer rows.Close()

	return collectPayments(rows, r.log)
}

func collectPayments(rows pgx.Rows, log *zap.Logger) ([]*entity.PaymentTransaction, error) {
	var txs []*entity.PaymentTransaction
	for rows.Next() {
		tx, err := scanPayment(rows)
		if err != nil {
			log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r *paymentRepository) RatchetStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) (bool, error) {
	query := `
		UPDATE payment_transactions SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to update payment transaction status",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
			zap.String("status", string(status)),
		)
		return false, fmt.Errorf("update payment transaction %s status to %s: %w", id.String(), string(status), err)
	}

	return result.RowsAffected() > 0, nil
}
