package repository

import (
	"context"
	"fmt"

	"ev-service-center/internal/data/entity"
	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type InvoiceRepository interface {
	// CreateWithItems persists the invoice and all of its lines in one
	// transaction. A second invoice for the same booking fails with
	// ErrConflict off the unique constraint.
	CreateWithItems(ctx context.Context, invoice *entity.Invoice, items []*entity.InvoiceItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Invoice, error)
	FindItems(ctx context.Context, invoiceID uuid.UUID) ([]*entity.InvoiceItem, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Invoice, error)
	FindAll(ctx context.Context) ([]*entity.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.InvoiceStatus) (*entity.Invoice, error)
}

type invoiceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewInvoiceRepository(db database.PgxIface, log *zap.Logger) InvoiceRepository {
	return &invoiceRepository{
		db:  db,
		log: log.With(zap.String("repository", "invoice")),
	}
}

const invoiceColumns = `id, booking_id, user_id, total_amount, status, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.BookingID,
		&inv.UserID,
		&inv.TotalAmount,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) CreateWithItems(ctx context.Context, invoice *entity.Invoice, items []*entity.InvoiceItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create invoice tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, booking_id, user_id, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		invoice.ID,
		invoice.BookingID,
		invoice.UserID,
		invoice.TotalAmount,
		invoice.Status,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("invoice for booking %s already exists: %w", invoice.BookingID.String(), apperr.ErrConflict)
	}
	if err != nil {
		r.log.Error("Failed to create invoice",
			zap.Error(err),
			zap.String("booking_id", invoice.BookingID.String()),
		)
		return fmt.Errorf("create invoice for booking %s: %w", invoice.BookingID.String(), err)
	}

	for _, item := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_items (id, invoice_id, line_no, item_type, description, quantity, unit_price, sub_total, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			item.ID,
			item.InvoiceID,
			item.LineNo,
			item.ItemType,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.SubTotal,
			item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create invoice item",
				zap.Error(err),
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("description", item.Description),
			)
			return fmt.Errorf("create invoice item %q: %w", item.Description, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("invoice %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find invoice by ID",
			zap.Error(err),
			zap.String("invoice_id", id.String()),
		)
		return nil, fmt.Errorf("find invoice by ID %s: %w", id.String(), err)
	}

	return inv, nil
}

func (r *invoiceRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE booking_id = $1`

	inv, err := scanInvoice(r.db.QueryRow(ctx, query, bookingID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("invoice for booking %s: %w", bookingID.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find invoice by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find invoice by booking ID %s: %w", bookingID.String(), err)
	}

	return inv, nil
}

func (r *invoiceRepository) FindItems(ctx context.Context, invoiceID uuid.UUID) ([]*entity.InvoiceItem, error) {
	// All lines of one invoice share a timestamp, line_no is the order.
	query := `
		SELECT id, invoice_id, line_no, item_type, description, quantity, unit_price, sub_total, created_at
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_no
	`

	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		r.log.Error("Failed to find invoice items",
			zap.Error(err),
			zap.String("invoice_id", invoiceID.String()),
		)
		return nil, fmt.Errorf("find items for invoice %s: %w", invoiceID.String(), err)
	}
	defer rows.Close()

	var items []*entity.InvoiceItem
	for rows.Next() {
		var item entity.InvoiceItem
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.LineNo,
			&item.ItemType,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.SubTotal,
			&item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan invoice item row", zap.Error(err))
			return nil, fmt.Errorf("scan invoice item row: %w", err)
		}
		items = append(items, &item)
	}

	return items, nil
}

func (r *invoiceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find invoices by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find invoices by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return collectInvoices(rows, r.log)
}

func (r *invoiceRepository) FindAll(ctx context.Context) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows, r.log)
}

func collectInvoices(rows pgx.Rows, log *zap.Logger) ([]*entity.Invoice, error) {
	var invoices []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			log.Error("Failed to scan invoice row", zap.Error(err))
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.InvoiceStatus) (*entity.Invoice, error) {
	query := `
		UPDATE invoices SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + invoiceColumns

	inv, err := scanInvoice(r.db.QueryRow(ctx, query, id, status))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("invoice %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to update invoice status",
			zap.Error(err),
			zap.String("invoice_id", id.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("update invoice %s status to %s: %w", id.String(), string(status), err)
	}

	return inv, nil
}
