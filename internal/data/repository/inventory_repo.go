package repository

import (
	"context"
	"errors"
	"fmt"

	"ev-service-center/internal/data/entity"
	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type InventoryRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.InventoryItem, error)
	FindByPartNumber(ctx context.Context, partNumber string, centerID uuid.UUID) (*entity.InventoryItem, error)
	FindAll(ctx context.Context, centerID *uuid.UUID) ([]*entity.InventoryItem, error)
	FindLowStock(ctx context.Context) ([]*entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (*entity.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementIfAvailable is the single authoritative stock reservation:
	// a conditional update that can never take quantity below zero, even
	// under concurrent callers.
	DecrementIfAvailable(ctx context.Context, id uuid.UUID, amount int) (*entity.InventoryItem, error)
	// Credit returns previously reserved stock, used by saga compensation.
	Credit(ctx context.Context, id uuid.UUID, amount int) (*entity.InventoryItem, error)
}

type inventoryRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewInventoryRepository(db database.PgxIface, log *zap.Logger) InventoryRepository {
	return &inventoryRepository{
		db:  db,
		log: log.With(zap.String("repository", "inventory")),
	}
}

const inventoryColumns = `id, part_number, name, quantity, min_quantity, price, center_id, created_at, updated_at`

func scanInventoryItem(row pgx.Row) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := row.Scan(
		&item.ID,
		&item.PartNumber,
		&item.Name,
		&item.Quantity,
		&item.MinQuantity,
		&item.Price,
		&item.CenterID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *inventoryRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, part_number, name, quantity, min_quantity, price, center_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		item.ID,
		item.PartNumber,
		item.Name,
		item.Quantity,
		item.MinQuantity,
		item.Price,
		item.CenterID,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("part %s at center %s already exists: %w", item.PartNumber, item.CenterID.String(), apperr.ErrConflict)
	}
	if err != nil {
		r.log.Error("Failed to create inventory item",
			zap.Error(err),
			zap.String("part_number", item.PartNumber),
		)
		return fmt.Errorf("create inventory item %s: %w", item.PartNumber, err)
	}

	return nil
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = $1`

	item, err := scanInventoryItem(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("inventory item %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find inventory item by ID",
			zap.Error(err),
			zap.String("item_id", id.String()),
		)
		return nil, fmt.Errorf("find inventory item by ID %s: %w", id.String(), err)
	}

	return item, nil
}

func (r *inventoryRepository) FindByPartNumber(ctx context.Context, partNumber string, centerID uuid.UUID) (*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE part_number = $1 AND center_id = $2`

	item, err := scanInventoryItem(r.db.QueryRow(ctx, query, partNumber, centerID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("part %s at center %s: %w", partNumber, centerID.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find inventory item by part number",
			zap.Error(err),
			zap.String("part_number", partNumber),
		)
		return nil, fmt.Errorf("find inventory item by part number %s: %w", partNumber, err)
	}

	return item, nil
}

func (r *inventoryRepository) FindAll(ctx context.Context, centerID *uuid.UUID) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items ORDER BY created_at DESC`
	args := []any{}
	if centerID != nil {
		query = `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE center_id = $1 ORDER BY created_at DESC`
		args = append(args, *centerID)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list inventory items", zap.Error(err))
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var items []*entity.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			r.log.Error("Failed to scan inventory row", zap.Error(err))
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *inventoryRepository) FindLowStock(ctx context.Context) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE quantity < min_quantity ORDER BY quantity ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list low-stock items", zap.Error(err))
		return nil, fmt.Errorf("list low-stock items: %w", err)
	}
	defer rows.Close()

	var items []*entity.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			r.log.Error("Failed to scan inventory row", zap.Error(err))
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET part_number = $2, name = $3, quantity = $4, min_quantity = $5, price = $6, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		item.ID,
		item.PartNumber,
		item.Name,
		item.Quantity,
		item.MinQuantity,
		item.Price,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("part %s at center %s already exists: %w", item.PartNumber, item.CenterID.String(), apperr.ErrConflict)
	}
	if err != nil {
		r.log.Error("Failed to update inventory item",
			zap.Error(err),
			zap.String("item_id", item.ID.String()),
		)
		return fmt.Errorf("update inventory item %s: %w", item.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("inventory item %s: %w", item.ID.String(), apperr.ErrNotFound)
	}

	return nil
}

func (r *inventoryRepository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (*entity.InventoryItem, error) {
	query := `
		UPDATE inventory_items
		SET quantity = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + inventoryColumns

	item, err := scanInventoryItem(r.db.QueryRow(ctx, query, id, quantity))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("inventory item %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to set inventory quantity",
			zap.Error(err),
			zap.String("item_id", id.String()),
			zap.Int("quantity", quantity),
		)
		return nil, fmt.Errorf("set quantity for item %s: %w", id.String(), err)
	}

	return item, nil
}

func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM inventory_items WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete inventory item",
			zap.Error(err),
			zap.String("item_id", id.String()),
		)
		return fmt.Errorf("delete inventory item %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("inventory item %s: %w", id.String(), apperr.ErrNotFound)
	}

	r.log.Info("Inventory item deleted", zap.String("item_id", id.String()))
	return nil
}

func (r *inventoryRepository) DecrementIfAvailable(ctx context.Context, id uuid.UUID, amount int) (*entity.InventoryItem, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("decrement amount must be positive, got %d: %w", amount, apperr.ErrInvalidArgument)
	}

	// The WHERE clause is the floor check; the row lock taken by UPDATE
	// serializes concurrent decrements of the same part.
	query := `
		UPDATE inventory_items
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
		RETURNING ` + inventoryColumns

	item, err := scanInventoryItem(r.db.QueryRow(ctx, query, id, amount))
	if err == pgx.ErrNoRows {
		// Distinguish a missing row from an insufficient one.
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return nil, ferr
		}
		return nil, fmt.Errorf("item %s has fewer than %d units: %w", id.String(), amount, apperr.ErrInsufficientStock)
	}
	if err != nil {
		r.log.Error("Failed to decrement inventory",
			zap.Error(err),
			zap.String("item_id", id.String()),
			zap.Int("amount", amount),
		)
		return nil, fmt.Errorf("decrement item %s by %d: %w", id.String(), amount, err)
	}

	return item, nil
}

func (r *inventoryRepository) Credit(ctx context.Context, id uuid.UUID, amount int) (*entity.InventoryItem, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d: %w", amount, apperr.ErrInvalidArgument)
	}

	query := `
		UPDATE inventory_items
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + inventoryColumns

	item, err := scanInventoryItem(r.db.QueryRow(ctx, query, id, amount))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("inventory item %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to credit inventory",
			zap.Error(err),
			zap.String("item_id", id.String()),
			zap.Int("amount", amount),
		)
		return nil, fmt.Errorf("credit item %s by %d: %w", id.String(), amount, err)
	}

	return item, nil
}
