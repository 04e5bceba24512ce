package usecase

import (
	"context"
	"fmt"
	"time"

	"ev-service-center/internal/client"
	"ev-service-center/internal/data/entity"
	"ev-service-center/internal/data/repository"
	"ev-service-center/internal/dto/request"
	"ev-service-center/internal/dto/response"
	"ev-service-center/internal/metrics"
	"ev-service-center/internal/notify"
	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InventoryService interface {
	CreateItem(ctx context.Context, req *request.CreateInventoryItemRequest) (*response.InventoryItemResponse, error)
	GetItem(ctx context.Context, itemID string) (*response.InventoryItemResponse, error)
	ListItems(ctx context.Context, centerID string) ([]response.InventoryItemResponse, error)
	ListLowStock(ctx context.Context) ([]response.InventoryItemResponse, error)
	UpdateItem(ctx context.Context, itemID string, req *request.UpdateInventoryItemRequest) (*response.InventoryItemResponse, error)
	SetQuantity(ctx context.Context, itemID string, quantity int) (*response.InventoryItemResponse, error)
	DeleteItem(ctx context.Context, itemID string) error

	// Decrement and Credit back the internal stock-adjustment endpoints
	// other services call during invoice and task flows.
	Decrement(ctx context.Context, itemID string, req *request.AdjustStockRequest) (*response.InventoryItemResponse, error)
	Credit(ctx context.Context, itemID string, req *request.AdjustStockRequest) (*response.InventoryItemResponse, error)
}

type inventoryService struct {
	repo     repository.InventoryRepository
	notifier notify.Publisher
	log      *zap.Logger
}

func NewInventoryService(
	repo repository.InventoryRepository,
	notifier notify.Publisher,
	log *zap.Logger,
) InventoryService {
	return &inventoryService{
		repo:     repo,
		notifier: notifier,
		log:      log.With(zap.String("service", "inventory")),
	}
}

func (s *inventoryService) CreateItem(ctx context.Context, req *request.CreateInventoryItemRequest) (*response.InventoryItemResponse, error) {
	centerID, err := utils.ParseUUID(req.CenterID)
	if err != nil {
		return nil, fmt.Errorf("invalid center ID %q: %w", req.CenterID, apperr.ErrInvalidArgument)
	}

	now := time.Now()
	item := &entity.InventoryItem{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PartNumber:  req.PartNumber,
		Name:        req.Name,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Price:       req.Price,
		CenterID:    centerID,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("Inventory item created",
		zap.String("item_id", item.ID.String()),
		zap.String("part_number", item.PartNumber),
		zap.Int("quantity", item.Quantity),
	)

	resp := response.InventoryItemToResponse(item)
	return &resp, nil
}

func (s *inventoryService) GetItem(ctx context.Context, itemID string) (*response.InventoryItemResponse, error) {
	id, err := utils.ParseUUID(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid item ID %q: %w", itemID, apperr.ErrInvalidArgument)
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.InventoryItemToResponse(item)
	return &resp, nil
}

func (s *inventoryService) ListItems(ctx context.Context, centerID string) ([]response.InventoryItemResponse, error) {
	var filter *uuid.UUID
	if centerID != "" {
		id, err := utils.ParseUUID(centerID)
		if err != nil {
			return nil, fmt.Errorf("invalid center ID %q: %w", centerID, apperr.ErrInvalidArgument)
		}
		filter = &id
	}

	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	return response.InventoryItemsToResponse(items), nil
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]response.InventoryItemResponse, error) {
	items, err := s.repo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}

	return response.InventoryItemsToResponse(items), nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, itemID string, req *request.UpdateInventoryItemRequest) (*response.InventoryItemResponse, error) {
	id, err := utils.ParseUUID(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid item ID %q: %w", itemID, apperr.ErrInvalidArgument)
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := item.Quantity

	if req.PartNumber != nil {
		item.PartNumber = *req.PartNumber
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.MinQuantity != nil {
		item.MinQuantity = *req.MinQuantity
	}
	if req.Price != nil {
		item.Price = *req.Price
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.alertOnStockLevel(item, prev)

	resp := response.InventoryItemToResponse(item)
	return &resp, nil
}

func (s *inventoryService) SetQuantity(ctx context.Context, itemID string, quantity int) (*response.InventoryItemResponse, error) {
	id, err := utils.ParseUUID(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid item ID %q: %w", itemID, apperr.ErrInvalidArgument)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative, got %d: %w", quantity, apperr.ErrInvalidArgument)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := existing.Quantity

	item, err := s.repo.SetQuantity(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	s.log.Info("Inventory quantity set",
		zap.String("item_id", item.ID.String()),
		zap.Int("quantity", item.Quantity),
	)
	s.alertOnStockLevel(item, prev)

	resp := response.InventoryItemToResponse(item)
	return &resp, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, itemID string) error {
	id, err := utils.ParseUUID(itemID)
	if err != nil {
		return fmt.Errorf("invalid item ID %q: %w", itemID, apperr.ErrInvalidArgument)
	}

	return s.repo.Delete(ctx, id)
}

func (s *inventoryService) Decrement(ctx context.Context, itemID string, req *request.AdjustStockRequest) (*response.InventoryItemResponse, error) {
	id, err := utils.ParseUUID(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid item ID %q: %w", itemID, apperr.ErrInvalidArgument)
	}

	item, err := s.repo.DecrementIfAvailable(ctx, id, req.Amount)
	if err != nil {
		return nil, err
	}

	metrics.IncStockDecrement()
	s.log.Info("Stock decremented",
		zap.String("item_id", item.ID.String()),
		zap.Int("amount", req.Amount),
		zap.Int("remaining", item.Quantity),
	)
	// The conditional update only succeeds for the exact amount, so the
	// pre-decrement level is recoverable.
	s.alertOnStockLevel(item, item.Quantity+req.Amount)

	resp := response.InventoryItemToResponse(item)
	return &resp, nil
}

func (s *inventoryService) Credit(ctx context.Context, itemID string, req *request.AdjustStockRequest) (*response.InventoryItemResponse, error) {
	id, err := utils.ParseUUID(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid item ID %q: %w", itemID, apperr.ErrInvalidArgument)
	}

	item, err := s.repo.Credit(ctx, id, req.Amount)
	if err != nil {
		return nil, err
	}

	s.log.Info("Stock credited",
		zap.String("item_id", item.ID.String()),
		zap.Int("amount", req.Amount),
		zap.Int("quantity", item.Quantity),
	)

	resp := response.InventoryItemToResponse(item)
	return &resp, nil
}

// alertOnStockLevel enqueues an out-of-stock or low-stock admin alert
// when the quantity crosses the threshold. A level already below the
// floor before the change does not re-fire. Delivery is fire-and-forget
// through the notifier.
func (s *inventoryService) alertOnStockLevel(item *entity.InventoryItem, prevQuantity int) {
	if s.notifier == nil {
		return
	}

	ranOut := item.Quantity == 0 && prevQuantity > 0
	wentLow := item.LowStock() && prevQuantity >= item.MinQuantity
	if !ranOut && !wentLow {
		return
	}

	itemID := item.ID
	n := client.Notification{
		UserID:            item.CenterID,
		NotificationType:  "low_stock_alert",
		Title:             fmt.Sprintf("Low stock: %s", item.Name),
		Message:           fmt.Sprintf("Part %s has %d units left (minimum %d)", item.PartNumber, item.Quantity, item.MinQuantity),
		Channel:           "in_app",
		Priority:          "high",
		RelatedEntityType: "inventory_item",
		RelatedEntityID:   &itemID,
		Metadata: map[string]any{
			"part_number":  item.PartNumber,
			"quantity":     item.Quantity,
			"min_quantity": item.MinQuantity,
		},
	}
	if ranOut {
		n.NotificationType = "out_of_stock_alert"
		n.Title = fmt.Sprintf("Out of stock: %s", item.Name)
		n.Message = fmt.Sprintf("Part %s is out of stock", item.PartNumber)
		n.Priority = "urgent"
	}

	s.notifier.Publish(n)
}
