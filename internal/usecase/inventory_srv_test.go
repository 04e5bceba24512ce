package usecase

import (
	"context"
	"fmt"
	"testing"

	"ev-service-center/internal/data/entity"
	"ev-service-center/internal/dto/request"
	"ev-service-center/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInventoryRepo struct {
	byID map[uuid.UUID]*entity.InventoryItem
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{byID: make(map[uuid.UUID]*entity.InventoryItem)}
}

func (f *fakeInventoryRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	for _, existing := range f.byID {
		if existing.PartNumber == item.PartNumber && existing.CenterID == item.CenterID {
			return fmt.Errorf("part already exists: %w", apperr.ErrConflict)
		}
	}
	f.byID[item.ID] = item
	return nil
}

func (f *fakeInventoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.InventoryItem, error) {
	if item, ok := f.byID[id]; ok {
		return item, nil
	}
	return nil, fmt.Errorf("inventory item %s: %w", id, apperr.ErrNotFound)
}

func (f *fakeInventoryRepo) FindByPartNumber(ctx context.Context, partNumber string, centerID uuid.UUID) (*entity.InventoryItem, error) {
	for _, item := range f.byID {
		if item.PartNumber == partNumber && item.CenterID == centerID {
			return item, nil
		}
	}
	return nil, fmt.Errorf("part %s: %w", partNumber, apperr.ErrNotFound)
}

func (f *fakeInventoryRepo) FindAll(ctx context.Context, centerID *uuid.UUID) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	for _, item := range f.byID {
		if centerID == nil || item.CenterID == *centerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) FindLowStock(ctx context.Context) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	for _, item := range f.byID {
		if item.LowStock() {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	if _, ok := f.byID[item.ID]; !ok {
		return fmt.Errorf("inventory item %s: %w", item.ID, apperr.ErrNotFound)
	}
	f.byID[item.ID] = item
	return nil
}

func (f *fakeInventoryRepo) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (*entity.InventoryItem, error) {
	item, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, apperr.ErrNotFound)
	}
	item.Quantity = quantity
	return item, nil
}

func (f *fakeInventoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("inventory item %s: %w", id, apperr.ErrNotFound)
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeInventoryRepo) DecrementIfAvailable(ctx context.Context, id uuid.UUID, amount int) (*entity.InventoryItem, error) {
	item, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, apperr.ErrNotFound)
	}
	if item.Quantity < amount {
		return nil, fmt.Errorf("item %s has fewer than %d units: %w", id, amount, apperr.ErrInsufficientStock)
	}
	item.Quantity -= amount
	return item, nil
}

func (f *fakeInventoryRepo) Credit(ctx context.Context, id uuid.UUID, amount int) (*entity.InventoryItem, error) {
	item, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, apperr.ErrNotFound)
	}
	item.Quantity += amount
	return item, nil
}

func stockedItem(quantity, minQuantity int) *entity.InventoryItem {
	return &entity.InventoryItem{
		Base:        entity.Base{ID: uuid.New()},
		PartNumber:  "BP-01",
		Name:        "Brake pad",
		Quantity:    quantity,
		MinQuantity: minQuantity,
		Price:       150000,
		CenterID:    uuid.New(),
	}
}

func TestDecrement_FloorsAtZero(t *testing.T) {
	repo := newFakeInventoryRepo()
	item := stockedItem(3, 1)
	repo.byID[item.ID] = item

	svc := NewInventoryService(repo, nil, zap.NewNop())

	_, err := svc.Decrement(context.Background(), item.ID.String(), &request.AdjustStockRequest{Amount: 5})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 3, item.Quantity)

	got, err := svc.Decrement(context.Background(), item.ID.String(), &request.AdjustStockRequest{Amount: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestDecrement_PublishesOutOfStockAlert(t *testing.T) {
	repo := newFakeInventoryRepo()
	item := stockedItem(2, 5)
	repo.byID[item.ID] = item

	notifier := &capturingNotifier{}
	svc := NewInventoryService(repo, notifier, zap.NewNop())

	_, err := svc.Decrement(context.Background(), item.ID.String(), &request.AdjustStockRequest{Amount: 2})
	require.NoError(t, err)

	published := notifier.published()
	require.Len(t, published, 1)
	assert.Equal(t, "out_of_stock_alert", published[0].NotificationType)
	assert.Equal(t, "urgent", published[0].Priority)
}

func TestSetQuantity_PublishesLowStockAlert(t *testing.T) {
	repo := newFakeInventoryRepo()
	item := stockedItem(50, 10)
	repo.byID[item.ID] = item

	notifier := &capturingNotifier{}
	svc := NewInventoryService(repo, notifier, zap.NewNop())

	got, err := svc.SetQuantity(context.Background(), item.ID.String(), 8)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)

	published := notifier.published()
	require.Len(t, published, 1)
	assert.Equal(t, "low_stock_alert", published[0].NotificationType)
}

func TestSetQuantity_DoesNotRealertWhileLow(t *testing.T) {
	repo := newFakeInventoryRepo()
	item := stockedItem(8, 10)
	repo.byID[item.ID] = item

	notifier := &capturingNotifier{}
	svc := NewInventoryService(repo, notifier, zap.NewNop())

	// Already below the floor, dropping further is not a new crossing.
	_, err := svc.SetQuantity(context.Background(), item.ID.String(), 6)
	require.NoError(t, err)

	assert.Empty(t, notifier.published())
}

func TestDecrement_DoesNotRealertWhileLow(t *testing.T) {
	repo := newFakeInventoryRepo()
	item := stockedItem(4, 10)
	repo.byID[item.ID] = item

	notifier := &capturingNotifier{}
	svc := NewInventoryService(repo, notifier, zap.NewNop())

	_, err := svc.Decrement(context.Background(), item.ID.String(), &request.AdjustStockRequest{Amount: 1})
	require.NoError(t, err)
	assert.Empty(t, notifier.published())

	// The final unit going out is a crossing again.
	_, err = svc.Decrement(context.Background(), item.ID.String(), &request.AdjustStockRequest{Amount: 3})
	require.NoError(t, err)

	published := notifier.published()
	require.Len(t, published, 1)
	assert.Equal(t, "out_of_stock_alert", published[0].NotificationType)
}

func TestSetQuantity_RejectsNegative(t *testing.T) {
	svc := NewInventoryService(newFakeInventoryRepo(), nil, zap.NewNop())

	_, err := svc.SetQuantity(context.Background(), uuid.New().String(), -1)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestCredit_RestoresStock(t *testing.T) {
	repo := newFakeInventoryRepo()
	item := stockedItem(1, 0)
	repo.byID[item.ID] = item

	svc := NewInventoryService(repo, nil, zap.NewNop())

	got, err := svc.Credit(context.Background(), item.ID.String(), &request.AdjustStockRequest{Amount: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}

func TestListItems_FiltersByCenter(t *testing.T) {
	repo := newFakeInventoryRepo()
	a := stockedItem(10, 1)
	b := stockedItem(10, 1)
	repo.byID[a.ID] = a
	repo.byID[b.ID] = b

	svc := NewInventoryService(repo, nil, zap.NewNop())

	all, err := svc.ListItems(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListItems(context.Background(), a.CenterID.String())
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, a.ID, filtered[0].ID)
}

func TestUpdateItem_PatchesOnlyProvidedFields(t *testing.T) {
	repo := newFakeInventoryRepo()
	item := stockedItem(10, 2)
	repo.byID[item.ID] = item

	svc := NewInventoryService(repo, nil, zap.NewNop())

	newPrice := 175000.0
	got, err := svc.UpdateItem(context.Background(), item.ID.String(), &request.UpdateInventoryItemRequest{
		Price: &newPrice,
	})
	require.NoError(t, err)

	assert.Equal(t, 175000.0, got.Price)
	assert.Equal(t, "Brake pad", got.Name)
	assert.Equal(t, 10, got.Quantity)
}
