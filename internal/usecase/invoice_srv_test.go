package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"ev-service-center/internal/client"
	"ev-service-center/internal/data/entity"
	"ev-service-center/internal/dto/request"
	"ev-service-center/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*entity.Invoice
	items    map[uuid.UUID][]*entity.InvoiceItem
	byBook   map[uuid.UUID]*entity.Invoice

	createErr error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: make(map[uuid.UUID]*entity.Invoice),
		items:    make(map[uuid.UUID][]*entity.InvoiceItem),
		byBook:   make(map[uuid.UUID]*entity.Invoice),
	}
}

func (f *fakeInvoiceRepo) CreateWithItems(ctx context.Context, invoice *entity.Invoice, items []*entity.InvoiceItem) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byBook[invoice.BookingID]; ok {
		return fmt.Errorf("invoice for booking %s already exists: %w", invoice.BookingID, apperr.ErrConflict)
	}
	f.invoices[invoice.ID] = invoice
	f.items[invoice.ID] = items
	f.byBook[invoice.BookingID] = invoice
	return nil
}

func (f *fakeInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	if inv, ok := f.invoices[id]; ok {
		return inv, nil
	}
	return nil, fmt.Errorf("invoice %s: %w", id, apperr.ErrNotFound)
}

func (f *fakeInvoiceRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Invoice, error) {
	if inv, ok := f.byBook[bookingID]; ok {
		return inv, nil
	}
	return nil, fmt.Errorf("invoice for booking %s: %w", bookingID, apperr.ErrNotFound)
}

func (f *fakeInvoiceRepo) FindItems(ctx context.Context, invoiceID uuid.UUID) ([]*entity.InvoiceItem, error) {
	return f.items[invoiceID], nil
}

func (f *fakeInvoiceRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range f.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvoiceRepo) FindAll(ctx context.Context) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range f.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (f *fakeInvoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.InvoiceStatus) (*entity.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, apperr.ErrNotFound)
	}
	inv.Status = status
	return inv, nil
}

func testBookingDetails(bookingID uuid.UUID) *client.BookingDetails {
	return &client.BookingDetails{
		ID:          bookingID,
		UserID:      uuid.New(),
		ServiceType: "battery_check",
		Status:      string(entity.BookingStatusConfirmed),
		StartTime:   time.Now(),
		EndTime:     time.Now().Add(time.Hour),
	}
}

func TestCreateInvoiceFromBooking_TotalsLaborAndParts(t *testing.T) {
	bookingID := uuid.New()
	itemID := uuid.New()

	repo := newFakeInvoiceRepo()
	bookings := &fakeBookingClient{
		GetFn: func(ctx context.Context, id uuid.UUID) (*client.BookingDetails, error) {
			return testBookingDetails(bookingID), nil
		},
	}
	inventory := &fakeInventoryClient{
		DecrementFn: func(ctx context.Context, id uuid.UUID, amount int) (*client.InventoryDetails, error) {
			return &client.InventoryDetails{ID: id, Name: "Brake pad", PartNumber: "BP-01", Price: 150000}, nil
		},
	}
	notifier := &capturingNotifier{}
	svc := NewInvoiceService(repo, bookings, inventory, nil, notifier, zap.NewNop())

	got, err := svc.CreateInvoiceFromBooking(context.Background(), &request.CreateInvoiceRequest{
		BookingID: bookingID.String(),
		PartsData: []request.InvoicePartRequest{{ItemID: itemID.String(), Quantity: 2}},
	})
	require.NoError(t, err)

	// 500000 labor + 2 * 150000 parts
	assert.Equal(t, float64(800000), got.TotalAmount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, entity.InvoiceItemTypeService, got.Items[0].ItemType)
	assert.Equal(t, entity.InvoiceItemTypePart, got.Items[1].ItemType)
	assert.Equal(t, entity.InvoiceStatusIssued, got.Status)

	// The labor line is pinned first, parts keep request order.
	for i, item := range got.Items {
		assert.Equal(t, i+1, item.LineNo)
	}

	require.Len(t, notifier.published(), 1)
	assert.Equal(t, "invoice_created", notifier.published()[0].NotificationType)
}

func TestCreateInvoiceFromBooking_DuplicateConflicts(t *testing.T) {
	bookingID := uuid.New()

	repo := newFakeInvoiceRepo()
	repo.byBook[bookingID] = &entity.Invoice{Base: entity.Base{ID: uuid.New()}, BookingID: bookingID}

	svc := NewInvoiceService(repo, nil, nil, nil, nil, zap.NewNop())

	_, err := svc.CreateInvoiceFromBooking(context.Background(), &request.CreateInvoiceRequest{
		BookingID: bookingID.String(),
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateInvoiceFromBooking_CompensatesOnDeductionFailure(t *testing.T) {
	bookingID := uuid.New()
	goodItem := uuid.New()
	badItem := uuid.New()

	repo := newFakeInvoiceRepo()
	bookings := &fakeBookingClient{
		GetFn: func(ctx context.Context, id uuid.UUID) (*client.BookingDetails, error) {
			return testBookingDetails(bookingID), nil
		},
	}
	inventory := &fakeInventoryClient{
		DecrementFn: func(ctx context.Context, id uuid.UUID, amount int) (*client.InventoryDetails, error) {
			if id == badItem {
				return nil, fmt.Errorf("item has fewer units: %w", apperr.ErrInsufficientStock)
			}
			return &client.InventoryDetails{ID: id, Name: "Coolant", PartNumber: "CL-02", Price: 90000}, nil
		},
	}
	svc := NewInvoiceService(repo, bookings, inventory, nil, nil, zap.NewNop())

	_, err := svc.CreateInvoiceFromBooking(context.Background(), &request.CreateInvoiceRequest{
		BookingID: bookingID.String(),
		PartsData: []request.InvoicePartRequest{
			{ItemID: goodItem.String(), Quantity: 3},
			{ItemID: badItem.String(), Quantity: 1},
		},
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	// The successful deduction was rolled back, the failed one never
	// deducted anything to roll back.
	assert.Equal(t, 3, inventory.credited(goodItem))
	assert.Equal(t, 0, inventory.credited(badItem))
	assert.Empty(t, repo.invoices)
}

func TestCreateInvoiceFromBooking_CompensatesOnPersistFailure(t *testing.T) {
	bookingID := uuid.New()
	itemID := uuid.New()

	repo := newFakeInvoiceRepo()
	repo.createErr = fmt.Errorf("db down")
	bookings := &fakeBookingClient{
		GetFn: func(ctx context.Context, id uuid.UUID) (*client.BookingDetails, error) {
			return testBookingDetails(bookingID), nil
		},
	}
	inventory := &fakeInventoryClient{
		DecrementFn: func(ctx context.Context, id uuid.UUID, amount int) (*client.InventoryDetails, error) {
			return &client.InventoryDetails{ID: id, Price: 10000}, nil
		},
	}
	svc := NewInvoiceService(repo, bookings, inventory, nil, nil, zap.NewNop())

	_, err := svc.CreateInvoiceFromBooking(context.Background(), &request.CreateInvoiceRequest{
		BookingID: bookingID.String(),
		PartsData: []request.InvoicePartRequest{{ItemID: itemID.String(), Quantity: 5}},
	})
	require.Error(t, err)
	assert.Equal(t, 5, inventory.credited(itemID))
}

func TestCreateInvoiceFromBooking_RejectsCanceledBooking(t *testing.T) {
	bookingID := uuid.New()

	repo := newFakeInvoiceRepo()
	bookings := &fakeBookingClient{
		GetFn: func(ctx context.Context, id uuid.UUID) (*client.BookingDetails, error) {
			d := testBookingDetails(bookingID)
			d.Status = string(entity.BookingStatusCanceled)
			return d, nil
		},
	}
	svc := NewInvoiceService(repo, bookings, nil, nil, nil, zap.NewNop())

	_, err := svc.CreateInvoiceFromBooking(context.Background(), &request.CreateInvoiceRequest{
		BookingID: bookingID.String(),
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestInitiatePayment_PaidInvoiceConflicts(t *testing.T) {
	repo := newFakeInvoiceRepo()
	inv := &entity.Invoice{
		Base:        entity.Base{ID: uuid.New()},
		BookingID:   uuid.New(),
		UserID:      uuid.New(),
		TotalAmount: 500000,
		Status:      entity.InvoiceStatusPaid,
	}
	repo.invoices[inv.ID] = inv

	svc := NewInvoiceService(repo, nil, nil, nil, nil, zap.NewNop())

	_, err := svc.InitiatePayment(context.Background(), inv.ID.String(), &request.InitiatePaymentRequest{Method: "momo_qr"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestInitiatePayment_RelaysGatewayResponse(t *testing.T) {
	repo := newFakeInvoiceRepo()
	inv := &entity.Invoice{
		Base:        entity.Base{ID: uuid.New()},
		BookingID:   uuid.New(),
		UserID:      uuid.New(),
		TotalAmount: 650000,
		Status:      entity.InvoiceStatusIssued,
	}
	repo.invoices[inv.ID] = inv

	payments := &fakePaymentClient{
		CreateFn: func(ctx context.Context, req client.CreatePaymentRequest) (json.RawMessage, error) {
			assert.Equal(t, inv.ID, req.InvoiceID)
			assert.Equal(t, inv.TotalAmount, req.Amount)
			return []byte(`{"pg_transaction_id":"PG_X"}`), nil
		},
	}
	svc := NewInvoiceService(repo, nil, nil, payments, nil, zap.NewNop())

	raw, err := svc.InitiatePayment(context.Background(), inv.ID.String(), &request.InitiatePaymentRequest{Method: "bank_transfer"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pg_transaction_id":"PG_X"}`, string(raw))
}
