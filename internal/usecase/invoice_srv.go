package usecase

import (
	"context"
	"encoding/json"
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

// laborCharge is the flat service fee added to every invoice.
const laborCharge = 500000

type InvoiceService interface {
	// CreateInvoiceFromBooking deducts stock for every requested part and
	// issues the invoice. If any deduction or the insert fails, stock
	// already taken is credited back before the error returns.
	CreateInvoiceFromBooking(ctx context.Context, req *request.CreateInvoiceRequest) (*response.InvoiceDetailResponse, error)
	GetInvoiceWithItems(ctx context.Context, invoiceID string) (*response.InvoiceDetailResponse, error)
	ListInvoicesByUser(ctx context.Context, userID uuid.UUID) ([]response.InvoiceResponse, error)
	ListInvoices(ctx context.Context) ([]response.InvoiceResponse, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status string) (*response.InvoiceResponse, error)
	// InitiatePayment asks the payment service for gateway instructions
	// and relays its response untouched.
	InitiatePayment(ctx context.Context, invoiceID string, req *request.InitiatePaymentRequest) (json.RawMessage, error)
}

type invoiceService struct {
	repo      repository.InvoiceRepository
	bookings  client.BookingClient
	inventory client.InventoryClient
	payments  client.PaymentClient
	notifier  notify.Publisher
	log       *zap.Logger
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	bookings client.BookingClient,
	inventory client.InventoryClient,
	payments client.PaymentClient,
	notifier notify.Publisher,
	log *zap.Logger,
) InvoiceService {
	return &invoiceService{
		repo:      repo,
		bookings:  bookings,
		inventory: inventory,
		payments:  payments,
		notifier:  notifier,
		log:       log.With(zap.String("service", "invoice")),
	}
}

func (s *invoiceService) CreateInvoiceFromBooking(ctx context.Context, req *request.CreateInvoiceRequest) (*response.InvoiceDetailResponse, error) {
	bookingID, err := utils.ParseUUID(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID %q: %w", req.BookingID, apperr.ErrInvalidArgument)
	}

	// Fail fast on a duplicate; the unique constraint in the repository
	// still catches the race.
	if _, err := s.repo.FindByBookingID(ctx, bookingID); err == nil {
		return nil, fmt.Errorf("invoice for booking %s already exists: %w", bookingID.String(), apperr.ErrConflict)
	}

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == string(entity.BookingStatusCanceled) {
		return nil, fmt.Errorf("booking %s is canceled: %w", bookingID.String(), apperr.ErrConflict)
	}

	// Reserve stock part by part, remembering what was taken so a later
	// failure can be compensated.
	type deduction struct {
		itemID uuid.UUID
		amount int
	}
	var taken []deduction

	compensate := func() {
		for _, d := range taken {
			// Best effort with a fresh context; the request may already
			// be canceled.
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if cerr := s.inventory.Credit(cctx, d.itemID, d.amount); cerr != nil {
				s.log.Error("Failed to compensate stock deduction",
					zap.Error(cerr),
					zap.String("item_id", d.itemID.String()),
					zap.Int("amount", d.amount),
				)
			}
			cancel()
		}
	}

	now := time.Now()
	invoiceID := uuid.New()
	items := []*entity.InvoiceItem{
		{
			BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			InvoiceID:   invoiceID,
			LineNo:      1,
			ItemType:    entity.InvoiceItemTypeService,
			Description: fmt.Sprintf("Service: %s", booking.ServiceType),
			Quantity:    1,
			UnitPrice:   laborCharge,
			SubTotal:    laborCharge,
		},
	}
	total := float64(laborCharge)

	for _, part := range req.PartsData {
		itemID, err := utils.ParseUUID(part.ItemID)
		if err != nil {
			compensate()
			return nil, fmt.Errorf("invalid part item ID %q: %w", part.ItemID, apperr.ErrInvalidArgument)
		}

		stock, err := s.inventory.Decrement(ctx, itemID, part.Quantity)
		if err != nil {
			s.log.Warn("Part deduction failed, rolling back invoice",
				zap.Error(err),
				zap.String("item_id", itemID.String()),
				zap.Int("quantity", part.Quantity),
			)
			compensate()
			return nil, err
		}
		taken = append(taken, deduction{itemID: itemID, amount: part.Quantity})

		subTotal := float64(part.Quantity) * stock.Price
		items = append(items, &entity.InvoiceItem{
			BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			InvoiceID:   invoiceID,
			LineNo:      len(items) + 1,
			ItemType:    entity.InvoiceItemTypePart,
			Description: fmt.Sprintf("%s (%s)", stock.Name, stock.PartNumber),
			Quantity:    part.Quantity,
			UnitPrice:   stock.Price,
			SubTotal:    subTotal,
		})
		total += subTotal
	}

	invoice := &entity.Invoice{
		Base: entity.Base{
			ID:        invoiceID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:   bookingID,
		UserID:      booking.UserID,
		TotalAmount: total,
		Status:      entity.InvoiceStatusIssued,
	}

	if err := s.repo.CreateWithItems(ctx, invoice, items); err != nil {
		compensate()
		return nil, err
	}

	metrics.IncInvoiceCreated()
	s.log.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Float64("total_amount", invoice.TotalAmount),
	)

	// Marking the booking completed is advisory; the invoice stands even
	// if the booking service is down.
	if err := s.bookings.UpdateStatus(ctx, bookingID, string(entity.BookingStatusCompleted)); err != nil {
		s.log.Warn("Failed to mark booking completed",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
	}

	if s.notifier != nil {
		id := invoice.ID
		s.notifier.Publish(client.Notification{
			UserID:            invoice.UserID,
			NotificationType:  "invoice_created",
			Title:             "Invoice issued",
			Message:           fmt.Sprintf("Your invoice for %.0f is ready for payment", invoice.TotalAmount),
			Channel:           "in_app",
			Priority:          "normal",
			RelatedEntityType: "invoice",
			RelatedEntityID:   &id,
			Metadata: map[string]any{
				"booking_id":   bookingID.String(),
				"total_amount": invoice.TotalAmount,
			},
		})
	}

	resp := response.InvoiceDetailToResponse(invoice, items)
	return &resp, nil
}

func (s *invoiceService) GetInvoiceWithItems(ctx context.Context, invoiceID string) (*response.InvoiceDetailResponse, error) {
	id, err := utils.ParseUUID(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice ID %q: %w", invoiceID, apperr.ErrInvalidArgument)
	}

	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.FindItems(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.InvoiceDetailToResponse(invoice, items)
	return &resp, nil
}

func (s *invoiceService) ListInvoicesByUser(ctx context.Context, userID uuid.UUID) ([]response.InvoiceResponse, error) {
	invoices, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return response.InvoicesToResponse(invoices), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context) ([]response.InvoiceResponse, error) {
	invoices, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return response.InvoicesToResponse(invoices), nil
}

func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status string) (*response.InvoiceResponse, error) {
	id, err := utils.ParseUUID(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice ID %q: %w", invoiceID, apperr.ErrInvalidArgument)
	}

	target := entity.InvoiceStatus(status)
	if !entity.ValidInvoiceStatus(target) {
		return nil, fmt.Errorf("unknown invoice status %q: %w", status, apperr.ErrInvalidArgument)
	}

	invoice, err := s.repo.UpdateStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}

	s.log.Info("Invoice status updated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("status", string(invoice.Status)),
	)

	resp := response.InvoiceToResponse(invoice)
	return &resp, nil
}

func (s *invoiceService) InitiatePayment(ctx context.Context, invoiceID string, req *request.InitiatePaymentRequest) (json.RawMessage, error) {
	id, err := utils.ParseUUID(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice ID %q: %w", invoiceID, apperr.ErrInvalidArgument)
	}

	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == entity.InvoiceStatusPaid {
		return nil, fmt.Errorf("invoice %s is already paid: %w", id.String(), apperr.ErrConflict)
	}
	if invoice.Status == entity.InvoiceStatusCanceled {
		return nil, fmt.Errorf("invoice %s is canceled: %w", id.String(), apperr.ErrConflict)
	}

	raw, err := s.payments.CreatePayment(ctx, client.CreatePaymentRequest{
		InvoiceID: invoice.ID,
		Method:    req.Method,
		UserID:    invoice.UserID,
		Amount:    invoice.TotalAmount,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Payment initiated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("method", req.Method),
		zap.Float64("amount", invoice.TotalAmount),
	)

	return raw, nil
}
