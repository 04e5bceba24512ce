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
	"ev-service-center/internal/notify"
	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]response.BookingResponse, error)
	ListBookings(ctx context.Context) ([]response.BookingResponse, error)
	SetStatus(ctx context.Context, bookingID string, status string) (*response.BookingResponse, error)
	DeleteBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo     repository.BookingRepository
	users    client.UserClient
	notifier notify.Publisher
	log      *zap.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	users client.UserClient,
	notifier notify.Publisher,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	userID, err := utils.ParseUUID(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", req.UserID, apperr.ErrInvalidArgument)
	}
	technicianID, err := utils.ParseUUID(req.TechnicianID)
	if err != nil {
		return nil, fmt.Errorf("invalid technician ID %q: %w", req.TechnicianID, apperr.ErrInvalidArgument)
	}
	stationID, err := utils.ParseUUID(req.StationID)
	if err != nil {
		return nil, fmt.Errorf("invalid station ID %q: %w", req.StationID, apperr.ErrInvalidArgument)
	}
	var centerID *uuid.UUID
	if req.CenterID != "" {
		id, err := utils.ParseUUID(req.CenterID)
		if err != nil {
			return nil, fmt.Errorf("invalid center ID %q: %w", req.CenterID, apperr.ErrInvalidArgument)
		}
		centerID = &id
	}

	// Customer name comes from the user service; a lookup failure just
	// leaves the name empty, it never blocks the booking.
	customerName := ""
	if s.users != nil {
		if user, err := s.users.Get(ctx, userID); err != nil {
			s.log.Warn("Failed to resolve customer name",
				zap.Error(err),
				zap.String("user_id", userID.String()),
			)
		} else {
			customerName = user.Username
		}
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:       userID,
		CustomerName: customerName,
		ServiceType:  req.ServiceType,
		TechnicianID: technicianID,
		StationID:    stationID,
		CenterID:     centerID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       entity.BookingStatusConfirmed,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", booking.UserID.String()),
		zap.Time("start_time", booking.StartTime),
	)

	s.publishStatusNotification(booking)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := utils.ParseUUID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID %q: %w", bookingID, apperr.ErrInvalidArgument)
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]response.BookingResponse, error) {
	bookings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return response.BookingsToResponse(bookings), nil
}

func (s *bookingService) ListBookings(ctx context.Context) ([]response.BookingResponse, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return response.BookingsToResponse(bookings), nil
}

func (s *bookingService) SetStatus(ctx context.Context, bookingID string, status string) (*response.BookingResponse, error) {
	id, err := utils.ParseUUID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID %q: %w", bookingID, apperr.ErrInvalidArgument)
	}

	target := entity.BookingStatus(status)
	if !entity.ValidBookingStatus(target) {
		return nil, fmt.Errorf("unknown booking status %q: %w", status, apperr.ErrInvalidArgument)
	}

	booking, err := s.repo.UpdateStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking status updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("status", string(booking.Status)),
	)

	s.publishStatusNotification(booking)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	id, err := utils.ParseUUID(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID %q: %w", bookingID, apperr.ErrInvalidArgument)
	}

	return s.repo.Delete(ctx, id)
}

func (s *bookingService) publishStatusNotification(booking *entity.Booking) {
	if s.notifier == nil {
		return
	}

	bookingID := booking.ID
	s.notifier.Publish(client.Notification{
		UserID:            booking.UserID,
		NotificationType:  "booking_" + string(booking.Status),
		Title:             fmt.Sprintf("Booking %s", booking.Status),
		Message:           fmt.Sprintf("Your %s appointment on %s is %s", booking.ServiceType, booking.StartTime.Format("2006-01-02 15:04"), booking.Status),
		Channel:           "in_app",
		Priority:          "normal",
		RelatedEntityType: "booking",
		RelatedEntityID:   &bookingID,
	})
}
