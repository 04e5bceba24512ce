package response

import (
	"time"

	"ev-service-center/internal/data/entity"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID           uuid.UUID            `json:"id"`
	UserID       uuid.UUID            `json:"user_id"`
	CustomerName string               `json:"customer_name"`
	ServiceType  string               `json:"service_type"`
	TechnicianID uuid.UUID            `json:"technician_id"`
	StationID    uuid.UUID            `json:"station_id"`
	CenterID     *uuid.UUID           `json:"center_id,omitempty"`
	StartTime    time.Time            `json:"start_time"`
	EndTime      time.Time            `json:"end_time"`
	Status       entity.BookingStatus `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		CustomerName: b.CustomerName,
		ServiceType:  b.ServiceType,
		TechnicianID: b.TechnicianID,
		StationID:    b.StationID,
		CenterID:     b.CenterID,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = BookingToResponse(b)
	}
	return out
}
