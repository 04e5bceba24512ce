package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingDetails is the wire shape the booking service returns on its
// internal endpoints.
type BookingDetails struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	CustomerName string     `json:"customer_name"`
	ServiceType  string     `json:"service_type"`
	TechnicianID uuid.UUID  `json:"technician_id"`
	StationID    uuid.UUID  `json:"station_id"`
	CenterID     *uuid.UUID `json:"center_id,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	Status       string     `json:"status"`
}

type BookingClient interface {
	Get(ctx context.Context, id uuid.UUID) (*BookingDetails, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type bookingClient struct {
	internal *Internal
}

func NewBookingClient(baseURL, token string, timeout time.Duration, log *zap.Logger) BookingClient {
	return &bookingClient{
		internal: NewInternal(baseURL, token, timeout, log.With(zap.String("peer", "booking"))),
	}
}

func (c *bookingClient) Get(ctx context.Context, id uuid.UUID) (*BookingDetails, error) {
	var booking BookingDetails
	path := fmt.Sprintf("/internal/bookings/items/%s", id.String())
	if err := c.internal.do(ctx, http.MethodGet, path, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *bookingClient) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	path := fmt.Sprintf("/internal/bookings/items/%s/status", id.String())
	body := map[string]string{"status": status}
	return c.internal.do(ctx, http.MethodPut, path, body, nil)
}
