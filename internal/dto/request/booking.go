package request

import "time"

type CreateBookingRequest struct {
	UserID       string    `json:"user_id" validate:"required,uuid4"`
	ServiceType  string    `json:"service_type" validate:"required,max=100"`
	TechnicianID string    `json:"technician_id" validate:"required,uuid4"`
	StationID    string    `json:"station_id" validate:"required,uuid4"`
	CenterID     string    `json:"center_id,omitempty" validate:"omitempty,uuid4"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}
