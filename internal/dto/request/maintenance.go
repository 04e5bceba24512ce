package request

import "time"

type CreateTaskRequest struct {
	BookingID     string     `json:"booking_id" validate:"required,uuid4"`
	TechnicianID  string     `json:"technician_id" validate:"required,uuid4"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
}

type AddTaskPartRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid4"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateChecklistItemRequest struct {
	Status string `json:"status" validate:"required,oneof=pending passed failed"`
	Note   string `json:"note,omitempty" validate:"max=500"`
}
