package response

import (
	"time"

	"ev-service-center/internal/data/entity"

	"github.com/google/uuid"
)

type TaskResponse struct {
	ID            uuid.UUID         `json:"id"`
	BookingID     uuid.UUID         `json:"booking_id"`
	UserID        uuid.UUID         `json:"user_id"`
	TechnicianID  uuid.UUID         `json:"technician_id"`
	VehicleVIN    string            `json:"vehicle_vin"`
	Description   string            `json:"description"`
	Status        entity.TaskStatus `json:"status"`
	ScheduledDate *time.Time        `json:"scheduled_date,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type TaskPartResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type ChecklistItemResponse struct {
	ID        uuid.UUID              `json:"id"`
	TaskID    uuid.UUID              `json:"task_id"`
	ItemName  string                 `json:"item_name"`
	Status    entity.ChecklistStatus `json:"status"`
	Note      string                 `json:"note,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type DueSoonResponse struct {
	Maintenances []TaskResponse `json:"maintenances"`
	Count        int            `json:"count"`
}

func TaskToResponse(t *entity.MaintenanceTask) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		BookingID:     t.BookingID,
		UserID:        t.UserID,
		TechnicianID:  t.TechnicianID,
		VehicleVIN:    t.VehicleVIN,
		Description:   t.Description,
		Status:        t.Status,
		ScheduledDate: t.ScheduledDate,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func TasksToResponse(tasks []*entity.MaintenanceTask) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = TaskToResponse(t)
	}
	return out
}

func TaskPartToResponse(p *entity.TaskPart) TaskPartResponse {
	return TaskPartResponse{
		ID:        p.ID,
		TaskID:    p.TaskID,
		ItemID:    p.ItemID,
		Quantity:  p.Quantity,
		CreatedAt: p.CreatedAt,
	}
}

func TaskPartsToResponse(parts []*entity.TaskPart) []TaskPartResponse {
	out := make([]TaskPartResponse, len(parts))
	for i, p := range parts {
		out[i] = TaskPartToResponse(p)
	}
	return out
}

func ChecklistItemToResponse(c *entity.ChecklistItem) ChecklistItemResponse {
	return ChecklistItemResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		ItemName:  c.ItemName,
		Status:    c.Status,
		Note:      c.Note,
		CreatedAt: c.CreatedAt,
	}
}

func ChecklistToResponse(items []*entity.ChecklistItem) []ChecklistItemResponse {
	out := make([]ChecklistItemResponse, len(items))
	for i, c := range items {
		out[i] = ChecklistItemToResponse(c)
	}
	return out
}
