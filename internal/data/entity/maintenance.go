package entity

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// MaintenanceTask is the technician work order derived from a booking.
// One booking can carry one task per assigned technician.
type MaintenanceTask struct {
	Base
	BookingID     uuid.UUID  `db:"booking_id"`
	UserID        uuid.UUID  `db:"user_id"`
	TechnicianID  uuid.UUID  `db:"technician_id"`
	VehicleVIN    string     `db:"vehicle_vin"`
	Description   string     `db:"description"`
	Status        TaskStatus `db:"status"`
	ScheduledDate *time.Time `db:"scheduled_date"`
}

// TaskPart records stock actually reserved for a task, separate from the
// invoice's part lines.
type TaskPart struct {
	BaseSimple
	TaskID   uuid.UUID `db:"task_id"`
	ItemID   uuid.UUID `db:"item_id"`
	Quantity int       `db:"quantity"`
}

type ChecklistStatus string

const (
	ChecklistStatusPending ChecklistStatus = "pending"
	ChecklistStatusPassed  ChecklistStatus = "passed"
	ChecklistStatusFailed  ChecklistStatus = "failed"
)

func ValidChecklistStatus(s ChecklistStatus) bool {
	switch s {
	case ChecklistStatusPending, ChecklistStatusPassed, ChecklistStatusFailed:
		return true
	}
	return false
}

// ChecklistItem is one inspection category on a task's checklist.
type ChecklistItem struct {
	BaseSimple
	TaskID   uuid.UUID       `db:"task_id"`
	ItemName string          `db:"item_name"`
	Status   ChecklistStatus `db:"status"`
	Note     string          `db:"note"`
}

// DefaultChecklist are the inspection categories seeded on every new task.
var DefaultChecklist = []string{
	"Battery pack & BMS",
	"Electric motor & drivetrain",
	"Brake system",
	"Tires & suspension",
	"Charging port & cables",
	"Cooling system",
	"Software & diagnostics",
}
