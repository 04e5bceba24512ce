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

// dueSoonWindow is how far ahead the reminder feed looks.
const dueSoonWindow = 7 * 24 * time.Hour

// Actor identifies the caller for task-level authorization. Admins can
// touch any task; technicians only their own.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

type MaintenanceService interface {
	CreateTaskFromBooking(ctx context.Context, req *request.CreateTaskRequest) (*response.TaskResponse, error)
	GetTask(ctx context.Context, taskID string) (*response.TaskResponse, error)
	ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]response.TaskResponse, error)
	ListTasks(ctx context.Context) ([]response.TaskResponse, error)
	UpdateTaskStatus(ctx context.Context, actor Actor, taskID string, status string) (*response.TaskResponse, error)
	ListTasksDueSoon(ctx context.Context) (*response.DueSoonResponse, error)

	// AddPartToTask reserves real stock through the inventory service
	// before recording the usage; the record never outruns the stock.
	AddPartToTask(ctx context.Context, actor Actor, taskID string, req *request.AddTaskPartRequest) (*response.TaskPartResponse, error)
	ListTaskParts(ctx context.Context, taskID string) ([]response.TaskPartResponse, error)
	// RemovePartFromTask deletes the usage record and credits the stock
	// back.
	RemovePartFromTask(ctx context.Context, actor Actor, taskID string, partID string) error

	GetChecklist(ctx context.Context, taskID string) ([]response.ChecklistItemResponse, error)
	UpdateChecklistItem(ctx context.Context, actor Actor, taskID string, itemID string, req *request.UpdateChecklistItemRequest) (*response.ChecklistItemResponse, error)
	RemoveChecklistItem(ctx context.Context, actor Actor, taskID string, itemID string) error
}

type maintenanceService struct {
	repo      repository.MaintenanceRepository
	bookings  client.BookingClient
	inventory client.InventoryClient
	users     client.UserClient
	notifier  notify.Publisher
	log       *zap.Logger
}

func NewMaintenanceService(
	repo repository.MaintenanceRepository,
	bookings client.BookingClient,
	inventory client.InventoryClient,
	users client.UserClient,
	notifier notify.Publisher,
	log *zap.Logger,
) MaintenanceService {
	return &maintenanceService{
		repo:      repo,
		bookings:  bookings,
		inventory: inventory,
		users:     users,
		notifier:  notifier,
		log:       log.With(zap.String("service", "maintenance")),
	}
}

func (s *maintenanceService) CreateTaskFromBooking(ctx context.Context, req *request.CreateTaskRequest) (*response.TaskResponse, error) {
	bookingID, err := utils.ParseUUID(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID %q: %w", req.BookingID, apperr.ErrInvalidArgument)
	}
	technicianID, err := utils.ParseUUID(req.TechnicianID)
	if err != nil {
		return nil, fmt.Errorf("invalid technician ID %q: %w", req.TechnicianID, apperr.ErrInvalidArgument)
	}

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == string(entity.BookingStatusCanceled) {
		return nil, fmt.Errorf("booking %s is canceled: %w", bookingID.String(), apperr.ErrConflict)
	}

	scheduled := req.ScheduledDate
	if scheduled == nil {
		start := booking.StartTime
		scheduled = &start
	}

	// The booking flow does not capture the VIN; the owner's username
	// stands in until intake records the real one. The lookup is
	// best-effort, a user-service outage must not block the task.
	vin := fmt.Sprintf("VIN_%s_UNKNOWN", bookingID.String())
	if s.users != nil {
		profile, uerr := s.users.Get(ctx, booking.UserID)
		switch {
		case uerr != nil:
			s.log.Warn("User lookup failed, keeping VIN placeholder",
				zap.Error(uerr),
				zap.String("user_id", booking.UserID.String()),
			)
		case profile.Username != "":
			vin = fmt.Sprintf("VIN_%s_%s", bookingID.String(), profile.Username)
		}
	}

	now := time.Now()
	task := &entity.MaintenanceTask{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:     bookingID,
		UserID:        booking.UserID,
		TechnicianID:  technicianID,
		VehicleVIN:    vin,
		Description:   fmt.Sprintf("Maintenance for %s", booking.ServiceType),
		Status:        entity.TaskStatusPending,
		ScheduledDate: scheduled,
	}

	checklist := make([]*entity.ChecklistItem, len(entity.DefaultChecklist))
	for i, name := range entity.DefaultChecklist {
		checklist[i] = &entity.ChecklistItem{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			TaskID:     task.ID,
			ItemName:   name,
			Status:     entity.ChecklistStatusPending,
		}
	}

	if err := s.repo.CreateTask(ctx, task, checklist); err != nil {
		return nil, err
	}

	s.log.Info("Maintenance task created",
		zap.String("task_id", task.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.String("technician_id", technicianID.String()),
	)

	if s.notifier != nil {
		taskID := task.ID
		s.notifier.Publish(client.Notification{
			UserID:            technicianID,
			NotificationType:  "task_assigned",
			Title:             "New maintenance task",
			Message:           fmt.Sprintf("You have been assigned: %s", task.Description),
			Channel:           "in_app",
			Priority:          "normal",
			RelatedEntityType: "maintenance_task",
			RelatedEntityID:   &taskID,
		})
	}

	resp := response.TaskToResponse(task)
	return &resp, nil
}

func (s *maintenanceService) GetTask(ctx context.Context, taskID string) (*response.TaskResponse, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	resp := response.TaskToResponse(task)
	return &resp, nil
}

func (s *maintenanceService) ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]response.TaskResponse, error) {
	tasks, err := s.repo.FindTasksByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return response.TasksToResponse(tasks), nil
}

func (s *maintenanceService) ListTasks(ctx context.Context) ([]response.TaskResponse, error) {
	tasks, err := s.repo.FindAllTasks(ctx)
	if err != nil {
		return nil, err
	}

	return response.TasksToResponse(tasks), nil
}

func (s *maintenanceService) UpdateTaskStatus(ctx context.Context, actor Actor, taskID string, status string) (*response.TaskResponse, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTask(actor, task); err != nil {
		return nil, err
	}

	target := entity.TaskStatus(status)
	if !entity.ValidTaskStatus(target) {
		return nil, fmt.Errorf("unknown task status %q: %w", status, apperr.ErrInvalidArgument)
	}

	task, err = s.repo.UpdateTaskStatus(ctx, task.ID, target)
	if err != nil {
		return nil, err
	}

	s.log.Info("Task status updated",
		zap.String("task_id", task.ID.String()),
		zap.String("status", string(task.Status)),
	)

	if s.notifier != nil && task.Status.Terminal() {
		id := task.ID
		s.notifier.Publish(client.Notification{
			UserID:            task.UserID,
			NotificationType:  "task_" + string(task.Status),
			Title:             fmt.Sprintf("Maintenance %s", task.Status),
			Message:           fmt.Sprintf("%s is %s", task.Description, task.Status),
			Channel:           "in_app",
			Priority:          "normal",
			RelatedEntityType: "maintenance_task",
			RelatedEntityID:   &id,
		})
	}

	resp := response.TaskToResponse(task)
	return &resp, nil
}

func (s *maintenanceService) ListTasksDueSoon(ctx context.Context) (*response.DueSoonResponse, error) {
	tasks, err := s.repo.FindTasksDueSoon(ctx, dueSoonWindow)
	if err != nil {
		return nil, err
	}

	items := response.TasksToResponse(tasks)
	return &response.DueSoonResponse{Maintenances: items, Count: len(items)}, nil
}

func (s *maintenanceService) AddPartToTask(ctx context.Context, actor Actor, taskID string, req *request.AddTaskPartRequest) (*response.TaskPartResponse, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTask(actor, task); err != nil {
		return nil, err
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("task %s is %s: %w", task.ID.String(), task.Status, apperr.ErrConflict)
	}

	itemID, err := utils.ParseUUID(req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("invalid item ID %q: %w", req.ItemID, apperr.ErrInvalidArgument)
	}

	// Only the requested delta is taken; adding 2 after 3 costs 2, not 5.
	if _, err := s.inventory.Decrement(ctx, itemID, req.Quantity); err != nil {
		return nil, err
	}

	part := &entity.TaskPart{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		TaskID:     task.ID,
		ItemID:     itemID,
		Quantity:   req.Quantity,
	}

	if err := s.repo.AddPart(ctx, part); err != nil {
		// Put the stock back, the usage was never recorded.
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if cerr := s.inventory.Credit(cctx, itemID, req.Quantity); cerr != nil {
			s.log.Error("Failed to compensate part reservation",
				zap.Error(cerr),
				zap.String("item_id", itemID.String()),
				zap.Int("amount", req.Quantity),
			)
		}
		cancel()
		return nil, err
	}

	total, err := s.repo.SumPartQuantity(ctx, task.ID, itemID)
	if err != nil {
		s.log.Warn("Failed to sum part usage",
			zap.Error(err),
			zap.String("task_id", task.ID.String()),
			zap.String("item_id", itemID.String()),
		)
		total = part.Quantity
	}

	s.log.Info("Part added to task",
		zap.String("task_id", task.ID.String()),
		zap.String("item_id", itemID.String()),
		zap.Int("quantity", req.Quantity),
		zap.Int("total_used", total),
	)

	resp := response.TaskPartToResponse(part)
	return &resp, nil
}

func (s *maintenanceService) ListTaskParts(ctx context.Context, taskID string) ([]response.TaskPartResponse, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	parts, err := s.repo.FindParts(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	return response.TaskPartsToResponse(parts), nil
}

func (s *maintenanceService) RemovePartFromTask(ctx context.Context, actor Actor, taskID string, partID string) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := authorizeTask(actor, task); err != nil {
		return err
	}

	id, err := utils.ParseUUID(partID)
	if err != nil {
		return fmt.Errorf("invalid part ID %q: %w", partID, apperr.ErrInvalidArgument)
	}

	part, err := s.repo.FindPartByID(ctx, id)
	if err != nil {
		return err
	}
	if part.TaskID != task.ID {
		return fmt.Errorf("part %s does not belong to task %s: %w", id.String(), task.ID.String(), apperr.ErrNotFound)
	}

	if err := s.repo.RemovePart(ctx, id); err != nil {
		return err
	}

	// Return the reserved stock. A failed credit leaves inventory short,
	// which is visible in the logs and fixable by an admin adjustment.
	if err := s.inventory.Credit(ctx, part.ItemID, part.Quantity); err != nil {
		s.log.Error("Failed to credit stock for removed part",
			zap.Error(err),
			zap.String("item_id", part.ItemID.String()),
			zap.Int("amount", part.Quantity),
		)
	}

	s.log.Info("Part removed from task",
		zap.String("task_id", task.ID.String()),
		zap.String("item_id", part.ItemID.String()),
		zap.Int("quantity", part.Quantity),
	)

	return nil
}

func (s *maintenanceService) GetChecklist(ctx context.Context, taskID string) ([]response.ChecklistItemResponse, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.FindChecklist(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	return response.ChecklistToResponse(items), nil
}

func (s *maintenanceService) UpdateChecklistItem(ctx context.Context, actor Actor, taskID string, itemID string, req *request.UpdateChecklistItemRequest) (*response.ChecklistItemResponse, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTask(actor, task); err != nil {
		return nil, err
	}

	id, err := utils.ParseUUID(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid checklist item ID %q: %w", itemID, apperr.ErrInvalidArgument)
	}

	existing, err := s.repo.FindChecklistItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.TaskID != task.ID {
		return nil, fmt.Errorf("checklist item %s does not belong to task %s: %w", id.String(), task.ID.String(), apperr.ErrNotFound)
	}

	status := entity.ChecklistStatus(req.Status)
	if !entity.ValidChecklistStatus(status) {
		return nil, fmt.Errorf("unknown checklist status %q: %w", req.Status, apperr.ErrInvalidArgument)
	}

	item, err := s.repo.UpdateChecklistItem(ctx, id, status, req.Note)
	if err != nil {
		return nil, err
	}

	resp := response.ChecklistItemToResponse(item)
	return &resp, nil
}

func (s *maintenanceService) RemoveChecklistItem(ctx context.Context, actor Actor, taskID string, itemID string) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := authorizeTask(actor, task); err != nil {
		return err
	}

	id, err := utils.ParseUUID(itemID)
	if err != nil {
		return fmt.Errorf("invalid checklist item ID %q: %w", itemID, apperr.ErrInvalidArgument)
	}

	existing, err := s.repo.FindChecklistItemByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.TaskID != task.ID {
		return fmt.Errorf("checklist item %s does not belong to task %s: %w", id.String(), task.ID.String(), apperr.ErrNotFound)
	}

	return s.repo.RemoveChecklistItem(ctx, id)
}

func (s *maintenanceService) findTask(ctx context.Context, taskID string) (*entity.MaintenanceTask, error) {
	id, err := utils.ParseUUID(taskID)
	if err != nil {
		return nil, fmt.Errorf("invalid task ID %q: %w", taskID, apperr.ErrInvalidArgument)
	}

	return s.repo.FindTaskByID(ctx, id)
}

func authorizeTask(actor Actor, task *entity.MaintenanceTask) error {
	if actor.Role == utils.RoleAdmin || actor.UserID == task.TechnicianID {
		return nil
	}
	return fmt.Errorf("user %s may not modify task %s: %w", actor.UserID.String(), task.ID.String(), apperr.ErrForbidden)
}
