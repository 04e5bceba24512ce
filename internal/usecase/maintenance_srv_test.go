package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ev-service-center/internal/client"
	"ev-service-center/internal/data/entity"
	"ev-service-center/internal/dto/request"
	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMaintenanceRepo struct {
	tasks      map[uuid.UUID]*entity.MaintenanceTask
	checklists map[uuid.UUID][]*entity.ChecklistItem
	parts      map[uuid.UUID]*entity.TaskPart

	addPartErr error
}

func newFakeMaintenanceRepo() *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{
		tasks:      make(map[uuid.UUID]*entity.MaintenanceTask),
		checklists: make(map[uuid.UUID][]*entity.ChecklistItem),
		parts:      make(map[uuid.UUID]*entity.TaskPart),
	}
}

func (f *fakeMaintenanceRepo) CreateTask(ctx context.Context, task *entity.MaintenanceTask, checklist []*entity.ChecklistItem) error {
	for _, existing := range f.tasks {
		if existing.BookingID == task.BookingID && existing.TechnicianID == task.TechnicianID {
			return fmt.Errorf("task for booking already assigned: %w", apperr.ErrConflict)
		}
	}
	f.tasks[task.ID] = task
	f.checklists[task.ID] = checklist
	return nil
}

func (f *fakeMaintenanceRepo) FindTaskByID(ctx context.Context, id uuid.UUID) (*entity.MaintenanceTask, error) {
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("task %s: %w", id, apperr.ErrNotFound)
}

func (f *fakeMaintenanceRepo) FindTasksByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.MaintenanceTask, error) {
	var out []*entity.MaintenanceTask
	for _, t := range f.tasks {
		if t.UserID == userID || t.TechnicianID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeMaintenanceRepo) FindAllTasks(ctx context.Context) ([]*entity.MaintenanceTask, error) {
	var out []*entity.MaintenanceTask
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeMaintenanceRepo) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status entity.TaskStatus) (*entity.MaintenanceTask, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, apperr.ErrNotFound)
	}
	t.Status = status
	return t, nil
}

func (f *fakeMaintenanceRepo) FindTasksDueSoon(ctx context.Context, within time.Duration) ([]*entity.MaintenanceTask, error) {
	now := time.Now()
	var out []*entity.MaintenanceTask
	for _, t := range f.tasks {
		if t.Status.Terminal() || t.ScheduledDate == nil {
			continue
		}
		if t.ScheduledDate.After(now) && t.ScheduledDate.Before(now.Add(within)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeMaintenanceRepo) AddPart(ctx context.Context, part *entity.TaskPart) error {
	if f.addPartErr != nil {
		return f.addPartErr
	}
	f.parts[part.ID] = part
	return nil
}

func (f *fakeMaintenanceRepo) FindParts(ctx context.Context, taskID uuid.UUID) ([]*entity.TaskPart, error) {
	var out []*entity.TaskPart
	for _, p := range f.parts {
		if p.TaskID == taskID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeMaintenanceRepo) FindPartByID(ctx context.Context, id uuid.UUID) (*entity.TaskPart, error) {
	if p, ok := f.parts[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("task part %s: %w", id, apperr.ErrNotFound)
}

func (f *fakeMaintenanceRepo) SumPartQuantity(ctx context.Context, taskID, itemID uuid.UUID) (int, error) {
	total := 0
	for _, p := range f.parts {
		if p.TaskID == taskID && p.ItemID == itemID {
			total += p.Quantity
		}
	}
	return total, nil
}

func (f *fakeMaintenanceRepo) RemovePart(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.parts[id]; !ok {
		return fmt.Errorf("task part %s: %w", id, apperr.ErrNotFound)
	}
	delete(f.parts, id)
	return nil
}

func (f *fakeMaintenanceRepo) FindChecklist(ctx context.Context, taskID uuid.UUID) ([]*entity.ChecklistItem, error) {
	return f.checklists[taskID], nil
}

func (f *fakeMaintenanceRepo) FindChecklistItemByID(ctx context.Context, id uuid.UUID) (*entity.ChecklistItem, error) {
	for _, items := range f.checklists {
		for _, item := range items {
			if item.ID == id {
				return item, nil
			}
		}
	}
	return nil, fmt.Errorf("checklist item %s: %w", id, apperr.ErrNotFound)
}

func (f *fakeMaintenanceRepo) UpdateChecklistItem(ctx context.Context, id uuid.UUID, status entity.ChecklistStatus, note string) (*entity.ChecklistItem, error) {
	item, err := f.FindChecklistItemByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	item.Status = status
	item.Note = note
	return item, nil
}

func (f *fakeMaintenanceRepo) RemoveChecklistItem(ctx context.Context, id uuid.UUID) error {
	for taskID, items := range f.checklists {
		for i, item := range items {
			if item.ID == id {
				f.checklists[taskID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("checklist item %s: %w", id, apperr.ErrNotFound)
}

func maintenanceBookingClient(bookingID uuid.UUID) *fakeBookingClient {
	return &fakeBookingClient{
		GetFn: func(ctx context.Context, id uuid.UUID) (*client.BookingDetails, error) {
			return &client.BookingDetails{
				ID:          bookingID,
				UserID:      uuid.New(),
				ServiceType: "brake_service",
				Status:      string(entity.BookingStatusConfirmed),
				StartTime:   time.Now().Add(48 * time.Hour),
				EndTime:     time.Now().Add(49 * time.Hour),
			}, nil
		},
	}
}

func TestCreateTaskFromBooking_SeedsChecklist(t *testing.T) {
	bookingID := uuid.New()
	repo := newFakeMaintenanceRepo()
	notifier := &capturingNotifier{}
	svc := NewMaintenanceService(repo, maintenanceBookingClient(bookingID), nil, nil, notifier, zap.NewNop())

	task, err := svc.CreateTaskFromBooking(context.Background(), &request.CreateTaskRequest{
		BookingID:    bookingID.String(),
		TechnicianID: uuid.New().String(),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.TaskStatusPending, task.Status)
	assert.Equal(t, fmt.Sprintf("VIN_%s_UNKNOWN", bookingID), task.VehicleVIN)
	require.NotNil(t, task.ScheduledDate)

	checklist := repo.checklists[task.ID]
	require.Len(t, checklist, len(entity.DefaultChecklist))
	for i, item := range checklist {
		assert.Equal(t, entity.DefaultChecklist[i], item.ItemName)
		assert.Equal(t, entity.ChecklistStatusPending, item.Status)
	}

	require.Len(t, notifier.published(), 1)
	assert.Equal(t, "task_assigned", notifier.published()[0].NotificationType)
}

func TestCreateTaskFromBooking_BuildsVINFromUsername(t *testing.T) {
	bookingID := uuid.New()
	repo := newFakeMaintenanceRepo()
	users := &fakeUserClient{
		GetFn: func(ctx context.Context, id uuid.UUID) (*client.UserDetails, error) {
			return &client.UserDetails{ID: id, Username: "nguyen.van.a", Role: utils.RoleCustomer}, nil
		},
	}
	svc := NewMaintenanceService(repo, maintenanceBookingClient(bookingID), nil, users, nil, zap.NewNop())

	task, err := svc.CreateTaskFromBooking(context.Background(), &request.CreateTaskRequest{
		BookingID:    bookingID.String(),
		TechnicianID: uuid.New().String(),
	})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("VIN_%s_nguyen.van.a", bookingID), task.VehicleVIN)
}

func TestCreateTaskFromBooking_UserLookupFailureKeepsPlaceholder(t *testing.T) {
	bookingID := uuid.New()
	repo := newFakeMaintenanceRepo()
	users := &fakeUserClient{
		GetFn: func(ctx context.Context, id uuid.UUID) (*client.UserDetails, error) {
			return nil, fmt.Errorf("user service unreachable: %w", apperr.ErrUpstream)
		},
	}
	svc := NewMaintenanceService(repo, maintenanceBookingClient(bookingID), nil, users, nil, zap.NewNop())

	task, err := svc.CreateTaskFromBooking(context.Background(), &request.CreateTaskRequest{
		BookingID:    bookingID.String(),
		TechnicianID: uuid.New().String(),
	})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("VIN_%s_UNKNOWN", bookingID), task.VehicleVIN)
}

func TestCreateTaskFromBooking_DuplicateAssignmentConflicts(t *testing.T) {
	bookingID := uuid.New()
	technicianID := uuid.New()
	repo := newFakeMaintenanceRepo()
	svc := NewMaintenanceService(repo, maintenanceBookingClient(bookingID), nil, nil, nil, zap.NewNop())

	req := &request.CreateTaskRequest{
		BookingID:    bookingID.String(),
		TechnicianID: technicianID.String(),
	}
	_, err := svc.CreateTaskFromBooking(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreateTaskFromBooking(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAddPartToTask_DecrementsOnlyTheDelta(t *testing.T) {
	technicianID := uuid.New()
	itemID := uuid.New()
	repo := newFakeMaintenanceRepo()
	task := &entity.MaintenanceTask{
		Base:         entity.Base{ID: uuid.New()},
		BookingID:    uuid.New(),
		TechnicianID: technicianID,
		Status:       entity.TaskStatusInProgress,
	}
	repo.tasks[task.ID] = task

	var decremented []int
	inventory := &fakeInventoryClient{
		DecrementFn: func(ctx context.Context, id uuid.UUID, amount int) (*client.InventoryDetails, error) {
			decremented = append(decremented, amount)
			return &client.InventoryDetails{ID: id, Quantity: 10}, nil
		},
	}
	svc := NewMaintenanceService(repo, nil, inventory, nil, nil, zap.NewNop())
	actor := Actor{UserID: technicianID, Role: utils.RoleTechnician}

	_, err := svc.AddPartToTask(context.Background(), actor, task.ID.String(), &request.AddTaskPartRequest{
		ItemID: itemID.String(), Quantity: 3,
	})
	require.NoError(t, err)

	_, err = svc.AddPartToTask(context.Background(), actor, task.ID.String(), &request.AddTaskPartRequest{
		ItemID: itemID.String(), Quantity: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2}, decremented)

	total, err := repo.SumPartQuantity(context.Background(), task.ID, itemID)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestAddPartToTask_ForbiddenForOtherTechnician(t *testing.T) {
	repo := newFakeMaintenanceRepo()
	task := &entity.MaintenanceTask{
		Base:         entity.Base{ID: uuid.New()},
		TechnicianID: uuid.New(),
		Status:       entity.TaskStatusInProgress,
	}
	repo.tasks[task.ID] = task

	svc := NewMaintenanceService(repo, nil, nil, nil, nil, zap.NewNop())
	actor := Actor{UserID: uuid.New(), Role: utils.RoleTechnician}

	_, err := svc.AddPartToTask(context.Background(), actor, task.ID.String(), &request.AddTaskPartRequest{
		ItemID: uuid.New().String(), Quantity: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAddPartToTask_AdminMayActOnAnyTask(t *testing.T) {
	repo := newFakeMaintenanceRepo()
	task := &entity.MaintenanceTask{
		Base:         entity.Base{ID: uuid.New()},
		TechnicianID: uuid.New(),
		Status:       entity.TaskStatusPending,
	}
	repo.tasks[task.ID] = task

	inventory := &fakeInventoryClient{
		DecrementFn: func(ctx context.Context, id uuid.UUID, amount int) (*client.InventoryDetails, error) {
			return &client.InventoryDetails{ID: id}, nil
		},
	}
	svc := NewMaintenanceService(repo, nil, inventory, nil, nil, zap.NewNop())
	actor := Actor{UserID: uuid.New(), Role: utils.RoleAdmin}

	_, err := svc.AddPartToTask(context.Background(), actor, task.ID.String(), &request.AddTaskPartRequest{
		ItemID: uuid.New().String(), Quantity: 1,
	})
	assert.NoError(t, err)
}

func TestAddPartToTask_TerminalTaskConflicts(t *testing.T) {
	repo := newFakeMaintenanceRepo()
	technicianID := uuid.New()
	task := &entity.MaintenanceTask{
		Base:         entity.Base{ID: uuid.New()},
		TechnicianID: technicianID,
		Status:       entity.TaskStatusCompleted,
	}
	repo.tasks[task.ID] = task

	svc := NewMaintenanceService(repo, nil, nil, nil, nil, zap.NewNop())
	actor := Actor{UserID: technicianID, Role: utils.RoleTechnician}

	_, err := svc.AddPartToTask(context.Background(), actor, task.ID.String(), &request.AddTaskPartRequest{
		ItemID: uuid.New().String(), Quantity: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAddPartToTask_CreditsWhenRecordFails(t *testing.T) {
	repo := newFakeMaintenanceRepo()
	technicianID := uuid.New()
	itemID := uuid.New()
	task := &entity.MaintenanceTask{
		Base:         entity.Base{ID: uuid.New()},
		TechnicianID: technicianID,
		Status:       entity.TaskStatusInProgress,
	}
	repo.tasks[task.ID] = task
	repo.addPartErr = fmt.Errorf("db down")

	inventory := &fakeInventoryClient{
		DecrementFn: func(ctx context.Context, id uuid.UUID, amount int) (*client.InventoryDetails, error) {
			return &client.InventoryDetails{ID: id}, nil
		},
	}
	svc := NewMaintenanceService(repo, nil, inventory, nil, nil, zap.NewNop())
	actor := Actor{UserID: technicianID, Role: utils.RoleTechnician}

	_, err := svc.AddPartToTask(context.Background(), actor, task.ID.String(), &request.AddTaskPartRequest{
		ItemID: itemID.String(), Quantity: 4,
	})
	require.Error(t, err)
	assert.Equal(t, 4, inventory.credited(itemID))
}

func TestRemovePartFromTask_CreditsStockBack(t *testing.T) {
	repo := newFakeMaintenanceRepo()
	technicianID := uuid.New()
	itemID := uuid.New()
	task := &entity.MaintenanceTask{
		Base:         entity.Base{ID: uuid.New()},
		TechnicianID: technicianID,
		Status:       entity.TaskStatusInProgress,
	}
	repo.tasks[task.ID] = task
	part := &entity.TaskPart{
		BaseSimple: entity.BaseSimple{ID: uuid.New()},
		TaskID:     task.ID,
		ItemID:     itemID,
		Quantity:   2,
	}
	repo.parts[part.ID] = part

	inventory := &fakeInventoryClient{}
	svc := NewMaintenanceService(repo, nil, inventory, nil, nil, zap.NewNop())
	actor := Actor{UserID: technicianID, Role: utils.RoleTechnician}

	err := svc.RemovePartFromTask(context.Background(), actor, task.ID.String(), part.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 2, inventory.credited(itemID))
	assert.Empty(t, repo.parts)
}

func TestUpdateChecklistItem_RejectsForeignItem(t *testing.T) {
	repo := newFakeMaintenanceRepo()
	technicianID := uuid.New()
	task := &entity.MaintenanceTask{
		Base:         entity.Base{ID: uuid.New()},
		TechnicianID: technicianID,
		Status:       entity.TaskStatusInProgress,
	}
	otherTask := &entity.MaintenanceTask{
		Base:         entity.Base{ID: uuid.New()},
		TechnicianID: technicianID,
	}
	repo.tasks[task.ID] = task
	repo.tasks[otherTask.ID] = otherTask

	item := &entity.ChecklistItem{
		BaseSimple: entity.BaseSimple{ID: uuid.New()},
		TaskID:     otherTask.ID,
		ItemName:   "Brake system",
		Status:     entity.ChecklistStatusPending,
	}
	repo.checklists[otherTask.ID] = []*entity.ChecklistItem{item}

	svc := NewMaintenanceService(repo, nil, nil, nil, nil, zap.NewNop())
	actor := Actor{UserID: technicianID, Role: utils.RoleTechnician}

	_, err := svc.UpdateChecklistItem(context.Background(), actor, task.ID.String(), item.ID.String(), &request.UpdateChecklistItemRequest{
		Status: "passed",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateTaskStatus_NotifiesOnCompletion(t *testing.T) {
	repo := newFakeMaintenanceRepo()
	technicianID := uuid.New()
	task := &entity.MaintenanceTask{
		Base:         entity.Base{ID: uuid.New()},
		UserID:       uuid.New(),
		TechnicianID: technicianID,
		Description:  "Maintenance for brake_service",
		Status:       entity.TaskStatusInProgress,
	}
	repo.tasks[task.ID] = task

	notifier := &capturingNotifier{}
	svc := NewMaintenanceService(repo, nil, nil, nil, notifier, zap.NewNop())
	actor := Actor{UserID: technicianID, Role: utils.RoleTechnician}

	got, err := svc.UpdateTaskStatus(context.Background(), actor, task.ID.String(), "completed")
	require.NoError(t, err)

	assert.Equal(t, entity.TaskStatusCompleted, got.Status)
	require.Len(t, notifier.published(), 1)
	assert.Equal(t, "task_completed", notifier.published()[0].NotificationType)
}

func TestListTasksDueSoon(t *testing.T) {
	repo := newFakeMaintenanceRepo()
	soon := time.Now().Add(48 * time.Hour)
	far := time.Now().Add(30 * 24 * time.Hour)
	repo.tasks[uuid.New()] = &entity.MaintenanceTask{
		Base: entity.Base{ID: uuid.New()}, Status: entity.TaskStatusPending, ScheduledDate: &soon,
	}
	repo.tasks[uuid.New()] = &entity.MaintenanceTask{
		Base: entity.Base{ID: uuid.New()}, Status: entity.TaskStatusPending, ScheduledDate: &far,
	}

	svc := NewMaintenanceService(repo, nil, nil, nil, nil, zap.NewNop())

	got, err := svc.ListTasksDueSoon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	assert.Len(t, got.Maintenances, 1)
}
