package repository

import (
	"context"
	"fmt"
	"time"

	"ev-service-center/internal/data/entity"
	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type MaintenanceRepository interface {
	// CreateTask inserts the task and its seeded checklist in one
	// transaction. A duplicate (booking_id, technician_id) pair fails
	// with ErrConflict.
	CreateTask(ctx context.Context, task *entity.MaintenanceTask, checklist []*entity.ChecklistItem) error
	FindTaskByID(ctx context.Context, id uuid.UUID) (*entity.MaintenanceTask, error)
	FindTasksByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.MaintenanceTask, error)
	FindAllTasks(ctx context.Context) ([]*entity.MaintenanceTask, error)
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status entity.TaskStatus) (*entity.MaintenanceTask, error)
	FindTasksDueSoon(ctx context.Context, within time.Duration) ([]*entity.MaintenanceTask, error)

	AddPart(ctx context.Context, part *entity.TaskPart) error
	FindParts(ctx context.Context, taskID uuid.UUID) ([]*entity.TaskPart, error)
	FindPartByID(ctx context.Context, id uuid.UUID) (*entity.TaskPart, error)
	SumPartQuantity(ctx context.Context, taskID, itemID uuid.UUID) (int, error)
	RemovePart(ctx context.Context, id uuid.UUID) error

	FindChecklist(ctx context.Context, taskID uuid.UUID) ([]*entity.ChecklistItem, error)
	FindChecklistItemByID(ctx context.Context, id uuid.UUID) (*entity.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, id uuid.UUID, status entity.ChecklistStatus, note string) (*entity.ChecklistItem, error)
	RemoveChecklistItem(ctx context.Context, id uuid.UUID) error
}

type maintenanceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMaintenanceRepository(db database.PgxIface, log *zap.Logger) MaintenanceRepository {
	return &maintenanceRepository{
		db:  db,
		log: log.With(zap.String("repository", "maintenance")),
	}
}

const taskColumns = `id, booking_id, user_id, technician_id, vehicle_vin, description, status, scheduled_date, created_at, updated_at`

func scanTask(row pgx.Row) (*entity.MaintenanceTask, error) {
	var task entity.MaintenanceTask
	err := row.Scan(
		&task.ID,
		&task.BookingID,
		&task.UserID,
		&task.TechnicianID,
		&task.VehicleVIN,
		&task.Description,
		&task.Status,
		&task.ScheduledDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *maintenanceRepository) CreateTask(ctx context.Context, task *entity.MaintenanceTask, checklist []*entity.ChecklistItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create task tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO maintenance_tasks (id, booking_id, user_id, technician_id, vehicle_vin, description, status, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		task.ID,
		task.BookingID,
		task.UserID,
		task.TechnicianID,
		task.VehicleVIN,
		task.Description,
		task.Status,
		task.ScheduledDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("task for booking %s and technician %s already exists: %w",
			task.BookingID.String(), task.TechnicianID.String(), apperr.ErrConflict)
	}
	if err != nil {
		r.log.Error("Failed to create maintenance task",
			zap.Error(err),
			zap.String("booking_id", task.BookingID.String()),
		)
		return fmt.Errorf("create maintenance task for booking %s: %w", task.BookingID.String(), err)
	}

	for _, item := range checklist {
		_, err = tx.Exec(ctx, `
			INSERT INTO checklist_items (id, task_id, item_name, status, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			item.ID,
			item.TaskID,
			item.ItemName,
			item.Status,
			item.Note,
			item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to seed checklist item",
				zap.Error(err),
				zap.String("task_id", task.ID.String()),
				zap.String("item_name", item.ItemName),
			)
			return fmt.Errorf("seed checklist item %q: %w", item.ItemName, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *maintenanceRepository) FindTaskByID(ctx context.Context, id uuid.UUID) (*entity.MaintenanceTask, error) {
	query := `SELECT ` + taskColumns + ` FROM maintenance_tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("maintenance task %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find maintenance task by ID",
			zap.Error(err),
			zap.String("task_id", id.String()),
		)
		return nil, fmt.Errorf("find maintenance task by ID %s: %w", id.String(), err)
	}

	return task, nil
}

func (r *maintenanceRepository) FindTasksByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.MaintenanceTask, error) {
	query := `SELECT ` + taskColumns + ` FROM maintenance_tasks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find maintenance tasks by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find maintenance tasks by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return collectTasks(rows, r.log)
}

func (r *maintenanceRepository) FindAllTasks(ctx context.Context) ([]*entity.MaintenanceTask, error) {
	query := `SELECT ` + taskColumns + ` FROM maintenance_tasks ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list maintenance tasks", zap.Error(err))
		return nil, fmt.Errorf("list maintenance tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows, r.log)
}

func collectTasks(rows pgx.Rows, log *zap.Logger) ([]*entity.MaintenanceTask, error) {
	var tasks []*entity.MaintenanceTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("Failed to scan maintenance task row", zap.Error(err))
			return nil, fmt.Errorf("scan maintenance task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *maintenanceRepository) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status entity.TaskStatus) (*entity.MaintenanceTask, error) {
	query := `
		UPDATE maintenance_tasks SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns

	task, err := scanTask(r.db.QueryRow(ctx, query, id, status))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("maintenance task %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to update maintenance task status",
			zap.Error(err),
			zap.String("task_id", id.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("update task %s status to %s: %w", id.String(), string(status), err)
	}

	return task, nil
}

func (r *maintenanceRepository) FindTasksDueSoon(ctx context.Context, within time.Duration) ([]*entity.MaintenanceTask, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM maintenance_tasks
		WHERE status NOT IN ('completed', 'failed')
		  AND scheduled_date IS NOT NULL
		  AND scheduled_date BETWEEN NOW() AND NOW() + $1
		ORDER BY scheduled_date
	`

	rows, err := r.db.Query(ctx, query, within)
	if err != nil {
		r.log.Error("Failed to find tasks due soon", zap.Error(err))
		return nil, fmt.Errorf("find tasks due within %s: %w", within, err)
	}
	defer rows.Close()

	return collectTasks(rows, r.log)
}

func (r *maintenanceRepository) AddPart(ctx context.Context, part *entity.TaskPart) error {
	query := `
		INSERT INTO task_parts (id, task_id, item_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		part.ID,
		part.TaskID,
		part.ItemID,
		part.Quantity,
		part.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to add part to task",
			zap.Error(err),
			zap.String("task_id", part.TaskID.String()),
			zap.String("item_id", part.ItemID.String()),
		)
		return fmt.Errorf("add part %s to task %s: %w", part.ItemID.String(), part.TaskID.String(), err)
	}

	return nil
}

func (r *maintenanceRepository) FindParts(ctx context.Context, taskID uuid.UUID) ([]*entity.TaskPart, error) {
	query := `
		SELECT id, task_id, item_id, quantity, created_at
		FROM task_parts
		WHERE task_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.log.Error("Failed to find task parts",
			zap.Error(err),
			zap.String("task_id", taskID.String()),
		)
		return nil, fmt.Errorf("find parts for task %s: %w", taskID.String(), err)
	}
	defer rows.Close()

	var parts []*entity.TaskPart
	for rows.Next() {
		var part entity.TaskPart
		if err := rows.Scan(&part.ID, &part.TaskID, &part.ItemID, &part.Quantity, &part.CreatedAt); err != nil {
			r.log.Error("Failed to scan task part row", zap.Error(err))
			return nil, fmt.Errorf("scan task part row: %w", err)
		}
		parts = append(parts, &part)
	}

	return parts, nil
}

func (r *maintenanceRepository) FindPartByID(ctx context.Context, id uuid.UUID) (*entity.TaskPart, error) {
	query := `SELECT id, task_id, item_id, quantity, created_at FROM task_parts WHERE id = $1`

	var part entity.TaskPart
	err := r.db.QueryRow(ctx, query, id).Scan(&part.ID, &part.TaskID, &part.ItemID, &part.Quantity, &part.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("task part %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find task part by ID",
			zap.Error(err),
			zap.String("part_id", id.String()),
		)
		return nil, fmt.Errorf("find task part by ID %s: %w", id.String(), err)
	}

	return &part, nil
}

func (r *maintenanceRepository) SumPartQuantity(ctx context.Context, taskID, itemID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM task_parts WHERE task_id = $1 AND item_id = $2`

	var sum int
	if err := r.db.QueryRow(ctx, query, taskID, itemID).Scan(&sum); err != nil {
		r.log.Error("Failed to sum part quantity",
			zap.Error(err),
			zap.String("task_id", taskID.String()),
			zap.String("item_id", itemID.String()),
		)
		return 0, fmt.Errorf("sum part quantity for task %s item %s: %w", taskID.String(), itemID.String(), err)
	}

	return sum, nil
}

func (r *maintenanceRepository) RemovePart(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM task_parts WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to remove task part",
			zap.Error(err),
			zap.String("part_id", id.String()),
		)
		return fmt.Errorf("remove task part %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("task part %s: %w", id.String(), apperr.ErrNotFound)
	}

	return nil
}

func (r *maintenanceRepository) FindChecklist(ctx context.Context, taskID uuid.UUID) ([]*entity.ChecklistItem, error) {
	query := `
		SELECT id, task_id, item_name, status, note, created_at
		FROM checklist_items
		WHERE task_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.log.Error("Failed to find checklist",
			zap.Error(err),
			zap.String("task_id", taskID.String()),
		)
		return nil, fmt.Errorf("find checklist for task %s: %w", taskID.String(), err)
	}
	defer rows.Close()

	var items []*entity.ChecklistItem
	for rows.Next() {
		var item entity.ChecklistItem
		if err := rows.Scan(&item.ID, &item.TaskID, &item.ItemName, &item.Status, &item.Note, &item.CreatedAt); err != nil {
			r.log.Error("Failed to scan checklist item row", zap.Error(err))
			return nil, fmt.Errorf("scan checklist item row: %w", err)
		}
		items = append(items, &item)
	}

	return items, nil
}

func (r *maintenanceRepository) FindChecklistItemByID(ctx context.Context, id uuid.UUID) (*entity.ChecklistItem, error) {
	query := `SELECT id, task_id, item_name, status, note, created_at FROM checklist_items WHERE id = $1`

	var item entity.ChecklistItem
	err := r.db.QueryRow(ctx, query, id).Scan(&item.ID, &item.TaskID, &item.ItemName, &item.Status, &item.Note, &item.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("checklist item %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find checklist item by ID",
			zap.Error(err),
			zap.String("checklist_item_id", id.String()),
		)
		return nil, fmt.Errorf("find checklist item by ID %s: %w", id.String(), err)
	}

	return &item, nil
}

func (r *maintenanceRepository) UpdateChecklistItem(ctx context.Context, id uuid.UUID, status entity.ChecklistStatus, note string) (*entity.ChecklistItem, error) {
	query := `
		UPDATE checklist_items SET status = $2, note = $3
		WHERE id = $1
		RETURNING id, task_id, item_name, status, note, created_at
	`

	var item entity.ChecklistItem
	err := r.db.QueryRow(ctx, query, id, status, note).Scan(&item.ID, &item.TaskID, &item.ItemName, &item.Status, &item.Note, &item.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("checklist item %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to update checklist item",
			zap.Error(err),
			zap.String("checklist_item_id", id.String()),
		)
		return nil, fmt.Errorf("update checklist item %s: %w", id.String(), err)
	}

	return &item, nil
}

func (r *maintenanceRepository) RemoveChecklistItem(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM checklist_items WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to remove checklist item",
			zap.Error(err),
			zap.String("checklist_item_id", id.String()),
		)
		return fmt.Errorf("remove checklist item %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("checklist item %s: %w", id.String(), apperr.ErrNotFound)
	}

	return nil
}
