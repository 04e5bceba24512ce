package repository

import (
	"context"
	"fmt"

	"ev-service-center/internal/data/entity"
	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// Create inserts the booking. For confirmed bookings the overlap
	// check and the insert run under an advisory lock keyed on
	// (technician_id, station_id), so two concurrent requests cannot
	// both pass the check against a stale read.
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error)
	FindAll(ctx context.Context) ([]*entity.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) (*entity.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, user_id, customer_name, service_type, technician_id, station_id, center_id, start_time, end_time, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.CustomerName,
		&booking.ServiceType,
		&booking.TechnicianID,
		&booking.StationID,
		&booking.CenterID,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize overlap check + insert per (technician, station).
	lockKey := fmt.Sprintf("booking:%s:%s", booking.TechnicianID.String(), booking.StationID.String())
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return fmt.Errorf("acquire booking slot lock: %w", err)
	}

	if booking.Status == entity.BookingStatusConfirmed {
		// Half-open intervals: touching boundaries are not an overlap.
		var overlaps bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM bookings
				WHERE status = 'confirmed'
				  AND technician_id = $1
				  AND station_id = $2
				  AND start_time < $4
				  AND end_time > $3
			)
		`, booking.TechnicianID, booking.StationID, booking.StartTime, booking.EndTime).Scan(&overlaps)
		if err != nil {
			r.log.Error("Failed to check booking overlap",
				zap.Error(err),
				zap.String("technician_id", booking.TechnicianID.String()),
				zap.String("station_id", booking.StationID.String()),
			)
			return fmt.Errorf("check booking overlap: %w", err)
		}
		if overlaps {
			return fmt.Errorf("slot %s-%s for technician %s at station %s is taken: %w",
				booking.StartTime.Format("15:04"), booking.EndTime.Format("15:04"),
				booking.TechnicianID.String(), booking.StationID.String(), apperr.ErrConflict)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, user_id, customer_name, service_type, technician_id, station_id, center_id, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		booking.ID,
		booking.UserID,
		booking.CustomerName,
		booking.ServiceType,
		booking.TechnicianID,
		booking.StationID,
		booking.CenterID,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking for user %s: %w", booking.UserID.String(), err)
	}

	return tx.Commit(ctx)
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("booking %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY start_time DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows, r.log)
}

func (r *bookingRepository) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY start_time DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, r.log)
}

func collectBookings(rows pgx.Rows, log *zap.Logger) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) (*entity.Booking, error) {
	query := `
		UPDATE bookings SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id, status))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("booking %s: %w", id.String(), apperr.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("update booking %s status to %s: %w", id.String(), string(status), err)
	}

	return booking, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), apperr.ErrNotFound)
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}
