package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCanceled  BookingStatus = "canceled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ValidBookingStatus reports whether s is one of the four booking states.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCanceled, BookingStatusCompleted:
		return true
	}
	return false
}

// Booking is a service appointment. TechnicianID and StationID together
// form the overlap-check scope; CenterID partitions bookings per branch.
type Booking struct {
	Base
	UserID       uuid.UUID     `db:"user_id"`
	CustomerName string        `db:"customer_name"`
	ServiceType  string        `db:"service_type"`
	TechnicianID uuid.UUID     `db:"technician_id"`
	StationID    uuid.UUID     `db:"station_id"`
	CenterID     *uuid.UUID    `db:"center_id"`
	StartTime    time.Time     `db:"start_time"`
	EndTime      time.Time     `db:"end_time"`
	Status       BookingStatus `db:"status"`
}

// Overlaps reports whether [StartTime, EndTime) intersects [start, end).
// Touching boundaries do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
