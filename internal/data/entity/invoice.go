package entity

import "github.com/google/uuid"

type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusIssued   InvoiceStatus = "issued"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusCanceled InvoiceStatus = "canceled"
)

func ValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusIssued, InvoiceStatusPaid, InvoiceStatusCanceled:
		return true
	}
	return false
}

type InvoiceItemType string

const (
	InvoiceItemTypeService InvoiceItemType = "service"
	InvoiceItemTypePart    InvoiceItemType = "part"
)

// Invoice bills one booking: a flat labor line plus zero or more part
// lines. At most one invoice exists per booking.
type Invoice struct {
	Base
	BookingID   uuid.UUID     `db:"booking_id"`
	UserID      uuid.UUID     `db:"user_id"`
	TotalAmount float64       `db:"total_amount"`
	Status      InvoiceStatus `db:"status"`
}

// InvoiceItem is one line on an invoice. SubTotal = Quantity * UnitPrice.
// LineNo fixes the display order, the labor line is always first.
type InvoiceItem struct {
	BaseSimple
	InvoiceID   uuid.UUID       `db:"invoice_id"`
	LineNo      int             `db:"line_no"`
	ItemType    InvoiceItemType `db:"item_type"`
	Description string          `db:"description"`
	Quantity    int             `db:"quantity"`
	UnitPrice   float64         `db:"unit_price"`
	SubTotal    float64         `db:"sub_total"`
}
