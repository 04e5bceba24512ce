package entity

import "github.com/google/uuid"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusExpired PaymentStatus = "expired"
)

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusExpired:
		return true
	}
	return false
}

// Terminal reports whether the status can no longer change. Status is a
// one-way ratchet: pending -> success|failed|expired, nothing after.
func (s PaymentStatus) Terminal() bool {
	return s != PaymentStatusPending
}

type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMomoQR       PaymentMethod = "momo_qr"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentMethodBankTransfer || m == PaymentMethodMomoQR
}

// PaymentTransaction is one attempt to pay an invoice through the
// simulated gateway. PGTransactionID is globally unique.
type PaymentTransaction struct {
	Base
	InvoiceID       uuid.UUID     `db:"invoice_id"`
	UserID          uuid.UUID     `db:"user_id"`
	Amount          float64       `db:"amount"`
	Method          PaymentMethod `db:"method"`
	PGTransactionID string        `db:"pg_transaction_id"`
	Status          PaymentStatus `db:"status"`
	PaymentDataJSON string        `db:"payment_data_json"`
}
