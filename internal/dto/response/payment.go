package response

import (
	"encoding/json"
	"time"

	"ev-service-center/internal/data/entity"

	"github.com/google/uuid"
)

type TransactionResponse struct {
	ID              uuid.UUID            `json:"id"`
	InvoiceID       uuid.UUID            `json:"invoice_id"`
	UserID          uuid.UUID            `json:"user_id"`
	Amount          float64              `json:"amount"`
	Method          entity.PaymentMethod `json:"method"`
	PGTransactionID string               `json:"pg_transaction_id"`
	Status          entity.PaymentStatus `json:"status"`
	PaymentData     json.RawMessage      `json:"payment_data,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

type WebhookResponse struct {
	Message     string              `json:"message"`
	Transaction TransactionResponse `json:"transaction"`
}

func TransactionToResponse(tx *entity.PaymentTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              tx.ID,
		InvoiceID:       tx.InvoiceID,
		UserID:          tx.UserID,
		Amount:          tx.Amount,
		Method:          tx.Method,
		PGTransactionID: tx.PGTransactionID,
		Status:          tx.Status,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
	if tx.PaymentDataJSON != "" {
		resp.PaymentData = json.RawMessage(tx.PaymentDataJSON)
	}
	return resp
}

func TransactionsToResponse(txs []*entity.PaymentTransaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = TransactionToResponse(tx)
	}
	return out
}
