package request

type CreatePaymentRequest struct {
	InvoiceID string  `json:"invoice_id" validate:"required,uuid4"`
	Method    string  `json:"method" validate:"required,oneof=bank_transfer momo_qr"`
	UserID    string  `json:"user_id" validate:"required,uuid4"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

type WebhookRequest struct {
	PGTransactionID string `json:"pg_transaction_id" validate:"required"`
	Status          string `json:"status" validate:"required"`
}
