package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreatePaymentRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Method    string    `json:"method"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    float64   `json:"amount"`
}

type PaymentClient interface {
	// CreatePayment returns the orchestrator's response verbatim so the
	// finance service can hand QR/bank details straight to the caller.
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (json.RawMessage, error)
}

type paymentClient struct {
	internal *Internal
}

func NewPaymentClient(baseURL, token string, timeout time.Duration, log *zap.Logger) PaymentClient {
	return &paymentClient{
		internal: NewInternal(baseURL, token, timeout, log.With(zap.String("peer", "payment"))),
	}
}

func (c *paymentClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.internal.do(ctx, http.MethodPost, "/api/payments/create", req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
