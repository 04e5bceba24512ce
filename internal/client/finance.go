package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FinanceClient interface {
	UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status string) error
}

type financeClient struct {
	internal *Internal
}

func NewFinanceClient(baseURL, token string, timeout time.Duration, log *zap.Logger) FinanceClient {
	return &financeClient{
		internal: NewInternal(baseURL, token, timeout, log.With(zap.String("peer", "finance"))),
	}
}

func (c *financeClient) UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status string) error {
	path := fmt.Sprintf("/internal/invoices/%s/status", invoiceID.String())
	body := map[string]string{"status": status}
	return c.internal.do(ctx, http.MethodPut, path, body, nil)
}
