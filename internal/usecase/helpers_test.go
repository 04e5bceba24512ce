package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"ev-service-center/internal/client"

	"github.com/google/uuid"
)

// capturingNotifier records published notifications for assertions.
type capturingNotifier struct {
	mu    sync.Mutex
	items []client.Notification
}

func (c *capturingNotifier) Publish(n client.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

func (c *capturingNotifier) published() []client.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]client.Notification, len(c.items))
	copy(out, c.items)
	return out
}

type fakeBookingClient struct {
	GetFn          func(ctx context.Context, id uuid.UUID) (*client.BookingDetails, error)
	UpdateStatusFn func(ctx context.Context, id uuid.UUID, status string) error
}

func (f *fakeBookingClient) Get(ctx context.Context, id uuid.UUID) (*client.BookingDetails, error) {
	return f.GetFn(ctx, id)
}

func (f *fakeBookingClient) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if f.UpdateStatusFn == nil {
		return nil
	}
	return f.UpdateStatusFn(ctx, id, status)
}

type fakeInventoryClient struct {
	GetFn       func(ctx context.Context, id uuid.UUID) (*client.InventoryDetails, error)
	DecrementFn func(ctx context.Context, id uuid.UUID, amount int) (*client.InventoryDetails, error)

	mu      sync.Mutex
	credits map[uuid.UUID]int
}

func (f *fakeInventoryClient) Get(ctx context.Context, id uuid.UUID) (*client.InventoryDetails, error) {
	return f.GetFn(ctx, id)
}

func (f *fakeInventoryClient) Decrement(ctx context.Context, id uuid.UUID, amount int) (*client.InventoryDetails, error) {
	return f.DecrementFn(ctx, id, amount)
}

func (f *fakeInventoryClient) Credit(ctx context.Context, id uuid.UUID, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credits == nil {
		f.credits = make(map[uuid.UUID]int)
	}
	f.credits[id] += amount
	return nil
}

func (f *fakeInventoryClient) credited(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credits[id]
}

type fakeUserClient struct {
	GetFn func(ctx context.Context, id uuid.UUID) (*client.UserDetails, error)
}

func (f *fakeUserClient) Get(ctx context.Context, id uuid.UUID) (*client.UserDetails, error) {
	return f.GetFn(ctx, id)
}

type fakeFinanceClient struct {
	mu      sync.Mutex
	updates map[uuid.UUID]string
	err     error
}

func (f *fakeFinanceClient) UpdateInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.updates == nil {
		f.updates = make(map[uuid.UUID]string)
	}
	f.updates[invoiceID] = status
	return nil
}

func (f *fakeFinanceClient) statusOf(invoiceID uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[invoiceID]
}

type fakePaymentClient struct {
	CreateFn func(ctx context.Context, req client.CreatePaymentRequest) (json.RawMessage, error)
}

func (f *fakePaymentClient) CreatePayment(ctx context.Context, req client.CreatePaymentRequest) (json.RawMessage, error) {
	return f.CreateFn(ctx, req)
}
