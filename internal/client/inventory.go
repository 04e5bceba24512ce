package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryDetails is the wire shape the inventory service returns.
type InventoryDetails struct {
	ID          uuid.UUID `json:"id"`
	PartNumber  string    `json:"part_number"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	Price       float64   `json:"price"`
	CenterID    uuid.UUID `json:"center_id"`
}

type InventoryClient interface {
	Get(ctx context.Context, id uuid.UUID) (*InventoryDetails, error)
	// Decrement reserves stock atomically on the inventory side; callers
	// never compute new quantities from a stale read.
	Decrement(ctx context.Context, id uuid.UUID, amount int) (*InventoryDetails, error)
	// Credit undoes a decrement, the compensating half of the saga.
	Credit(ctx context.Context, id uuid.UUID, amount int) error
}

type inventoryClient struct {
	internal *Internal
}

func NewInventoryClient(baseURL, token string, timeout time.Duration, log *zap.Logger) InventoryClient {
	return &inventoryClient{
		internal: NewInternal(baseURL, token, timeout, log.With(zap.String("peer", "inventory"))),
	}
}

func (c *inventoryClient) Get(ctx context.Context, id uuid.UUID) (*InventoryDetails, error) {
	var item InventoryDetails
	path := fmt.Sprintf("/api/inventory/items/%s", id.String())
	if err := c.internal.do(ctx, http.MethodGet, path, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *inventoryClient) Decrement(ctx context.Context, id uuid.UUID, amount int) (*InventoryDetails, error) {
	var item InventoryDetails
	path := fmt.Sprintf("/internal/inventory/items/%s/decrement", id.String())
	body := map[string]int{"amount": amount}
	if err := c.internal.do(ctx, http.MethodPost, path, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *inventoryClient) Credit(ctx context.Context, id uuid.UUID, amount int) error {
	path := fmt.Sprintf("/internal/inventory/items/%s/credit", id.String())
	body := map[string]int{"amount": amount}
	return c.internal.do(ctx, http.MethodPost, path, body, nil)
}
