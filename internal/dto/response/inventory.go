package response

import (
	"time"

	"ev-service-center/internal/data/entity"

	"github.com/google/uuid"
)

type InventoryItemResponse struct {
	ID          uuid.UUID `json:"id"`
	PartNumber  string    `json:"part_number"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	Price       float64   `json:"price"`
	CenterID    uuid.UUID `json:"center_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func InventoryItemToResponse(i *entity.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:          i.ID,
		PartNumber:  i.PartNumber,
		Name:        i.Name,
		Quantity:    i.Quantity,
		MinQuantity: i.MinQuantity,
		Price:       i.Price,
		CenterID:    i.CenterID,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func InventoryItemsToResponse(items []*entity.InventoryItem) []InventoryItemResponse {
	out := make([]InventoryItemResponse, len(items))
	for i, item := range items {
		out[i] = InventoryItemToResponse(item)
	}
	return out
}
