package response

import (
	"time"

	"ev-service-center/internal/data/entity"

	"github.com/google/uuid"
)

type InvoiceResponse struct {
	ID          uuid.UUID            `json:"id"`
	BookingID   uuid.UUID            `json:"booking_id"`
	UserID      uuid.UUID            `json:"user_id"`
	TotalAmount float64              `json:"total_amount"`
	Status      entity.InvoiceStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type InvoiceItemResponse struct {
	ID          uuid.UUID              `json:"id"`
	LineNo      int                    `json:"line_no"`
	ItemType    entity.InvoiceItemType `json:"item_type"`
	Description string                 `json:"description"`
	Quantity    int                    `json:"quantity"`
	UnitPrice   float64                `json:"unit_price"`
	SubTotal    float64                `json:"sub_total"`
}

type InvoiceDetailResponse struct {
	InvoiceResponse
	Items []InvoiceItemResponse `json:"items"`
}

func InvoiceToResponse(inv *entity.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:          inv.ID,
		BookingID:   inv.BookingID,
		UserID:      inv.UserID,
		TotalAmount: inv.TotalAmount,
		Status:      inv.Status,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}

func InvoicesToResponse(invoices []*entity.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = InvoiceToResponse(inv)
	}
	return out
}

func InvoiceItemToResponse(item *entity.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ID:          item.ID,
		LineNo:      item.LineNo,
		ItemType:    item.ItemType,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		SubTotal:    item.SubTotal,
	}
}

func InvoiceDetailToResponse(inv *entity.Invoice, items []*entity.InvoiceItem) InvoiceDetailResponse {
	itemResponses := make([]InvoiceItemResponse, len(items))
	for i, item := range items {
		itemResponses[i] = InvoiceItemToResponse(item)
	}
	return InvoiceDetailResponse{
		InvoiceResponse: InvoiceToResponse(inv),
		Items:           itemResponses,
	}
}
