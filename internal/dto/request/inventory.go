package request

type CreateInventoryItemRequest struct {
	PartNumber  string  `json:"part_number" validate:"required,max=100"`
	Name        string  `json:"name" validate:"required,max=255"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	MinQuantity int     `json:"min_quantity" validate:"gte=0"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	CenterID    string  `json:"center_id" validate:"required,uuid4"`
}

// UpdateInventoryItemRequest uses pointers so admins can patch single
// fields; nil means leave as-is.
type UpdateInventoryItemRequest struct {
	PartNumber  *string  `json:"part_number,omitempty" validate:"omitempty,max=100"`
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	Quantity    *int     `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	MinQuantity *int     `json:"min_quantity,omitempty" validate:"omitempty,gte=0"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
}

// AdjustStockRequest is the body of the internal decrement/credit calls.
type AdjustStockRequest struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}
