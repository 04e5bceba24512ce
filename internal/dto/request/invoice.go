package request

type InvoicePartRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid4"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type CreateInvoiceRequest struct {
	BookingID string               `json:"booking_id" validate:"required,uuid4"`
	PartsData []InvoicePartRequest `json:"parts_data" validate:"dive"`
}

type InitiatePaymentRequest struct {
	Method string `json:"method" validate:"required,oneof=bank_transfer momo_qr"`
}
