package adaptor

import (
	"encoding/json"
	"net/http"

	"ev-service-center/internal/dto/request"
	"ev-service-center/internal/usecase"
	"ev-service-center/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	service usecase.InventoryService
	log     *zap.Logger
}

func NewInventoryHandler(service usecase.InventoryService, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		log:     log.With(zap.String("handler", "inventory")),
	}
}

// CreateItem handles POST /api/inventory/items (admin only).
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req request.CreateInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	item, err := h.service.CreateItem(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create inventory item")
		return
	}

	utils.ResponseCreated(w, item)
}

// GetItem handles GET /api/inventory/items/{id}.
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get inventory item")
		return
	}

	utils.ResponseSuccess(w, item)
}

// ListItems handles GET /api/inventory/items. An optional center_id
// query filters to one service center.
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), r.URL.Query().Get("center_id"))
	if err != nil {
		handleServiceError(w, h.log, err, "list inventory items")
		return
	}

	utils.ResponseSuccess(w, items)
}

// ListLowStock handles GET /api/inventory/items/low-stock (admin only).
func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListLowStock(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list low-stock items")
		return
	}

	utils.ResponseSuccess(w, items)
}

// UpdateItem handles PUT /api/inventory/items/{id} (admin only).
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateInventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update inventory item")
		return
	}

	utils.ResponseSuccess(w, item)
}

// SetQuantity handles PUT /api/inventory/items/{id}/quantity (admin only).
func (h *InventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	item, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		handleServiceError(w, h.log, err, "set inventory quantity")
		return
	}

	utils.ResponseSuccess(w, item)
}

// DeleteItem handles DELETE /api/inventory/items/{id} (admin only).
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete inventory item")
		return
	}

	utils.ResponseSuccess(w, map[string]string{"message": "Inventory item deleted"})
}

// Decrement handles POST /internal/inventory/items/{id}/decrement,
// called by the finance and maintenance services.
func (h *InventoryHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	var req request.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	item, err := h.service.Decrement(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "decrement stock")
		return
	}

	utils.ResponseSuccess(w, item)
}

// Credit handles POST /internal/inventory/items/{id}/credit, the
// compensating half of the stock saga.
func (h *InventoryHandler) Credit(w http.ResponseWriter, r *http.Request) {
	var req request.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	item, err := h.service.Credit(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "credit stock")
		return
	}

	utils.ResponseSuccess(w, item)
}
