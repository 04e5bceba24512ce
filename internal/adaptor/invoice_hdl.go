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

type InvoiceHandler struct {
	service usecase.InvoiceService
	log     *zap.Logger
}

func NewInvoiceHandler(service usecase.InvoiceService, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		log:     log.With(zap.String("handler", "invoice")),
	}
}

// CreateInvoice handles POST /api/invoices (admin only).
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req request.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	invoice, err := h.service.CreateInvoiceFromBooking(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create invoice")
		return
	}

	utils.ResponseCreated(w, invoice)
}

// GetInvoice handles GET /api/invoices/{id}.
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.GetInvoiceWithItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get invoice")
		return
	}

	utils.ResponseSuccess(w, invoice)
}

// ListMyInvoices handles GET /api/invoices/my.
func (h *InvoiceHandler) ListMyInvoices(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Missing user identity")
		return
	}

	invoices, err := h.service.ListInvoicesByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "list my invoices")
		return
	}

	utils.ResponseSuccess(w, invoices)
}

// ListUserInvoices handles GET /api/invoices/user/{userID} (admin only).
func (h *InvoiceHandler) ListUserInvoices(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.ParseUUID(chi.URLParam(r, "userID"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return
	}

	invoices, err := h.service.ListInvoicesByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "list user invoices")
		return
	}

	utils.ResponseSuccess(w, invoices)
}

// ListInvoices handles GET /api/invoices (admin only).
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list invoices")
		return
	}

	utils.ResponseSuccess(w, invoices)
}

// SetStatus handles PUT /api/invoices/{id}/status and its internal
// twin, which the payment service calls after a settlement.
func (h *InvoiceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req request.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	invoice, err := h.service.UpdateInvoiceStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleServiceError(w, h.log, err, "update invoice status")
		return
	}

	utils.ResponseSuccess(w, invoice)
}

// InitiatePayment handles POST /api/invoices/{id}/pay. The payment
// service's gateway instructions are relayed verbatim.
func (h *InvoiceHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req request.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	raw, err := h.service.InitiatePayment(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "initiate payment")
		return
	}

	utils.ResponseCreated(w, raw)
}
