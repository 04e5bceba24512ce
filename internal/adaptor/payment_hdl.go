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

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// CreatePayment handles POST /api/payments/create. Only other services
// call it, guarded by the internal token.
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	tx, err := h.service.CreatePayment(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create payment")
		return
	}

	utils.ResponseCreated(w, tx)
}

// Webhook handles POST /api/payments/webhook, the gateway callback.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req request.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	result, err := h.service.HandleWebhook(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "handle webhook")
		return
	}

	utils.ResponseSuccess(w, result)
}

// GetTransaction handles GET /api/payments/{id}.
func (h *PaymentHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get transaction")
		return
	}

	utils.ResponseSuccess(w, tx)
}

// ListMyTransactions handles GET /api/payments/history.
func (h *PaymentHandler) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Missing user identity")
		return
	}

	txs, err := h.service.ListTransactionsByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "list my transactions")
		return
	}

	utils.ResponseSuccess(w, txs)
}

// ListTransactions handles GET /api/payments/history/all (admin only).
func (h *PaymentHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.ListTransactions(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list transactions")
		return
	}

	utils.ResponseSuccess(w, txs)
}
