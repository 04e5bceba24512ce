package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ev-service-center/internal/client"
	"ev-service-center/internal/data/entity"
	"ev-service-center/internal/data/repository"
	"ev-service-center/internal/dto/request"
	"ev-service-center/internal/dto/response"
	"ev-service-center/internal/metrics"
	"ev-service-center/internal/notify"
	"ev-service-center/pkg/apperr"
	"ev-service-center/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// successPrefix marks the simulated gateway's auto-approve sandbox IDs.
// A webhook may reference a transaction by its plain ID or by the
// prefixed test code handed out at creation.
const successPrefix = "SUCCESS_"

type PaymentService interface {
	CreatePayment(ctx context.Context, req *request.CreatePaymentRequest) (*response.TransactionResponse, error)
	// HandleWebhook applies a gateway callback exactly once. Replays of
	// an already-settled transaction succeed without changing state.
	HandleWebhook(ctx context.Context, req *request.WebhookRequest) (*response.WebhookResponse, error)
	// ExpirePendingTransactions fails every pending transaction older
	// than age and returns how many were expired.
	ExpirePendingTransactions(ctx context.Context, age time.Duration) (int, error)
	GetTransaction(ctx context.Context, transactionID string) (*response.TransactionResponse, error)
	ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]response.TransactionResponse, error)
	ListTransactions(ctx context.Context) ([]response.TransactionResponse, error)
}

type paymentService struct {
	repo     repository.PaymentRepository
	finance  client.FinanceClient
	notifier notify.Publisher
	log      *zap.Logger
}

func NewPaymentService(
	repo repository.PaymentRepository,
	finance client.FinanceClient,
	notifier notify.Publisher,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		repo:     repo,
		finance:  finance,
		notifier: notifier,
		log:      log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) CreatePayment(ctx context.Context, req *request.CreatePaymentRequest) (*response.TransactionResponse, error) {
	invoiceID, err := utils.ParseUUID(req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice ID %q: %w", req.InvoiceID, apperr.ErrInvalidArgument)
	}
	userID, err := utils.ParseUUID(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", req.UserID, apperr.ErrInvalidArgument)
	}

	method := entity.PaymentMethod(req.Method)
	if !entity.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("unknown payment method %q: %w", req.Method, apperr.ErrInvalidArgument)
	}

	pgID := utils.GeneratePGTransactionID(req.Method, invoiceID, req.Amount)
	paymentData, err := buildPaymentData(method, pgID, req.Amount, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("build payment data for %s: %w", pgID, err)
	}

	now := time.Now()
	tx := &entity.PaymentTransaction{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		InvoiceID:       invoiceID,
		UserID:          userID,
		Amount:          req.Amount,
		Method:          method,
		PGTransactionID: pgID,
		Status:          entity.PaymentStatusPending,
		PaymentDataJSON: paymentData,
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	metrics.IncPayment(string(entity.PaymentStatusPending))
	s.log.Info("Payment transaction created",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("pg_transaction_id", pgID),
		zap.String("method", req.Method),
		zap.Float64("amount", req.Amount),
	)

	resp := response.TransactionToResponse(tx)
	return &resp, nil
}

// buildPaymentData renders the simulated gateway instructions the client
// needs to complete the payment, serialized for storage alongside the
// transaction.
func buildPaymentData(method entity.PaymentMethod, pgID string, amount float64, invoiceID uuid.UUID) (string, error) {
	data := map[string]any{
		"pg_transaction_id": pgID,
		"amount":            amount,
		"test_code":         successPrefix + pgID,
	}

	switch method {
	case entity.PaymentMethodMomoQR:
		content := fmt.Sprintf("MOMO|INV %s|%.0f|%s", invoiceID.String(), amount, pgID)
		data["qr_code_url"] = "https://quickchart.io/qr?text=" + url.QueryEscape(content)
		data["qr_content"] = content
	case entity.PaymentMethodBankTransfer:
		data["bank_name"] = "Techcombank"
		data["account_number"] = "19036912345678"
		data["account_name"] = "EV SERVICE CENTER JSC"
		data["transfer_note"] = pgID
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, req *request.WebhookRequest) (*response.WebhookResponse, error) {
	target, err := webhookStatus(req.Status)
	if err != nil {
		return nil, err
	}

	tx, err := s.findByWebhookID(ctx, req.PGTransactionID)
	if err != nil {
		return nil, err
	}

	if tx.Status.Terminal() {
		if tx.Status == target {
			// Replayed callback, nothing to do.
			resp := response.TransactionToResponse(tx)
			return &response.WebhookResponse{Message: "already processed", Transaction: resp}, nil
		}
		return nil, fmt.Errorf("transaction %s is already %s: %w", tx.PGTransactionID, tx.Status, apperr.ErrConflict)
	}

	won, err := s.repo.RatchetStatus(ctx, tx.ID, target)
	if err != nil {
		return nil, err
	}
	if !won {
		// A concurrent webhook settled it first.
		settled, err := s.repo.FindByID(ctx, tx.ID)
		if err != nil {
			return nil, err
		}
		if settled.Status == target {
			resp := response.TransactionToResponse(settled)
			return &response.WebhookResponse{Message: "already processed", Transaction: resp}, nil
		}
		return nil, fmt.Errorf("transaction %s is already %s: %w", tx.PGTransactionID, settled.Status, apperr.ErrConflict)
	}

	tx.Status = target
	metrics.IncPayment(string(target))
	s.log.Info("Payment settled",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("pg_transaction_id", tx.PGTransactionID),
		zap.String("status", string(target)),
	)

	if target == entity.PaymentStatusSuccess {
		// The invoice flip is advisory; a finance outage does not undo
		// the settled payment.
		if err := s.finance.UpdateInvoiceStatus(ctx, tx.InvoiceID, string(entity.InvoiceStatusPaid)); err != nil {
			s.log.Warn("Failed to mark invoice paid",
				zap.Error(err),
				zap.String("invoice_id", tx.InvoiceID.String()),
			)
		}
	}

	s.publishSettlementNotification(tx)

	resp := response.TransactionToResponse(tx)
	return &response.WebhookResponse{Message: "processed", Transaction: resp}, nil
}

// findByWebhookID resolves a callback reference, accepting either the
// raw pg transaction ID or the sandbox test code.
func (s *paymentService) findByWebhookID(ctx context.Context, pgID string) (*entity.PaymentTransaction, error) {
	tx, err := s.repo.FindByPGTransactionID(ctx, pgID)
	if err == nil {
		return tx, nil
	}
	if strings.HasPrefix(pgID, successPrefix) {
		return s.repo.FindByPGTransactionID(ctx, strings.TrimPrefix(pgID, successPrefix))
	}
	return nil, err
}

// webhookStatus validates a callback's final status. Only the terminal
// enum values are accepted; the gateway never reports back to pending.
func webhookStatus(status string) (entity.PaymentStatus, error) {
	switch entity.PaymentStatus(status) {
	case entity.PaymentStatusSuccess:
		return entity.PaymentStatusSuccess, nil
	case entity.PaymentStatusFailed:
		return entity.PaymentStatusFailed, nil
	case entity.PaymentStatusExpired:
		return entity.PaymentStatusExpired, nil
	}
	return "", fmt.Errorf("unknown webhook status %q: %w", status, apperr.ErrInvalidArgument)
}

func (s *paymentService) ExpirePendingTransactions(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	pending, err := s.repo.FindPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, tx := range pending {
		won, err := s.repo.RatchetStatus(ctx, tx.ID, entity.PaymentStatusExpired)
		if err != nil {
			s.log.Error("Failed to expire transaction",
				zap.Error(err),
				zap.String("transaction_id", tx.ID.String()),
			)
			continue
		}
		if !won {
			// Settled between the scan and the ratchet, leave it alone.
			continue
		}

		expired++
		metrics.IncPayment(string(entity.PaymentStatusExpired))
		tx.Status = entity.PaymentStatusExpired
		s.publishSettlementNotification(tx)
	}

	if expired > 0 {
		s.log.Info("Expired pending transactions", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *paymentService) GetTransaction(ctx context.Context, transactionID string) (*response.TransactionResponse, error) {
	id, err := utils.ParseUUID(transactionID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction ID %q: %w", transactionID, apperr.ErrInvalidArgument)
	}

	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.TransactionToResponse(tx)
	return &resp, nil
}

func (s *paymentService) ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]response.TransactionResponse, error) {
	txs, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return response.TransactionsToResponse(txs), nil
}

func (s *paymentService) ListTransactions(ctx context.Context) ([]response.TransactionResponse, error) {
	txs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return response.TransactionsToResponse(txs), nil
}

func (s *paymentService) publishSettlementNotification(tx *entity.PaymentTransaction) {
	if s.notifier == nil {
		return
	}

	txID := tx.ID
	title := map[entity.PaymentStatus]string{
		entity.PaymentStatusSuccess: "Payment received",
		entity.PaymentStatusFailed:  "Payment failed",
		entity.PaymentStatusExpired: "Payment expired",
	}[tx.Status]

	s.notifier.Publish(client.Notification{
		UserID:            tx.UserID,
		NotificationType:  "payment_" + string(tx.Status),
		Title:             title,
		Message:           fmt.Sprintf("Payment of %.0f via %s is %s", tx.Amount, tx.Method, tx.Status),
		Channel:           "in_app",
		Priority:          "normal",
		RelatedEntityType: "payment_transaction",
		RelatedEntityID:   &txID,
		Metadata: map[string]any{
			"invoice_id":        tx.InvoiceID.String(),
			"pg_transaction_id": tx.PGTransactionID,
		},
	})
}
