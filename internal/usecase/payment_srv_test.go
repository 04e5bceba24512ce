package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"ev-service-center/internal/data/entity"
	"ev-service-center/internal/dto/request"
	"ev-service-center/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePaymentRepo struct {
	byID map[uuid.UUID]*entity.PaymentTransaction
	byPG map[string]*entity.PaymentTransaction

	ratchetDenied bool
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		byID: make(map[uuid.UUID]*entity.PaymentTransaction),
		byPG: make(map[string]*entity.PaymentTransaction),
	}
}

func (f *fakePaymentRepo) add(tx *entity.PaymentTransaction) {
	f.byID[tx.ID] = tx
	f.byPG[tx.PGTransactionID] = tx
}

func (f *fakePaymentRepo) Create(ctx context.Context, tx *entity.PaymentTransaction) error {
	if _, ok := f.byPG[tx.PGTransactionID]; ok {
		return fmt.Errorf("pg transaction %s already exists: %w", tx.PGTransactionID, apperr.ErrConflict)
	}
	f.add(tx)
	return nil
}

func (f *fakePaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentTransaction, error) {
	if tx, ok := f.byID[id]; ok {
		return tx, nil
	}
	return nil, fmt.Errorf("transaction %s: %w", id, apperr.ErrNotFound)
}

func (f *fakePaymentRepo) FindByPGTransactionID(ctx context.Context, pgID string) (*entity.PaymentTransaction, error) {
	if tx, ok := f.byPG[pgID]; ok {
		return tx, nil
	}
	return nil, fmt.Errorf("pg transaction %s: %w", pgID, apperr.ErrNotFound)
}

func (f *fakePaymentRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.PaymentTransaction, error) {
	var out []*entity.PaymentTransaction
	for _, tx := range f.byID {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) FindAll(ctx context.Context) ([]*entity.PaymentTransaction, error) {
	var out []*entity.PaymentTransaction
	for _, tx := range f.byID {
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakePaymentRepo) FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*entity.PaymentTransaction, error) {
	var out []*entity.PaymentTransaction
	for _, tx := range f.byID {
		if tx.Status == entity.PaymentStatusPending && tx.CreatedAt.Before(cutoff) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) RatchetStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) (bool, error) {
	tx, ok := f.byID[id]
	if !ok {
		return false, fmt.Errorf("transaction %s: %w", id, apperr.ErrNotFound)
	}
	if f.ratchetDenied || tx.Status != entity.PaymentStatusPending {
		return false, nil
	}
	tx.Status = status
	return true, nil
}

func pendingTransaction(createdAt time.Time) *entity.PaymentTransaction {
	invoiceID := uuid.New()
	return &entity.PaymentTransaction{
		Base:            entity.Base{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		InvoiceID:       invoiceID,
		UserID:          uuid.New(),
		Amount:          800000,
		Method:          entity.PaymentMethodMomoQR,
		PGTransactionID: fmt.Sprintf("PG_MOMO_QR_%s_800000_abcd1234", invoiceID),
		Status:          entity.PaymentStatusPending,
	}
}

func TestCreatePayment_BuildsMomoQRData(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewPaymentService(repo, nil, nil, zap.NewNop())

	tx, err := svc.CreatePayment(context.Background(), &request.CreatePaymentRequest{
		InvoiceID: uuid.New().String(),
		Method:    "momo_qr",
		UserID:    uuid.New().String(),
		Amount:    800000,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.PaymentStatusPending, tx.Status)
	assert.True(t, strings.HasPrefix(tx.PGTransactionID, "PG_MOMO_QR_"))

	var data map[string]any
	require.NoError(t, json.Unmarshal(tx.PaymentData, &data))
	assert.Contains(t, data["qr_code_url"], "quickchart.io/qr")
	assert.Equal(t, "SUCCESS_"+tx.PGTransactionID, data["test_code"])
}

func TestCreatePayment_BuildsBankTransferData(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewPaymentService(repo, nil, nil, zap.NewNop())

	tx, err := svc.CreatePayment(context.Background(), &request.CreatePaymentRequest{
		InvoiceID: uuid.New().String(),
		Method:    "bank_transfer",
		UserID:    uuid.New().String(),
		Amount:    500000,
	})
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal(tx.PaymentData, &data))
	assert.Equal(t, "Techcombank", data["bank_name"])
	assert.Equal(t, tx.PGTransactionID, data["transfer_note"])
}

func TestHandleWebhook_SuccessMarksInvoicePaid(t *testing.T) {
	repo := newFakePaymentRepo()
	tx := pendingTransaction(time.Now())
	repo.add(tx)

	finance := &fakeFinanceClient{}
	notifier := &capturingNotifier{}
	svc := NewPaymentService(repo, finance, notifier, zap.NewNop())

	result, err := svc.HandleWebhook(context.Background(), &request.WebhookRequest{
		PGTransactionID: tx.PGTransactionID,
		Status:          "success",
	})
	require.NoError(t, err)

	assert.Equal(t, "processed", result.Message)
	assert.Equal(t, entity.PaymentStatusSuccess, result.Transaction.Status)
	assert.Equal(t, string(entity.InvoiceStatusPaid), finance.statusOf(tx.InvoiceID))

	require.Len(t, notifier.published(), 1)
	assert.Equal(t, "payment_success", notifier.published()[0].NotificationType)
}

func TestHandleWebhook_ReplayIsIdempotent(t *testing.T) {
	repo := newFakePaymentRepo()
	tx := pendingTransaction(time.Now())
	repo.add(tx)

	finance := &fakeFinanceClient{}
	svc := NewPaymentService(repo, finance, nil, zap.NewNop())

	_, err := svc.HandleWebhook(context.Background(), &request.WebhookRequest{
		PGTransactionID: tx.PGTransactionID,
		Status:          "success",
	})
	require.NoError(t, err)

	replay, err := svc.HandleWebhook(context.Background(), &request.WebhookRequest{
		PGTransactionID: tx.PGTransactionID,
		Status:          "success",
	})
	require.NoError(t, err)
	assert.Equal(t, "already processed", replay.Message)
}

func TestHandleWebhook_ConflictingReplayFails(t *testing.T) {
	repo := newFakePaymentRepo()
	tx := pendingTransaction(time.Now())
	tx.Status = entity.PaymentStatusFailed
	repo.add(tx)

	svc := NewPaymentService(repo, nil, nil, zap.NewNop())

	_, err := svc.HandleWebhook(context.Background(), &request.WebhookRequest{
		PGTransactionID: tx.PGTransactionID,
		Status:          "success",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestHandleWebhook_AcceptsTestCodeReference(t *testing.T) {
	repo := newFakePaymentRepo()
	tx := pendingTransaction(time.Now())
	repo.add(tx)

	finance := &fakeFinanceClient{}
	svc := NewPaymentService(repo, finance, nil, zap.NewNop())

	result, err := svc.HandleWebhook(context.Background(), &request.WebhookRequest{
		PGTransactionID: "SUCCESS_" + tx.PGTransactionID,
		Status:          "success",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSuccess, result.Transaction.Status)
}

func TestHandleWebhook_ExpiredStatusSettles(t *testing.T) {
	repo := newFakePaymentRepo()
	tx := pendingTransaction(time.Now())
	repo.add(tx)

	finance := &fakeFinanceClient{}
	notifier := &capturingNotifier{}
	svc := NewPaymentService(repo, finance, notifier, zap.NewNop())

	result, err := svc.HandleWebhook(context.Background(), &request.WebhookRequest{
		PGTransactionID: tx.PGTransactionID,
		Status:          "expired",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.PaymentStatusExpired, result.Transaction.Status)
	// Only success flips the invoice.
	assert.Empty(t, finance.statusOf(tx.InvoiceID))

	require.Len(t, notifier.published(), 1)
	assert.Equal(t, "payment_expired", notifier.published()[0].NotificationType)
}

func TestHandleWebhook_UnknownStatusRejected(t *testing.T) {
	svc := NewPaymentService(newFakePaymentRepo(), nil, nil, zap.NewNop())

	_, err := svc.HandleWebhook(context.Background(), &request.WebhookRequest{
		PGTransactionID: "PG_X",
		Status:          "refunded",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestExpirePendingTransactions(t *testing.T) {
	repo := newFakePaymentRepo()
	old := pendingTransaction(time.Now().Add(-10 * time.Minute))
	fresh := pendingTransaction(time.Now())
	settled := pendingTransaction(time.Now().Add(-10 * time.Minute))
	settled.Status = entity.PaymentStatusSuccess
	repo.add(old)
	repo.add(fresh)
	repo.add(settled)

	notifier := &capturingNotifier{}
	svc := NewPaymentService(repo, nil, notifier, zap.NewNop())

	count, err := svc.ExpirePendingTransactions(context.Background(), time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, entity.PaymentStatusExpired, old.Status)
	assert.Equal(t, entity.PaymentStatusPending, fresh.Status)
	assert.Equal(t, entity.PaymentStatusSuccess, settled.Status)

	require.Len(t, notifier.published(), 1)
	assert.Equal(t, "payment_expired", notifier.published()[0].NotificationType)
}

func TestExpirePendingTransactions_SkipsLostRaces(t *testing.T) {
	repo := newFakePaymentRepo()
	old := pendingTransaction(time.Now().Add(-10 * time.Minute))
	repo.add(old)
	repo.ratchetDenied = true

	svc := NewPaymentService(repo, nil, nil, zap.NewNop())

	count, err := svc.ExpirePendingTransactions(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
