// Package worker hosts the payment service's background sweep.
package worker

import (
	"context"
	"time"

	"ev-service-center/internal/usecase"

	"go.uber.org/zap"
)

// ExpirySweeper periodically expires payment transactions that sat
// pending for longer than the configured age.
type ExpirySweeper struct {
	payments usecase.PaymentService
	interval time.Duration
	age      time.Duration
	log      *zap.Logger
}

func NewExpirySweeper(payments usecase.PaymentService, interval, age time.Duration, log *zap.Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if age <= 0 {
		age = time.Minute
	}
	return &ExpirySweeper{
		payments: payments,
		interval: interval,
		age:      age,
		log:      log.With(zap.String("worker", "payment_expiry")),
	}
}

// Run blocks until ctx is canceled, sweeping once per interval.
func (s *ExpirySweeper) Run(ctx context.Context) {
	s.log.Info("Expiry sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("age", s.age),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	count, err := s.payments.ExpirePendingTransactions(sweepCtx, s.age)
	if err != nil {
		s.log.Error("Expiry sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.log.Info("Expiry sweep done", zap.Int("expired", count))
	}
}
