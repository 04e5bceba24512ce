package wire

import (
	"ev-service-center/internal/adaptor"
	"ev-service-center/internal/client"
	"ev-service-center/internal/data/repository"
	"ev-service-center/internal/notify"
	"ev-service-center/internal/usecase"
	"ev-service-center/pkg/database"
	"ev-service-center/pkg/middleware"
	"ev-service-center/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Payment wires the gateway-facing service and returns the usecase too,
// which the expiry worker drives on its own schedule.
func Payment(db database.PgxIface, config *utils.Config, notifier notify.Publisher, logger *zap.Logger) (*App, usecase.PaymentService) {
	repo := repository.NewPaymentRepository(db, logger)
	finance := client.NewFinanceClient(config.Internal.FinanceURL, config.Internal.Token, config.Internal.ClientTimeout, logger)
	service := usecase.NewPaymentService(repo, finance, notifier, logger)
	handler := adaptor.NewPaymentHandler(service, logger)

	r := newRouter(logger)

	r.Route("/api/payments", func(r chi.Router) {
		// Creation is service-to-service only; the webhook is called by
		// the gateway and authenticated by transaction reference.
		r.With(middleware.InternalToken(config.Internal.Token, logger)).
			Post("/create", handler.CreatePayment)
		r.Post("/webhook", handler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(logger))

			r.Get("/history", handler.ListMyTransactions)
			r.Get("/{id}", handler.GetTransaction)
			r.With(middleware.Admin(logger)).Get("/history/all", handler.ListTransactions)
		})
	})

	return &App{Router: r}, service
}
