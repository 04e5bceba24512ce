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

// Finance wires the invoicing service. It talks to booking for the
// source appointment, inventory for stock deduction and payment for
// gateway hand-off.
func Finance(db database.PgxIface, config *utils.Config, notifier notify.Publisher, logger *zap.Logger) *App {
	repo := repository.NewInvoiceRepository(db, logger)
	bookings := client.NewBookingClient(config.Internal.BookingURL, config.Internal.Token, config.Internal.ClientTimeout, logger)
	inventory := client.NewInventoryClient(config.Internal.InventoryURL, config.Internal.Token, config.Internal.ClientTimeout, logger)
	payments := client.NewPaymentClient(config.Internal.PaymentURL, config.Internal.Token, config.Internal.ClientTimeout, logger)
	service := usecase.NewInvoiceService(repo, bookings, inventory, payments, notifier, logger)
	handler := adaptor.NewInvoiceHandler(service, logger)

	r := newRouter(logger)

	r.Route("/api/invoices", func(r chi.Router) {
		r.Use(middleware.Identity(logger))

		r.Get("/my", handler.ListMyInvoices)
		r.Get("/{id}", handler.GetInvoice)
		r.Post("/{id}/pay", handler.InitiatePayment)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Admin(logger))

			r.Post("/", handler.CreateInvoice)
			r.Get("/", handler.ListInvoices)
			r.Get("/user/{userID}", handler.ListUserInvoices)
			r.Put("/{id}/status", handler.SetStatus)
		})
	})

	r.Route("/internal/invoices", func(r chi.Router) {
		r.Use(middleware.InternalToken(config.Internal.Token, logger))

		r.Get("/{id}", handler.GetInvoice)
		r.Put("/{id}/status", handler.SetStatus)
	})

	return &App{Router: r}
}
