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

// Booking wires the appointment service.
func Booking(db database.PgxIface, config *utils.Config, notifier notify.Publisher, logger *zap.Logger) *App {
	repo := repository.NewBookingRepository(db, logger)
	users := client.NewUserClient(config.Internal.UserURL, config.Internal.Token, config.Internal.ClientTimeout, logger)
	service := usecase.NewBookingService(repo, users, notifier, logger)
	handler := adaptor.NewBookingHandler(service, logger)

	r := newRouter(logger)

	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.Identity(logger))

		r.Post("/", handler.CreateBooking)
		r.Get("/my", handler.ListMyBookings)
		r.Get("/{id}", handler.GetBooking)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Admin(logger))

			r.Get("/", handler.ListBookings)
			r.Put("/{id}/status", handler.SetStatus)
			r.Delete("/{id}", handler.DeleteBooking)
		})
	})

	r.Route("/internal/bookings/items", func(r chi.Router) {
		r.Use(middleware.InternalToken(config.Internal.Token, logger))

		r.Get("/{id}", handler.GetBooking)
		r.Put("/{id}/status", handler.SetStatus)
	})

	return &App{Router: r}
}
