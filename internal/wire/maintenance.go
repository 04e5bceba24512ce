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

// Maintenance wires the workshop service.
func Maintenance(db database.PgxIface, config *utils.Config, notifier notify.Publisher, logger *zap.Logger) *App {
	repo := repository.NewMaintenanceRepository(db, logger)
	bookings := client.NewBookingClient(config.Internal.BookingURL, config.Internal.Token, config.Internal.ClientTimeout, logger)
	inventory := client.NewInventoryClient(config.Internal.InventoryURL, config.Internal.Token, config.Internal.ClientTimeout, logger)
	users := client.NewUserClient(config.Internal.UserURL, config.Internal.Token, config.Internal.ClientTimeout, logger)
	service := usecase.NewMaintenanceService(repo, bookings, inventory, users, notifier, logger)
	handler := adaptor.NewMaintenanceHandler(service, logger)

	r := newRouter(logger)

	r.Route("/api/maintenance/tasks", func(r chi.Router) {
		r.Use(middleware.Identity(logger))

		r.Get("/my", handler.ListMyTasks)
		r.Get("/{id}", handler.GetTask)
		r.Put("/{id}/status", handler.SetStatus)

		r.Route("/{id}/parts", func(r chi.Router) {
			r.Post("/", handler.AddPart)
			r.Get("/", handler.ListParts)
			r.Delete("/{partID}", handler.RemovePart)
		})

		r.Route("/{id}/checklist", func(r chi.Router) {
			r.Get("/", handler.GetChecklist)
			r.Put("/{itemID}", handler.UpdateChecklistItem)
			r.Delete("/{itemID}", handler.RemoveChecklistItem)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Admin(logger))

			r.Post("/", handler.CreateTask)
			r.Get("/", handler.ListTasks)
			r.Get("/due-soon", handler.ListDueSoon)
		})
	})

	// The reminder scheduler polls this feed with the service token only,
	// no user identity.
	r.Route("/internal/maintenance", func(r chi.Router) {
		r.Use(middleware.InternalToken(config.Internal.Token, logger))

		r.Get("/due-soon", handler.ListDueSoon)
	})

	return &App{Router: r}
}
