package wire

import (
	"ev-service-center/internal/adaptor"
	"ev-service-center/internal/data/repository"
	"ev-service-center/internal/notify"
	"ev-service-center/internal/usecase"
	"ev-service-center/pkg/database"
	"ev-service-center/pkg/middleware"
	"ev-service-center/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Inventory wires the stock service. Reads are open so peer services can
// price parts; writes require an admin, and the decrement/credit pair is
// reserved for service-to-service traffic.
func Inventory(db database.PgxIface, config *utils.Config, notifier notify.Publisher, logger *zap.Logger) *App {
	repo := repository.NewInventoryRepository(db, logger)
	service := usecase.NewInventoryService(repo, notifier, logger)
	handler := adaptor.NewInventoryHandler(service, logger)

	r := newRouter(logger)

	r.Route("/api/inventory/items", func(r chi.Router) {
		r.Get("/", handler.ListItems)
		r.Get("/{id}", handler.GetItem)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(logger))
			r.Use(middleware.Admin(logger))

			r.Post("/", handler.CreateItem)
			r.Get("/low-stock", handler.ListLowStock)
			r.Put("/{id}", handler.UpdateItem)
			r.Put("/{id}/quantity", handler.SetQuantity)
			r.Delete("/{id}", handler.DeleteItem)
		})
	})

	r.Route("/internal/inventory/items", func(r chi.Router) {
		r.Use(middleware.InternalToken(config.Internal.Token, logger))

		r.Post("/{id}/decrement", handler.Decrement)
		r.Post("/{id}/credit", handler.Credit)
	})

	return &App{Router: r}
}
