package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trade-record routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/trade-records", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/search", h.HandleSearch)
		r.Get("/date-range", h.HandleByDateRange)
		r.Get("/broker/{brokerId}", h.HandleByBroker)
		r.Get("/asset-type/{assetType}", h.HandleByAssetType)
		r.Get("/strategy/{strategyId}", h.HandleByStrategy)
		r.Get("/underlying/{symbol}", h.HandleByUnderlying)
		r.Get("/{id}", h.HandleGet)
		r.Post("/", h.HandleCreate)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}
