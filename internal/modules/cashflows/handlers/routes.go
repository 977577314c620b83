package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all cash-flow routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cash-flow-records", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/date-range", h.HandleByDateRange)
		r.Get("/type/{recordType}", h.HandleByType)
		r.Get("/broker/{brokerId}/date-range", h.HandleByBrokerAndDateRange)
		r.Get("/broker/{brokerId}", h.HandleByBroker)
		r.Get("/{id}", h.HandleGet)
		r.Post("/", h.HandleCreate)
		r.Delete("/{id}", h.HandleDelete)
	})
}
