package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all broker routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/brokers", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/active", h.HandleActive)
		r.Get("/inactive", h.HandleInactive)
		r.Get("/name/{name}", h.HandleByName)
		r.Get("/country/{country}", h.HandleByCountry)
		r.Get("/search", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Post("/", h.HandleCreate)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}
