// Package handlers provides HTTP handlers for strategy operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/domain"
	"github.com/aristath/ledger/internal/modules/strategies"
)

// Handler handles strategy HTTP requests
type Handler struct {
	service *strategies.Service
	log     zerolog.Logger
}

// NewHandler creates a new strategy handler
func NewHandler(service *strategies.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "strategies").Logger(),
	}
}

// HandleList handles GET /api/strategies
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FindAll()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleGet handles GET /api/strategies/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	strategy, err := h.service.FindByID(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if strategy == nil {
		h.respondError(w, domain.Errorf(domain.KindNotFound, "strategy not found, id: %d", id))
		return
	}
	h.respondData(w, strategy)
}

// HandleCreate handles POST /api/strategies
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var strategy strategies.Strategy
	if err := json.NewDecoder(r.Body).Decode(&strategy); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return
	}

	created, err := h.service.Create(&strategy)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, response{Success: true, Message: "created", Data: created})
}

// HandleUpdate handles PUT /api/strategies/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var strategy strategies.Strategy
	if err := json.NewDecoder(r.Body).Decode(&strategy); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return
	}

	updated, err := h.service.Update(id, &strategy)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, updated)
}

// HandleDelete handles DELETE /api/strategies/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response{Success: true, Message: "deleted"})
}

type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) respondData(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, response{Success: true, Message: "ok", Data: data})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		h.writeJSON(w, http.StatusNotFound, response{Success: false, Message: err.Error()})
	case "":
		h.log.Error().Err(err).Msg("Strategy operation failed")
		h.writeJSON(w, http.StatusInternalServerError, response{Success: false, Message: "internal error"})
	default:
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
