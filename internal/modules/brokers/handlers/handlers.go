// Package handlers provides HTTP handlers for broker operations.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/domain"
	"github.com/aristath/ledger/internal/modules/brokers"
)

// Handler handles broker HTTP requests
type Handler struct {
	service *brokers.Service
	log     zerolog.Logger
}

// NewHandler creates a new broker handler
func NewHandler(service *brokers.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "brokers").Logger(),
	}
}

// HandleList handles GET /api/brokers
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FindAll()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleGet handles GET /api/brokers/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	broker, err := h.service.FindByID(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if broker == nil {
		h.respondError(w, domain.Errorf(domain.KindNotFound, "broker not found, id: %d", id))
		return
	}
	h.respondData(w, broker)
}

// HandleByName handles GET /api/brokers/name/{name}
func (h *Handler) HandleByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	broker, err := h.service.FindByName(name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if broker == nil {
		h.respondError(w, domain.Errorf(domain.KindNotFound, "broker not found, name: %s", name))
		return
	}
	h.respondData(w, broker)
}

// HandleActive handles GET /api/brokers/active
func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FindByActive(true)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleInactive handles GET /api/brokers/inactive
func (h *Handler) HandleInactive(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FindByActive(false)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleByCountry handles GET /api/brokers/country/{country}
func (h *Handler) HandleByCountry(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FindByCountry(chi.URLParam(r, "country"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleSearch handles GET /api/brokers/search?keyword=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "keyword is required"})
		return
	}

	list, err := h.service.SearchByName(keyword)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleCreate handles POST /api/brokers
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var broker brokers.Broker
	broker.Active = true // default when the payload omits the flag
	if err := json.NewDecoder(r.Body).Decode(&broker); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return
	}

	created, err := h.service.Create(&broker)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, response{Success: true, Message: "created", Data: created})
}

// HandleUpdate handles PUT /api/brokers/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var broker brokers.Broker
	if err := json.NewDecoder(r.Body).Decode(&broker); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return
	}

	updated, err := h.service.Update(id, &broker)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, updated)
}

// HandleDelete handles DELETE /api/brokers/{id}
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
	case domain.KindBrokerInUse:
		h.writeJSON(w, http.StatusConflict, response{Success: false, Message: err.Error()})
	case "":
		h.log.Error().Err(err).Msg("Broker operation failed")
		h.writeJSON(w, http.StatusInternalServerError, response{Success: false, Message: "internal error"})
	default:
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg(fmt.Sprintf("Failed to encode response (status %d)", status))
	}
}
