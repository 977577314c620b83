// Package handlers provides HTTP handlers for cash-flow operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/domain"
	"github.com/aristath/ledger/internal/modules/cashflows"
)

// Handler handles cash-flow HTTP requests
type Handler struct {
	service *cashflows.Service
	log     zerolog.Logger
}

// NewHandler creates a new cash-flow handler
func NewHandler(service *cashflows.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "cashflows").Logger(),
	}
}

// HandleList handles GET /api/cash-flow-records
// With ?include=broker the rows carry a broker name snapshot.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("include") == "broker" {
		list, err := h.service.FindAllWithBroker()
		if err != nil {
			h.respondError(w, err)
			return
		}
		h.respondData(w, list)
		return
	}

	list, err := h.service.FindAll()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleGet handles GET /api/cash-flow-records/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	record, err := h.service.FindByID(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if record == nil {
		h.respondError(w, domain.Errorf(domain.KindNotFound, "cash flow record not found, id: %d", id))
		return
	}
	h.respondData(w, record)
}

// HandleByBroker handles GET /api/cash-flow-records/broker/{brokerId}
func (h *Handler) HandleByBroker(w http.ResponseWriter, r *http.Request) {
	brokerID, err := strconv.ParseInt(chi.URLParam(r, "brokerId"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid broker id"})
		return
	}

	list, err := h.service.FindByBroker(brokerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleByType handles GET /api/cash-flow-records/type/{recordType}
func (h *Handler) HandleByType(w http.ResponseWriter, r *http.Request) {
	recordType, err := cashflows.RecordTypeFromString(chi.URLParam(r, "recordType"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
		return
	}

	list, err := h.service.FindByRecordType(recordType)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleByDateRange handles GET /api/cash-flow-records/date-range?start=&end=
func (h *Handler) HandleByDateRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseDateRange(w, r)
	if !ok {
		return
	}

	list, err := h.service.FindByDateRange(start, end)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleByBrokerAndDateRange handles
// GET /api/cash-flow-records/broker/{brokerId}/date-range?start=&end=
func (h *Handler) HandleByBrokerAndDateRange(w http.ResponseWriter, r *http.Request) {
	brokerID, err := strconv.ParseInt(chi.URLParam(r, "brokerId"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid broker id"})
		return
	}
	start, end, ok := h.parseDateRange(w, r)
	if !ok {
		return
	}

	list, err := h.service.FindByBrokerAndDateRange(brokerID, start, end)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleCreate handles POST /api/cash-flow-records
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var record cashflows.CashFlowRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return
	}

	created, err := h.service.Create(&record)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, response{Success: true, Message: "created", Data: created})
}

// HandleDelete handles DELETE /api/cash-flow-records/{id}
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

// parseDateRange reads the start and end query parameters. Values pass
// through uninterpreted beyond the YYYY-MM-DD format check.
func (h *Handler) parseDateRange(w http.ResponseWriter, r *http.Request) (domain.Date, domain.Date, bool) {
	start, err := domain.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid start date"})
		return domain.Date{}, domain.Date{}, false
	}
	end, err := domain.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid end date"})
		return domain.Date{}, domain.Date{}, false
	}
	return start, end, true
}

func (h *Handler) respondData(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, response{Success: true, Message: "ok", Data: data})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		h.writeJSON(w, http.StatusNotFound, response{Success: false, Message: err.Error()})
	case "":
		h.log.Error().Err(err).Msg("Cash flow operation failed")
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
