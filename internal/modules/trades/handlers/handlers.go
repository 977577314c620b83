// Package handlers provides HTTP handlers for trade-record operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/ledger/internal/domain"
	"github.com/aristath/ledger/internal/modules/trades"
)

// Handler handles trade-record HTTP requests
type Handler struct {
	service *trades.Service
	log     zerolog.Logger
}

// NewHandler creates a new trade handler
func NewHandler(service *trades.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "trades").Logger(),
	}
}

// HandleList handles GET /api/trade-records
// With ?include=refs the rows carry broker and strategy name snapshots.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("include") == "refs" {
		list, err := h.service.FindAllWithRefs()
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

// HandleGet handles GET /api/trade-records/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	trade, err := h.service.FindByID(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if trade == nil {
		h.respondError(w, domain.Errorf(domain.KindNotFound, "trade record not found, id: %d", id))
		return
	}
	h.respondData(w, trade)
}

// HandleByBroker handles GET /api/trade-records/broker/{brokerId}
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

// HandleByAssetType handles GET /api/trade-records/asset-type/{assetType}
func (h *Handler) HandleByAssetType(w http.ResponseWriter, r *http.Request) {
	assetType, err := trades.AssetTypeFromString(chi.URLParam(r, "assetType"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
		return
	}

	list, err := h.service.FindByAssetType(assetType)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleByStrategy handles GET /api/trade-records/strategy/{strategyId}
func (h *Handler) HandleByStrategy(w http.ResponseWriter, r *http.Request) {
	strategyID, err := strconv.ParseInt(chi.URLParam(r, "strategyId"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid strategy id"})
		return
	}

	list, err := h.service.FindByStrategy(strategyID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleByUnderlying handles GET /api/trade-records/underlying/{symbol}
func (h *Handler) HandleByUnderlying(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FindByUnderlying(chi.URLParam(r, "symbol"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleSearch handles GET /api/trade-records/search?symbol=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "symbol is required"})
		return
	}

	list, err := h.service.SearchBySymbol(symbol)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleByDateRange handles GET /api/trade-records/date-range?start=&end=
func (h *Handler) HandleByDateRange(w http.ResponseWriter, r *http.Request) {
	start, err := domain.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid start date"})
		return
	}
	end, err := domain.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid end date"})
		return
	}

	list, err := h.service.FindByDateRange(start, end)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, list)
}

// HandleCreate handles POST /api/trade-records
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var trade trades.TradeRecord
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return
	}

	created, err := h.service.Create(&trade)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, response{Success: true, Message: "created", Data: created})
}

// HandleUpdate handles PUT /api/trade-records/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var trade trades.TradeRecord
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		h.writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return
	}

	updated, err := h.service.Update(id, &trade)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondData(w, updated)
}

// HandleDelete handles DELETE /api/trade-records/{id}
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
		h.log.Error().Err(err).Msg("Trade operation failed")
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
