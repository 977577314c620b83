package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/ledger/internal/database"
	"github.com/aristath/ledger/internal/scheduler"
)

// SystemHandlers serves the monitoring endpoints: liveness, host resource
// usage, database file stats and the scheduled job list.
type SystemHandlers struct {
	log         zerolog.Logger
	db          *database.DB
	sched       *scheduler.Scheduler
	startupTime time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, db *database.DB, sched *scheduler.Scheduler) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		db:          db,
		sched:       sched,
		startupTime: time.Now(),
	}
}

// RegisterRoutes registers the system routes under /api
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Get("/jobs", h.HandleJobs)
	})
}

// HandleHealth handles GET /health - a cheap liveness probe that also pings
// the database.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Conn().Ping(); err != nil {
		h.log.Error().Err(err).Msg("Health check database ping failed")
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startupTime).Round(time.Second).String(),
	})
}

// HandleStatus handles GET /api/system/status with host and database stats.
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"uptime":    time.Since(h.startupTime).Round(time.Second).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		status["cpu_percent"] = percentages[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory_percent"] = vm.UsedPercent
		status["memory_used_mb"] = vm.Used / 1024 / 1024
	}
	if info, err := os.Stat(h.db.Path()); err == nil {
		status["database_size_bytes"] = info.Size()
	}

	var pageCount, freeCount int64
	if err := h.db.Conn().QueryRow(`PRAGMA page_count`).Scan(&pageCount); err == nil {
		status["database_pages"] = pageCount
	}
	if err := h.db.Conn().QueryRow(`PRAGMA freelist_count`).Scan(&freeCount); err == nil {
		status["database_free_pages"] = freeCount
	}

	h.writeJSON(w, http.StatusOK, status)
}

// HandleJobs handles GET /api/system/jobs listing the scheduled jobs.
func (h *SystemHandlers) HandleJobs(w http.ResponseWriter, r *http.Request) {
	entries := []scheduler.Entry{}
	if h.sched != nil {
		entries = h.sched.Entries()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": entries})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
