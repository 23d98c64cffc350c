package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/sistemasreportes/reportes-backend/internal/domain"
)

// SystemHandlers contains HTTP handlers for service status and store connectivity
type SystemHandlers struct {
	store       domain.RecordStore
	serviceName string
	startedAt   time.Time
	log         zerolog.Logger
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(store domain.RecordStore, serviceName string, log zerolog.Logger) *SystemHandlers {
	if serviceName == "" {
		serviceName = "Reportes Backend"
	}
	return &SystemHandlers{
		store:       store,
		serviceName: serviceName,
		startedAt:   time.Now(),
		log:         log.With().Str("component", "system_handlers").Logger(),
	}
}

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Status        string  `json:"status"`
	Service       string  `json:"service"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	RAMPercent    float64 `json:"ram_percent,omitempty"`
}

// ProbeResponse is returned by GET /api/test-firebase
type ProbeResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	DataSample json.RawMessage `json:"data_sample,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// HandleStatus reports that the service is online
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Status:        "online",
		Service:       h.serviceName,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}

	// Memory statistics are instant; a failure only drops the field
	if memStat, err := mem.VirtualMemory(); err != nil {
		h.log.Debug().Err(err).Msg("Failed to get memory statistics")
	} else {
		response.RAMPercent = memStat.UsedPercent
	}

	h.writeJSON(w, response)
}

// HandleTestFirebase reads the latest activity to prove the record store is reachable.
// Failures are reported in the body, never as a raw fault.
func (h *SystemHandlers) HandleTestFirebase(w http.ResponseWriter, r *http.Request) {
	sample, err := h.store.LatestActivity(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Record store probe failed")
		h.writeJSON(w, ProbeResponse{Success: false, Error: err.Error()})
		return
	}

	if sample == nil {
		sample = json.RawMessage("null")
	}
	h.writeJSON(w, ProbeResponse{
		Success:    true,
		Message:    "Conexión Exitosa con Firebase",
		DataSample: sample,
	})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
