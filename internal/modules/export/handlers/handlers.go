// Package handlers provides HTTP handlers for spreadsheet exports.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sistemasreportes/reportes-backend/internal/domain"
	"github.com/sistemasreportes/reportes-backend/internal/observability"
	"github.com/sistemasreportes/reportes-backend/internal/report"
)

// Archiver stores a copy of a generated workbook.
type Archiver interface {
	Archive(ctx context.Context, filename, exportID string, data []byte) (string, error)
}

// Handler handles export HTTP requests
type Handler struct {
	store        domain.RecordStore
	archiver     Archiver
	legacyStatus bool
	log          zerolog.Logger
}

// NewHandler creates a new export handler. archiver may be nil.
// With legacyStatus every error payload is sent with HTTP 200.
func NewHandler(store domain.RecordStore, archiver Archiver, legacyStatus bool, log zerolog.Logger) *Handler {
	return &Handler{
		store:        store,
		archiver:     archiver,
		legacyStatus: legacyStatus,
		log:          log.With().Str("handler", "export").Logger(),
	}
}

// Filename returns the attachment name for an export with the given date filter.
func Filename(date string) string {
	if date == "" {
		return "reporte_completo.xlsx"
	}
	return fmt.Sprintf("reporte_%s.xlsx", date)
}

// HandleExportExcel handles GET /api/export/excel?date=YYYY-MM-DD
func (h *Handler) HandleExportExcel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	exportID := uuid.New().String()
	date := r.URL.Query().Get("date")

	log := h.log.With().Str("export_id", exportID).Str("date", date).Logger()

	data, rows, err := h.export(r.Context(), date)
	if err != nil {
		observability.RecordExport(outcome(err), time.Since(start), 0)
		status := h.errorStatus(err)
		event := log.Warn()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		var exportErr *report.ExportError
		if errors.As(err, &exportErr) && exportErr.Cause != nil {
			event = event.AnErr("cause", exportErr.Cause)
		}
		event.Err(err).Int("status", status).Msg("Export failed")
		h.writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	filename := Filename(date)
	if h.archiver != nil {
		if key, err := h.archiver.Archive(r.Context(), filename, exportID, data); err != nil {
			log.Warn().Err(err).Msg("Failed to archive export")
		} else {
			log.Debug().Str("key", key).Msg("Export archived")
		}
	}

	observability.RecordExport(observability.OutcomeSuccess, time.Since(start), rows)
	log.Info().
		Int("rows", rows).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Export generated")

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Export-ID", exportID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error().Err(err).Msg("Failed to write export response")
	}
}

// export runs the fetch, build and encode steps. Every error it returns is a *report.ExportError.
func (h *Handler) export(ctx context.Context, date string) ([]byte, int, error) {
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return nil, 0, report.InvalidDate(date)
		}
	}

	records, err := h.store.FetchActivities(ctx)
	if err != nil {
		return nil, 0, report.Upstream(err)
	}

	table, err := report.Build(records, date)
	if err != nil {
		return nil, 0, err
	}

	data, err := report.Encode(table)
	if err != nil {
		return nil, 0, err
	}

	return data, len(table.Rows), nil
}

func (h *Handler) errorStatus(err error) int {
	if h.legacyStatus {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, report.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrNoData), errors.Is(err, report.ErrNoMatch):
		return http.StatusNotFound
	case errors.Is(err, report.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, report.ErrInvalidRequest):
		return observability.OutcomeInvalid
	case errors.Is(err, report.ErrNoData):
		return observability.OutcomeNoData
	case errors.Is(err, report.ErrNoMatch):
		return observability.OutcomeNoMatch
	case errors.Is(err, report.ErrUpstream):
		return observability.OutcomeUpstream
	default:
		return observability.OutcomeEncoding
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
