package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sistemasreportes/reportes-backend/internal/domain"
	"github.com/sistemasreportes/reportes-backend/internal/report"
)

type fakeStore struct {
	records []domain.ActivityRecord
	err     error
	calls   int
}

func (s *fakeStore) FetchActivities(ctx context.Context) ([]domain.ActivityRecord, error) {
	s.calls++
	return s.records, s.err
}

func (s *fakeStore) LatestActivity(ctx context.Context) (json.RawMessage, error) {
	return nil, errors.New("not used")
}

type fakeArchiver struct {
	filename string
	exportID string
	data     []byte
	err      error
}

func (a *fakeArchiver) Archive(ctx context.Context, filename, exportID string, data []byte) (string, error) {
	a.filename, a.exportID, a.data = filename, exportID, data
	return "exports/" + filename, a.err
}

func record(id, timestamp string) domain.ActivityRecord {
	return domain.ActivityRecord{
		ID:           id,
		Timestamp:    domain.NewValue(timestamp),
		RateCode:     domain.NewValue("CS01"),
		Description:  domain.NewValue("Corte"),
		Assigned:     domain.NewValue(json.Number("2")),
		Completed:    domain.NewValue(json.Number("2")),
		MainTechName: domain.NewValue("Ana"),
	}
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Route("/api", h.RegisterRoutes)

	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sheetRows(t *testing.T, body []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	return rows
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response["error"]
}

func TestHandleExportExcel_EmptyStore(t *testing.T) {
	store := &fakeStore{records: []domain.ActivityRecord{}}
	h := NewHandler(store, nil, false, zerolog.Nop())

	w := serve(t, h, "/api/export/excel")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "No hay datos para exportar", errorBody(t, w))
}

func TestHandleExportExcel_DateFilter(t *testing.T) {
	store := &fakeStore{records: []domain.ActivityRecord{
		record("a", "2024-05-01T10:00"),
		record("b", "2024-05-02T08:00"),
		record("c", "2024-05-02T09:00"),
	}}
	h := NewHandler(store, nil, false, zerolog.Nop())

	w := serve(t, h, "/api/export/excel?date=2024-05-01")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=reporte_2024-05-01.xlsx", w.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, w.Header().Get("X-Export-ID"))

	rows := sheetRows(t, w.Body.Bytes())
	require.Len(t, rows, 2, "header plus one data row")
	assert.Equal(t, "2024-05-01T10:00", rows[1][0])
}

func TestHandleExportExcel_MissingColumnOmitted(t *testing.T) {
	store := &fakeStore{records: []domain.ActivityRecord{
		record("a", "2024-05-01T10:00"),
		record("b", "2024-05-01T11:00"),
	}}
	h := NewHandler(store, nil, false, zerolog.Nop())

	w := serve(t, h, "/api/export/excel")

	require.Equal(t, http.StatusOK, w.Code)
	rows := sheetRows(t, w.Body.Bytes())
	assert.NotContains(t, rows[0], "Precio Unitario")
	assert.Equal(t, []string{
		"Fecha/Hora", "Código", "Descripción", "Cant. Asignada (Meta)", "Cant. Ejecutada", "Técnico Principal",
	}, rows[0])
}

func TestHandleExportExcel_NoDateExportsEverything(t *testing.T) {
	store := &fakeStore{records: []domain.ActivityRecord{
		record("a", "2024-05-01T10:00"),
		record("b", "2024-05-02T08:00"),
		record("c", "2024-06-11T09:00"),
	}}
	h := NewHandler(store, nil, false, zerolog.Nop())

	w := serve(t, h, "/api/export/excel")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=reporte_completo.xlsx", w.Header().Get("Content-Disposition"))
	assert.Len(t, sheetRows(t, w.Body.Bytes()), 4)
}

func TestHandleExportExcel_NoMatch(t *testing.T) {
	store := &fakeStore{records: []domain.ActivityRecord{record("a", "2024-05-02T08:00")}}
	h := NewHandler(store, nil, false, zerolog.Nop())

	w := serve(t, h, "/api/export/excel?date=2024-05-01")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No hay registros para la fecha 2024-05-01", errorBody(t, w))
}

func TestHandleExportExcel_InvalidDateSkipsStore(t *testing.T) {
	store := &fakeStore{}
	h := NewHandler(store, nil, false, zerolog.Nop())

	w := serve(t, h, "/api/export/excel?date=../../etc")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w), "AAAA-MM-DD")
	assert.Zero(t, store.calls)
}

func TestHandleExportExcel_UpstreamFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("database returned status 401: Permission denied")}
	h := NewHandler(store, nil, false, zerolog.Nop())

	w := serve(t, h, "/api/export/excel")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "No se pudo leer la base de datos", errorBody(t, w))
	assert.NotContains(t, errorBody(t, w), "Permission denied")
}

func TestHandleExportExcel_LegacyStatus(t *testing.T) {
	tests := []struct {
		name   string
		store  *fakeStore
		target string
	}{
		{"no data", &fakeStore{}, "/api/export/excel"},
		{"no match", &fakeStore{records: []domain.ActivityRecord{record("a", "2024-05-02")}}, "/api/export/excel?date=2024-05-01"},
		{"upstream", &fakeStore{err: errors.New("timeout")}, "/api/export/excel"},
		{"invalid date", &fakeStore{}, "/api/export/excel?date=mayo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.store, nil, true, zerolog.Nop())
			w := serve(t, h, tt.target)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, errorBody(t, w))
		})
	}
}

func TestHandleExportExcel_ArchivesWorkbook(t *testing.T) {
	store := &fakeStore{records: []domain.ActivityRecord{record("a", "2024-05-01T10:00")}}
	archiver := &fakeArchiver{}
	h := NewHandler(store, archiver, false, zerolog.Nop())

	w := serve(t, h, "/api/export/excel?date=2024-05-01")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reporte_2024-05-01.xlsx", archiver.filename)
	assert.Equal(t, w.Header().Get("X-Export-ID"), archiver.exportID)
	assert.Equal(t, w.Body.Bytes(), archiver.data)
}

func TestHandleExportExcel_ArchiveFailureDoesNotFailExport(t *testing.T) {
	store := &fakeStore{records: []domain.ActivityRecord{record("a", "2024-05-01T10:00")}}
	h := NewHandler(store, &fakeArchiver{err: errors.New("bucket missing")}, false, zerolog.Nop())

	w := serve(t, h, "/api/export/excel")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentType, w.Header().Get("Content-Type"))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "reporte_completo.xlsx", Filename(""))
	assert.Equal(t, "reporte_2024-05-01.xlsx", Filename("2024-05-01"))
}
