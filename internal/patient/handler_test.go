package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService(t)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, NewHandler(svc, zap.NewNop()))
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body)).WithContext(context.Background())
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListPatientsIncludesStatus(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/patients", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 8)
	for _, p := range body {
		if p["id"] == "P004" {
			assert.Equal(t, "critical", p["status"])
		}
	}
}

func TestHandler_GetPatientNotFound(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/patients/P404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"patient P404 not found"}`, rec.Body.String())
}

func TestHandler_UpdateVitalsAndHistory(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/patients/P001/vitals", `{"respiratory_rate":22,"airflow":70}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var update struct {
		Success bool    `json:"success"`
		Alerts  []Alert `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &update))
	assert.True(t, update.Success)
	assert.Len(t, update.Alerts, 2)

	rec = do(t, h, http.MethodGet, "/api/patients/P001/vitals?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []VitalReading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, 22, history[0].RespiratoryRate)
}

func TestHandler_UpdateVitalsMissingField(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/patients/P001/vitals", `{"respiratory_rate":22}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"airflow is required"}`, rec.Body.String())
}

func TestHandler_AcknowledgeAlert(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/patients/P003/vitals", `{"respiratory_rate":30,"airflow":95}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/alerts", "")
	var alerts []Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)

	rec = do(t, h, http.MethodPost, "/api/alerts/"+jsonInt(alerts[0].ID)+"/ack", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/alerts", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/alerts/abc/ack", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListFloor(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/floors/1/patients", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}

func TestHandler_CreatePatient(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/patients",
		`{"id":"P020","name":"Grace Hopper","age":79,"condition":"Hypertension","last_visit":"2024-03-01","floor":2,"respiratory_rate":19,"airflow":88}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"normal"`)

	rec = do(t, h, http.MethodPost, "/api/patients", `{"id":"X1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
