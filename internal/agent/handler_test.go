package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"patient-manager/internal/apperrors"
	"patient-manager/internal/patient"
)

type brokenFinder struct{}

func (brokenFinder) Get(context.Context, string) (*patient.Patient, error) {
	return nil, apperrors.NewStoreError("failed to get patient", errors.New("connection reset"))
}

func newChatRouter(t *testing.T, finder PatientFinder) http.Handler {
	t.Helper()
	store := seededStore(t)
	if finder == nil {
		finder = patient.NewService(store, zap.NewNop())
	}
	h := NewHandler(NewAssistant(store, zap.NewNop()), NewNurse(nil), finder, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, h)
	})
	return r
}

func post(t *testing.T, h http.Handler, path, body string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestHandler_Chat(t *testing.T) {
	router := newChatRouter(t, nil)

	code, body := post(t, router, "/api/chat", `{"message":"floor 1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body["message"], "Total patients: 2")

	code, body = post(t, router, "/api/chat", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "message is required", body["error"])

	code, _ = post(t, router, "/api/chat", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_NurseChat(t *testing.T) {
	router := newChatRouter(t, nil)

	code, body := post(t, router, "/api/nurse/chat", `{"message":"how old is she","patient_id":"p004"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Emily Brown is 28 years old.", body["message"])

	code, body = post(t, router, "/api/nurse/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "message and patient_id are required", body["error"])

	code, body = post(t, router, "/api/nurse/chat", `{"message":"hello","patient_id":"P404"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "patient P404 not found", body["error"])
}

func TestHandler_NurseChatStoreFailure(t *testing.T) {
	router := newChatRouter(t, brokenFinder{})

	code, body := post(t, router, "/api/nurse/chat", `{"message":"hello","patient_id":"P001"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body["error"])
}
