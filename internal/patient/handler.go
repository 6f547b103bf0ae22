package patient

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"patient-manager/internal/platform/respond"
)

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// patientView adds the computed status to the stored record.
type patientView struct {
	Patient
	Status string `json:"status"`
}

func toViews(patients []Patient) []patientView {
	views := make([]patientView, 0, len(patients))
	for _, p := range patients {
		views = append(views, patientView{Patient: p, Status: string(p.Status())})
	}
	return views
}

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, toViews(patients))
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, patientView{Patient: *p, Status: string(p.Status())})
}

func (h *Handler) ListFloor(w http.ResponseWriter, r *http.Request) {
	floor, err := strconv.Atoi(chi.URLParam(r, "floor"))
	if err != nil {
		respond.BadRequest(w, "floor must be a number")
		return
	}
	patients, err := h.svc.ListByFloor(r.Context(), floor)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, toViews(patients))
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "Invalid request")
		return
	}
	p, err := h.svc.Add(r.Context(), req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, patientView{Patient: *p, Status: string(p.Status())})
}

type vitalsRequest struct {
	RespiratoryRate *int `json:"respiratory_rate"`
	Airflow         *int `json:"airflow"`
}

func (h *Handler) UpdateVitals(w http.ResponseWriter, r *http.Request) {
	var req vitalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "Invalid request")
		return
	}

	alerts, err := h.svc.UpdateVitals(r.Context(), VitalsUpdate{
		PatientID:       chi.URLParam(r, "id"),
		RespiratoryRate: req.RespiratoryRate,
		Airflow:         req.Airflow,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"alerts":  alerts,
	})
}

func (h *Handler) VitalsHistory(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.BadRequest(w, "limit must be a positive number")
			return
		}
		limit = n
	}

	history, err := h.svc.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, history)
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.Alerts(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, alerts)
}

func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.BadRequest(w, "Invalid alert ID")
		return
	}
	if err := h.svc.AcknowledgeAlert(r.Context(), id); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/patients", h.ListPatients)
	r.Post("/patients", h.CreatePatient)
	r.Get("/patients/{id}", h.GetPatient)
	r.Post("/patients/{id}/vitals", h.UpdateVitals)
	r.Get("/patients/{id}/vitals", h.VitalsHistory)
	r.Get("/floors/{floor}/patients", h.ListFloor)
	r.Get("/alerts", h.ListAlerts)
	r.Post("/alerts/{id}/ack", h.AcknowledgeAlert)
}
