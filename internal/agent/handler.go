package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"patient-manager/internal/patient"
	"patient-manager/internal/platform/respond"
)

// PatientFinder resolves the patient a nurse conversation is about.
type PatientFinder interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

type Handler struct {
	assistant *Assistant
	nurse     *Nurse
	patients  PatientFinder
	logger    *zap.Logger
}

func NewHandler(assistant *Assistant, nurse *Nurse, patients PatientFinder, logger *zap.Logger) *Handler {
	return &Handler{
		assistant: assistant,
		nurse:     nurse,
		patients:  patients,
		logger:    logger,
	}
}

type ChatRequest struct {
	Message string `json:"message"`
}

type NurseChatRequest struct {
	Message   string `json:"message"`
	PatientID string `json:"patient_id"`
}

type ChatResponse struct {
	Message string `json:"message"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respond.BadRequest(w, "message is required")
		return
	}

	reply, err := h.assistant.ProcessMessage(r.Context(), req.Message)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, ChatResponse{Message: reply})
}

func (h *Handler) NurseChat(w http.ResponseWriter, r *http.Request) {
	var req NurseChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.PatientID) == "" {
		respond.BadRequest(w, "message and patient_id are required")
		return
	}

	p, err := h.patients.Get(r.Context(), strings.ToUpper(strings.TrimSpace(req.PatientID)))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, ChatResponse{Message: h.nurse.ProcessMessage(req.Message, *p)})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chat", h.Chat)
	r.Post("/nurse/chat", h.NurseChat)
}
