package report

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"patient-manager/internal/platform/respond"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, st)
}

func (h *Handler) DownloadCensus(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Census(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="census.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) SendWardReport(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SendWardReport(r.Context()); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/report/stats", h.GetStats)
	r.Get("/report/census.xlsx", h.DownloadCensus)
	r.Post("/report/send", h.SendWardReport)
}
