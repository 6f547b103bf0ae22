package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"patient-manager/internal/apperrors"
)

func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Error writes {"error": ...} with the status derived from err. Store and
// internal failures are logged and reported with a generic message.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	JSON(w, status, map[string]string{"error": apperrors.PublicMessage(err)})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, map[string]string{"error": message})
}
