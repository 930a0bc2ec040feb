package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"hospital-route-service/internal/api/dto"
	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.FromContext(r.Context()).Warn("encode failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

// writeDomainError maps a classified failure onto its HTTP status and
// error envelope.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := obs.FromContext(r.Context())

	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("unclassified error", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}

	switch de.Kind {
	case domain.KindValidation:
		writeError(w, r, http.StatusBadRequest, de.Msg)
	case domain.KindProvider:
		status := de.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		logger.Warn("provider rejected request", zap.Int("status", de.Status))
		writeJSON(w, r, status, dto.ProviderErrorResponse{
			Error:   "ORS API error",
			Status:  de.Status,
			Message: de.Body,
		})
	case domain.KindNoRoute:
		writeError(w, r, http.StatusNotFound, "No route found")
	case domain.KindTimeout:
		writeError(w, r, http.StatusGatewayTimeout, "Request timeout to ORS API")
	case domain.KindNetwork:
		logger.Error("provider unreachable", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Network error: "+unwrapMsg(de))
	default:
		logger.Error("internal error", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Internal server error: "+unwrapMsg(de))
	}
}

func unwrapMsg(de *domain.Error) string {
	if de.Err != nil {
		return de.Err.Error()
	}
	return de.Msg
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found")
}
