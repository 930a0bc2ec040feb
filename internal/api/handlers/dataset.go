package handlers

import (
	"errors"
	"net/http"

	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/platform/obs"
	"hospital-route-service/internal/ports"

	"go.uber.org/zap"
)

// DatasetHandler serves the persisted dataset document as stored.
type DatasetHandler struct {
	Reader ports.DatasetReader
}

func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw, err := h.Reader.ReadRaw(r.Context())
	switch {
	case errors.Is(err, domain.ErrDatasetNotFound):
		writeError(w, r, http.StatusNotFound, "dataset JSON not found")
		return
	case err != nil:
		obs.FromContext(r.Context()).Error("read dataset failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		obs.FromContext(r.Context()).Warn("write dataset failed", zap.Error(err))
	}
}
