package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"hospital-route-service/internal/api/dto"
	"hospital-route-service/internal/domain"
)

const maxRouteBody = 1 << 20

// RouteResolver resolves an ordered coordinate list into a route geometry.
type RouteResolver interface {
	Resolve(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error)
}

type RouteHandler struct {
	Resolver RouteResolver
}

// Resolve decodes the coordinate list, delegates to the resolver and wraps
// the geometry in the success envelope.
func (h *RouteHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req dto.RouteRequest

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRouteBody))
	defer r.Body.Close()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.Coordinates) < 2 {
		writeError(w, r, http.StatusBadRequest, "At least 2 coordinates required")
		return
	}

	points := make([]domain.Coordinates, 0, len(req.Coordinates))
	for i, pair := range req.Coordinates {
		c, err := domain.CoordinatesFromList(pair)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("coordinate %d: %v", i, err))
			return
		}
		points = append(points, c)
	}

	res, err := h.Resolver.Resolve(r.Context(), domain.RouteRequest{Coordinates: points})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RouteResponse{
		Type:     "success",
		Geometry: res.Geometry,
	})
}
