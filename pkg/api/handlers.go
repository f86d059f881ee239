package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"
	"strings"

	"waypoint_router/pkg/geo"
	"waypoint_router/pkg/routing"
	"waypoint_router/pkg/world"
)

const geoJSONMediaType = "application/geo+json"

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	stats  StatsResponse
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, stats StatsResponse) *Handlers {
	return &Handlers{
		router: router,
		stats:  stats,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	byName := req.From != "" || req.To != ""
	byPoint := req.FromPoint != nil || req.ToPoint != nil

	var it *routing.Itinerary
	var err error
	switch {
	case byName && !byPoint:
		if req.From == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "from")
			return
		}
		if req.To == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "to")
			return
		}
		it, err = h.router.FindRoute(r.Context(), req.From, req.To)

	case byPoint && !byName:
		if err := validateCoord(req.FromPoint); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_coordinates", "from_point")
			return
		}
		if err := validateCoord(req.ToPoint); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_coordinates", "to_point")
			return
		}
		it, err = h.router.FindRouteNear(r.Context(),
			geo.NewPoint(req.FromPoint.Lat, req.FromPoint.Lon),
			geo.NewPoint(req.ToPoint.Lat, req.ToPoint.Lon))

	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, world.ErrUnknownCity):
			writeError(w, http.StatusNotFound, "unknown_city", "")
		case errors.Is(err, routing.ErrPointTooFar):
			writeError(w, http.StatusUnprocessableEntity, "point_too_far", "")
		case errors.Is(err, routing.ErrNoPath):
			writeError(w, http.StatusNotFound, "no_route_found", "")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	if wantsGeoJSON(r) {
		w.Header().Set("Content-Type", geoJSONMediaType)
		json.NewEncoder(w).Encode(it.GeoJSON())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newRouteResponse(it))
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func wantsGeoJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == geoJSONMediaType {
			return true
		}
	}
	return false
}

func validateCoord(ll *LatLonJSON) error {
	if ll == nil {
		return errors.New("missing coordinates")
	}
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lon) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lon, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lon < -180 || ll.Lon > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
