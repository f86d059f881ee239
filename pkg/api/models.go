package api

import (
	"bytes"
	"strings"

	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/routing"
	"waypoint_router/pkg/world"
)

// RouteRequest is the JSON body for POST /api/v1/route. Either both city
// names or both points must be given.
type RouteRequest struct {
	From      string      `json:"from,omitempty"`
	To        string      `json:"to,omitempty"`
	FromPoint *LatLonJSON `json:"from_point,omitempty"`
	ToPoint   *LatLonJSON `json:"to_point,omitempty"`
}

// LatLonJSON represents a lat/lon pair in JSON.
type LatLonJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WaypointJSON is a city or river point in a response.
type WaypointJSON struct {
	Kind       string  `json:"kind"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Population *int64  `json:"population,omitempty"`
}

// StepJSON is one leg of an itinerary.
type StepJSON struct {
	From          WaypointJSON `json:"from"`
	To            WaypointJSON `json:"to"`
	Mode          string       `json:"mode"`
	River         *string      `json:"river,omitempty"`
	DistanceMiles float64      `json:"distance_miles"`
	Days          float64      `json:"days"`
	Geometry      []LatLonJSON `json:"geometry"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	Origin      WaypointJSON `json:"origin"`
	Destination WaypointJSON `json:"destination"`
	TotalMiles  float64      `json:"total_miles"`
	TotalDays   float64      `json:"total_days"`
	Steps       []StepJSON   `json:"steps"`
	Directions  []string     `json:"directions"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes       uint32         `json:"num_nodes"`
	NumEdges       uint32         `json:"num_edges"`
	NumCities      int            `json:"num_cities"`
	NumRiverPoints int            `json:"num_river_points"`
	NumComponents  int            `json:"num_components"`
	EdgesByMode    map[string]int `json:"edges_by_mode"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewStats summarises a graph for the stats endpoint.
func NewStats(g *graph.Graph) StatsResponse {
	stats := StatsResponse{
		NumNodes:      g.NumNodes,
		NumEdges:      g.NumEdges,
		NumComponents: graph.NumComponents(g),
		EdgesByMode:   make(map[string]int),
	}
	for i := range g.Nodes {
		if g.Nodes[i].IsRiverPoint() {
			stats.NumRiverPoints++
		} else {
			stats.NumCities++
		}
	}
	for m, n := range g.CountByMode() {
		stats.EdgesByMode[m.String()] = n
	}
	return stats
}

func newWaypointJSON(w *world.Waypoint) WaypointJSON {
	out := WaypointJSON{
		Kind: w.Kind.String(),
		Name: w.Label(),
		Lat:  w.Point.Lat,
		Lon:  w.Point.Lon,
	}
	if w.HasPopulation {
		pop := w.Population
		out.Population = &pop
	}
	return out
}

func newRouteResponse(it *routing.Itinerary) RouteResponse {
	resp := RouteResponse{
		Origin:      newWaypointJSON(&it.Origin),
		Destination: newWaypointJSON(&it.Destination),
		TotalMiles:  it.TotalMiles,
		TotalDays:   it.TotalDays,
		Steps:       make([]StepJSON, 0, len(it.Steps)),
	}
	for i := range it.Steps {
		s := &it.Steps[i]
		step := StepJSON{
			From:          newWaypointJSON(&s.From),
			To:            newWaypointJSON(&s.To),
			Mode:          s.Mode.String(),
			DistanceMiles: s.DistanceMiles,
			Days:          s.Days,
			Geometry:      make([]LatLonJSON, len(s.Points)),
		}
		if s.OnRiver {
			river := world.RiverLabel(s.River)
			step.River = &river
		}
		for j, p := range s.Points {
			step.Geometry[j] = LatLonJSON{Lat: p.Lat, Lon: p.Lon}
		}
		resp.Steps = append(resp.Steps, step)
	}

	var buf bytes.Buffer
	it.WriteText(&buf)
	resp.Directions = strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	return resp
}
