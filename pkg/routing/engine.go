package routing

import (
	"context"
	"fmt"

	"waypoint_router/pkg/geo"
	"waypoint_router/pkg/graph"
)

// Router is the interface for route queries.
type Router interface {
	FindRoute(ctx context.Context, source, destination string) (*Itinerary, error)
	FindRouteNear(ctx context.Context, from, to geo.Point) (*Itinerary, error)
}

// Engine answers route queries over a decorated waypoint graph. It holds no
// per-query state and is safe for concurrent use.
type Engine struct {
	g       *graph.Graph
	snapper *Snapper
}

// NewEngine creates a routing engine. The graph must already carry travel
// times and must not be modified afterwards.
func NewEngine(g *graph.Graph) (*Engine, error) {
	return NewEngineWithSnapRadius(g, DefaultMaxSnapMiles)
}

// NewEngineWithSnapRadius is NewEngine with a custom snapping limit.
func NewEngineWithSnapRadius(g *graph.Graph, maxSnapMiles float64) (*Engine, error) {
	if !g.Decorated() {
		return nil, ErrNotDecorated
	}
	return &Engine{g: g, snapper: NewSnapper(g, maxSnapMiles)}, nil
}

// Graph returns the graph the engine routes over.
func (e *Engine) Graph() *graph.Graph { return e.g }

// FindRoute computes the fastest itinerary between two cities by name.
// Routing a city to itself yields an itinerary with no steps.
func (e *Engine) FindRoute(ctx context.Context, source, destination string) (*Itinerary, error) {
	src, err := e.g.CityID(source)
	if err != nil {
		return nil, err
	}
	dst, err := e.g.CityID(destination)
	if err != nil {
		return nil, err
	}
	return e.route(ctx, src, dst)
}

// FindRouteNear snaps both points to their nearest cities and routes
// between them.
func (e *Engine) FindRouteNear(ctx context.Context, from, to geo.Point) (*Itinerary, error) {
	src, err := e.snapper.Snap(from)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	dst, err := e.snapper.Snap(to)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	return e.route(ctx, src.Node, dst.Node)
}

func (e *Engine) route(ctx context.Context, src, dst uint32) (*Itinerary, error) {
	if src == dst {
		n := e.g.Nodes[src]
		return &Itinerary{Origin: n, Destination: n}, nil
	}
	path, err := ShortestPath(ctx, e.g, src, dst)
	if err != nil {
		return nil, err
	}
	return Canonicalize(e.g, path)
}
