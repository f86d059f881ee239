package routing

import (
	"errors"

	"waypoint_router/pkg/geo"
	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/spatial"
)

// DefaultMaxSnapMiles is the farthest a query point may lie from a city.
const DefaultMaxSnapMiles = 100.0

// ErrPointTooFar is returned when the query point is too far from any city.
var ErrPointTooFar = errors.New("point too far from any city")

// SnapResult is a query point resolved to a city node.
type SnapResult struct {
	Node  uint32
	Miles float64 // distance from the query point to the city
}

type cityNode struct {
	id    uint32
	point geo.Point
}

func (c cityNode) AsGeoPoint() geo.Point { return c.point }

// Snapper resolves arbitrary coordinates to the nearest city.
type Snapper struct {
	idx     *spatial.Index[cityNode]
	maxDist float64
}

// NewSnapper indexes every city node of g.
func NewSnapper(g *graph.Graph, maxMiles float64) *Snapper {
	ids := g.CityIDs()
	cities := make([]cityNode, len(ids))
	for i, id := range ids {
		cities[i] = cityNode{id: id, point: g.Nodes[id].Point}
	}
	return &Snapper{idx: spatial.New(cities), maxDist: maxMiles}
}

// Snap finds the nearest city to p.
func (s *Snapper) Snap(p geo.Point) (SnapResult, error) {
	found := s.idx.Nearest(p, 1)
	if len(found) == 0 {
		return SnapResult{}, ErrPointTooFar
	}
	d := p.DistanceTo(found[0].point)
	if d > s.maxDist {
		return SnapResult{Miles: d}, ErrPointTooFar
	}
	return SnapResult{Node: found[0].id, Miles: d}, nil
}
