package graph

import (
	"fmt"

	"waypoint_router/pkg/travel"
	"waypoint_router/pkg/world"
)

// Graph is a directed multigraph of waypoints in CSR (Compressed Sparse Row)
// format. Nodes live in an arena indexed by node ID: cities first, then river
// points river by river in flow order. Parallel edges between the same ordered
// pair are kept; within one source node edges are ordered by target ID and
// then by the order the builder produced them.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	Nodes    []world.Waypoint // len: NumNodes
	FirstOut []uint32         // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32         // len: NumEdges; target node for each edge
	Distance []float64        // len: NumEdges; great-circle miles
	Mode     []travel.Mode    // len: NumEdges

	// Time is the travel time in days per edge. Nil until DecorateWithTravelTime.
	Time []float64

	// Component labels each node with its weakly connected component.
	Component []uint32

	cities map[string]uint32
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// CityID resolves a city name to its node ID.
func (g *Graph) CityID(name string) (uint32, error) {
	id, ok := g.cities[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", world.ErrUnknownCity, name)
	}
	return id, nil
}

// CityIDs returns the node IDs of all cities in ID order.
func (g *Graph) CityIDs() []uint32 {
	var ids []uint32
	for i := range g.Nodes {
		if g.Nodes[i].Kind == world.KindCity {
			ids = append(ids, uint32(i))
		}
	}
	return ids
}

// Decorated reports whether every edge carries a travel time.
func (g *Graph) Decorated() bool {
	return g.Time != nil && uint32(len(g.Time)) == g.NumEdges
}

// DecorateWithTravelTime sets the travel time of every edge from its distance
// and mode. On error the graph is left unchanged.
func (g *Graph) DecorateWithTravelTime(speeds travel.Speeds) error {
	if err := speeds.Validate(); err != nil {
		return err
	}
	times := make([]float64, g.NumEdges)
	for e := range times {
		t, err := speeds.TimeFor(g.Distance[e], g.Mode[e])
		if err != nil {
			return fmt.Errorf("edge %d: %w", e, err)
		}
		times[e] = t
	}
	g.Time = times
	return nil
}

// CountByMode returns the number of edges per travel mode.
func (g *Graph) CountByMode() map[travel.Mode]int {
	counts := make(map[travel.Mode]int, 4)
	for _, m := range g.Mode {
		counts[m]++
	}
	return counts
}

// finalize builds the lookup tables derived from the arena and CSR arrays.
func (g *Graph) finalize() {
	g.cities = make(map[string]uint32)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Kind != world.KindCity {
			continue
		}
		if _, dup := g.cities[n.Name]; !dup {
			g.cities[n.Name] = uint32(i)
		}
	}
	g.Component = ComponentLabels(g)
}
