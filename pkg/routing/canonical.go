package routing

import (
	"errors"
	"fmt"

	"waypoint_router/pkg/geo"
	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/travel"
	"waypoint_router/pkg/world"
)

// ErrPathTooShort is returned when a path has fewer than two nodes.
var ErrPathTooShort = errors.New("path must have at least two nodes")

// Step is one leg of an itinerary. Consecutive hops along the same river in
// the same direction are merged into a single step.
type Step struct {
	From, To      world.Waypoint
	DistanceMiles float64
	Days          float64
	Mode          travel.Mode

	// River is set when the step starts on a river point. OnRiver
	// distinguishes an unnamed river from no river at all.
	River   string
	OnRiver bool

	// Points traces every waypoint the step passes, endpoints included.
	Points []geo.Point
}

// Itinerary is a canonical, human-readable route.
type Itinerary struct {
	Origin      world.Waypoint
	Destination world.Waypoint
	Steps       []Step
	TotalMiles  float64
	TotalDays   float64
}

// Canonicalize turns a node path into travel steps.
//
// Zero-length hops are dropped. Runs of river-to-river hops on the same river
// with the same mode collapse into one step spanning the run; every other hop
// becomes its own step.
func Canonicalize(g *graph.Graph, path *Path) (*Itinerary, error) {
	if path == nil || len(path.Nodes) < 2 {
		return nil, ErrPathTooShort
	}
	if len(path.Edges) != len(path.Nodes)-1 {
		return nil, fmt.Errorf("path has %d nodes but %d edges", len(path.Nodes), len(path.Edges))
	}
	if !g.Decorated() {
		return nil, ErrNotDecorated
	}

	it := &Itinerary{
		Origin:      g.Nodes[path.Nodes[0]],
		Destination: g.Nodes[path.Nodes[len(path.Nodes)-1]],
	}

	var run []Step
	flush := func() {
		if len(run) == 0 {
			return
		}
		merged := run[0]
		merged.Points = append([]geo.Point(nil), run[0].Points...)
		for _, s := range run[1:] {
			merged.To = s.To
			merged.DistanceMiles += s.DistanceMiles
			merged.Days += s.Days
			merged.Points = append(merged.Points, s.Points[1:]...)
		}
		it.Steps = append(it.Steps, merged)
		run = run[:0]
	}

	for i, e := range path.Edges {
		from := &g.Nodes[path.Nodes[i]]
		to := &g.Nodes[path.Nodes[i+1]]
		if g.Head[e] != path.Nodes[i+1] {
			return nil, fmt.Errorf("edge %d does not lead to node %d", e, path.Nodes[i+1])
		}

		step := Step{
			From:          *from,
			To:            *to,
			DistanceMiles: g.Distance[e],
			Days:          g.Time[e],
			Mode:          g.Mode[e],
			River:         from.River,
			OnRiver:       from.IsRiverPoint(),
			Points:        []geo.Point{from.Point, to.Point},
		}
		if step.DistanceMiles == 0 {
			continue
		}

		riverHop := from.IsRiverPoint() && to.IsRiverPoint()
		if len(run) > 0 && riverHop && step.River == run[0].River && step.Mode == run[0].Mode {
			run = append(run, step)
			continue
		}
		flush()
		if riverHop {
			run = append(run, step)
		} else {
			it.Steps = append(it.Steps, step)
		}
	}
	flush()

	for _, s := range it.Steps {
		it.TotalMiles += s.DistanceMiles
		it.TotalDays += s.Days
	}
	return it, nil
}
