package graph

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"waypoint_router/pkg/spatial"
	"waypoint_router/pkg/travel"
	"waypoint_router/pkg/world"
)

// Options controls how densely the builder connects waypoints.
type Options struct {
	CityNeighbors      int `yaml:"cityNeighbors" validate:"gt=0"`
	EndpointNeighbors  int `yaml:"endpointNeighbors" validate:"gt=0"`
	CityRiverNeighbors int `yaml:"cityRiverNeighbors" validate:"gt=0"`
}

// DefaultOptions returns the fan-out used for the Inner Sea maps.
func DefaultOptions() Options {
	return Options{
		CityNeighbors:      30,
		EndpointNeighbors:  10,
		CityRiverNeighbors: 30,
	}
}

func (o Options) validate() error {
	if o.CityNeighbors <= 0 || o.EndpointNeighbors <= 0 || o.CityRiverNeighbors <= 0 {
		return fmt.Errorf("graph options must be positive: %+v", o)
	}
	return nil
}

// Edge is a directed edge before CSR packing.
type Edge struct {
	From, To uint32
	Miles    float64
	Mode     travel.Mode
}

// builder carries the arena and the read-only indexes shared by all phases.
type builder struct {
	geo  *world.Geography
	opts Options
	ids  map[*world.Waypoint]uint32

	endpoints   []*world.Waypoint
	cityIdx     *spatial.Index[*world.Waypoint]
	endpointIdx *spatial.Index[*world.Waypoint]
}

// Build synthesizes the waypoint multigraph from a geography.
//
// River segments come first, then city-city, river-river and city-river
// connections. The last three phases only read the spatial indexes, so they
// run concurrently on phase-local edge lists that are merged in phase order.
func Build(ctx context.Context, geography *world.Geography, opts Options) (*Graph, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	// Step 1: Lay out the node arena.
	numNodes := len(geography.Cities) + geography.NumRiverPoints()
	nodes := make([]world.Waypoint, 0, numNodes)
	ids := make(map[*world.Waypoint]uint32, numNodes)
	addNode := func(w *world.Waypoint) {
		ids[w] = uint32(len(nodes))
		nodes = append(nodes, *w)
	}
	for _, c := range geography.Cities {
		addNode(c)
	}
	for _, r := range geography.Rivers {
		for _, p := range r.Points {
			addNode(p)
		}
	}

	b := &builder{geo: geography, opts: opts, ids: ids}

	// Step 2: River segments.
	log.Println("Connecting river waypoints...")
	riverEdges := b.riverSegments()

	// Step 3: Spatial indexes.
	b.endpoints = geography.RiverEndpoints()
	b.cityIdx = spatial.New(geography.Cities)
	b.endpointIdx = spatial.New(b.endpoints)

	// Step 4: Proximity phases.
	phases := make([][]Edge, 3)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		log.Println("Adding city-to-city connections...")
		phases[0], err = b.cityToCity(egCtx)
		return err
	})
	eg.Go(func() (err error) {
		log.Println("Adding connections between rivers and rivers...")
		phases[1], err = b.riverToRiver(egCtx)
		return err
	})
	eg.Go(func() (err error) {
		log.Println("Adding connections between rivers and cities...")
		phases[2], err = b.cityToRiver(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("build waypoint graph: %w", err)
	}

	edges := riverEdges
	for _, p := range phases {
		edges = append(edges, p...)
	}

	g := New(nodes, edges)

	log.Printf("Waypoint graph: %d nodes, %d edges in %s",
		g.NumNodes, g.NumEdges, time.Since(start).Round(time.Millisecond))
	return g, nil
}

// riverSegments adds one DOWNSTREAM and one UPSTREAM edge per consecutive
// pair of river points.
func (b *builder) riverSegments() []Edge {
	var edges []Edge
	for _, r := range b.geo.Rivers {
		for i := 0; i < len(r.Points)-1; i++ {
			src, dst := r.Points[i], r.Points[i+1]
			d := src.Point.DistanceTo(dst.Point)
			edges = append(edges,
				Edge{From: b.ids[src], To: b.ids[dst], Miles: d, Mode: travel.Downstream},
				Edge{From: b.ids[dst], To: b.ids[src], Miles: d, Mode: travel.Upstream},
			)
		}
	}
	return edges
}

func (b *builder) cityToCity(ctx context.Context) ([]Edge, error) {
	var edges []Edge
	for _, c := range b.geo.Cities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, other := range nearestOthers(b.cityIdx, c, b.opts.CityNeighbors) {
			edges = b.connectOverland(edges, c, other)
		}
	}
	return edges, nil
}

func (b *builder) riverToRiver(ctx context.Context) ([]Edge, error) {
	var edges []Edge
	for _, r := range b.geo.Rivers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, endpoint := range []*world.Waypoint{r.Start(), r.End()} {
			for _, other := range nearestOthers(b.endpointIdx, endpoint, b.opts.EndpointNeighbors) {
				edges = b.connectOverland(edges, endpoint, other)
			}
		}
	}
	return edges, nil
}

// cityToRiver connects in both directions of the k-nearest relation, since it
// is not symmetric: a lone city far from rivers and a lone river mouth far
// from cities both get connected.
func (b *builder) cityToRiver(ctx context.Context) ([]Edge, error) {
	var edges []Edge
	for _, c := range b.geo.Cities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, endpoint := range b.endpointIdx.Nearest(c.Point, b.opts.CityRiverNeighbors) {
			edges = b.connectOverland(edges, c, endpoint)
		}
	}
	for _, endpoint := range b.endpoints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, c := range b.cityIdx.Nearest(endpoint.Point, b.opts.CityRiverNeighbors) {
			edges = b.connectOverland(edges, endpoint, c)
		}
	}
	return edges, nil
}

// connectOverland appends a pair of OVERLAND edges, one in each direction.
func (b *builder) connectOverland(edges []Edge, p1, p2 *world.Waypoint) []Edge {
	d := p1.Point.DistanceTo(p2.Point)
	u, v := b.ids[p1], b.ids[p2]
	return append(edges,
		Edge{From: u, To: v, Miles: d, Mode: travel.Overland},
		Edge{From: v, To: u, Miles: d, Mode: travel.Overland},
	)
}

// nearestOthers returns the k nearest indexed waypoints excluding w itself.
func nearestOthers(idx *spatial.Index[*world.Waypoint], w *world.Waypoint, k int) []*world.Waypoint {
	found := idx.Nearest(w.Point, k+1)
	others := make([]*world.Waypoint, 0, len(found))
	for _, f := range found {
		if f != w {
			others = append(others, f)
		}
	}
	if len(others) > k {
		others = others[:k]
	}
	return others
}

// New packs an arena and an edge list into a graph with its lookup tables.
// Edge endpoints must be valid arena indices. The edge slice is reordered.
func New(nodes []world.Waypoint, edges []Edge) *Graph {
	g := pack(nodes, edges)
	g.finalize()
	return g
}

// pack converts an edge list into CSR arrays. The sort is stable so parallel
// edges keep the order they were produced in.
func pack(nodes []world.Waypoint, edges []Edge) *Graph {
	numNodes := uint32(len(nodes))

	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	numEdges := uint32(len(edges))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	dist := make([]float64, numEdges)
	mode := make([]travel.Mode, numEdges)

	for i, e := range edges {
		head[i] = e.To
		dist[i] = e.Miles
		mode[i] = e.Mode
	}

	// Build FirstOut via counting.
	for _, e := range edges {
		firstOut[e.From+1]++
	}
	// Prefix sum.
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		Nodes:    nodes,
		FirstOut: firstOut,
		Head:     head,
		Distance: dist,
		Mode:     mode,
	}
}
