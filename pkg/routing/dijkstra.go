package routing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"waypoint_router/pkg/graph"
)

var (
	// ErrNoPath is returned when the destination is unreachable from the source.
	ErrNoPath = errors.New("no path exists")

	// ErrNotDecorated is returned when a graph without travel times is searched.
	ErrNotDecorated = errors.New("graph has no travel times")
)

const noEdge = ^uint32(0) // sentinel for "no predecessor edge"

// MinHeap is a concrete-typed min-heap for Dijkstra priority queue.
// Avoids interface boxing overhead of container/heap. Entries with equal
// distance pop in node ID order so searches are reproducible.
type MinHeap struct {
	items []PQItem
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node uint32
	Dist float64
}

func (a PQItem) less(b PQItem) bool {
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	return a.Node < b.Node
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node uint32, dist float64) {
	h.items = append(h.items, PQItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].less(h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].less(h.items[smallest]) {
			smallest = left
		}
		if right < n && h.items[right].less(h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// Path is a minimum-time node sequence. Edges[i] is the edge taken from
// Nodes[i] to Nodes[i+1].
type Path struct {
	Nodes     []uint32
	Edges     []uint32
	TotalDays float64
}

// ShortestPath runs Dijkstra over the time-weighted multigraph.
//
// Edges of a node are relaxed in CSR order and only a strictly shorter
// distance replaces a predecessor, so among equal-time parallel edges the
// first one enumerated is kept.
func ShortestPath(ctx context.Context, g *graph.Graph, source, destination uint32) (*Path, error) {
	if !g.Decorated() {
		return nil, ErrNotDecorated
	}
	if source >= g.NumNodes || destination >= g.NumNodes {
		return nil, fmt.Errorf("node out of range: %d -> %d (graph has %d nodes)", source, destination, g.NumNodes)
	}
	if source == destination {
		return &Path{Nodes: []uint32{source}}, nil
	}
	if g.Component != nil && g.Component[source] != g.Component[destination] {
		return nil, ErrNoPath
	}

	dist := make([]float64, g.NumNodes)
	predEdge := make([]uint32, g.NumNodes)
	predNode := make([]uint32, g.NumNodes)
	for i := range dist {
		dist[i] = math.Inf(1)
		predEdge[i] = noEdge
	}
	dist[source] = 0

	pq := MinHeap{items: make([]PQItem, 0, 256)}
	pq.Push(source, 0)

	iterations := 0
	for pq.Len() > 0 {
		// Check context cancellation periodically.
		iterations++
		if iterations%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		item := pq.Pop()
		u := item.Node
		if item.Dist > dist[u] {
			continue // stale entry
		}
		if u == destination {
			break
		}

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			newDist := item.Dist + g.Time[e]
			if newDist < dist[v] {
				dist[v] = newDist
				predEdge[v] = e
				predNode[v] = u
				pq.Push(v, newDist)
			}
		}
	}

	if math.IsInf(dist[destination], 1) {
		return nil, ErrNoPath
	}

	// Walk predecessors back from the destination, then reverse.
	var nodes, edges []uint32
	for v := destination; v != source; v = predNode[v] {
		nodes = append(nodes, v)
		edges = append(edges, predEdge[v])
	}
	nodes = append(nodes, source)
	reverse(nodes)
	reverse(edges)

	return &Path{Nodes: nodes, Edges: edges, TotalDays: dist[destination]}, nil
}

func reverse(s []uint32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
