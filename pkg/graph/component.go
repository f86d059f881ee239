package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient; max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

// ComponentLabels returns, for every node, the representative of its weakly
// connected component. Every edge the builder adds has a reverse twin, so
// weak components are also strong ones: two nodes with different labels are
// never connected by a path.
func ComponentLabels(g *Graph) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}
	uf := unionEdges(g)
	labels := make([]uint32, g.NumNodes)
	for i := range g.NumNodes {
		labels[i] = uf.Find(i)
	}
	return labels
}

// LargestComponent returns the node indices belonging to the largest
// weakly connected component (treating the directed graph as undirected).
func LargestComponent(g *Graph) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}

	uf := unionEdges(g)

	// Find the representative with the largest size.
	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := uint32(0); i < g.NumNodes; i++ {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < g.NumNodes; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}

	return nodes
}

// NumComponents returns the number of weakly connected components.
func NumComponents(g *Graph) int {
	seen := make(map[uint32]struct{})
	for _, l := range g.Component {
		seen[l] = struct{}{}
	}
	return len(seen)
}

func unionEdges(g *Graph) *UnionFind {
	uf := NewUnionFind(g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(u, g.Head[e])
		}
	}
	return uf
}
