// Package spatial answers k-nearest-neighbour queries over geographic points
// under the great-circle metric.
package spatial

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"waypoint_router/pkg/geo"
)

// Locator is anything with a position on the sphere.
type Locator interface {
	AsGeoPoint() geo.Point
}

// Index is an immutable R-tree over a fixed set of items. Boxes are stored in
// plain (lon, lat) degrees, but every distance the search compares is a
// haversine distance, so results are exact on the sphere.
type Index[T Locator] struct {
	tree   rtree.RTreeG[int]
	items  []T
	points []geo.Point
}

// New builds an index over items. The slice is retained and must not be
// modified afterwards.
func New[T Locator](items []T) *Index[T] {
	idx := &Index[T]{
		items:  items,
		points: make([]geo.Point, len(items)),
	}
	for i, it := range items {
		p := it.AsGeoPoint()
		idx.points[i] = p
		xy := [2]float64{p.Lon, p.Lat}
		idx.tree.Insert(xy, xy, i)
	}
	return idx
}

// Len returns the number of indexed items.
func (idx *Index[T]) Len() int { return len(idx.items) }

// Nearest returns up to k items ordered by increasing great-circle distance
// from p. If p is itself indexed it comes back first at distance 0; callers
// that want "other" points must drop it themselves.
func (idx *Index[T]) Nearest(p geo.Point, k int) []T {
	if k <= 0 || len(idx.items) == 0 {
		return nil
	}
	k = min(k, len(idx.items))

	out := make([]T, 0, k)
	idx.tree.Nearby(
		func(lo, hi [2]float64, i int, item bool) float64 {
			if item {
				return p.DistanceTo(idx.points[i])
			}
			return geo.BoundDistance(p, orb.Bound{Min: orb.Point(lo), Max: orb.Point(hi)})
		},
		func(_, _ [2]float64, i int, _ float64) bool {
			out = append(out, idx.items[i])
			return len(out) < k
		},
	)
	return out
}
