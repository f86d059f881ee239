package spatial

import (
	"math/rand/v2"
	"sort"
	"testing"

	"waypoint_router/pkg/geo"
)

type place struct {
	id int
	p  geo.Point
}

func (pl *place) AsGeoPoint() geo.Point { return pl.p }

func randomPlaces(n int, seed uint64) []*place {
	r := rand.New(rand.NewPCG(seed, seed*7+1))
	out := make([]*place, n)
	for i := range out {
		out[i] = &place{id: i, p: geo.NewPoint(r.Float64()*160-80, r.Float64()*360-180)}
	}
	return out
}

// bruteForce returns the k nearest distances by linear scan.
func bruteForce(items []*place, q geo.Point, k int) []float64 {
	d := make([]float64, len(items))
	for i, it := range items {
		d[i] = q.DistanceTo(it.p)
	}
	sort.Float64s(d)
	return d[:min(k, len(d))]
}

func TestNearestMatchesBruteForce(t *testing.T) {
	items := randomPlaces(2000, 42)
	idx := New(items)
	queries := randomPlaces(50, 7)

	for _, q := range queries {
		for _, k := range []int{1, 5, 30} {
			got := idx.Nearest(q.p, k)
			want := bruteForce(items, q.p, k)
			if len(got) != len(want) {
				t.Fatalf("k=%d: got %d results, want %d", k, len(got), len(want))
			}
			for i := range got {
				d := q.p.DistanceTo(got[i].p)
				if d-want[i] > 1e-9 || want[i]-d > 1e-9 {
					t.Fatalf("k=%d rank %d: distance %f, want %f", k, i, d, want[i])
				}
			}
		}
	}
}

func TestNearestAcrossAntimeridian(t *testing.T) {
	west := &place{id: 0, p: geo.NewPoint(0, -179.5)}
	far := &place{id: 1, p: geo.NewPoint(0, 170)}
	idx := New([]*place{far, west})

	got := idx.Nearest(geo.NewPoint(0, 179.5), 1)
	if len(got) != 1 || got[0] != west {
		t.Fatalf("nearest across the antimeridian = %+v, want the point at -179.5", got)
	}
}

func TestNearestKLargerThanIndex(t *testing.T) {
	items := randomPlaces(4, 3)
	idx := New(items)

	got := idx.Nearest(geo.NewPoint(0, 0), 10)
	if len(got) != 4 {
		t.Fatalf("got %d results, want all 4", len(got))
	}
	for i := 1; i < len(got); i++ {
		prev := geo.NewPoint(0, 0).DistanceTo(got[i-1].p)
		cur := geo.NewPoint(0, 0).DistanceTo(got[i].p)
		if cur < prev {
			t.Errorf("results not ordered: %f before %f", prev, cur)
		}
	}
}

func TestNearestIncludesSelf(t *testing.T) {
	items := randomPlaces(100, 11)
	idx := New(items)

	got := idx.Nearest(items[17].p, 3)
	if got[0] != items[17] {
		t.Errorf("first result = %d, want the query point itself (17)", got[0].id)
	}
}

func TestNearestEmpty(t *testing.T) {
	idx := New[*place](nil)
	if got := idx.Nearest(geo.NewPoint(0, 0), 3); len(got) != 0 {
		t.Errorf("empty index returned %d results", len(got))
	}
	idx = New(randomPlaces(3, 1))
	if got := idx.Nearest(geo.NewPoint(0, 0), 0); len(got) != 0 {
		t.Errorf("k=0 returned %d results", len(got))
	}
	if idx.Len() != 3 {
		t.Errorf("Len = %d, want 3", idx.Len())
	}
}

func TestNearestDeterministic(t *testing.T) {
	items := randomPlaces(500, 5)
	a, b := New(items), New(items)
	q := geo.NewPoint(12, 34)
	ra, rb := a.Nearest(q, 30), b.Nearest(q, 30)
	for i := range ra {
		if ra[i] != rb[i] {
			t.Fatalf("rank %d differs between identical indexes: %d vs %d", i, ra[i].id, rb[i].id)
		}
	}
}

func BenchmarkNearest(b *testing.B) {
	idx := New(randomPlaces(20000, 9))
	q := geo.NewPoint(10, 10)
	for b.Loop() {
		idx.Nearest(q, 30)
	}
}
