package world

import (
	"errors"
	"fmt"
	"log"

	"waypoint_router/pkg/geo"
)

var (
	// ErrMalformedSource is returned when geography source data does not have
	// the expected structure.
	ErrMalformedSource = errors.New("malformed geography source")

	// ErrInvalidRiver is returned for a river with fewer than two points.
	ErrInvalidRiver = errors.New("a river must have at least two points")

	// ErrUnknownCity is returned when a city name does not resolve.
	ErrUnknownCity = errors.New("unknown city")
)

// Kind tags the variant held by a Waypoint.
type Kind uint8

const (
	KindCity Kind = iota
	KindRiverPoint
)

func (k Kind) String() string {
	switch k {
	case KindCity:
		return "city"
	case KindRiverPoint:
		return "river point"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Waypoint is a graph node: either a populated place or a point on a river.
// Waypoints are compared by pointer while the graph is built, so a city and a
// river point sharing coordinates stay distinct.
type Waypoint struct {
	Kind  Kind
	Point geo.Point

	// City fields.
	Name          string
	Population    int64
	HasPopulation bool

	// River point fields. An empty River means the river is unnamed.
	River string
}

// NewCity creates a city waypoint. A negative population means unknown.
func NewCity(name string, lat, lon float64, population int64) *Waypoint {
	return &Waypoint{
		Kind:          KindCity,
		Point:         geo.NewPoint(lat, lon),
		Name:          name,
		Population:    max(population, 0),
		HasPopulation: population >= 0,
	}
}

// NewRiverPoint creates a river point on the named river.
func NewRiverPoint(river string, lat, lon float64) *Waypoint {
	return &Waypoint{
		Kind:  KindRiverPoint,
		Point: geo.NewPoint(lat, lon),
		River: river,
	}
}

// AsGeoPoint returns the waypoint's location.
func (w *Waypoint) AsGeoPoint() geo.Point { return w.Point }

// IsRiverPoint reports whether w lies on a river.
func (w *Waypoint) IsRiverPoint() bool { return w.Kind == KindRiverPoint }

// Label returns the display name: the city name or the river name.
func (w *Waypoint) Label() string {
	if w.Kind == KindCity {
		return w.Name
	}
	return RiverLabel(w.River)
}

// RiverLabel renders a possibly empty river name.
func RiverLabel(name string) string {
	if name == "" {
		return "Unnamed river"
	}
	return name
}

// River is an ordered run of river points in the direction of water flow.
type River struct {
	Name   string
	Points []*Waypoint
}

// NewRiver creates a river from points ordered upstream to downstream.
func NewRiver(name string, points []geo.Point) (*River, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("river %q has %d points: %w", RiverLabel(name), len(points), ErrInvalidRiver)
	}
	r := &River{Name: name, Points: make([]*Waypoint, len(points))}
	for i, p := range points {
		r.Points[i] = NewRiverPoint(name, p.Lat, p.Lon)
	}
	return r, nil
}

// Start returns the source of the river.
func (r *River) Start() *Waypoint { return r.Points[0] }

// End returns the mouth of the river.
func (r *River) End() *Waypoint { return r.Points[len(r.Points)-1] }

// Geography is the validated input to the graph builder.
type Geography struct {
	Cities []*Waypoint
	Rivers []*River

	byName map[string]*Waypoint
}

// NewGeography indexes cities by name. When two cities share a name the
// first one wins.
func NewGeography(cities []*Waypoint, rivers []*River) (*Geography, error) {
	byName := make(map[string]*Waypoint, len(cities))
	for _, c := range cities {
		if c.Kind != KindCity {
			return nil, fmt.Errorf("%w: waypoint %q in city list is a %s", ErrMalformedSource, c.Label(), c.Kind)
		}
		if _, dup := byName[c.Name]; dup {
			log.Printf("Warning: duplicate city name %q, keeping the first", c.Name)
			continue
		}
		byName[c.Name] = c
	}
	for _, r := range rivers {
		if len(r.Points) < 2 {
			return nil, fmt.Errorf("river %q: %w", RiverLabel(r.Name), ErrInvalidRiver)
		}
	}
	return &Geography{Cities: cities, Rivers: rivers, byName: byName}, nil
}

// City looks a city up by name.
func (g *Geography) City(name string) (*Waypoint, error) {
	c, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCity, name)
	}
	return c, nil
}

// RiverEndpoints returns every river's start followed by every river's end.
func (g *Geography) RiverEndpoints() []*Waypoint {
	endpoints := make([]*Waypoint, 0, 2*len(g.Rivers))
	for _, r := range g.Rivers {
		endpoints = append(endpoints, r.Start())
	}
	for _, r := range g.Rivers {
		endpoints = append(endpoints, r.End())
	}
	return endpoints
}

// NumRiverPoints returns the total number of river points.
func (g *Geography) NumRiverPoints() int {
	n := 0
	for _, r := range g.Rivers {
		n += len(r.Points)
	}
	return n
}
