package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusMiles = 3958.8

const degToRad = math.Pi / 180

// Point is a location on the sphere in degrees. The radian form is cached
// because the graph builder measures the same points many times.
type Point struct {
	Lat float64
	Lon float64

	latRad float64
	lonRad float64
}

// NewPoint creates a Point from latitude and longitude in degrees.
func NewPoint(lat, lon float64) Point {
	return Point{Lat: lat, Lon: lon, latRad: lat * degToRad, lonRad: lon * degToRad}
}

// FromOrb converts an orb point (lon, lat order) into a Point.
func FromOrb(p orb.Point) Point {
	return NewPoint(p.Lat(), p.Lon())
}

// Orb returns the point in orb's (lon, lat) order.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// DistanceTo returns the great-circle distance in miles to q.
func (p Point) DistanceTo(q Point) float64 {
	return haversineRad(p.latRad, p.lonRad, q.latRad, q.lonRad)
}

// Haversine returns the great-circle distance in miles between two points
// given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineRad(lat1*degToRad, lon1*degToRad, lat2*degToRad, lon2*degToRad)
}

func haversineRad(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(math.Min(1, a)))

	return earthRadiusMiles * c
}

// BoundDistance returns the great-circle distance in miles from p to the
// closest point of the latitude/longitude rectangle b. The result never
// exceeds the distance from p to any point inside b, which makes it usable as
// the box metric of a best-first nearest-neighbour search.
//
// The rectangle must not cross the antimeridian (Min.Lon() <= Max.Lon()).
func BoundDistance(p Point, b orb.Bound) float64 {
	minLat, maxLat := b.Min.Lat(), b.Max.Lat()
	minLon, maxLon := b.Min.Lon(), b.Max.Lon()

	// Inside the longitude band the nearest point lies on p's meridian.
	if p.Lon >= minLon && p.Lon <= maxLon {
		lat := clamp(p.Lat, minLat, maxLat)
		return math.Abs(p.Lat-lat) * degToRad * earthRadiusMiles
	}

	// Outside the band distance grows with |dLon| along any parallel, so the
	// nearest point sits on one of the two bounding meridians.
	return math.Min(
		meridianDistance(p, minLon, minLat, maxLat),
		meridianDistance(p, maxLon, minLat, maxLat),
	)
}

// meridianDistance returns the distance from p to the meridian arc at lon
// spanning [minLat, maxLat].
func meridianDistance(p Point, lon, minLat, maxLat float64) float64 {
	dLon := (lon - p.Lon) * degToRad

	// Foot of the perpendicular from p onto the meridian's great circle. Past
	// the pole (cos dLon < 0) the distance shrinks monotonically toward the
	// pole on p's side, so the foot is clamped there.
	foot := math.Atan2(math.Sin(p.latRad), math.Cos(p.latRad)*math.Cos(dLon)) / degToRad
	foot = clamp(foot, -90, 90)

	lat := clamp(foot, minLat, maxLat)
	return Haversine(p.Lat, p.Lon, lat, lon)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
