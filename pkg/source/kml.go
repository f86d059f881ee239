// Package source loads geography from map files into world.Geography.
package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"waypoint_router/pkg/geo"
	"waypoint_router/pkg/world"
)

// Default file names inside a KML data directory.
const (
	DefaultCitiesFile = "golarion_city.kml"
	DefaultRiversFile = "innersea_rivers.kml"
)

type kmlRoot struct {
	XMLName   xml.Name       `xml:"kml"`
	Documents []kmlContainer `xml:"Document"`
	Folders   []kmlContainer `xml:"Folder"`
}

type kmlContainer struct {
	Name       string         `xml:"name"`
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name       string          `xml:"name"`
	Point      *kmlCoordinates `xml:"Point"`
	LineString *kmlCoordinates `xml:"LineString"`
}

type kmlCoordinates struct {
	Coordinates string `xml:"coordinates"`
}

// folder returns the placemarks of the single folder inside the single
// document of a KML file.
func folder(r io.Reader, what string) ([]kmlPlacemark, error) {
	var root kmlRoot
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", world.ErrMalformedSource, what, err)
	}
	if len(root.Documents) != 1 || len(root.Folders) != 0 {
		return nil, fmt.Errorf("%w: expected a single root document in %s", world.ErrMalformedSource, what)
	}
	doc := root.Documents[0]
	if len(doc.Folders) != 1 || len(doc.Placemarks) != 0 {
		return nil, fmt.Errorf("%w: expected a single folder of %s", world.ErrMalformedSource, what)
	}
	return doc.Folders[0].Placemarks, nil
}

// tuple is one coordinate entry. The map data stores latitude first and uses
// the third component for a city's population.
type tuple struct {
	lat, lon float64
	extra    float64
	hasExtra bool
}

func parseCoordinates(s string) ([]tuple, error) {
	fields := strings.Fields(s)
	tuples := make([]tuple, 0, len(fields))
	for _, f := range fields {
		parts := strings.Split(f, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("%w: bad coordinate tuple %q", world.ErrMalformedSource, f)
		}
		var t tuple
		var err error
		if t.lat, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return nil, fmt.Errorf("%w: bad latitude %q", world.ErrMalformedSource, parts[0])
		}
		if t.lon, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return nil, fmt.Errorf("%w: bad longitude %q", world.ErrMalformedSource, parts[1])
		}
		if len(parts) == 3 {
			if t.extra, err = strconv.ParseFloat(parts[2], 64); err != nil {
				return nil, fmt.Errorf("%w: bad third component %q", world.ErrMalformedSource, parts[2])
			}
			t.hasExtra = true
		}
		if t.lat < -90 || t.lat > 90 || t.lon < -180 || t.lon > 180 {
			return nil, fmt.Errorf("%w: coordinate %q out of range", world.ErrMalformedSource, f)
		}
		tuples = append(tuples, t)
	}
	return tuples, nil
}

// LoadCitiesKML reads cities from a KML document holding one folder of point
// placemarks. A missing or zero population is recorded as unknown.
func LoadCitiesKML(r io.Reader) ([]*world.Waypoint, error) {
	placemarks, err := folder(r, "cities")
	if err != nil {
		return nil, err
	}

	cities := make([]*world.Waypoint, 0, len(placemarks))
	for _, pm := range placemarks {
		if pm.Point == nil {
			return nil, fmt.Errorf("%w: city %q has no point", world.ErrMalformedSource, pm.Name)
		}
		coords, err := parseCoordinates(pm.Point.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("city %q: %w", pm.Name, err)
		}
		if len(coords) != 1 {
			return nil, fmt.Errorf("%w: expected city %q to have only one set of coordinates", world.ErrMalformedSource, pm.Name)
		}
		c := coords[0]
		population := int64(-1)
		if c.hasExtra && c.extra != 0 {
			population = int64(c.extra)
		}
		cities = append(cities, world.NewCity(strings.TrimSpace(pm.Name), c.lat, c.lon, population))
	}

	log.Printf("Loaded %d cities", len(cities))
	return cities, nil
}

// LoadRiversKML reads rivers from a KML document holding one folder of line
// placemarks drawn in the direction of water flow.
func LoadRiversKML(r io.Reader) ([]*world.River, error) {
	placemarks, err := folder(r, "rivers")
	if err != nil {
		return nil, err
	}

	rivers := make([]*world.River, 0, len(placemarks))
	for _, pm := range placemarks {
		if pm.LineString == nil {
			return nil, fmt.Errorf("%w: river %q has no line", world.ErrMalformedSource, pm.Name)
		}
		coords, err := parseCoordinates(pm.LineString.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("river %q: %w", pm.Name, err)
		}
		points := make([]geo.Point, len(coords))
		for i, c := range coords {
			points[i] = geo.NewPoint(c.lat, c.lon)
		}
		river, err := world.NewRiver(strings.TrimSpace(pm.Name), points)
		if err != nil {
			return nil, err
		}
		rivers = append(rivers, river)
	}

	log.Printf("Loaded %d rivers", len(rivers))
	return rivers, nil
}

// LoadKMLDir loads the cities and rivers files from dir.
func LoadKMLDir(dir, citiesFile, riversFile string) (*world.Geography, error) {
	citiesPath := filepath.Join(dir, citiesFile)
	log.Printf("Loading cities from %s...", citiesPath)
	cities, err := loadFile(citiesPath, LoadCitiesKML)
	if err != nil {
		return nil, err
	}

	riversPath := filepath.Join(dir, riversFile)
	log.Printf("Loading rivers from %s...", riversPath)
	rivers, err := loadFile(riversPath, LoadRiversKML)
	if err != nil {
		return nil, err
	}

	return world.NewGeography(cities, rivers)
}

func loadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	v, err := load(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
