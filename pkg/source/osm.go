package source

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"waypoint_router/pkg/geo"
	"waypoint_router/pkg/world"
)

// Format identifies an OSM file encoding.
type Format int

const (
	FormatPBF Format = iota
	FormatXML
)

// FormatFromPath guesses the encoding from the file name.
func FormatFromPath(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".osm.pbf"), strings.HasSuffix(name, ".pbf"):
		return FormatPBF, nil
	case strings.HasSuffix(name, ".osm"), strings.HasSuffix(name, ".xml"):
		return FormatXML, nil
	default:
		return 0, fmt.Errorf("unrecognised OSM file extension: %s", path)
	}
}

// settlementPlaces lists place tag values loaded as cities.
var settlementPlaces = map[string]bool{
	"city":    true,
	"town":    true,
	"village": true,
}

// riverWaterways lists waterway tag values loaded as rivers.
var riverWaterways = map[string]bool{
	"river": true,
	"canal": true,
}

// isSettlement returns true if the node is a named populated place.
func isSettlement(tags osm.Tags) bool {
	return settlementPlaces[tags.Find("place")] && tags.Find("name") != ""
}

// isRiver returns true if the way is a navigable waterway.
func isRiver(tags osm.Tags) bool {
	return riverWaterways[tags.Find("waterway")]
}

// parsePopulation reads a population tag, tolerating thousands separators.
// It returns -1 when the tag is missing or unreadable.
func parsePopulation(v string) int64 {
	v = strings.NewReplacer(",", "", " ", "", "_", "").Replace(v)
	if v == "" {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// riverWay holds a waterway collected during Pass 1.
type riverWay struct {
	Name    string
	NodeIDs []osm.NodeID
}

func newScanner(ctx context.Context, r io.Reader, format Format, skipNodes, skipWays bool) osm.Scanner {
	if format == FormatXML {
		return osmxml.New(ctx, r)
	}
	s := osmpbf.New(ctx, r, 1)
	s.SkipNodes = skipNodes
	s.SkipWays = skipWays
	s.SkipRelations = true
	return s
}

// LoadOSM reads settlements and rivers from an OSM extract. OSM waterways are
// drawn in the direction of flow, which is what the river model expects.
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func LoadOSM(ctx context.Context, rs io.ReadSeeker, format Format) (*world.Geography, error) {
	// Pass 1: Scan ways to collect waterways and their node IDs.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []riverWay

	scanner := newScanner(ctx, rs, format, true, false)
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isRiver(w.Tags) || len(w.Nodes) < 2 {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}
		ways = append(ways, riverWay{Name: w.Tags.Find("name"), NodeIDs: nodeIDs})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d waterways, %d referenced nodes", len(ways), len(referencedNodes))

	// Pass 2: Scan nodes for settlements and waterway coordinates.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	coords := make(map[osm.NodeID]geo.Point, len(referencedNodes))
	var cities []*world.Waypoint

	scanner = newScanner(ctx, rs, format, false, true)
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if isSettlement(n.Tags) {
			cities = append(cities, world.NewCity(n.Tags.Find("name"), n.Lat, n.Lon, parsePopulation(n.Tags.Find("population"))))
		}
		if _, needed := referencedNodes[n.ID]; needed {
			coords[n.ID] = geo.NewPoint(n.Lat, n.Lon)
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d settlements, %d node coordinates collected", len(cities), len(coords))

	// Build rivers from ways.
	rivers := make([]*world.River, 0, len(ways))
	var skippedPoints, skippedWays int
	for _, w := range ways {
		points := make([]geo.Point, 0, len(w.NodeIDs))
		for _, id := range w.NodeIDs {
			p, ok := coords[id]
			if !ok {
				skippedPoints++
				continue
			}
			points = append(points, p)
		}
		if len(points) < 2 {
			skippedWays++
			continue
		}
		river, err := world.NewRiver(w.Name, points)
		if err != nil {
			return nil, err
		}
		rivers = append(rivers, river)
	}

	if skippedPoints > 0 {
		log.Printf("Warning: skipped %d waterway points due to missing node coordinates", skippedPoints)
	}
	if skippedWays > 0 {
		log.Printf("Warning: dropped %d waterways with fewer than two known points", skippedWays)
	}
	log.Printf("Built %d rivers", len(rivers))

	return world.NewGeography(cities, rivers)
}
