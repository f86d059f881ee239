package config

import (
	"context"
	"fmt"
	"log"
	"os"

	"waypoint_router/pkg/source"
	"waypoint_router/pkg/world"
)

// LoadGeography reads the configured map data. An OSM extract takes
// precedence over the KML files.
func (s SourcesConfig) LoadGeography(ctx context.Context) (*world.Geography, error) {
	if s.OSM == "" {
		return source.LoadKMLDir(s.Dir, s.Cities, s.Rivers)
	}

	format, err := source.FormatFromPath(s.OSM)
	if err != nil {
		return nil, err
	}
	log.Printf("Opening OSM file %s...", s.OSM)
	f, err := os.Open(s.OSM)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := source.LoadOSM(ctx, f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.OSM, err)
	}
	return g, nil
}
