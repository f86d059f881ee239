package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"waypoint_router/pkg/config"
	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/source"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional; supplies sources and graph fan-out)")
	dataDir := flag.String("data", "", "Directory holding the city and river KML files")
	osmPath := flag.String("osm", "", "Path to .osm.pbf or .osm file (overrides the KML files)")
	output := flag.String("output", "graph.bin", "Output binary graph file path")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	sources := config.SourcesConfig{
		Dir:    "data",
		Cities: source.DefaultCitiesFile,
		Rivers: source.DefaultRiversFile,
	}
	opts := graph.DefaultOptions()
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		sources, opts = cfg.Sources, cfg.Graph
	}
	if *dataDir != "" {
		sources.Dir = *dataDir
	}
	if *osmPath != "" {
		sources.OSM = *osmPath
	}

	start := time.Now()
	ctx := context.Background()

	// Step 1: Load geography.
	geography, err := sources.LoadGeography(ctx)
	if err != nil {
		log.Fatalf("Failed to load geography: %v", err)
	}
	log.Printf("Geography: %d cities, %d rivers, %d river points",
		len(geography.Cities), len(geography.Rivers), geography.NumRiverPoints())

	// Step 2: Build graph.
	log.Println("Building waypoint graph...")
	g, err := graph.Build(ctx, geography, opts)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	for mode, n := range g.CountByMode() {
		log.Printf("  %s: %d edges", mode, n)
	}

	// Step 3: Report connectivity. Every waypoint is kept so that any city
	// can be named in a query; unreachable pairs fail fast at query time.
	if g.NumNodes > 0 {
		largest := graph.LargestComponent(g)
		log.Printf("Components: %d; largest has %d nodes (%.1f%%)",
			graph.NumComponents(g), len(largest), float64(len(largest))/float64(g.NumNodes)*100)
	}

	// Step 4: Serialize to binary.
	log.Printf("Writing binary to %s...", *output)
	if err := graph.WriteBinary(*output, g); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Millisecond), *output, float64(info.Size())/(1024*1024))
}
