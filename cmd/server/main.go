package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"waypoint_router/pkg/api"
	"waypoint_router/pkg/config"
	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/routing"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph binary")
	configPath := flag.String("config", config.DefaultPath, "Path to YAML config (travel speeds are required)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (overrides config; empty = same-origin)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *corsOrigin != "" {
		cfg.Server.CORSOrigin = *corsOrigin
	}

	start := time.Now()

	// Load graph.
	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	// Travel times depend on the configured speeds, so they are computed at
	// load rather than stored.
	if err := g.DecorateWithTravelTime(cfg.Speeds); err != nil {
		log.Fatalf("Failed to compute travel times: %v", err)
	}

	// Build routing engine.
	log.Println("Building city spatial index...")
	engine, err := routing.NewEngineWithSnapRadius(g, cfg.Server.MaxSnapMiles)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	// Setup HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	serverCfg := api.DefaultConfig(addr)
	serverCfg.CORSOrigin = cfg.Server.CORSOrigin

	handlers := api.NewHandlers(engine, api.NewStats(g))
	srv := api.NewServer(serverCfg, handlers)

	if err := api.ListenAndServe(context.Background(), srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
