// Command directions prints travel directions between two cities.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"waypoint_router/pkg/config"
	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/routing"
	"waypoint_router/pkg/world"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to YAML config (travel speeds are required)")
	graphPath := flag.String("graph", "", "Path to preprocessed graph binary (default: build from the configured sources)")
	from := flag.String("from", "", "Starting city (prompted for when empty)")
	to := flag.String("to", "", "Destination city (prompted for when empty)")
	asGeoJSON := flag.Bool("geojson", false, "Print the itinerary as GeoJSON")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	g, err := loadGraph(ctx, cfg, *graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	if err := g.DecorateWithTravelTime(cfg.Speeds); err != nil {
		log.Fatalf("Failed to compute travel times: %v", err)
	}
	engine, err := routing.NewEngine(g)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	if err := run(ctx, os.Stdin, os.Stdout, engine, *from, *to, *asGeoJSON); err != nil {
		log.Fatal(err)
	}
}

func loadGraph(ctx context.Context, cfg *config.Config, path string) (*graph.Graph, error) {
	if path != "" {
		log.Printf("Loading graph from %s...", path)
		return graph.ReadBinary(path)
	}
	geography, err := cfg.Sources.LoadGeography(ctx)
	if err != nil {
		return nil, err
	}
	return graph.Build(ctx, geography, cfg.Graph)
}

// run resolves both endpoints, asking on in when they were not given, and
// writes the itinerary to out.
func run(ctx context.Context, in io.Reader, out io.Writer, engine *routing.Engine, from, to string, asGeoJSON bool) error {
	sc := bufio.NewScanner(in)
	g := engine.Graph()

	var err error
	if from, err = resolveCity(sc, out, g, from, "Where are you starting? "); err != nil {
		return err
	}
	if to, err = resolveCity(sc, out, g, to, "Where are you going? "); err != nil {
		return err
	}

	it, err := engine.FindRoute(ctx, from, to)
	if errors.Is(err, routing.ErrNoPath) {
		fmt.Fprintf(out, "There is no way to travel from %s to %s.\n", from, to)
		return nil
	}
	if err != nil {
		return err
	}

	if asGeoJSON {
		data, err := json.MarshalIndent(it.GeoJSON(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	if len(it.Steps) == 0 {
		fmt.Fprintf(out, "You are already in %s.\n", it.Origin.Label())
		return nil
	}
	return it.WriteText(out)
}

// resolveCity returns name if it is a known city. Otherwise it keeps asking
// until the answer is one.
func resolveCity(sc *bufio.Scanner, out io.Writer, g *graph.Graph, name, question string) (string, error) {
	for {
		if name != "" {
			_, err := g.CityID(name)
			if err == nil {
				return name, nil
			}
			if !errors.Is(err, world.ErrUnknownCity) {
				return "", err
			}
			fmt.Fprintf(out, "I don't know a city called %q.\n", name)
		}

		fmt.Fprint(out, question)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		name = strings.TrimSpace(sc.Text())
	}
}
