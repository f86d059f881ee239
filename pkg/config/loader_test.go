package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"

	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/routing"
	"waypoint_router/pkg/source"
)

const fullConfig = `
speeds:
  overlandSpeedMilesPerDay: 20
  riverUpstreamSpeedMilesPerDay: 15
  riverDownstreamSpeedMilesPerDay: 40
  seaSpeedMilesPerDay: 100
graph:
  cityNeighbors: 12
  endpointNeighbors: 4
  cityRiverNeighbors: 8
sources:
  dir: maps
  cities: cities.kml
  rivers: rivers.kml
server:
  port: 9090
  corsOrigin: "https://example.com"
  maxSnapMiles: 25
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Speeds.OverlandMilesPerDay != 20 || cfg.Speeds.RiverUpstreamMilesPerDay != 15 ||
		cfg.Speeds.RiverDownstreamMilesPerDay != 40 || cfg.Speeds.SeaMilesPerDay != 100 {
		t.Errorf("Speeds = %+v", cfg.Speeds)
	}
	if want := (graph.Options{CityNeighbors: 12, EndpointNeighbors: 4, CityRiverNeighbors: 8}); cfg.Graph != want {
		t.Errorf("Graph = %+v, want %+v", cfg.Graph, want)
	}
	if cfg.Sources.Dir != "maps" || cfg.Sources.Cities != "cities.kml" || cfg.Sources.Rivers != "rivers.kml" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if cfg.Server.Port != 9090 || cfg.Server.CORSOrigin != "https://example.com" || cfg.Server.MaxSnapMiles != 25 {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
speeds:
  overlandSpeedMilesPerDay: 20
  riverUpstreamSpeedMilesPerDay: 15
  riverDownstreamSpeedMilesPerDay: 40
  seaSpeedMilesPerDay: 100
graph:
  endpointNeighbors: 5
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	def := graph.DefaultOptions()
	if cfg.Graph.CityNeighbors != def.CityNeighbors || cfg.Graph.CityRiverNeighbors != def.CityRiverNeighbors {
		t.Errorf("Graph = %+v, want defaults for unset fields", cfg.Graph)
	}
	if cfg.Graph.EndpointNeighbors != 5 {
		t.Errorf("EndpointNeighbors = %d, want 5", cfg.Graph.EndpointNeighbors)
	}
	if cfg.Sources.Dir != "data" || cfg.Sources.Cities != source.DefaultCitiesFile || cfg.Sources.Rivers != source.DefaultRiversFile {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if cfg.Server.Port != 8080 || cfg.Server.MaxSnapMiles != routing.DefaultMaxSnapMiles {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing speeds",
			body: "server:\n  port: 8080\n",
		},
		{
			name: "empty document",
			body: "",
		},
		{
			name: "negative speed",
			body: `
speeds:
  overlandSpeedMilesPerDay: -20
  riverUpstreamSpeedMilesPerDay: 15
  riverDownstreamSpeedMilesPerDay: 40
  seaSpeedMilesPerDay: 100
`,
		},
		{
			name: "negative fan-out",
			body: `
speeds:
  overlandSpeedMilesPerDay: 20
  riverUpstreamSpeedMilesPerDay: 15
  riverDownstreamSpeedMilesPerDay: 40
  seaSpeedMilesPerDay: 100
graph:
  endpointNeighbors: -3
`,
		},
		{
			name: "port out of range",
			body: `
speeds:
  overlandSpeedMilesPerDay: 20
  riverUpstreamSpeedMilesPerDay: 15
  riverDownstreamSpeedMilesPerDay: 40
  seaSpeedMilesPerDay: 100
server:
  port: 70000
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Errorf("err = %v, want validation errors", err)
			}
		})
	}
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("speeds:\n  overlandSpeed: 20\n"))
	if err == nil {
		t.Fatal("expected error for a misspelled key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestExampleConfigLoads(t *testing.T) {
	if _, err := Load(filepath.Join("..", "..", DefaultPath)); err != nil {
		t.Fatalf("%s: %v", DefaultPath, err)
	}
}

func TestLoadGeographyKML(t *testing.T) {
	dir := t.TempDir()
	cities := `<kml><Document><Folder>
<Placemark><name>Almas</name><Point><coordinates>40,10,15000</coordinates></Point></Placemark>
</Folder></Document></kml>`
	rivers := `<kml><Document><Folder>
<Placemark><name>Sellen</name><LineString><coordinates>41,10,0 40.5,10.5,0</coordinates></LineString></Placemark>
</Folder></Document></kml>`
	if err := os.WriteFile(filepath.Join(dir, "c.kml"), []byte(cities), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "r.kml"), []byte(rivers), 0o644); err != nil {
		t.Fatal(err)
	}

	s := SourcesConfig{Dir: dir, Cities: "c.kml", Rivers: "r.kml"}
	g, err := s.LoadGeography(context.Background())
	if err != nil {
		t.Fatalf("LoadGeography: %v", err)
	}
	if len(g.Cities) != 1 || len(g.Rivers) != 1 {
		t.Errorf("got %d cities and %d rivers, want 1 and 1", len(g.Cities), len(g.Rivers))
	}
}

func TestLoadGeographyOSM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.osm")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="40.0" lon="10.0"><tag k="place" v="town"/><tag k="name" v="Almas"/></node>
</osm>`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := SourcesConfig{OSM: path}.LoadGeography(context.Background())
	if err != nil {
		t.Fatalf("LoadGeography: %v", err)
	}
	if len(g.Cities) != 1 || len(g.Rivers) != 0 {
		t.Errorf("got %d cities and %d rivers, want 1 and 0", len(g.Cities), len(g.Rivers))
	}
}
