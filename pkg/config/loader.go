// Package config loads the YAML configuration shared by the binaries.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/routing"
	"waypoint_router/pkg/source"
)

// DefaultPath is the config shipped at the repository root. Copy it and pass
// -config to use your own speeds and sources.
const DefaultPath = "config.example.yml"

const (
	defaultDataDir = "data"
	defaultPort    = 8080
)

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document, fills in defaults and validates the result.
// Travel speeds have no default and must be given explicitly.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg.applyDefaults()

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := graph.DefaultOptions()
	if c.Graph.CityNeighbors == 0 {
		c.Graph.CityNeighbors = def.CityNeighbors
	}
	if c.Graph.EndpointNeighbors == 0 {
		c.Graph.EndpointNeighbors = def.EndpointNeighbors
	}
	if c.Graph.CityRiverNeighbors == 0 {
		c.Graph.CityRiverNeighbors = def.CityRiverNeighbors
	}

	if c.Sources.Dir == "" {
		c.Sources.Dir = defaultDataDir
	}
	if c.Sources.Cities == "" {
		c.Sources.Cities = source.DefaultCitiesFile
	}
	if c.Sources.Rivers == "" {
		c.Sources.Rivers = source.DefaultRiversFile
	}

	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxSnapMiles == 0 {
		c.Server.MaxSnapMiles = routing.DefaultMaxSnapMiles
	}
}
