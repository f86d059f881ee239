package config

import (
	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/travel"
)

// SourcesConfig locates the geography input files.
type SourcesConfig struct {
	Dir    string `yaml:"dir"`
	Cities string `yaml:"cities"`
	Rivers string `yaml:"rivers"`
	OSM    string `yaml:"osm"` // optional; replaces the KML files when set
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port         int     `yaml:"port" validate:"gte=0,lte=65535"`
	CORSOrigin   string  `yaml:"corsOrigin"`
	MaxSnapMiles float64 `yaml:"maxSnapMiles" validate:"gte=0"`
}

// Config is the root configuration structure.
type Config struct {
	Speeds  travel.Speeds `yaml:"speeds"`
	Graph   graph.Options `yaml:"graph"`
	Sources SourcesConfig `yaml:"sources"`
	Server  ServerConfig  `yaml:"server"`
}
