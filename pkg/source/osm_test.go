package source

import (
	"context"
	"strings"
	"testing"

	"github.com/paulmach/osm"
)

const testOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="40.0" lon="10.0">
    <tag k="place" v="city"/>
    <tag k="name" v="Almas"/>
    <tag k="population" v="15,000"/>
  </node>
  <node id="2" lat="41.0" lon="11.0">
    <tag k="place" v="village"/>
    <tag k="name" v="Tamran"/>
  </node>
  <node id="3" lat="42.0" lon="12.0">
    <tag k="place" v="hamlet"/>
    <tag k="name" v="Nowhere"/>
  </node>
  <node id="4" lat="43.0" lon="12.0">
    <tag k="place" v="town"/>
  </node>
  <node id="10" lat="44.0" lon="10.0"/>
  <node id="11" lat="44.1" lon="10.2"/>
  <node id="12" lat="44.2" lon="10.4"/>
  <way id="100">
    <nd ref="10"/>
    <nd ref="11"/>
    <nd ref="12"/>
    <tag k="waterway" v="river"/>
    <tag k="name" v="Sellen"/>
  </way>
  <way id="101">
    <nd ref="10"/>
    <nd ref="11"/>
    <tag k="waterway" v="stream"/>
  </way>
  <way id="102">
    <nd ref="12"/>
    <nd ref="99"/>
    <tag k="waterway" v="canal"/>
  </way>
</osm>`

func TestLoadOSMXML(t *testing.T) {
	g, err := LoadOSM(context.Background(), strings.NewReader(testOSM), FormatXML)
	if err != nil {
		t.Fatalf("LoadOSM: %v", err)
	}

	if len(g.Cities) != 2 {
		t.Fatalf("got %d cities, want 2 (named city and village)", len(g.Cities))
	}
	almas, err := g.City("Almas")
	if err != nil {
		t.Fatalf("City(Almas): %v", err)
	}
	if almas.Population != 15000 || !almas.HasPopulation {
		t.Errorf("Almas population = %d (%v), want 15000", almas.Population, almas.HasPopulation)
	}
	tamran, err := g.City("Tamran")
	if err != nil {
		t.Fatalf("City(Tamran): %v", err)
	}
	if tamran.HasPopulation {
		t.Error("Tamran should have unknown population")
	}

	// The canal references a missing node and is dropped.
	if len(g.Rivers) != 1 {
		t.Fatalf("got %d rivers, want 1", len(g.Rivers))
	}
	r := g.Rivers[0]
	if r.Name != "Sellen" || len(r.Points) != 3 {
		t.Fatalf("river = %q with %d points, want Sellen with 3", r.Name, len(r.Points))
	}
	if r.Start().Point.Lat != 44.0 || r.End().Point.Lat != 44.2 {
		t.Errorf("river does not follow way order: %v -> %v", r.Start().Point, r.End().Point)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"data/inner-sea.osm.pbf", FormatPBF, false},
		{"extract.PBF", FormatPBF, false},
		{"map.osm", FormatXML, false},
		{"map.xml", FormatXML, false},
		{"cities.kml", 0, true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) err = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestIsSettlement(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{
			name: "named city",
			tags: osm.Tags{{Key: "place", Value: "city"}, {Key: "name", Value: "Almas"}},
			want: true,
		},
		{
			name: "named town",
			tags: osm.Tags{{Key: "place", Value: "town"}, {Key: "name", Value: "Ravounel"}},
			want: true,
		},
		{
			name: "unnamed village",
			tags: osm.Tags{{Key: "place", Value: "village"}},
			want: false,
		},
		{
			name: "hamlet",
			tags: osm.Tags{{Key: "place", Value: "hamlet"}, {Key: "name", Value: "Tiny"}},
			want: false,
		},
		{
			name: "no place tag",
			tags: osm.Tags{{Key: "name", Value: "Some Inn"}},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSettlement(tt.tags); got != tt.want {
				t.Errorf("isSettlement() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRiver(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"river", true},
		{"canal", true},
		{"stream", false},
		{"ditch", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isRiver(osm.Tags{{Key: "waterway", Value: tt.value}}); got != tt.want {
			t.Errorf("isRiver(waterway=%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParsePopulation(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"15000", 15000},
		{"15,000", 15000},
		{"1 200", 1200},
		{"", -1},
		{"about 300", -1},
		{"-5", -1},
	}
	for _, tt := range tests {
		if got := parsePopulation(tt.in); got != tt.want {
			t.Errorf("parsePopulation(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
