package graph_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"waypoint_router/pkg/geo"
	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/world"
)

func buildSmallGraph(t *testing.T) *graph.Graph {
	t.Helper()
	cities := []*world.Waypoint{
		world.NewCity("Absalom", 1.0, 103.0, 300000),
		world.NewCity("Almas", 1.5, 103.5, -1),
	}
	river, err := world.NewRiver("", []geo.Point{geo.NewPoint(1.1, 103.1), geo.NewPoint(1.2, 103.2), geo.NewPoint(1.3, 103.3)})
	if err != nil {
		t.Fatal(err)
	}
	geog, err := world.NewGeography(cities, []*world.River{river})
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.Build(context.Background(), geog, graph.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestBinaryRoundTrip(t *testing.T) {
	original := buildSmallGraph(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.graph.bin")

	if err := graph.WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	loaded, err := graph.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if loaded.NumNodes != original.NumNodes || loaded.NumEdges != original.NumEdges {
		t.Fatalf("sizes: got %d/%d, want %d/%d", loaded.NumNodes, loaded.NumEdges, original.NumNodes, original.NumEdges)
	}

	for i := range original.Nodes {
		if loaded.Nodes[i] != original.Nodes[i] {
			t.Errorf("Nodes[%d]: got %+v, want %+v", i, loaded.Nodes[i], original.Nodes[i])
		}
	}

	for i := range original.Head {
		if loaded.Head[i] != original.Head[i] ||
			loaded.Distance[i] != original.Distance[i] ||
			loaded.Mode[i] != original.Mode[i] {
			t.Errorf("edge %d differs after round trip", i)
		}
	}

	// Travel times are derived, not stored.
	if loaded.Decorated() {
		t.Error("loaded graph should not carry travel times")
	}

	if id, err := loaded.CityID("Almas"); err != nil || id != 1 {
		t.Errorf("CityID(Almas) = %d, %v; want 1", id, err)
	}
	if len(loaded.Component) != int(loaded.NumNodes) {
		t.Errorf("Component labels not rebuilt: len %d", len(loaded.Component))
	}
}

func TestBinaryInvalidMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.graph.bin")
	os.WriteFile(path, []byte("NOT_A_WAYPOINT_HEADER_BLAH_BLAH_MORE_DATA"), 0644)

	_, err := graph.ReadBinary(path)
	if err == nil {
		t.Fatal("expected error for invalid magic bytes")
	}
}

func TestBinaryTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.graph.bin")
	os.WriteFile(path, []byte("WAYPOINT"), 0644)

	_, err := graph.ReadBinary(path)
	if err == nil {
		t.Fatal("expected error for truncated file")
	}
}

func TestBinaryCorruptedPayload(t *testing.T) {
	g := buildSmallGraph(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.graph.bin")
	if err := graph.WriteBinary(path, g); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a byte inside the latitude array, past the 24-byte header and the
	// kind bytes.
	data[24+int(g.NumNodes)+3] ^= 0xFF
	os.WriteFile(path, data, 0644)

	if _, err := graph.ReadBinary(path); err == nil {
		t.Fatal("expected CRC error for corrupted payload")
	}
}
