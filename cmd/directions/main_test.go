package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"waypoint_router/pkg/graph"
	"waypoint_router/pkg/routing"
	"waypoint_router/pkg/travel"
	"waypoint_router/pkg/world"
)

func testEngine(t *testing.T) *routing.Engine {
	t.Helper()
	nodes := []world.Waypoint{
		*world.NewCity("Almas", 40, 10, 15000),
		*world.NewCity("Oppara", 38.5, 12, -1),
		*world.NewCity("Island", 10, 60, -1),
	}
	g := graph.New(nodes, []graph.Edge{
		{From: 0, To: 1, Miles: 100, Mode: travel.Overland},
		{From: 1, To: 0, Miles: 100, Mode: travel.Overland},
	})
	err := g.DecorateWithTravelTime(travel.Speeds{
		OverlandMilesPerDay:        20,
		RiverUpstreamMilesPerDay:   15,
		RiverDownstreamMilesPerDay: 40,
		SeaMilesPerDay:             100,
	})
	if err != nil {
		t.Fatal(err)
	}
	e, err := routing.NewEngine(g)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestRunPromptsUntilKnownCity(t *testing.T) {
	in := strings.NewReader("Atlantis\n  Almas \nOppara\n")
	var out bytes.Buffer

	if err := run(context.Background(), in, &out, testEngine(t), "", "", false); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		`I don't know a city called "Atlantis".`,
		"Start in Almas",
		"Travel from Almas to Oppara by OVERLAND (5.00 days)",
		"Arrive in Oppara after 5.00 days",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "Where are you starting? "); n != 2 {
		t.Errorf("asked for the start %d times, want 2", n)
	}
}

func TestRunFlagsSkipPrompt(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(""), &out, testEngine(t), "Oppara", "Almas", false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(out.String(), "Where are you") {
		t.Errorf("prompted although both cities were given:\n%s", out.String())
	}
}

func TestRunSameCity(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(""), &out, testEngine(t), "Almas", "Almas", false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "You are already in Almas.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunNoPath(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(""), &out, testEngine(t), "Almas", "Island", false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "no way to travel from Almas to Island") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunGeoJSON(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(""), &out, testEngine(t), "Almas", "Oppara", true); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `"FeatureCollection"`) {
		t.Errorf("output is not GeoJSON:\n%s", out.String())
	}
}

func TestRunInputExhausted(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), strings.NewReader("Atlantis\n"), &out, testEngine(t), "", "", false)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}
