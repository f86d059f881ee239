package routing

import (
	"bufio"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"waypoint_router/pkg/world"
)

// WriteText writes the itinerary as one instruction per line:
//
//	Start in Almas
//	Travel from Almas to the Sellen (1.00, 0.00) by OVERLAND (3.51 days)
//	Travel from the Sellen (1.00, 0.00) to the Sellen (1.00, 0.50) by DOWNSTREAM on the Sellen (0.87 days)
//	Arrive in Absalom after 7.25 days
func (it *Itinerary) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Start in %s\n", place(&it.Origin))
	for i := range it.Steps {
		s := &it.Steps[i]
		fmt.Fprintf(bw, "Travel from %s to %s by %s", place(&s.From), place(&s.To), s.Mode)
		if s.OnRiver && s.Mode.IsRiver() {
			fmt.Fprintf(bw, " on %s", riverName(s.River))
		}
		fmt.Fprintf(bw, " (%.2f days)\n", s.Days)
	}
	fmt.Fprintf(bw, "Arrive in %s after %.2f days\n", place(&it.Destination), it.TotalDays)
	return bw.Flush()
}

func place(w *world.Waypoint) string {
	if w.Kind == world.KindCity {
		return w.Name
	}
	return fmt.Sprintf("%s (%.2f, %.2f)", riverName(w.River), w.Point.Lat, w.Point.Lon)
}

func riverName(name string) string {
	if name == "" {
		return "an unnamed river"
	}
	return "the " + name
}

// GeoJSON renders each step as a LineString feature through every waypoint
// it passes. Origin and destination are added as Point features.
func (it *Itinerary) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	origin := geojson.NewFeature(it.Origin.Point.Orb())
	origin.Properties["role"] = "origin"
	origin.Properties["name"] = it.Origin.Label()
	fc.Append(origin)

	for i := range it.Steps {
		s := &it.Steps[i]
		line := make(orb.LineString, len(s.Points))
		for j, p := range s.Points {
			line[j] = p.Orb()
		}
		f := geojson.NewFeature(line)
		f.Properties["role"] = "step"
		f.Properties["from"] = s.From.Label()
		f.Properties["to"] = s.To.Label()
		f.Properties["mode"] = s.Mode.String()
		f.Properties["miles"] = s.DistanceMiles
		f.Properties["days"] = s.Days
		if s.OnRiver {
			f.Properties["river"] = world.RiverLabel(s.River)
		}
		fc.Append(f)
	}

	dest := geojson.NewFeature(it.Destination.Point.Orb())
	dest.Properties["role"] = "destination"
	dest.Properties["name"] = it.Destination.Label()
	fc.Append(dest)
	return fc
}
