package travel

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrUnknownTravelMode is returned for a mode outside the defined set. It
// signals a programming error, never bad user input.
var ErrUnknownTravelMode = errors.New("unknown travel mode")

// Mode is how an edge is travelled. The zero value is not a valid mode.
type Mode uint8

const (
	Overland Mode = iota + 1
	Upstream
	Downstream
	Sea
)

func (m Mode) String() string {
	switch m {
	case Overland:
		return "OVERLAND"
	case Upstream:
		return "UPSTREAM"
	case Downstream:
		return "DOWNSTREAM"
	case Sea:
		return "SEA"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool { return m >= Overland && m <= Sea }

// IsRiver reports whether m travels along a river.
func (m Mode) IsRiver() bool { return m == Upstream || m == Downstream }

// Speeds holds the speed of each travel mode in miles per day. There is no
// package default; callers always pass one in.
type Speeds struct {
	OverlandMilesPerDay        float64 `yaml:"overlandSpeedMilesPerDay" validate:"gt=0"`
	RiverUpstreamMilesPerDay   float64 `yaml:"riverUpstreamSpeedMilesPerDay" validate:"gt=0"`
	RiverDownstreamMilesPerDay float64 `yaml:"riverDownstreamSpeedMilesPerDay" validate:"gt=0"`
	SeaMilesPerDay             float64 `yaml:"seaSpeedMilesPerDay" validate:"gt=0"`
}

var validate = validator.New()

// Validate checks that every speed is positive.
func (s Speeds) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid speeds: %w", err)
	}
	return nil
}

// Speed returns the speed for mode m in miles per day.
func (s Speeds) Speed(m Mode) (float64, error) {
	switch m {
	case Overland:
		return s.OverlandMilesPerDay, nil
	case Upstream:
		return s.RiverUpstreamMilesPerDay, nil
	case Downstream:
		return s.RiverDownstreamMilesPerDay, nil
	case Sea:
		return s.SeaMilesPerDay, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownTravelMode, m)
	}
}

// TimeFor converts a distance in miles into travel time in days.
func (s Speeds) TimeFor(distanceMiles float64, m Mode) (float64, error) {
	speed, err := s.Speed(m)
	if err != nil {
		return 0, err
	}
	return distanceMiles / speed, nil
}
