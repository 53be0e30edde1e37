package tracker

import "github.com/ogulcanaydogan/airwatch/pkg/model"

// DefaultMinGroundSpeed is the ground speed in knots at or above which an
// aircraft counts as airborne.
const DefaultMinGroundSpeed = 40

// Decision is the outcome of comparing a snapshot against the previous state.
type Decision struct {
	Airborne bool
	Alert    bool
	Kind     model.AlertKind
	Next     model.State
}

// IsAirborne reports whether either metric indicates flight. Missing values
// never count; a reported zero is a real reading.
func IsAirborne(snap *model.Snapshot, minGroundSpeed float64) bool {
	if snap.HasAltitude && snap.Altitude > 0 {
		return true
	}
	return snap.HasGroundSpeed && snap.GroundSpeed >= minGroundSpeed
}

// ShouldAlert fires on the transition into flight, or when a new flight
// identifier shows up while already airborne.
func ShouldAlert(prev *model.State, airborne bool, flightID string) bool {
	if !airborne {
		return false
	}
	return !prev.Airborne || prev.LastFlight == nil || *prev.LastFlight != flightID
}

// Decide evaluates a snapshot. Next always carries the fresh observation,
// whether or not an alert fires.
func Decide(prev *model.State, snap *model.Snapshot, minGroundSpeed float64) Decision {
	if prev == nil {
		prev = model.DefaultState()
	}

	airborne := IsAirborne(snap, minGroundSpeed)
	flightID := snap.FlightID

	d := Decision{
		Airborne: airborne,
		Alert:    ShouldAlert(prev, airborne, flightID),
		Next: model.State{
			LastFlight: &flightID,
			Airborne:   airborne,
		},
	}
	if d.Alert {
		d.Kind = model.AlertTakeoff
		if prev.Airborne {
			d.Kind = model.AlertNewFlight
		}
	}
	return d
}
