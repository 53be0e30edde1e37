package model

import (
	"fmt"
	"time"
)

// Snapshot is the telemetry derived from one feed poll for the watched aircraft.
type Snapshot struct {
	ICAO           string    `json:"icao"`
	Altitude       float64   `json:"altitude_ft"`
	HasAltitude    bool      `json:"has_altitude"`
	GroundSpeed    float64   `json:"ground_speed_kts"`
	HasGroundSpeed bool      `json:"has_ground_speed"`
	Registration   string    `json:"registration"`
	FlightID       string    `json:"flight_id"`
	ObservedAt     time.Time `json:"observed_at"`
}

// State is the singleton record persisted between runs.
type State struct {
	LastFlight *string `json:"last_flight" yaml:"last_flight"`
	Airborne   bool    `json:"airborne" yaml:"airborne"`
}

// DefaultState returns the state used when nothing has been persisted yet.
func DefaultState() *State {
	return &State{}
}

// LastFlightID returns the last seen flight identifier, or "" if none.
func (s *State) LastFlightID() string {
	if s == nil || s.LastFlight == nil {
		return ""
	}
	return *s.LastFlight
}

// AlertKind distinguishes why an alert fired.
type AlertKind string

const (
	AlertTakeoff   AlertKind = "takeoff"    // Ground -> airborne transition
	AlertNewFlight AlertKind = "new_flight" // Still airborne, new flight identifier
)

// AlertRecord is a notification that was actually delivered.
type AlertRecord struct {
	ID             string    `json:"id" yaml:"id" db:"id"`
	ICAO           string    `json:"icao" yaml:"icao" db:"icao"`
	FlightID       string    `json:"flight_id" yaml:"flight_id" db:"flight_id"`
	Registration   string    `json:"registration" yaml:"registration" db:"registration"`
	Kind           AlertKind `json:"kind" yaml:"kind" db:"kind"`
	AltitudeFt     int64     `json:"altitude_ft" yaml:"altitude_ft" db:"altitude_ft"`
	GroundSpeedKts int64     `json:"ground_speed_kts" yaml:"ground_speed_kts" db:"ground_speed_kts"`
	Message        string    `json:"message" yaml:"message" db:"message"`
	SentAt         time.Time `json:"sent_at" yaml:"sent_at" db:"sent_at"`
}

// HourBucket returns the number of whole hours since the Unix epoch.
func HourBucket(t time.Time) int64 {
	return t.Unix() / 3600
}

// FallbackFlightID builds the identifier used when the feed reports no callsign.
// Polls within the same clock hour share an identifier.
func FallbackFlightID(icao string, t time.Time) string {
	return fmt.Sprintf("%s-%d", icao, HourBucket(t))
}
