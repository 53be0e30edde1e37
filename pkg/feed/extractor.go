package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogulcanaydogan/airwatch/pkg/model"
)

var (
	// ErrNoAircraft means the feed answered but listed no aircraft.
	ErrNoAircraft = errors.New("feed: no aircraft in response")

	// ErrMalformed means the feed body could not be decoded.
	ErrMalformed = errors.New("feed: malformed response")
)

// Response is the ADSBexchange-style envelope. Aircraft live under "ac".
type Response struct {
	Aircraft []Record `json:"ac"`
	Now      float64  `json:"now,omitempty"`
	Total    int      `json:"total,omitempty"`
}

// Record is a single aircraft entry. Pointer fields are nil when the feed omits them,
// so a reported zero is kept distinct from a missing value.
type Record struct {
	Hex          string    `json:"hex,omitempty"`
	AltBaro      *Altitude `json:"alt_baro,omitempty"`
	GeoAltitude  *float64  `json:"geoaltitude,omitempty"`
	AltGeom      *float64  `json:"alt_geom,omitempty"`
	GroundSpeed  *float64  `json:"gs,omitempty"`
	Registration *string   `json:"r,omitempty"`
	Callsign     *string   `json:"flight,omitempty"`
}

// Altitude is a barometric altitude in feet. ADSBexchange reports the string
// "ground" for aircraft on the ground, which decodes to 0.
type Altitude float64

// UnmarshalJSON accepts a number or the literal string "ground".
func (a *Altitude) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(s), "ground") {
			*a = 0
			return nil
		}
		return fmt.Errorf("unexpected altitude %q", s)
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = Altitude(f)
	return nil
}

// Extract decodes a feed body and returns the first aircraft record.
func Extract(body []byte) (*Record, error) {
	if b := bytes.TrimSpace(body); len(b) == 0 || b[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(resp.Aircraft) == 0 {
		return nil, ErrNoAircraft
	}
	return &resp.Aircraft[0], nil
}

// Snapshot derives the telemetry for a record. icao is the configured address,
// used for the registration and flight identifier fallbacks.
func (r *Record) Snapshot(icao string, now time.Time) *model.Snapshot {
	snap := &model.Snapshot{
		ICAO:       icao,
		ObservedAt: now,
	}

	switch {
	case r.AltBaro != nil:
		snap.Altitude, snap.HasAltitude = float64(*r.AltBaro), true
	case r.GeoAltitude != nil:
		snap.Altitude, snap.HasAltitude = *r.GeoAltitude, true
	case r.AltGeom != nil:
		snap.Altitude, snap.HasAltitude = *r.AltGeom, true
	}

	if r.GroundSpeed != nil {
		snap.GroundSpeed, snap.HasGroundSpeed = *r.GroundSpeed, true
	}

	callsign := trimmed(r.Callsign)
	snap.Registration = firstNonEmpty(trimmed(r.Registration), callsign, icao)

	snap.FlightID = callsign
	if snap.FlightID == "" {
		snap.FlightID = model.FallbackFlightID(icao, now)
	}

	return snap
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
