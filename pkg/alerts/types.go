package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/ogulcanaydogan/airwatch/pkg/model"
)

// Alert is a takeoff notification for the watched aircraft.
type Alert struct {
	Kind           model.AlertKind `json:"kind"`
	ICAO           string          `json:"icao"`
	Registration   string          `json:"registration"`
	FlightID       string          `json:"flight_id"`
	AltitudeFt     int64           `json:"altitude_ft"`
	GroundSpeedKts int64           `json:"ground_speed_kts"`
	Message        string          `json:"message"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewAlert builds an alert from a snapshot. Altitude and ground speed are
// truncated to whole feet and knots.
func NewAlert(kind model.AlertKind, snap *model.Snapshot) Alert {
	a := Alert{
		Kind:           kind,
		ICAO:           snap.ICAO,
		Registration:   snap.Registration,
		FlightID:       snap.FlightID,
		AltitudeFt:     int64(snap.Altitude),
		GroundSpeedKts: int64(snap.GroundSpeed),
		Timestamp:      snap.ObservedAt,
	}
	a.Message = FormatMessage(a)
	return a
}

// FormatMessage renders the Markdown text sent to chat sinks.
func FormatMessage(a Alert) string {
	return fmt.Sprintf("✈️ *%s* (%s) is airborne - Alt: %d ft, GS: %d kts",
		a.Registration, a.ICAO, a.AltitudeFt, a.GroundSpeedKts)
}

// TrackURL links to a live map centred on the aircraft.
func TrackURL(icao string) string {
	return "https://globe.adsbexchange.com/?icao=" + icao
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert synchronously. A nil error means the sink accepted it.
	Send(ctx context.Context, alert Alert) error
}
