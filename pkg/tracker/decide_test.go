package tracker_test

import (
	"testing"
	"time"

	"github.com/ogulcanaydogan/airwatch/pkg/model"
	"github.com/ogulcanaydogan/airwatch/pkg/tracker"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func snapshot(alt, gs *float64, flight string) *model.Snapshot {
	s := &model.Snapshot{
		ICAO:         "3c6444",
		Registration: "D-AIBA",
		FlightID:     flight,
		ObservedAt:   time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC),
	}
	if alt != nil {
		s.Altitude, s.HasAltitude = *alt, true
	}
	if gs != nil {
		s.GroundSpeed, s.HasGroundSpeed = *gs, true
	}
	return s
}

func f(v float64) *float64 { return &v }

func TestIsAirborne(t *testing.T) {
	tests := []struct {
		name string
		alt  *float64
		gs   *float64
		want bool
	}{
		{"both absent", nil, nil, false},
		{"on ground", f(0), f(0), false},
		{"taxiing", f(0), f(25), false},
		{"altitude only", f(1500), nil, true},
		{"speed at threshold", nil, f(40), true},
		{"speed below threshold", nil, f(39.9), false},
		{"negative altitude fast roll", f(-50), f(120), true},
		{"zero altitude is a reading", f(0), nil, false},
		{"climbing slow", f(300), f(10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tracker.IsAirborne(snapshot(tt.alt, tt.gs, "X"), tracker.DefaultMinGroundSpeed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAirborne_CustomThreshold(t *testing.T) {
	snap := snapshot(nil, f(60), "X")
	assert.True(t, tracker.IsAirborne(snap, 60))
	assert.False(t, tracker.IsAirborne(snap, 80))
}

func TestShouldAlert(t *testing.T) {
	tests := []struct {
		name     string
		prev     model.State
		airborne bool
		flight   string
		want     bool
	}{
		{"ground to air", model.State{}, true, "DLH123", true},
		{"ground to air same flight", model.State{LastFlight: strPtr("DLH123")}, true, "DLH123", true},
		{"still airborne", model.State{LastFlight: strPtr("DLH123"), Airborne: true}, true, "DLH123", false},
		{"new flight while airborne", model.State{LastFlight: strPtr("DLH123"), Airborne: true}, true, "DLH124", true},
		{"airborne with no recorded flight", model.State{Airborne: true}, true, "DLH123", true},
		{"landed", model.State{LastFlight: strPtr("DLH123"), Airborne: true}, false, "DLH123", false},
		{"on ground", model.State{}, false, "DLH123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tracker.ShouldAlert(&tt.prev, tt.airborne, tt.flight))
		})
	}
}

func TestDecide_Takeoff(t *testing.T) {
	d := tracker.Decide(model.DefaultState(), snapshot(f(1500), f(180), "DLH123"), tracker.DefaultMinGroundSpeed)

	assert.True(t, d.Airborne)
	assert.True(t, d.Alert)
	assert.Equal(t, model.AlertTakeoff, d.Kind)
	assert.True(t, d.Next.Airborne)
	assert.Equal(t, "DLH123", d.Next.LastFlightID())
}

func TestDecide_NewFlight(t *testing.T) {
	prev := &model.State{LastFlight: strPtr("DLH123"), Airborne: true}
	d := tracker.Decide(prev, snapshot(f(3000), f(250), "DLH124"), tracker.DefaultMinGroundSpeed)

	assert.True(t, d.Alert)
	assert.Equal(t, model.AlertNewFlight, d.Kind)
	assert.Equal(t, "DLH124", d.Next.LastFlightID())
}

func TestDecide_Idempotent(t *testing.T) {
	snap := snapshot(f(35000), f(450), "DLH123")

	first := tracker.Decide(model.DefaultState(), snap, tracker.DefaultMinGroundSpeed)
	assert.True(t, first.Alert)

	second := tracker.Decide(&first.Next, snap, tracker.DefaultMinGroundSpeed)
	assert.False(t, second.Alert)
	assert.Empty(t, second.Kind)
	assert.Equal(t, first.Next, second.Next)
}

func TestDecide_GroundUpdatesState(t *testing.T) {
	prev := &model.State{LastFlight: strPtr("DLH123"), Airborne: true}
	d := tracker.Decide(prev, snapshot(f(0), f(5), "DLH123"), tracker.DefaultMinGroundSpeed)

	assert.False(t, d.Alert)
	assert.False(t, d.Next.Airborne)
	assert.Equal(t, "DLH123", d.Next.LastFlightID())
}

func TestDecide_NilPrevious(t *testing.T) {
	d := tracker.Decide(nil, snapshot(nil, f(140), "DLH123"), tracker.DefaultMinGroundSpeed)
	assert.True(t, d.Alert)
	assert.Equal(t, model.AlertTakeoff, d.Kind)
}

func TestDecide_FallbackIDChangesHourly(t *testing.T) {
	base := time.Date(2026, 10, 19, 14, 10, 0, 0, time.UTC)
	first := snapshot(f(2000), nil, model.FallbackFlightID("3c6444", base))

	d1 := tracker.Decide(model.DefaultState(), first, tracker.DefaultMinGroundSpeed)
	assert.True(t, d1.Alert)

	sameHour := snapshot(f(2500), nil, model.FallbackFlightID("3c6444", base.Add(40*time.Minute)))
	d2 := tracker.Decide(&d1.Next, sameHour, tracker.DefaultMinGroundSpeed)
	assert.False(t, d2.Alert)

	nextHour := snapshot(f(2500), nil, model.FallbackFlightID("3c6444", base.Add(time.Hour)))
	d3 := tracker.Decide(&d2.Next, nextHour, tracker.DefaultMinGroundSpeed)
	assert.True(t, d3.Alert)
	assert.Equal(t, model.AlertNewFlight, d3.Kind)
}
