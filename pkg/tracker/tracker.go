package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ogulcanaydogan/airwatch/pkg/alerts"
	"github.com/ogulcanaydogan/airwatch/pkg/feed"
	"github.com/ogulcanaydogan/airwatch/pkg/model"
	"github.com/ogulcanaydogan/airwatch/pkg/storage"
)

// ErrNoNotifiers is returned by Check when an alert is warranted but no
// notifier is configured to deliver it.
var ErrNoNotifiers = errors.New("no notifiers configured")

// Fetcher returns the latest telemetry for the watched aircraft.
type Fetcher interface {
	Fetch(ctx context.Context) (*model.Snapshot, error)
}

// Outcome summarises what a run did.
type Outcome string

const (
	OutcomeNoData  Outcome = "no_data" // Feed listed no aircraft; nothing changed
	OutcomeQuiet   Outcome = "quiet"   // State updated, no alert warranted
	OutcomeAlerted Outcome = "alerted" // Alert delivered and state updated
)

// Result describes one evaluated poll.
type Result struct {
	Outcome  Outcome
	Snapshot *model.Snapshot
	Previous *model.State
	Decision Decision
	Alert    *alerts.Alert
}

// Tracker runs the fetch, decide, notify, persist sequence.
type Tracker struct {
	fetcher        Fetcher
	storage        storage.Storage
	notifiers      []alerts.Notifier
	minGroundSpeed float64
	logger         *slog.Logger
}

// NewTracker creates a tracker. A minGroundSpeed of 0 is honoured, so any
// reported ground speed counts as airborne; a negative value uses
// DefaultMinGroundSpeed.
func NewTracker(fetcher Fetcher, store storage.Storage, notifiers []alerts.Notifier, minGroundSpeed int, logger *slog.Logger) *Tracker {
	if minGroundSpeed < 0 {
		minGroundSpeed = DefaultMinGroundSpeed
	}
	return &Tracker{
		fetcher:        fetcher,
		storage:        store,
		notifiers:      notifiers,
		minGroundSpeed: float64(minGroundSpeed),
		logger:         logger,
	}
}

// Evaluate fetches telemetry, loads the previous state and decides, without
// sending anything or touching persisted state.
func (t *Tracker) Evaluate(ctx context.Context) (*Result, error) {
	snap, err := t.fetcher.Fetch(ctx)
	if errors.Is(err, feed.ErrNoAircraft) {
		t.logger.Info("no aircraft in feed, skipping run")
		return &Result{Outcome: OutcomeNoData}, nil
	}
	if err != nil {
		return nil, err
	}

	prev, err := t.storage.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	decision := Decide(prev, snap, t.minGroundSpeed)
	t.logger.Debug("telemetry evaluated",
		"icao", snap.ICAO,
		"flight", snap.FlightID,
		"altitude_ft", snap.Altitude,
		"ground_speed_kts", snap.GroundSpeed,
		"airborne", decision.Airborne,
		"was_airborne", prev.Airborne,
		"last_flight", prev.LastFlightID(),
		"alert", decision.Alert,
	)

	res := &Result{
		Outcome:  OutcomeQuiet,
		Snapshot: snap,
		Previous: prev,
		Decision: decision,
	}
	if decision.Alert {
		a := alerts.NewAlert(decision.Kind, snap)
		res.Alert = &a
	}
	return res, nil
}

// Check performs a full run. State is written only after the alert, if any,
// has been accepted by every notifier; any earlier failure leaves it untouched.
func (t *Tracker) Check(ctx context.Context) (*Result, error) {
	res, err := t.Evaluate(ctx)
	if err != nil || res.Outcome == OutcomeNoData {
		return res, err
	}

	if res.Alert != nil {
		if err := t.dispatch(ctx, *res.Alert); err != nil {
			return nil, err
		}
		res.Outcome = OutcomeAlerted
		t.recordAlert(ctx, *res.Alert)
	}

	next := res.Decision.Next
	if err := t.storage.SaveState(ctx, &next); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	t.logger.Info("run complete",
		"outcome", res.Outcome,
		"flight", res.Snapshot.FlightID,
		"airborne", next.Airborne,
	)
	return res, nil
}

// dispatch delivers to every notifier and stops at the first failure.
func (t *Tracker) dispatch(ctx context.Context, alert alerts.Alert) error {
	if len(t.notifiers) == 0 {
		t.logger.Error("alert warranted but no notifiers configured", "flight", alert.FlightID)
		return ErrNoNotifiers
	}

	for _, notifier := range t.notifiers {
		if err := notifier.Send(ctx, alert); err != nil {
			t.logger.Error("send alert failed",
				"notifier", notifier.Name(),
				"flight", alert.FlightID,
				"error", err,
			)
			return fmt.Errorf("notify %s: %w", notifier.Name(), err)
		}
		t.logger.Info("alert sent",
			"notifier", notifier.Name(),
			"kind", alert.Kind,
			"registration", alert.Registration,
			"flight", alert.FlightID,
		)
	}
	return nil
}

// recordAlert appends to the alert log when the backend keeps one. The alert
// is already delivered, so a failure here only gets logged.
func (t *Tracker) recordAlert(ctx context.Context, alert alerts.Alert) {
	log, ok := t.storage.(storage.AlertLog)
	if !ok {
		return
	}

	record := &model.AlertRecord{
		ICAO:           alert.ICAO,
		FlightID:       alert.FlightID,
		Registration:   alert.Registration,
		Kind:           alert.Kind,
		AltitudeFt:     alert.AltitudeFt,
		GroundSpeedKts: alert.GroundSpeedKts,
		Message:        alert.Message,
		SentAt:         alert.Timestamp,
	}
	if err := log.RecordAlert(ctx, record); err != nil {
		t.logger.Error("record alert", "flight", alert.FlightID, "error", err)
	}
}
