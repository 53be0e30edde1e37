package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/airwatch/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements Storage and AlertLog on an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) LoadState(ctx context.Context) (*model.State, error) {
	var (
		lastFlight sql.NullString
		airborne   bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT last_flight, airborne FROM tracker_state WHERE id = 1`,
	).Scan(&lastFlight, &airborne)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	state := &model.State{Airborne: airborne}
	if lastFlight.Valid {
		state.LastFlight = &lastFlight.String
	}
	return state, nil
}

func (s *SQLite) SaveState(ctx context.Context, state *model.State) error {
	var lastFlight sql.NullString
	if state.LastFlight != nil {
		lastFlight = sql.NullString{String: *state.LastFlight, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracker_state (id, last_flight, airborne, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   last_flight = excluded.last_flight,
		   airborne = excluded.airborne,
		   updated_at = excluded.updated_at`,
		lastFlight, state.Airborne, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *SQLite) RecordAlert(ctx context.Context, record *model.AlertRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.SentAt.IsZero() {
		record.SentAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, icao, flight_id, registration, kind, altitude_ft, ground_speed_kts, message, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ICAO, record.FlightID, record.Registration, record.Kind,
		record.AltitudeFt, record.GroundSpeedKts, record.Message, record.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *SQLite) ListAlerts(ctx context.Context, limit int) ([]model.AlertRecord, error) {
	query := `SELECT id, icao, flight_id, registration, kind, altitude_ft, ground_speed_kts, message, sent_at
		FROM alerts ORDER BY sent_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var records []model.AlertRecord
	for rows.Next() {
		var r model.AlertRecord
		if err := rows.Scan(&r.ID, &r.ICAO, &r.FlightID, &r.Registration, &r.Kind,
			&r.AltitudeFt, &r.GroundSpeedKts, &r.Message, &r.SentAt); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
