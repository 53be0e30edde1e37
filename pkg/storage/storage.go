package storage

import (
	"context"
	"fmt"

	"github.com/ogulcanaydogan/airwatch/pkg/model"
)

// Storage persists the singleton tracker state.
type Storage interface {
	// LoadState returns the persisted state, or model.DefaultState if none exists yet.
	LoadState(ctx context.Context) (*model.State, error)

	// SaveState overwrites the persisted state.
	SaveState(ctx context.Context, state *model.State) error

	// Close releases resources.
	Close() error
}

// AlertLog is implemented by backends that keep a record of delivered alerts.
type AlertLog interface {
	// RecordAlert appends a delivered alert.
	RecordAlert(ctx context.Context, record *model.AlertRecord) error

	// ListAlerts returns the most recent alerts first. limit <= 0 means no limit.
	ListAlerts(ctx context.Context, limit int) ([]model.AlertRecord, error)
}

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open creates a storage backend by driver name.
func Open(driver, path string) (Storage, error) {
	switch driver {
	case "", DriverFile:
		return NewFileStore(path), nil
	case DriverSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown state driver %q", driver)
	}
}
