package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/airwatch/pkg/model"
)

// Memory is an in-process Storage and AlertLog, used in tests and dry runs.
type Memory struct {
	mu     sync.Mutex
	state  *model.State
	alerts []model.AlertRecord
	saves  int
}

// NewMemory creates an empty in-memory store. A nil initial state means
// nothing has been persisted yet.
func NewMemory(initial *model.State) *Memory {
	m := &Memory{}
	if initial != nil {
		m.state = copyState(initial)
	}
	return m
}

func (m *Memory) LoadState(_ context.Context) (*model.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return model.DefaultState(), nil
	}
	return copyState(m.state), nil
}

func (m *Memory) SaveState(_ context.Context, state *model.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = copyState(state)
	m.saves++
	return nil
}

// Saves returns how many times SaveState was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Memory) RecordAlert(_ context.Context, record *model.AlertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	m.alerts = append(m.alerts, *record)
	return nil
}

func (m *Memory) ListAlerts(_ context.Context, limit int) ([]model.AlertRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.AlertRecord, len(m.alerts))
	copy(out, m.alerts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

func copyState(s *model.State) *model.State {
	c := &model.State{Airborne: s.Airborne}
	if s.LastFlight != nil {
		id := *s.LastFlight
		c.LastFlight = &id
	}
	return c
}
