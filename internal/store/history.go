package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/metpoll/met-sensor-poller/internal/forecast"
	"github.com/metpoll/met-sensor-poller/internal/sensor"
)

// ErrNotFound is returned when no states have been recorded for a field type.
var ErrNotFound = errors.New("no recorded states for sensor")

// History is a concurrency-safe in-memory record of published sensor states.
// It implements sensor.Publisher, so it only ever records actual changes.
type History struct {
	mu sync.RWMutex

	// key: field type, value: states in publish order
	data map[forecast.FieldType][]sensor.State

	// retention configuration
	maxHistory int           // max number of states per sensor (0 = unlimited)
	maxAge     time.Duration // optional max age for states
}

// NewHistory creates a History with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewHistory(maxHistory int, maxAge time.Duration) *History {
	return &History{
		data:       make(map[forecast.FieldType][]sensor.State),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Publish appends a state change for its sensor and enforces retention.
func (h *History) Publish(_ context.Context, st sensor.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	states := append(h.data[st.FieldType], st)

	// Enforce retention by count.
	if h.maxHistory > 0 && len(states) > h.maxHistory {
		over := len(states) - h.maxHistory
		states = states[over:]
	}

	// Enforce retention by age.
	if h.maxAge > 0 {
		cutoff := time.Now().Add(-h.maxAge)
		i := 0
		for ; i < len(states); i++ {
			if !states[i].UpdatedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(states) {
			states = states[i:]
		}
	}

	h.data[st.FieldType] = states
}

// Latest returns the most recent recorded state for a field type.
func (h *History) Latest(ft forecast.FieldType) (sensor.State, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	states := h.data[ft]
	if len(states) == 0 {
		return sensor.State{}, ErrNotFound
	}
	return states[len(states)-1], nil
}

// Range returns all recorded states for a field type between from and to
// (inclusive).
func (h *History) Range(ft forecast.FieldType, from, to time.Time) ([]sensor.State, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	states := h.data[ft]
	if len(states) == 0 {
		return nil, ErrNotFound
	}

	var result []sensor.State
	for _, st := range states {
		if !st.UpdatedAt.Before(from) && !st.UpdatedAt.After(to) {
			result = append(result, st)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
