package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/metpoll/met-sensor-poller/internal/forecast"
)

// Attribution is attached to every sensor as a static attribute.
// https://api.met.no/license_data.html
const Attribution = "Weather forecast from met.no, delivered by the Norwegian Meteorological Institute."

// UnknownState is reported before the first successful extraction.
const UnknownState = "unknown"

const symbolPictureURL = "https://api.met.no/images/weathericons/png/%s.png"

// Sensor tracks one weather attribute. Its value is mutated only by
// Set.Apply, and only when the newly extracted value differs.
type Sensor struct {
	clientName string
	fieldType  forecast.FieldType
	meta       forecast.Metadata

	value     forecast.Value
	known     bool
	updatedAt time.Time
}

// New creates a sensor for a field type. The display name is the configured
// client prefix followed by the field title.
func New(clientName string, ft forecast.FieldType) *Sensor {
	return &Sensor{
		clientName: clientName,
		fieldType:  ft,
		meta:       ft.Metadata(),
	}
}

// Name returns the display name of the sensor.
func (s *Sensor) Name() string {
	return s.clientName + " " + s.meta.Title
}

// FieldType returns the tracked attribute.
func (s *Sensor) FieldType() forecast.FieldType { return s.fieldType }

// State is the push-update payload handed to publishers and the read view
// served by the HTTP API.
type State struct {
	Name          string             `json:"name"`
	FieldType     forecast.FieldType `json:"fieldType"`
	Value         string             `json:"value"`
	Numeric       *float64           `json:"numeric,omitempty"`
	Unit          string             `json:"unit,omitempty"`
	DeviceClass   string             `json:"deviceClass,omitempty"`
	EntityPicture string             `json:"entityPicture,omitempty"`
	Attribution   string             `json:"attribution"`
	UpdatedAt     time.Time          `json:"updatedAt,omitzero"`
}

func (s *Sensor) snapshot() State {
	st := State{
		Name:        s.Name(),
		FieldType:   s.fieldType,
		Value:       UnknownState,
		Unit:        s.meta.Unit,
		DeviceClass: s.meta.DeviceClass,
		Attribution: Attribution,
		UpdatedAt:   s.updatedAt,
	}
	if !s.known {
		return st
	}
	st.Value = s.value.State()
	if !s.value.IsCode() {
		n := s.value.Number
		st.Numeric = &n
	}
	if s.fieldType == forecast.FieldSymbol {
		st.EntityPicture = fmt.Sprintf(symbolPictureURL, s.value.Code)
	}
	return st
}

// Set is the fixed collection of sensors configured at startup. Sensors are
// push-updated only; there is no polling path.
type Set struct {
	mu        sync.Mutex
	sensors   []*Sensor
	publisher Publisher
	now       func() time.Time
}

// NewSet builds a set over the given sensors. Changed states are pushed to
// the publisher.
func NewSet(sensors []*Sensor, publisher Publisher) *Set {
	return &Set{
		sensors:   sensors,
		publisher: publisher,
		now:       time.Now,
	}
}

// Apply runs extraction for every sensor against the ordered candidate
// entries. A sensor whose field is absent from every candidate keeps its
// previous value. The publisher is only notified when a value changes,
// including the initial unknown-to-value transition.
func (s *Set) Apply(ctx context.Context, candidates []forecast.TimeEntry) {
	if len(candidates) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dev := range s.sensors {
		v, ok := forecast.ExtractField(candidates, dev.fieldType)
		if !ok {
			continue
		}
		if dev.known && dev.value == v {
			continue
		}
		dev.value = v
		dev.known = true
		dev.updatedAt = s.now()
		s.publisher.Publish(ctx, dev.snapshot())
	}
}

// States returns a snapshot of every sensor, in configuration order.
func (s *Set) States() []State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]State, len(s.sensors))
	for i, dev := range s.sensors {
		out[i] = dev.snapshot()
	}
	return out
}

// Get returns the snapshot for a single field type.
func (s *Set) Get(ft forecast.FieldType) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dev := range s.sensors {
		if dev.fieldType == ft {
			return dev.snapshot(), true
		}
	}
	return State{}, false
}
