package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/metpoll/met-sensor-poller/internal/forecast"
)

type recorder struct {
	states []State
}

func (r *recorder) Publish(_ context.Context, st State) {
	r.states = append(r.states, st)
}

func window(hour int, fields map[forecast.FieldType]forecast.Value) forecast.TimeEntry {
	from := time.Date(2026, time.August, 25, hour, 0, 0, 0, time.UTC)
	return forecast.TimeEntry{ValidFrom: from, ValidTo: from.Add(time.Hour), Fields: fields}
}

// TestApplyPublishesOnChangeOnly walks a temperature sensor through
// unknown -> 5.0 -> 5.0 -> 6.2 and expects exactly two publishes.
func TestApplyPublishesOnChangeOnly(t *testing.T) {
	rec := &recorder{}
	set := NewSet([]*Sensor{New("yr", forecast.FieldTemperature)}, rec)

	candidates := []forecast.TimeEntry{
		window(10, map[forecast.FieldType]forecast.Value{forecast.FieldTemperature: forecast.Num(5.0)}),
	}

	set.Apply(context.Background(), candidates)
	if len(rec.states) != 1 {
		t.Fatalf("expected 1 publish after the first extraction, got %d", len(rec.states))
	}
	if rec.states[0].Value != "5" {
		t.Fatalf("published value = %q, want 5", rec.states[0].Value)
	}

	// Same series, same value: extraction is idempotent.
	set.Apply(context.Background(), candidates)
	if len(rec.states) != 1 {
		t.Fatalf("expected no publish for an unchanged value, got %d", len(rec.states))
	}

	changed := []forecast.TimeEntry{
		window(11, map[forecast.FieldType]forecast.Value{forecast.FieldTemperature: forecast.Num(6.2)}),
	}
	set.Apply(context.Background(), changed)
	if len(rec.states) != 2 {
		t.Fatalf("expected a publish for the new value, got %d", len(rec.states))
	}
	if rec.states[1].Value != "6.2" {
		t.Fatalf("published value = %q, want 6.2", rec.states[1].Value)
	}
	if rec.states[1].Numeric == nil || *rec.states[1].Numeric != 6.2 {
		t.Fatalf("published numeric = %v, want 6.2", rec.states[1].Numeric)
	}
}

// TestApplyRetainsValueWhenFieldAbsent verifies a sensor whose field is
// absent from every candidate keeps its previous value.
func TestApplyRetainsValueWhenFieldAbsent(t *testing.T) {
	rec := &recorder{}
	set := NewSet([]*Sensor{New("yr", forecast.FieldSymbol)}, rec)

	withSymbol := []forecast.TimeEntry{
		window(10, map[forecast.FieldType]forecast.Value{forecast.FieldSymbol: forecast.Sym("cloudy")}),
	}
	set.Apply(context.Background(), withSymbol)

	withoutSymbol := []forecast.TimeEntry{
		window(11, map[forecast.FieldType]forecast.Value{forecast.FieldTemperature: forecast.Num(3)}),
	}
	set.Apply(context.Background(), withoutSymbol)

	if len(rec.states) != 1 {
		t.Fatalf("expected no publish when the field is absent, got %d", len(rec.states))
	}
	st, ok := set.Get(forecast.FieldSymbol)
	if !ok || st.Value != "cloudy" {
		t.Fatalf("symbol sensor should retain its value, got %q", st.Value)
	}
}

// TestApplyEmptyCandidates verifies that an empty candidate list is a no-op.
func TestApplyEmptyCandidates(t *testing.T) {
	rec := &recorder{}
	set := NewSet([]*Sensor{New("yr", forecast.FieldTemperature)}, rec)

	set.Apply(context.Background(), nil)
	if len(rec.states) != 0 {
		t.Fatalf("expected no publishes, got %d", len(rec.states))
	}
	st, _ := set.Get(forecast.FieldTemperature)
	if st.Value != UnknownState {
		t.Fatalf("value = %q, want %q", st.Value, UnknownState)
	}
}

// TestSymbolEntityPicture checks the picture URL derivation.
func TestSymbolEntityPicture(t *testing.T) {
	rec := &recorder{}
	set := NewSet([]*Sensor{New("yr", forecast.FieldSymbol)}, rec)

	set.Apply(context.Background(), []forecast.TimeEntry{
		window(10, map[forecast.FieldType]forecast.Value{forecast.FieldSymbol: forecast.Sym("partlycloudy_day")}),
	})

	st, _ := set.Get(forecast.FieldSymbol)
	want := "https://api.met.no/images/weathericons/png/partlycloudy_day.png"
	if st.EntityPicture != want {
		t.Fatalf("entity picture = %q, want %q", st.EntityPicture, want)
	}
}

func TestSensorMetadata(t *testing.T) {
	s := New("yr", forecast.FieldTemperature)
	if s.Name() != "yr Temperature" {
		t.Fatalf("name = %q", s.Name())
	}

	set := NewSet([]*Sensor{s}, &recorder{})
	st, _ := set.Get(forecast.FieldTemperature)
	if st.Unit != "°C" || st.DeviceClass != "temperature" {
		t.Fatalf("metadata = %q / %q", st.Unit, st.DeviceClass)
	}
	if st.Attribution != Attribution {
		t.Fatalf("attribution = %q", st.Attribution)
	}
	if st.EntityPicture != "" {
		t.Fatal("non-symbol sensors must not carry a picture")
	}
}

func TestStatesPreserveConfigurationOrder(t *testing.T) {
	set := NewSet([]*Sensor{
		New("yr", forecast.FieldSymbol),
		New("yr", forecast.FieldTemperature),
	}, &recorder{})

	states := set.States()
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	if states[0].FieldType != forecast.FieldSymbol || states[1].FieldType != forecast.FieldTemperature {
		t.Fatalf("unexpected order: %v, %v", states[0].FieldType, states[1].FieldType)
	}
}
