package forecast

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.August, 25, hour, minute, 0, 0, time.UTC)
}

func entry(from, to time.Time, fields map[FieldType]Value) TimeEntry {
	return TimeEntry{ValidFrom: from, ValidTo: to, Fields: fields}
}

// TestCandidatesFiltersExpired verifies that entries whose window has fully
// passed never appear in the candidate list, even when closest in distance.
func TestCandidatesFiltersExpired(t *testing.T) {
	series := Series{Entries: []TimeEntry{
		entry(at(8, 0), at(9, 0), nil),
		entry(at(9, 0), at(10, 0), nil),
		entry(at(10, 0), at(11, 0), nil),
	}}

	got := Candidates(series, at(10, 0), 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if !got[0].ValidFrom.Equal(at(10, 0)) {
		t.Fatalf("expected the 10:00 entry, got %v", got[0].ValidFrom)
	}
}

// TestCandidatesPrefersClosestWindow covers the two-entry scenario: at 10:30
// with no offset, the 10:00-11:00 window scores 1800s+1800s and beats the
// 11:00-12:00 window.
func TestCandidatesPrefersClosestWindow(t *testing.T) {
	first := entry(at(10, 0), at(11, 0), map[FieldType]Value{FieldTemperature: Num(5)})
	second := entry(at(11, 0), at(12, 0), map[FieldType]Value{FieldTemperature: Num(4)})
	series := Series{Entries: []TimeEntry{second, first}} // source order reversed on purpose

	got := Candidates(series, at(10, 30), 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if !got[0].ValidFrom.Equal(at(10, 0)) {
		t.Fatalf("expected the 10:00 entry first, got %v", got[0].ValidFrom)
	}
}

// TestCandidatesOffsetShiftsTarget verifies that the forecast offset moves
// the target away from now.
func TestCandidatesOffsetShiftsTarget(t *testing.T) {
	near := entry(at(10, 0), at(11, 0), nil)
	far := entry(at(13, 0), at(14, 0), nil)
	series := Series{Entries: []TimeEntry{near, far}}

	got := Candidates(series, at(10, 30), 3*time.Hour)
	if !got[0].ValidFrom.Equal(at(13, 0)) {
		t.Fatalf("expected the 13:00 entry first with a 3h offset, got %v", got[0].ValidFrom)
	}
}

// TestCandidatesStableOnTies verifies that equal-distance entries preserve
// their source order.
func TestCandidatesStableOnTies(t *testing.T) {
	a := entry(at(10, 0), at(11, 0), map[FieldType]Value{FieldTemperature: Num(1)})
	b := entry(at(10, 0), at(11, 0), map[FieldType]Value{FieldTemperature: Num(2)})
	series := Series{Entries: []TimeEntry{a, b}}

	got := Candidates(series, at(10, 30), 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Fields[FieldTemperature].Number != 1 || got[1].Fields[FieldTemperature].Number != 2 {
		t.Fatalf("tied entries reordered: %v then %v", got[0].Fields, got[1].Fields)
	}
}

// TestCandidatesNonDecreasingDistance checks the full ordering on a shuffled
// series.
func TestCandidatesNonDecreasingDistance(t *testing.T) {
	series := Series{Entries: []TimeEntry{
		entry(at(14, 0), at(15, 0), nil),
		entry(at(10, 0), at(11, 0), nil),
		entry(at(12, 0), at(13, 0), nil),
		entry(at(11, 0), at(12, 0), nil),
	}}

	now := at(10, 30)
	target := now
	got := Candidates(series, now, 0)
	if len(got) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(got))
	}

	prev := time.Duration(-1)
	for i, e := range got {
		d := absDuration(e.ValidTo.Sub(target)) + absDuration(e.ValidFrom.Sub(target))
		if prev >= 0 && d < prev {
			t.Fatalf("candidate %d has smaller distance than its predecessor", i)
		}
		prev = d
	}
}

func TestCandidatesEmptySeries(t *testing.T) {
	if got := Candidates(Series{}, at(10, 0), 0); len(got) != 0 {
		t.Fatalf("expected no candidates from an empty series, got %d", len(got))
	}
}

// TestExtractFieldFirstHit verifies that extraction takes the first candidate
// carrying the field, skipping nearer but sparse entries.
func TestExtractFieldFirstHit(t *testing.T) {
	candidates := []TimeEntry{
		entry(at(10, 0), at(11, 0), map[FieldType]Value{FieldTemperature: Num(5)}),
		entry(at(11, 0), at(12, 0), map[FieldType]Value{
			FieldTemperature: Num(4),
			FieldFog:         Num(12.5),
		}),
	}

	v, ok := ExtractField(candidates, FieldTemperature)
	if !ok || v.Number != 5 {
		t.Fatalf("expected temperature 5 from the first candidate, got %v ok=%v", v, ok)
	}

	v, ok = ExtractField(candidates, FieldFog)
	if !ok || v.Number != 12.5 {
		t.Fatalf("expected fog 12.5 from the second candidate, got %v ok=%v", v, ok)
	}

	if _, ok := ExtractField(candidates, FieldSymbol); ok {
		t.Fatal("expected symbol to be absent from every candidate")
	}
}

func TestParseFieldType(t *testing.T) {
	for _, ft := range AllFieldTypes() {
		got, err := ParseFieldType(string(ft))
		if err != nil || got != ft {
			t.Fatalf("ParseFieldType(%q) = %q, %v", ft, got, err)
		}
	}
	if _, err := ParseFieldType("visibility"); err == nil {
		t.Fatal("expected an error for an unknown field type")
	}
}

func TestValueState(t *testing.T) {
	if got := Num(5.0).State(); got != "5" {
		t.Fatalf("Num(5.0).State() = %q", got)
	}
	if got := Num(6.2).State(); got != "6.2" {
		t.Fatalf("Num(6.2).State() = %q", got)
	}
	if got := Sym("partlycloudy_day").State(); got != "partlycloudy_day" {
		t.Fatalf("Sym(...).State() = %q", got)
	}
}
