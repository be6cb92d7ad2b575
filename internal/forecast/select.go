package forecast

import (
	"sort"
	"time"
)

// Candidates returns the entries of s that are still eligible at now, ordered
// by increasing distance from the target time now+offset.
//
// Entries whose window has fully passed (ValidTo <= now) are never eligible.
// The distance score sums the absolute distances of both window endpoints to
// the target, so a wide window far from the target is not preferred just
// because one edge happens to align. The sort is stable: entries with equal
// scores keep their source order.
func Candidates(s Series, now time.Time, offset time.Duration) []TimeEntry {
	target := now.Add(offset)

	type scored struct {
		dist  time.Duration
		entry TimeEntry
	}

	var ordered []scored
	for _, e := range s.Entries {
		if !e.ValidTo.After(now) {
			continue
		}
		d := absDuration(e.ValidTo.Sub(target)) + absDuration(e.ValidFrom.Sub(target))
		ordered = append(ordered, scored{dist: d, entry: e})
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].dist < ordered[j].dist
	})

	out := make([]TimeEntry, len(ordered))
	for i, sc := range ordered {
		out[i] = sc.entry
	}
	return out
}

// ExtractField walks the ordered candidates and returns the first non-absent
// value for ft. Not every entry carries every field, so the nearest entry is
// not necessarily the one extracted from.
func ExtractField(candidates []TimeEntry, ft FieldType) (Value, bool) {
	for _, e := range candidates {
		if v, ok := e.Field(ft); ok {
			return v, true
		}
	}
	return Value{}, false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
