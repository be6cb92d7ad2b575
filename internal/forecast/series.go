package forecast

import (
	"strconv"
	"time"
)

// Value is a single extracted field value: a numeric reading for most field
// types, or an opaque code string for the symbol field.
type Value struct {
	Number float64
	Code   string
}

// Num wraps a numeric reading.
func Num(n float64) Value { return Value{Number: n} }

// Sym wraps a symbol code.
func Sym(code string) Value { return Value{Code: code} }

// IsCode reports whether the value is a symbol code rather than a number.
func (v Value) IsCode() bool { return v.Code != "" }

// State renders the value as a sensor state string.
func (v Value) State() string {
	if v.IsCode() {
		return v.Code
	}
	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

// TimeEntry is one record of the forecast series. The applicability window
// [ValidFrom, ValidTo) is half-open; Fields is sparse, the feed does not
// carry every attribute in every entry.
type TimeEntry struct {
	ValidFrom time.Time
	ValidTo   time.Time
	Fields    map[FieldType]Value
}

// Field looks up a single attribute, reporting absence explicitly.
func (e TimeEntry) Field(ft FieldType) (Value, bool) {
	v, ok := e.Fields[ft]
	return v, ok
}

// Series is a parsed forecast payload. Entries are in source order and are
// not guaranteed sorted by time.
type Series struct {
	Entries []TimeEntry
}
