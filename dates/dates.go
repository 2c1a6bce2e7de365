// Package dates normalizes the date and time strings that reach the portal from
// forms, the event catalog and storage into one canonical representation.
// File: dates/dates.go
package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	// PersistLayout is the stored form of naive values.
	PersistLayout = "2006-01-02T15:04:05"
	// PersistZonedLayout is the stored form of values that carried a zone.
	PersistZonedLayout = "2006-01-02T15:04:05-07:00"
	// ShortLayout is used for period labels.
	ShortLayout = "01/02 15:04"
	// LocalInputLayout matches an HTML datetime-local input.
	LocalInputLayout = "2006-01-02T15:04"
	// DisplayLayout renders catalog timestamps.
	DisplayLayout = "2006-01-02 15:04 UTC"

	// AlwaysOpen labels a period with neither bound.
	AlwaysOpen = "Always open"
	// Unknown labels a catalog timestamp that could not be parsed.
	Unknown = "TBD"
)

// zonedLayouts carry an explicit zone ("Z" or an offset). Fractional seconds
// are accepted after the seconds field by time.Parse.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// Value is the canonical timestamp. A Value is one of:
//   - absent: nothing was supplied (Valid false, Raw empty);
//   - valid: Time holds the instant, Zoned records whether the input named a zone;
//   - raw: a non-empty input that matched no known format, kept verbatim in Raw.
type Value struct {
	Time  time.Time
	Raw   string
	Zoned bool
	valid bool
}

// Of wraps an already structured timestamp.
func Of(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{Time: t, Zoned: true, valid: true}
}

// Valid reports whether the value holds a parsed timestamp.
func (v Value) Valid() bool { return v.valid }

// Absent reports whether no input was supplied at all.
func (v Value) Absent() bool { return !v.valid && v.Raw == "" }

// Equal compares two values by instant when both are valid, otherwise by raw text.
func (v Value) Equal(o Value) bool {
	if v.valid && o.valid {
		return v.Time.Equal(o.Time)
	}
	return v.valid == o.valid && v.Raw == o.Raw
}

// Parse normalizes a string. Empty input is absent; unknown formats are kept as raw.
func Parse(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{}
	}
	normalized := trimmed
	if strings.HasSuffix(normalized, "z") {
		normalized = strings.TrimSuffix(normalized, "z") + "Z"
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return Value{Time: t, Zoned: true, valid: true}
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return Value{Time: t, valid: true}
		}
	}
	return Value{Raw: s}
}

// Coerce accepts whatever representation a caller holds.
func Coerce(v any) Value {
	switch value := v.(type) {
	case nil:
		return Value{}
	case Value:
		return value
	case *Value:
		if value == nil {
			return Value{}
		}
		return *value
	case time.Time:
		return Of(value)
	case *time.Time:
		if value == nil {
			return Value{}
		}
		return Of(*value)
	case string:
		return Parse(value)
	case *string:
		if value == nil {
			return Value{}
		}
		return Parse(*value)
	default:
		return Value{}
	}
}

// ParseZoned parses an ISO string the way the catalog reports it: a missing zone
// means UTC and the result is converted to UTC. Unparseable input is absent.
func ParseZoned(s string) Value {
	v := Parse(s)
	if !v.valid {
		return Value{}
	}
	return Value{Time: v.Time.UTC(), Zoned: true, valid: true}
}

// Persist renders v for storage with seconds precision. Absent values render
// as "" and raw values are returned unchanged.
func Persist(v any) string {
	value := Coerce(v)
	if !value.valid {
		return value.Raw
	}
	t := value.Time.Truncate(time.Second)
	if value.Zoned {
		return t.Format(PersistZonedLayout)
	}
	return t.Format(PersistLayout)
}

// Short renders MM/DD HH:MM, or "" when v is not a valid timestamp.
func Short(v any) string {
	value := Coerce(v)
	if !value.valid {
		return ""
	}
	return value.Time.Format(ShortLayout)
}

// DateTimeLocal renders v for a datetime-local form field.
func DateTimeLocal(v any) string {
	value := Coerce(v)
	if !value.valid {
		return ""
	}
	return value.Time.Format(LocalInputLayout)
}

// Display renders a catalog timestamp or the TBD placeholder.
func Display(v Value) string {
	if !v.valid {
		return Unknown
	}
	return v.Time.UTC().Format(DisplayLayout)
}

// Period joins the short forms of start and end.
func Period(start, end any) string {
	s, e := Short(start), Short(end)
	switch {
	case s != "" && e != "":
		return s + " - " + e
	case s != "":
		return s
	case e != "":
		return e
	default:
		return AlwaysOpen
	}
}

// Countdown labels the whole-day distance between now's calendar date and the
// target's calendar date. Both dates are taken as written, without zone conversion.
func Countdown(target any, now time.Time) string {
	value := Coerce(target)
	if !value.valid {
		return ""
	}
	delta := DaysBetween(now, value.Time)
	switch {
	case delta > 0:
		return fmt.Sprintf("%d days until due", delta)
	case delta == 0:
		return "due today"
	default:
		return fmt.Sprintf("%d days overdue", -delta)
	}
}

// DaysBetween counts calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
