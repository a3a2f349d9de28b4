package schema

import (
	"encoding/json"
	"time"
)

// dateLayouts are tried in order when coercing a date string. The app
// historically wrote RFC 3339; date-only values come from quick entry.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// epochMillisThreshold splits epoch seconds from epoch milliseconds.
// Anything above it is out of range for a seconds-precision timestamp
// until the year 33658.
const epochMillisThreshold = 1e12

// CoerceTime converts a date-like JSON value into a time.Time.
//
// Accepted inputs: ISO-8601 / RFC 3339 strings, epoch numbers (seconds or
// milliseconds, disambiguated by magnitude), and native time values. The
// second return is false when the value is absent, null, or unusable.
func CoerceTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochToTime(f), true
	case float64:
		return epochToTime(x), true
	case int64:
		return epochToTime(float64(x)), true
	case int:
		return epochToTime(float64(x)), true
	}
	return time.Time{}, false
}

func epochToTime(f float64) time.Time {
	if f >= epochMillisThreshold || f <= -epochMillisThreshold {
		return time.UnixMilli(int64(f)).UTC()
	}
	return time.Unix(int64(f), 0).UTC()
}

// isDateLike reports whether a value could plausibly have been meant as a
// date: the distinction between "absent" and "present but unparsable"
// drives the fallback-to-now warning.
func isDateLike(v any) bool {
	switch v.(type) {
	case string, json.Number, float64, int64, int, time.Time, *time.Time:
		return true
	}
	return false
}
