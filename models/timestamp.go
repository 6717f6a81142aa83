package models

import "time"

// CoerceTime normalizes the timestamp representations observed in appointment
// and reading documents. Older app builds wrote raw epoch pairs instead of
// native Firestore timestamps, so a value may arrive as:
//
//   - time.Time (native timestamp)
//   - map with "_seconds"/"_nanoseconds" or "seconds"/"nanoseconds" keys
//   - a bare epoch value in seconds or milliseconds
//
// Everything is normalized to time.Time before formatting or comparing.
func CoerceTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	case map[string]interface{}:
		sec, okSec := coerceInt(firstOf(t, "_seconds", "seconds"))
		if !okSec {
			return time.Time{}, false
		}
		nsec, _ := coerceInt(firstOf(t, "_nanoseconds", "nanoseconds"))
		return time.Unix(sec, nsec), true
	case int64:
		return epochToTime(t), true
	case int:
		return epochToTime(int64(t)), true
	case float64:
		return epochToTime(int64(t)), true
	}
	return time.Time{}, false
}

// epochToTime treats values above the year-2286 seconds range as milliseconds.
func epochToTime(v int64) time.Time {
	if v > 1e11 {
		return time.UnixMilli(v)
	}
	return time.Unix(v, 0)
}

func firstOf(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func coerceInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// CoerceFloat normalizes Firestore numeric fields, which decode as int64 or
// float64 depending on how the client wrote them.
func CoerceFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func coerceString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func coerceBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
