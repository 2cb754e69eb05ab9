// Package record decodes loosely-typed JSON/YAML objects whose producers disagree on field
// names, so that ingestion code can ask for "the first of these keys" in one place.
package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Fields is a decoded JSON or YAML object.
type Fields map[string]any

// Lookup returns the first present, non-null value among keys.
// Keys are matched exactly first and then case-insensitively.
func (f Fields) Lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return v, true
		}
	}
	for _, k := range keys {
		for fk, v := range f {
			if v != nil && strings.EqualFold(fk, k) {
				return v, true
			}
		}
	}
	return nil, false
}

// String returns the first key holding a scalar, rendered as a trimmed string.
func (f Fields) String(keys ...string) string {
	v, ok := f.Lookup(keys...)
	if !ok {
		return ""
	}
	return scalarString(v)
}

// Strings returns a string list from either a list value or a single scalar.
func (f Fields) Strings(keys ...string) []string {
	v, ok := f.Lookup(keys...)
	if !ok {
		return nil
	}
	if list, ok := v.([]any); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := scalarString(v); s != "" {
		return []string{s}
	}
	return nil
}

// Int returns the first key holding a whole, finite number.
// Numeric strings are accepted.
func (f Fields) Int(keys ...string) (int, bool) {
	v, ok := f.Lookup(keys...)
	if !ok {
		return 0, false
	}
	return ToInt(v)
}

// IntPtr is Int returning nil when absent.
func (f Fields) IntPtr(keys ...string) *int {
	n, ok := f.Int(keys...)
	if !ok {
		return nil
	}
	return &n
}

// Bool returns the first key holding a boolean (or "true"/"yes"/1 style value).
func (f Fields) Bool(keys ...string) (bool, bool) {
	v, ok := f.Lookup(keys...)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
		return false, false
	}
	if n, ok := ToInt(v); ok {
		return n != 0, true
	}
	return false, false
}

// Object returns a nested object.
func (f Fields) Object(keys ...string) (Fields, bool) {
	v, ok := f.Lookup(keys...)
	if !ok {
		return nil, false
	}
	return AsFields(v)
}

// List returns a nested list.
func (f Fields) List(keys ...string) ([]any, bool) {
	v, ok := f.Lookup(keys...)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	return list, ok
}

// AsFields converts a decoded object of either JSON or YAML origin.
func AsFields(v any) (Fields, bool) {
	switch m := v.(type) {
	case map[string]any:
		return Fields(m), true
	case Fields:
		return m, true
	case map[any]any:
		out := make(Fields, len(m))
		for k, val := range m {
			out[scalarString(k)] = val
		}
		return out, true
	}
	return nil, false
}

// ToInt converts a decoded scalar to an int. Non-finite, fractional and out-of-range
// values are rejected, whatever their decoded type.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int64ToInt(n)
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int64ToInt(i)
		}
		if fl, err := n.Float64(); err == nil {
			return floatToInt(fl)
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(fl)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// -MinInt is 2^63 (or 2^31), exactly representable unlike MaxInt.
	if f < math.MinInt || f >= -float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

func int64ToInt(n int64) (int, bool) {
	if n > math.MaxInt || n < math.MinInt {
		return 0, false
	}
	return int(n), true
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case time.Time:
		// YAML decodes unquoted dates as timestamps.
		if s.Hour() == 0 && s.Minute() == 0 && s.Second() == 0 && s.Nanosecond() == 0 {
			return s.Format(time.DateOnly)
		}
		return s.Format(time.RFC3339)
	}
	return ""
}
