package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToInt64 converts various types to int64 using explicit type switching.
// It handles integer types, floats, json.Number, strings and byte slices.
// Unparseable input yields 0.
func ToInt64(val any) int64 {
	switch v := val.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case uint:
		return int64(v)
	case uint64:
		return int64(v)
	case uint32:
		return int64(v)
	case uint16:
		return int64(v)
	case uint8:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		return int64(ToFloat(v.String()))
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		return int64(ToFloat(s))
	case []byte:
		return ToInt64(string(v))
	case nil:
		return 0
	default:
		return ToInt64(fmt.Sprintf("%v", v))
	}
}

// ToFloat converts various types to float64.
// Strings may use a decimal comma ("1,4") and surrounding spaces.
// Unparseable input, NaN and Inf yield 0.
func ToFloat(val any) float64 {
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case json.Number:
		f, _ = v.Float64()
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		f, _ = strconv.ParseFloat(s, 64)
	case []byte:
		return ToFloat(string(v))
	case nil:
		return 0
	default:
		return ToFloat(fmt.Sprintf("%v", v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToString converts various types to string. nil yields "".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
