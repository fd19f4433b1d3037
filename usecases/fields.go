package usecases

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Decoders for loosely typed JSON bodies. Numbers arrive as float64 or
// json.Number, numeric strings are accepted wherever a number is.

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// asPositiveDecimal returns a canonical numeric string greater than zero.
func asPositiveDecimal(v interface{}) (string, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return "", false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return "", false
		}
		f = parsed
	default:
		return "", false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func asNumericString(v interface{}) (string, bool) {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case json.Number:
		if _, err := n.Float64(); err != nil {
			return "", false
		}
		return n.String(), true
	case string:
		s := strings.TrimSpace(n)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}

func asPositiveInt(v interface{}) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		return n, n > 0
	case float64:
		f = n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), i > 0
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, i > 0
	default:
		return 0, false
	}
	if f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func asStringList(v interface{}) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), true
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case nil:
		return []string{}, true
	}
	return nil, false
}
