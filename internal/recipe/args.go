package recipe

import (
	"fmt"
	"math"
	"slices"

	"github.com/lojasmm/chatmsg/message"
)

// --- arg extraction helpers ---

func stringArg(s Step, key string) (string, error) {
	v, ok := s[key]
	if !ok {
		return "", fmt.Errorf("%w: missing required argument %q", ErrInvalidStep, key)
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %q must be a string", ErrInvalidStep, key)
	}
	return str, nil
}

// optionalStringArg returns "" when key is absent.
func optionalStringArg(s Step, key string) (string, error) {
	if _, ok := s[key]; !ok {
		return "", nil
	}
	return stringArg(s, key)
}

func numberArg(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return math.NaN(), false
	}
}

func boolArg(s map[string]any, key string) (bool, bool, error) {
	v, ok := s[key]
	if !ok {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, fmt.Errorf("%w: argument %q must be a boolean", ErrInvalidStep, key)
	}
	return b, true, nil
}

// objectArg returns nil when key is absent.
func objectArg(s map[string]any, key string) (map[string]any, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return nil, nil
	}
	obj, ok := asObject(v)
	if !ok {
		return nil, fmt.Errorf("%w: argument %q must be an object", ErrInvalidStep, key)
	}
	return obj, nil
}

func fieldsArg(s Step) (message.Fields, error) {
	obj, err := objectArg(s, "fields")
	if err != nil || obj == nil {
		return nil, err
	}
	return message.Fields(obj), nil
}

func listArg(s Step, key string) ([]any, error) {
	v, ok := s[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: argument %q must be an array", ErrInvalidStep, key)
	}
	return list, nil
}

// asObject accepts the map shapes produced by encoding/json and yaml.v3.
func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case message.Fields:
		return o, true
	default:
		return nil, false
	}
}

func checkKeys(s Step, allowed ...string) error {
	for k := range s {
		if k == "op" {
			continue
		}
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("%w: unexpected argument %q", ErrInvalidStep, k)
		}
	}
	return nil
}
