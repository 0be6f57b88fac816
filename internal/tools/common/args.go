package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/teemow/schedulr/internal/interval"
)

// StringArg returns the trimmed string argument name, or "" if it is
// missing or not a string.
func StringArg(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return strings.TrimSpace(v)
}

// IntArg returns the integer argument name, or def when it is missing.
// JSON numbers arrive as float64; fractional values are rejected.
func IntArg(args map[string]interface{}, name string, def int) (int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer, got %v", name, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer: %w", name, err)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}

// BoolArg returns the boolean argument name, or def when it is missing or
// not a boolean.
func BoolArg(args map[string]interface{}, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// SlotsArg decodes the argument name into slots. It accepts an array of
// {start, end} objects or the same array encoded as a JSON string.
func SlotsArg(args map[string]interface{}, name string) ([]interval.Interval, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s is required", name)
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	var slots []interval.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("%s must be an array of {start, end} objects: %w", name, err)
	}

	intervals, err := interval.FromWire(slots)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return intervals, nil
}
