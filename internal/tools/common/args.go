package common

import (
	"fmt"
	"math"
	"strings"
)

// RequiredString returns the non-empty string argument name.
func RequiredString(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// RequiredStrings extracts the named non-empty string arguments in order.
func RequiredStrings(args map[string]any, names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		v, err := RequiredString(args, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// OptionalString returns the string argument name, or "" when absent.
func OptionalString(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

// OptionalBool returns the boolean argument name, or nil when absent.
func OptionalBool(args map[string]any, name string) (*bool, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return nil, fmt.Errorf("%s must be a boolean", name)
	}
	return &b, nil
}

// OptionalInt returns the integral number argument name, or nil when absent.
// JSON numbers arrive as float64, so fractional values are rejected.
func OptionalInt(args map[string]any, name string) (*int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}

	var n int
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s must be a whole number", name)
		}
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	default:
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &n, nil
}

// OptionalStringSlice returns the string array argument name, or nil when
// absent. Blank entries are dropped.
func OptionalStringSlice(args map[string]any, name string) ([]string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case []string:
		return compact(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			out = append(out, s)
		}
		return compact(out), nil
	default:
		return nil, fmt.Errorf("%s must be an array of strings", name)
	}
}

// OneOf checks that value, when set, is one of allowed.
func OneOf(name, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %s", name, strings.Join(allowed, ", "))
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// Colors are the color names Todoist accepts for projects and labels.
var Colors = []string{
	"berry_red", "light_blue", "red", "blue", "orange", "grape", "yellow",
	"violet", "olive_green", "lavender", "lime_green", "magenta", "green",
	"salmon", "mint_green", "charcoal", "teal", "grey", "sky_blue",
}

// ViewStyles are the layouts a project can use.
var ViewStyles = []string{"list", "board", "calendar"}
