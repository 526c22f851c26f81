package tools

import (
	"fmt"
	"strings"
)

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("argument %q cannot be empty", key)
	}
	return s, nil
}

// optionalStringArg reads a string argument, returning fallback when the
// argument is absent or blank.
func optionalStringArg(args map[string]any, key, fallback string) (string, error) {
	v, ok := args[key]
	if !ok {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	return s, nil
}

// optionalIntArg reads a JSON number argument. Decoded JSON numbers arrive
// as float64; fractional values are rejected rather than silently rounded.
func optionalIntArg(args map[string]any, key string, fallback int) (int, error) {
	v, ok := args[key]
	if !ok {
		return fallback, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("argument %q must be a number", key)
	}
	n := int(f)
	if float64(n) != f {
		return 0, fmt.Errorf("argument %q must be a whole number", key)
	}
	return n, nil
}
