package token

import (
	"encoding/json"
	"strconv"
	"strings"
)

// requiredString reads a non-empty string field
func requiredString(m map[string]any, source, field string) (string, error) {
	raw, ok := m[field]
	if !ok || raw == nil {
		return "", mismatch(source, field, "is missing")
	}
	s, ok := raw.(string)
	if !ok {
		return "", mismatch(source, field, "is not a string")
	}
	if s == "" {
		return "", mismatch(source, field, "is empty")
	}
	return s, nil
}

// optionalString reads a string field that may be absent, null or empty
func optionalString(m map[string]any, source, field string) (string, error) {
	raw, ok := m[field]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", mismatch(source, field, "is not a string")
	}
	return s, nil
}

// seconds reads a numeric seconds value from the JSON shapes servers send
func seconds(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
