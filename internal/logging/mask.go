package logging

import (
	"net/url"
	"strings"
)

// maskQuery hides the values of credential-like query parameters before a
// raw query string is logged.
func maskQuery(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "&")
	changed := false
	for i, part := range parts {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		decodedKey, errKey := url.QueryUnescape(key)
		if errKey != nil {
			decodedKey = key
		}
		if !sensitiveParam(decodedKey) {
			continue
		}
		decodedValue, errValue := url.QueryUnescape(value)
		if errValue != nil {
			decodedValue = value
		}
		parts[i] = key + "=" + url.QueryEscape(hideValue(strings.TrimSpace(decodedValue)))
		changed = true
	}
	if !changed {
		return raw
	}
	return strings.Join(parts, "&")
}

func sensitiveParam(key string) bool {
	key = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(key)), "[]")
	switch key {
	case "", "query":
		return false
	case "code", "email", "password":
		return true
	}
	return strings.Contains(key, "token") || strings.Contains(key, "secret")
}

// hideValue keeps only the first and last characters of longer values.
func hideValue(value string) string {
	switch {
	case len(value) > 8:
		return value[:2] + "..." + value[len(value)-2:]
	case len(value) > 2:
		return value[:1] + "..."
	default:
		return "***"
	}
}
