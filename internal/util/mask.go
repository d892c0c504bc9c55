// Package util holds small helpers shared by the HTTP layer.
package util

import (
	"net/url"
	"strings"
)

// MaskSecret keeps only the edges of a secret so log lines stay correlatable.
func MaskSecret(secret string) string {
	switch n := len(secret); {
	case n > 8:
		return secret[:4] + "..." + secret[n-4:]
	case n > 4:
		return secret[:2] + "..." + secret[n-2:]
	case n > 2:
		return secret[:1] + "..." + secret[n-1:]
	}
	return secret
}

// MaskSensitiveQuery masks token, secret and password values within a raw query string.
func MaskSensitiveQuery(raw string) string {
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
		if !isSensitiveParam(decodedKey) {
			continue
		}
		decodedValue, errValue := url.QueryUnescape(value)
		if errValue != nil {
			decodedValue = value
		}
		parts[i] = key + "=" + url.QueryEscape(MaskSecret(strings.TrimSpace(decodedValue)))
		changed = true
	}
	if !changed {
		return raw
	}
	return strings.Join(parts, "&")
}

func isSensitiveParam(key string) bool {
	key = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(key)), "[]")
	if key == "" {
		return false
	}
	for _, marker := range []string{"token", "secret", "password", "api_key", "apikey"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
