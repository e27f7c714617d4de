// Package middleware holds the worker's small HTTP middleware helpers.
package middleware

import (
	"fmt"
	"net/http"
	"strings"
)

// ParseHeaderString parses "Key: Value" strings, as given on the command
// line, into an http.Header. Each string must contain exactly one header.
func ParseHeaderString(customHeaders []string) (http.Header, error) {
	headers := http.Header{}

	for _, raw := range customHeaders {
		key, value, ok := splitHeader(raw)
		if !ok {
			return nil, fmt.Errorf("invalid header parameter: %q", raw)
		}

		headers[key] = append(headers[key], value)
	}

	return headers, nil
}

// AddCustomHeaders writes the configured extra headers onto a response.
func AddCustomHeaders(w http.ResponseWriter, headers http.Header) {
	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
}

func splitHeader(raw string) (key, value string, ok bool) {
	keyValue := strings.SplitN(raw, ":", 2)
	if len(keyValue) != 2 {
		return "", "", false
	}

	return strings.TrimSpace(keyValue[0]), strings.TrimSpace(keyValue[1]), true
}
