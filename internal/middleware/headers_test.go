package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaderString(t *testing.T) {
	tests := []struct {
		name          string
		headerStrings []string
		valid         bool
	}{
		{
			name:          "simple header",
			headerStrings: []string{"X-Served-By: worker"},
			valid:         true,
		},
		{
			name:          "surrounding whitespace is trimmed",
			headerStrings: []string{"   X-Served-By   :   worker  "},
			valid:         true,
		},
		{
			name:          "value with spaces",
			headerStrings: []string{"Cache-Control: public, max-age=60"},
			valid:         true,
		},
		{
			name:          "lowercase key",
			headerStrings: []string{"content-security-policy: default-src 'self'"},
			valid:         true,
		},
		{
			name:          "multiple header strings",
			headerStrings: []string{"content-security-policy: default-src 'self'", "X-Served-By: worker", "Cache-Control : no-store"},
			valid:         true,
		},
		{
			name:          "missing separator",
			headerStrings: []string{"X-Served-By worker"},
			valid:         false,
		},
		{
			name:          "wrong separator",
			headerStrings: []string{"X-Served-By= worker"},
			valid:         false,
		},
		{
			name:          "valid mixed with invalid",
			headerStrings: []string{"content-security-policy: default-src 'self'", "broken"},
			valid:         false,
		},
		{
			name:          "multiple headers in single string",
			headerStrings: []string{"X-Served-By: worker,Cache-Control: no-store"},
			valid:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeaderString(tt.headerStrings)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestAddCustomHeaders(t *testing.T) {
	tests := []struct {
		name          string
		headerStrings []string
		wantHeaders   map[string]string
	}{
		{
			name:          "simple header",
			headerStrings: []string{"X-Served-By: worker"},
			wantHeaders:   map[string]string{"X-Served-By": "worker"},
		},
		{
			name:          "surrounding whitespace is trimmed",
			headerStrings: []string{"   X-Served-By   :   worker  "},
			wantHeaders:   map[string]string{"X-Served-By": "worker"},
		},
		{
			name:          "value with spaces",
			headerStrings: []string{"Cache-Control: public, max-age=60"},
			wantHeaders:   map[string]string{"Cache-Control": "public, max-age=60"},
		},
		{
			name:          "multiple header strings",
			headerStrings: []string{"content-security-policy: default-src 'self'", "X-Served-By: worker"},
			wantHeaders:   map[string]string{"content-security-policy": "default-src 'self'", "X-Served-By": "worker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, err := ParseHeaderString(tt.headerStrings)
			require.NoError(t, err)
			w := httptest.NewRecorder()
			AddCustomHeaders(w, headers)
			for k, v := range tt.wantHeaders {
				require.Equal(t, v, w.Header().Get(k))
			}
		})
	}
}
