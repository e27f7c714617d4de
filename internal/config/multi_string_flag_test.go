package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiStringFlagAppendsOnSet(t *testing.T) {
	var flag MultiStringFlag

	require.NoError(t, flag.Set("/"))
	require.NoError(t, flag.Set("/css/main.css"))

	require.EqualError(t, flag.Set(""), "value cannot be empty")

	require.Equal(t, MultiStringFlag{value: []string{"/", "/css/main.css"}}, flag)
}

func TestMultiStringFlag_Split(t *testing.T) {
	tests := []struct {
		name       string
		s          *MultiStringFlag
		wantResult []string
	}{
		{
			name:       "empty_string",
			s:          &MultiStringFlag{}, // -flag ""
			wantResult: []string{},
		},
		{
			name:       "one_value",
			s:          &MultiStringFlag{value: []string{"/manifest.json"}}, // -flag "/manifest.json"
			wantResult: []string{"/manifest.json"},
		},
		{
			name:       "multiple_values",
			s:          &MultiStringFlag{value: []string{"/", "", "/about/"}}, // -flag "/,,/about/"
			wantResult: []string{"/", "", "/about/"},
		},
		{
			name:       "multiple_values_in_one_string",
			s:          &MultiStringFlag{value: []string{"/posts/,/about/"}}, // -flag "/posts/,/about/"
			wantResult: []string{"/posts/", "/about/"},
		},
		{
			name:       "different_separator",
			s:          &MultiStringFlag{value: []string{"/", "/about/"}, separator: ";"}, // -flag "/;/about/"
			wantResult: []string{"/", "/about/"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotResult := tt.s.Split()
			require.ElementsMatch(t, tt.wantResult, gotResult)
			require.Equal(t, strings.Join(gotResult, tt.s.separator), strings.Join(tt.wantResult, tt.s.separator))
		})
	}
}
