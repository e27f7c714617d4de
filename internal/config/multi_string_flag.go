package config

import (
	"errors"
	"strings"
)

var errMultiStringSetEmptyValue = errors.New("value cannot be empty")

const defaultSeparator = ","

// MultiStringFlag implements the flag.Value interface and allows a string flag
// to be specified multiple times on the command line.
//
// e.g.: -precache-path / -precache-path /css/main.css
type MultiStringFlag struct {
	value     []string
	separator string
}

// String returns the accumulated values joined with the separator.
func (s *MultiStringFlag) String() string {
	return strings.Join(s.value, s.sep())
}

// Set appends a value. Empty values are rejected.
func (s *MultiStringFlag) Set(value string) error {
	if value == "" {
		return errMultiStringSetEmptyValue
	}

	s.value = append(s.value, value)
	return nil
}

// Split returns every configured value, additionally splitting each one on
// the separator so "-flag a,b" and "-flag a -flag b" are equivalent.
func (s *MultiStringFlag) Split() (result []string) {
	for _, str := range s.value {
		result = append(result, strings.Split(str, s.sep())...)
	}

	return
}

func (s *MultiStringFlag) sep() string {
	if s.separator == "" {
		return defaultSeparator
	}

	return s.separator
}
