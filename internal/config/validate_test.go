package config

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	origin, _ := url.Parse("http://127.0.0.1:1111")

	return &Config{
		Cache: Cache{
			VersionTag:      "v1",
			DBPath:          "worker-cache.db",
			PrecachePaths:   []string{"/", "/css/main.css"},
			RuntimePatterns: []string{`\.css$`},
		},
		Upstream: Upstream{Origin: origin},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := map[string]struct {
		modify  func(*Config)
		wantErr string
	}{
		"valid_config": {
			modify: func(*Config) {},
		},
		"missing_origin": {
			modify:  func(c *Config) { c.Upstream.Origin = nil },
			wantErr: "upstream-origin must be defined",
		},
		"bad_origin_scheme": {
			modify: func(c *Config) {
				c.Upstream.Origin, _ = url.Parse("ftp://example.com")
			},
			wantErr: "upstream-origin scheme must be either http:// or https://",
		},
		"empty_version_tag": {
			modify:  func(c *Config) { c.Cache.VersionTag = "" },
			wantErr: "cache-version must not be empty",
		},
		"empty_db_path": {
			modify:  func(c *Config) { c.Cache.DBPath = "" },
			wantErr: "cache-db must not be empty",
		},
		"relative_precache_path": {
			modify:  func(c *Config) { c.Cache.PrecachePaths = []string{"css/main.css"} },
			wantErr: `precache-path "css/main.css" must start with /`,
		},
		"invalid_runtime_pattern": {
			modify:  func(c *Config) { c.Cache.RuntimePatterns = []string{"("} },
			wantErr: "invalid runtime-pattern",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.modify(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCurrentStoreNames(t *testing.T) {
	cache := Cache{VersionTag: "v7"}

	require.Equal(t, "static-v7", cache.StaticStoreName())
	require.Equal(t, "runtime-v7", cache.RuntimeStoreName())
	require.Equal(t, []string{"static-v7", "runtime-v7"}, cache.CurrentStoreNames())
}
