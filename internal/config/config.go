// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

// Package config loads service configuration from a YAML file, environment
// variables, and command-line flags, in increasing order of precedence.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Defaults for optional settings.
const (
	DefaultListenAddr        = ":8080"
	DefaultObservabilityAddr = ":9090"
	DefaultTokenTTL          = time.Hour
	DefaultLogFormat         = "json"
)

// Config holds the service configuration.
type Config struct {
	// ListenAddr is the address the HTTP API listens on.
	ListenAddr string `koanf:"listen-addr"`
	// ObservabilityAddr is the address the health/metrics server listens on.
	ObservabilityAddr string `koanf:"observability-addr"`
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database-url"`
	// TokenSecret is the HMAC signing secret for session tokens.
	TokenSecret string `koanf:"token-secret"`
	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration `koanf:"token-ttl"`
	// LogFormat selects the log output format, "json" or "text".
	LogFormat string `koanf:"log-format"`
}

// Load reads configuration from the optional YAML file at path, the
// DATABASE_URL and TOKEN_SECRET environment variables, and the given flag
// set. Flags changed on the command line take precedence over the
// environment, which takes precedence over the file.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	// Connection strings and secrets are conventionally passed through the
	// environment rather than committed to config files.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		_ = k.Set("database-url", v) //nolint:errcheck // static key cannot fail
	}
	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		_ = k.Set("token-secret", v) //nolint:errcheck // static key cannot fail
	}

	if flags != nil {
		// Passing k makes posflag use flag defaults only for keys not
		// already set, so unchanged flags do not mask file or env values.
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // Validate already attaches codes
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.ObservabilityAddr == "" {
		c.ObservabilityAddr = DefaultObservabilityAddr
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_DATABASE_URL_MISSING").
			Errorf("database-url is required (set DATABASE_URL or --database-url)")
	}
	if c.TokenSecret == "" {
		return oops.Code("CONFIG_TOKEN_SECRET_MISSING").
			Errorf("token-secret is required (set TOKEN_SECRET or --token-secret)")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_LOG_FORMAT_INVALID").
			With("log-format", c.LogFormat).
			Errorf("log-format must be \"json\" or \"text\"")
	}
	return nil
}
