// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

// Package config loads service configuration from a YAML file,
// environment variables, and command-line flags, in that order of
// precedence (later sources win).
package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the root service configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Observability ObservabilityConfig `koanf:"observability"`
	Database      DatabaseConfig      `koanf:"database"`
	Auth          AuthConfig          `koanf:"auth"`
	Wallet        WalletConfig        `koanf:"wallet"`
	Log           LogConfig           `koanf:"log"`
}

// ServerConfig configures the public HTTP API listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ObservabilityConfig configures the internal metrics/health listener.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures PostgreSQL connectivity.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig configures token signing. SigningKey is secret material;
// it is never logged.
type AuthConfig struct {
	SigningKey string `koanf:"signing_key"`
	Issuer     string `koanf:"issuer"`
}

// WalletConfig configures the wallet provisioning client. An empty URL
// disables provisioning.
type WalletConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// envPrefix is stripped from environment variables before lookup in envKeys.
const envPrefix = "PLAYERD_"

// envKeys maps environment variable names (without prefix) to config
// keys. An explicit table instead of mechanical underscore-to-dot
// mapping, because keys like signing_key contain underscores themselves.
var envKeys = map[string]string{
	"SERVER_ADDR":             "server.addr",
	"SERVER_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
	"OBSERVABILITY_ADDR":      "observability.addr",
	"DATABASE_URL":            "database.url",
	"AUTH_SIGNING_KEY":        "auth.signing_key",
	"AUTH_ISSUER":             "auth.issuer",
	"WALLET_URL":              "wallet.url",
	"WALLET_TIMEOUT":          "wallet.timeout",
	"LOG_LEVEL":               "log.level",
	"LOG_FORMAT":              "log.format",
}

// Load reads configuration from the given YAML file (skipped when path
// is empty), then environment variables prefixed with PLAYERD_, then
// the given flag set (nil to skip). Defaults are applied afterwards and
// the result validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_UNREADABLE").
				With("path", path).
				Wrap(err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return envKeys[s[len(envPrefix):]]
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Observability.Addr == "" {
		c.Observability.Addr = ":9090"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "players.bigpot.io"
	}
	if c.Wallet.Timeout == 0 {
		c.Wallet.Timeout = 5 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate checks that required values are present and enumerations are
// within range. The signing key is required up front so a misconfigured
// service fails at startup instead of minting unverifiable tokens.
func (c *Config) Validate() error {
	if c.Auth.SigningKey == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "auth.signing_key").
			Errorf("token signing key is required")
	}
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "database.url").
			Errorf("database url is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return oops.Code("CONFIG_INVALID").
			With("field", "log.level").
			Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").
			With("field", "log.format").
			Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Redacted returns a loggable summary of the configuration with secret
// material masked.
func (c *Config) Redacted() string {
	return fmt.Sprintf("server=%s observability=%s issuer=%s wallet=%s log=%s/%s signing_key=****",
		c.Server.Addr, c.Observability.Addr, c.Auth.Issuer, c.Wallet.URL, c.Log.Level, c.Log.Format)
}
