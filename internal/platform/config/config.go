// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, VNDB client) via constructors.
  - Zero Hidden State: No global variables are used to store config.

The same schema is shared by cmd/api, cmd/ingest and cmd/backfill; each binary
reads only the groups it needs.
*/
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// # Configuration Schema

// Config holds all runtime configuration for the vnshelf binaries.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Key-Value Cache (Redis). Optional: enables the VNDB page cache and the
	// redis readiness check when set.
	RedisURL string `env:"REDIS_URL"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"vnshelf.app"`

	// Ingestion source and pagination policy
	Source SourceConfig

	// TitleLanguage is the language whose entry in the titles list is used
	// when a record carries no alternate title.
	TitleLanguage string `env:"TITLE_LANGUAGE" envDefault:"ja"`

	// TagTranslationsPath optionally points at a YAML file replacing the
	// embedded tag translation table.
	TagTranslationsPath string `env:"TAG_TRANSLATIONS_PATH"`

	// PushgatewayURL receives the metrics of each ingestion run when set.
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
}

// SourceConfig configures the VNDB client and the pagination driver.
//
// CacheTTL enables the Redis page cache when positive. Cached pages are
// replayed instead of re-fetched until they expire, so a run inside that
// window does not see upstream changes.
type SourceConfig struct {
	BaseURL      string        `env:"VNDB_API_URL"       envDefault:"https://api.vndb.org/kana"`
	Filters      string        `env:"VNDB_FILTERS"       envDefault:"[]"`
	Fields       []string      `env:"VNDB_FIELDS"        envSeparator:","`
	Sort         string        `env:"VNDB_SORT"          envDefault:"votecount"`
	Reverse      bool          `env:"VNDB_REVERSE"       envDefault:"true"`
	PageSize     int           `env:"VNDB_PAGE_SIZE"     envDefault:"100"`
	PageCeiling  int           `env:"VNDB_PAGE_CEILING"  envDefault:"10"`
	RateInterval time.Duration `env:"VNDB_RATE_INTERVAL" envDefault:"1500ms"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT"       envDefault:"30s"`
	CacheTTL     time.Duration `env:"VNDB_CACHE_TTL"     envDefault:"0s"`
}

// maxPageSize is the largest page the VNDB API serves.
const maxPageSize = 100

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks the values env cannot express as tags and canonicalises
// the title language.
func (c *Config) validate() error {
	tag, err := language.Parse(c.TitleLanguage)
	if err != nil {
		return fmt.Errorf("config: invalid TITLE_LANGUAGE %q: %w", c.TitleLanguage, err)
	}
	c.TitleLanguage = tag.String()

	if !json.Valid([]byte(c.Source.Filters)) {
		return fmt.Errorf("config: VNDB_FILTERS is not valid JSON")
	}

	if c.Source.PageSize < 1 || c.Source.PageSize > maxPageSize {
		return fmt.Errorf("config: VNDB_PAGE_SIZE must be between 1 and %d, got %d", maxPageSize, c.Source.PageSize)
	}

	if c.Source.CacheTTL < 0 {
		return fmt.Errorf("config: VNDB_CACHE_TTL must not be negative, got %s", c.Source.CacheTTL)
	}

	if c.Source.PageCeiling < 1 {
		return fmt.Errorf("config: VNDB_PAGE_CEILING must be positive, got %d", c.Source.PageCeiling)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginSuffix is the domain suffix accepted by CORS outside development.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
