// Package config provides Viper-based configuration loading for worldseed.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Placement profiles.
const (
	ProfileHarmsWay = "harms-way"
	ProfileFlags    = "flags"
)

// PacksConfig names the content packs under WorldConfig.PacksDir.
type PacksConfig struct {
	Journals string `mapstructure:"journals"`
	Actors   string `mapstructure:"actors"`
	Items    string `mapstructure:"items"`
	Scenes   string `mapstructure:"scenes"`
}

// WorldConfig holds the import target and content locations.
type WorldConfig struct {
	// Module is the flag and setting scope for this content, e.g. "dgr-harms-way".
	Module string `mapstructure:"module"`
	// Title is shown in the import prompt.
	Title string `mapstructure:"title"`
	// Store selects the host backend: "memory" or "postgres".
	Store string `mapstructure:"store"`
	// Manifest is the path to the folder manifest (YAML or JSON).
	Manifest string `mapstructure:"manifest"`
	// PacksDir is the directory holding the content packs.
	PacksDir string `mapstructure:"packs_dir"`
	// Packs names each content pack; empty names default from Module.
	Packs PacksConfig `mapstructure:"packs"`
	// Profile selects folder placement: "harms-way" or "flags".
	Profile string `mapstructure:"profile"`
	// ThumbnailConcurrency bounds concurrent thumbnail renders.
	ThumbnailConcurrency int `mapstructure:"thumbnail_concurrency"`
	// ThumbnailDir is where the postgres host records thumbnail paths.
	ThumbnailDir string `mapstructure:"thumbnail_dir"`
}

// PackNames returns the configured pack names with defaults filled in from Module.
//
// Postcondition: Every field of the result is non-empty.
func (w WorldConfig) PackNames() PacksConfig {
	p := w.Packs
	if p.Journals == "" {
		p.Journals = w.Module + "-journals"
	}
	if p.Actors == "" {
		p.Actors = w.Module + "-actors"
	}
	if p.Items == "" {
		p.Items = w.Module + "-items"
	}
	if p.Scenes == "" {
		p.Scenes = w.Module + "-scenes"
	}
	return p
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	World    WorldConfig    `mapstructure:"world"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the postgres store is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateWorld(c.World); err != nil {
		errs = append(errs, err.Error())
	}
	if c.World.Store == StorePostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateDatabase checks the database settings regardless of the selected
// store, for callers that always connect to PostgreSQL.
func (c Config) ValidateDatabase() error {
	if err := validateDatabase(c.Database); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func validateWorld(w WorldConfig) error {
	var errs []string
	if w.Module == "" {
		errs = append(errs, "world.module must not be empty")
	}
	validStores := map[string]bool{StoreMemory: true, StorePostgres: true}
	if !validStores[w.Store] {
		errs = append(errs, fmt.Sprintf("world.store must be one of [memory, postgres], got %q", w.Store))
	}
	if w.Manifest == "" {
		errs = append(errs, "world.manifest must not be empty")
	}
	if w.PacksDir == "" {
		errs = append(errs, "world.packs_dir must not be empty")
	}
	validProfiles := map[string]bool{ProfileHarmsWay: true, ProfileFlags: true}
	if !validProfiles[w.Profile] {
		errs = append(errs, fmt.Sprintf("world.profile must be one of [harms-way, flags], got %q", w.Profile))
	}
	if w.ThumbnailConcurrency < 1 {
		errs = append(errs, fmt.Sprintf("world.thumbnail_concurrency must be >= 1, got %d", w.ThumbnailConcurrency))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. A .env file in the working directory,
// when present, is loaded into the environment first.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with WORLDSEED_ prefix
	v.SetEnvPrefix("WORLDSEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewViper returns a Viper instance carrying the defaults, for callers that
// build configuration without a file.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "worldseed")
	v.SetDefault("database.password", "worldseed")
	v.SetDefault("database.name", "worldseed")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("world.module", "dgr-harms-way")
	v.SetDefault("world.title", "Degenesis Rebirth Harm's Way")
	v.SetDefault("world.store", StoreMemory)
	v.SetDefault("world.manifest", "content/initialization.json")
	v.SetDefault("world.packs_dir", "content/packs")
	v.SetDefault("world.profile", ProfileHarmsWay)
	v.SetDefault("world.thumbnail_concurrency", 4)
	v.SetDefault("world.thumbnail_dir", "thumbs")
}
