// Package config loads the immutable run configuration: a YAML config
// file plus secrets resolved from an optional JSON secrets file and the
// environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v6"
	"github.com/ghodss/yaml"
)

const (
	defaultTimezone = "America/Argentina/Buenos_Aires"
	defaultWindow   = 3
	defaultRounding = 2
	defaultSchedule = "0 0 9 * * *"
)

// Load reads the config file and resolves secrets. secretsFile may be
// empty; a missing secrets file is not an error because every live
// collaborator degrades to pending payloads without credentials.
func Load(configFile, secretsFile string) (Config, error) {
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", configFile, err)
	}
	applyDefaults(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	secrets, err := loadSecrets(secretsFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Secrets = secrets
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.BusinessDayWindow == 0 {
		cfg.BusinessDayWindow = defaultWindow
	}
	if cfg.Currency.Rounding == 0 {
		cfg.Currency.Rounding = defaultRounding
	}
	if cfg.Currency.Primary == "" {
		cfg.Currency.Primary = "ARS"
	}
	if cfg.Currency.Secondary == "" {
		cfg.Currency.Secondary = "USD"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}
	if cfg.Tracking.EntrySign == 0 {
		cfg.Tracking.EntrySign = -1
	}
	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = "artifacts"
	}
	if cfg.Invoices.WatchDir != "" {
		cfg.Invoices.WatchDir = ExpandPath(cfg.Invoices.WatchDir)
	}
	if cfg.Messages.DefaultKey == "" {
		cfg.Messages.DefaultKey = "cierre_facturacion"
	}
}

func validate(cfg Config) error {
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.BusinessDayWindow < 1 {
		return fmt.Errorf("business_day_window must be >= 1, got %d", cfg.BusinessDayWindow)
	}
	seen := map[string]bool{}
	for i, entity := range cfg.Entities {
		if entity.Alias == "" {
			return fmt.Errorf("entity %d: alias is required", i)
		}
		if seen[entity.Alias] {
			return fmt.Errorf("duplicate entity alias %q", entity.Alias)
		}
		seen[entity.Alias] = true
		if !entity.Input.IsPositive() && !entity.FallbackInput.IsPositive() {
			return fmt.Errorf("entity %s: needs an input or fallback_input amount", entity.Alias)
		}
	}
	return nil
}

// loadSecrets merges environment secrets over file secrets: the
// environment wins per field.
func loadSecrets(secretsFile string) (Secrets, error) {
	var fileSecrets Secrets
	if secretsFile != "" {
		raw, err := os.ReadFile(secretsFile)
		if err == nil {
			if jerr := json.Unmarshal(raw, &fileSecrets); jerr != nil {
				return Secrets{}, fmt.Errorf("parse secrets %s: %w", secretsFile, jerr)
			}
		} else if !os.IsNotExist(err) {
			return Secrets{}, fmt.Errorf("read secrets: %w", err)
		}
	}

	var envSecrets Secrets
	if err := env.Parse(&envSecrets); err != nil {
		return Secrets{}, fmt.Errorf("parse env secrets: %w", err)
	}

	if err := mergo.Merge(&envSecrets, fileSecrets); err != nil {
		return Secrets{}, fmt.Errorf("merge secrets: %w", err)
	}
	if envSecrets.GoogleServiceAccount != "" {
		envSecrets.GoogleServiceAccount = ExpandPath(envSecrets.GoogleServiceAccount)
	}
	return envSecrets, nil
}

// Location returns the configured timezone. Call after Load validated it.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// HasGoogleCredentials reports whether the Sheets/Drive collaborators can
// take their live path.
func (c Config) HasGoogleCredentials() bool {
	if c.Secrets.GoogleServiceAccount == "" {
		return false
	}
	_, err := os.Stat(c.Secrets.GoogleServiceAccount)
	return err == nil
}

// HasTrackingCredentials reports whether the transaction collaborator can
// take its live path.
func (c Config) HasTrackingCredentials() bool {
	return c.Secrets.TrackingToken != "" && c.Tracking.BudgetID != ""
}

// ExpandPath expands ~ and environment variables in a path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}
