// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-04
// Last Modified: 2026-03-09

// Package config handles loading and validating Bugport configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LockReasons is the fixed vocabulary GitHub accepts for locking an issue.
// https://docs.github.com/en/rest/issues/issues#lock-an-issue
var LockReasons = []string{"off-topic", "too heated", "resolved", "spam"}

// Config is the root configuration structure.
type Config struct {
	// Bugzilla configures the source tracker connection.
	Bugzilla BugzillaConfig `yaml:"bugzilla"`

	// GitHub configures the target repository.
	GitHub GitHubConfig `yaml:"github"`

	// Import contains migration behavior settings.
	Import ImportConfig `yaml:"import"`

	// Budget contains rate-limit budget settings.
	Budget BudgetConfig `yaml:"budget"`
}

// BugzillaConfig holds Bugzilla connection settings.
type BugzillaConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key,omitempty"`
}

// GitHubConfig holds GitHub target settings.
type GitHubConfig struct {
	Repo  string `yaml:"repo"`
	Token string `yaml:"token,omitempty"`
}

// ImportConfig holds migration behavior settings.
type ImportConfig struct {
	StartID   int `yaml:"start_id"`
	BatchSize int `yaml:"batch_size"`

	// SkipLock disables the final lock step. Locking is on by default.
	SkipLock   bool   `yaml:"skip_lock,omitempty"`
	LockReason string `yaml:"lock_reason"`

	// ExtraLabels are attached to every imported issue in addition to the
	// labels derived from the bug itself.
	ExtraLabels []string `yaml:"extra_labels"`

	ClosingStatuses    []string `yaml:"closing_statuses"`
	ClosingResolutions []string `yaml:"closing_resolutions"`

	MaxAttempts int `yaml:"max_attempts"`
}

// BudgetConfig holds rate-limit budget settings.
type BudgetConfig struct {
	// Reserve is extra headroom demanded beyond each call's need.
	Reserve int `yaml:"reserve"`

	// FreshForSeconds is how long a remaining-calls estimate is trusted
	// before the authoritative rate-limit endpoint is consulted again.
	FreshForSeconds int `yaml:"fresh_for_seconds"`

	// CooldownSeconds is the wait between refreshes while the budget is
	// exhausted.
	CooldownSeconds int `yaml:"cooldown_seconds"`
}

// Default returns a config with all defaults applied, for running without
// a config file (everything supplied via flags and environment variables).
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads a config file from the given path and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parseRaw(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseRaw parses YAML content and applies defaults.
func parseRaw(data []byte) (*Config, error) {
	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	// Search in common locations
	candidates := []string{
		".github/bugport.yaml",
		".github/bugport.yml",
		".bugport.yaml",
		".bugport.yml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Import.StartID == 0 {
		c.Import.StartID = 1
	}
	if c.Import.BatchSize == 0 {
		c.Import.BatchSize = 50
	}
	if c.Import.LockReason == "" {
		c.Import.LockReason = "resolved"
	}
	if c.Import.ExtraLabels == nil {
		c.Import.ExtraLabels = []string{"imported from bugzilla"}
	}
	if len(c.Import.ClosingStatuses) == 0 {
		c.Import.ClosingStatuses = []string{"RESOLVED", "CLOSED", "VERIFIED"}
	}
	if len(c.Import.ClosingResolutions) == 0 {
		c.Import.ClosingResolutions = []string{"FIXED", "INVALID", "WONTFIX", "DUPLICATE", "WORKSFORME"}
	}
	if c.Import.MaxAttempts == 0 {
		c.Import.MaxAttempts = 10
	}
	if c.Budget.FreshForSeconds == 0 {
		c.Budget.FreshForSeconds = 60
	}
	if c.Budget.CooldownSeconds == 0 {
		c.Budget.CooldownSeconds = 300
	}
}

// Validate checks the config for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.GitHub.Repo != "" {
		if _, _, err := SplitRepo(c.GitHub.Repo); err != nil {
			return err
		}
	}

	valid := false
	for _, r := range LockReasons {
		if c.Import.LockReason == r {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid lock_reason %q (must be one of: %s)",
			c.Import.LockReason, strings.Join(LockReasons, ", "))
	}

	if c.Import.StartID < 1 {
		return fmt.Errorf("start_id must be >= 1, got %d", c.Import.StartID)
	}
	if c.Import.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", c.Import.BatchSize)
	}

	return nil
}

// SplitRepo parses "owner/name" into components.
func SplitRepo(repo string) (org, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/name)", repo)
	}
	return parts[0], parts[1], nil
}
