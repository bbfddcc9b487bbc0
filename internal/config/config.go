// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration management for lilim.
//
// Loads from ~/.lilim/config.toml (or config.json as a fallback), applies
// environment variable overrides, validates, and fills defaults. Files are
// written with 0600 permissions since provider API keys live here.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lilithlinux/lilim/internal/classify"
	"github.com/lilithlinux/lilim/internal/util"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// CurrentVersion is written to new config files.
	CurrentVersion = 1

	// DirName is the state directory under the user home.
	DirName = ".lilim"
)

// ============================================================================
// CONFIGURATION TYPES
// ============================================================================

// Config is the root configuration.
type Config struct {
	Version int `toml:"version" json:"version"`

	Local     LocalConfig      `toml:"local" json:"local"`
	Providers []ProviderConfig `toml:"providers" json:"providers"`
	Domains   []string         `toml:"domains" json:"domains"`
	Assets    AssetsConfig     `toml:"assets" json:"assets"`
	Timeouts  TimeoutConfig    `toml:"timeouts" json:"timeouts"`
	Download  DownloadConfig   `toml:"download" json:"download"`
}

// LocalConfig configures the local inference backend.
type LocalConfig struct {
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`
	Model     string `toml:"model" json:"model"`
}

// ProviderConfig configures one cloud provider in the fallback chain.
// Chain order is the slice order.
type ProviderConfig struct {
	Name       string `toml:"name" json:"name"`
	DailyLimit int    `toml:"daily_limit" json:"daily_limit"`
	APIKey     string `toml:"api_key" json:"api_key"`
	BaseURL    string `toml:"base_url" json:"base_url"`
	Model      string `toml:"model" json:"model"`
}

// AssetsConfig selects the active local model asset.
type AssetsConfig struct {
	Active string `toml:"active" json:"active"`
}

// TimeoutConfig holds per-operation deadlines.
type TimeoutConfig struct {
	SearchSeconds int `toml:"search_seconds" json:"search_seconds"`
	InferSeconds  int `toml:"infer_seconds" json:"infer_seconds"`
}

// Search returns the filesystem search deadline.
func (t TimeoutConfig) Search() time.Duration {
	return time.Duration(t.SearchSeconds) * time.Second
}

// Infer returns the inference deadline (local and cloud).
func (t TimeoutConfig) Infer() time.Duration {
	return time.Duration(t.InferSeconds) * time.Second
}

// DownloadConfig tunes simulated asset download progress.
type DownloadConfig struct {
	StepPercent    int `toml:"step_percent" json:"step_percent"`
	StepIntervalMs int `toml:"step_interval_ms" json:"step_interval_ms"`
}

// StepInterval returns the delay between progress steps.
func (d DownloadConfig) StepInterval() time.Duration {
	return time.Duration(d.StepIntervalMs) * time.Millisecond
}

// ============================================================================
// DEFAULTS
// ============================================================================

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Local: LocalConfig{
			OllamaURL: "http://127.0.0.1:11434",
			Model:     "phi3:mini",
		},
		Providers: []ProviderConfig{
			{Name: "groq", DailyLimit: 14400, BaseURL: "https://api.groq.com/openai/v1", Model: "llama-3.1-8b-instant"},
			{Name: "together", DailyLimit: 1000, BaseURL: "https://api.together.xyz/v1", Model: "meta-llama/Llama-3-8b-chat-hf"},
			{Name: "openrouter", DailyLimit: 200, BaseURL: "https://openrouter.ai/api/v1", Model: "openrouter/auto"},
		},
		Domains: []string{"sysadmin", "techsupport"},
		Assets: AssetsConfig{
			Active: "phi-2-3b",
		},
		Timeouts: TimeoutConfig{
			SearchSeconds: 5,
			InferSeconds:  30,
		},
		Download: DownloadConfig{
			StepPercent:    10,
			StepIntervalMs: 500,
		},
	}
}

// ============================================================================
// PATHS
// ============================================================================

// Dir returns the lilim state directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// ============================================================================
// LOADING
// ============================================================================

// Load reads the configuration from the state directory. TOML is preferred,
// JSON accepted for compatibility. A missing file yields Default(). Env
// overrides are applied after the file, then defaults fill gaps and the
// result is validated.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with an explicit state directory (used by tests).
func LoadFrom(dir string) (*Config, error) {
	cfg, err := readFile(dir)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func readFile(dir string) (*Config, error) {
	tomlPath := filepath.Join(dir, "config.toml")
	if data, err := os.ReadFile(tomlPath); err == nil {
		var cfg Config
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
		return &cfg, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", tomlPath, err)
	}

	jsonPath := filepath.Join(dir, "config.json")
	if data, err := os.ReadFile(jsonPath); err == nil {
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
		return &cfg, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}

	return Default(), nil
}

// ============================================================================
// ENVIRONMENT OVERRIDES
// ============================================================================

// ApplyEnvOverrides applies LILIM_* environment variables on top of the
// loaded values. Keys land on the matching provider by name.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LILIM_MODEL"); v != "" {
		c.Local.Model = v
	}
	if v := os.Getenv("LILIM_OLLAMA_URL"); v != "" {
		c.Local.OllamaURL = v
	}
	if v := os.Getenv("LILIM_DOMAINS"); v != "" {
		c.Domains = splitList(v)
	}

	keys := map[string]string{
		"groq":       os.Getenv("LILIM_GROQ_KEY"),
		"together":   os.Getenv("LILIM_TOGETHER_KEY"),
		"openrouter": os.Getenv("LILIM_OPENROUTER_KEY"),
	}
	for i := range c.Providers {
		if k := keys[c.Providers[i].Name]; k != "" {
			c.Providers[i].APIKey = k
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ============================================================================
// DEFAULTS FILL
// ============================================================================

// SetDefaults fills zero values with defaults. Provider entries keep their
// configured order; missing limits and URLs are taken from the default
// provider of the same name when one exists.
func (c *Config) SetDefaults() {
	def := Default()

	if c.Version == 0 {
		c.Version = CurrentVersion
	}
	if c.Local.OllamaURL == "" {
		c.Local.OllamaURL = def.Local.OllamaURL
	}
	if c.Local.Model == "" {
		c.Local.Model = def.Local.Model
	}
	if len(c.Providers) == 0 {
		c.Providers = def.Providers
	} else {
		byName := make(map[string]ProviderConfig, len(def.Providers))
		for _, p := range def.Providers {
			byName[p.Name] = p
		}
		for i := range c.Providers {
			d, ok := byName[c.Providers[i].Name]
			if !ok {
				continue
			}
			if c.Providers[i].DailyLimit == 0 {
				c.Providers[i].DailyLimit = d.DailyLimit
			}
			if c.Providers[i].BaseURL == "" {
				c.Providers[i].BaseURL = d.BaseURL
			}
			if c.Providers[i].Model == "" {
				c.Providers[i].Model = d.Model
			}
		}
	}
	if c.Domains == nil {
		c.Domains = def.Domains
	}
	if c.Assets.Active == "" {
		c.Assets.Active = def.Assets.Active
	}
	if c.Timeouts.SearchSeconds == 0 {
		c.Timeouts.SearchSeconds = def.Timeouts.SearchSeconds
	}
	if c.Timeouts.InferSeconds == 0 {
		c.Timeouts.InferSeconds = def.Timeouts.InferSeconds
	}
	if c.Download.StepPercent == 0 {
		c.Download.StepPercent = def.Download.StepPercent
	}
	if c.Download.StepIntervalMs == 0 {
		c.Download.StepIntervalMs = def.Download.StepIntervalMs
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects all validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e), strings.Join(msgs, "; "))
}

// Validate checks the configuration and returns all problems found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Version != CurrentVersion {
		errs = append(errs, ValidationError{"version", fmt.Sprintf("unsupported version %d", c.Version)})
	}
	if c.Local.OllamaURL == "" {
		errs = append(errs, ValidationError{"local.ollama_url", "must not be empty"})
	}
	if c.Local.Model == "" {
		errs = append(errs, ValidationError{"local.model", "must not be empty"})
	}

	seen := make(map[string]bool)
	for i, p := range c.Providers {
		field := fmt.Sprintf("providers[%d]", i)
		if p.Name == "" {
			errs = append(errs, ValidationError{field + ".name", "must not be empty"})
			continue
		}
		if seen[p.Name] {
			errs = append(errs, ValidationError{field + ".name", fmt.Sprintf("duplicate provider %q", p.Name)})
		}
		seen[p.Name] = true
		if p.DailyLimit < 0 {
			errs = append(errs, ValidationError{field + ".daily_limit", "must not be negative"})
		}
		if p.BaseURL == "" {
			errs = append(errs, ValidationError{field + ".base_url", "must not be empty"})
		}
	}

	for i, d := range c.Domains {
		if !classify.KnownDomain(d) {
			errs = append(errs, ValidationError{fmt.Sprintf("domains[%d]", i), fmt.Sprintf("unknown domain %q", d)})
		}
	}

	if c.Timeouts.SearchSeconds < 0 {
		errs = append(errs, ValidationError{"timeouts.search_seconds", "must not be negative"})
	}
	if c.Timeouts.InferSeconds < 0 {
		errs = append(errs, ValidationError{"timeouts.infer_seconds", "must not be negative"})
	}
	if c.Download.StepPercent < 1 || c.Download.StepPercent > 100 {
		errs = append(errs, ValidationError{"download.step_percent", "must be between 1 and 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EnabledDomains returns the configured domains as typed values.
func (c *Config) EnabledDomains() []classify.Domain {
	out := make([]classify.Domain, 0, len(c.Domains))
	for _, d := range c.Domains {
		out = append(out, classify.Domain(d))
	}
	return out
}

// Provider returns the configured provider by name.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// ============================================================================
// SAVING
// ============================================================================

// SaveTOML writes the configuration to config.toml in dir. The write is
// atomic and the file is created 0600 since it may hold API keys.
func (c *Config) SaveTOML(dir string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
