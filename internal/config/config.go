// Package config handles reading and writing the assistant configuration
// file (<home>/config.toml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// EnvHome overrides the default home directory.
const EnvHome = "PA_HOME"

// Defaults for keys left unset.
const (
	DefaultBirthdayDays = 7
	DefaultBackupKeep   = 10
)

// Config holds assistant configuration settings. Zero values mean "use the
// default".
type Config struct {
	DataDir          string  `toml:"data_dir,omitempty" json:"data_dir,omitempty"`
	StoreMode        string  `toml:"store_mode,omitempty" json:"store_mode,omitempty"`
	DefaultFormat    string  `toml:"default_format,omitempty" json:"default_format,omitempty"`
	Color            string  `toml:"color,omitempty" json:"color,omitempty"`
	FuzzyThreshold   float64 `toml:"fuzzy_threshold,omitempty" json:"fuzzy_threshold,omitempty"`
	SuggestThreshold float64 `toml:"suggest_threshold,omitempty" json:"suggest_threshold,omitempty"`
	MaxSuggestions   int     `toml:"max_suggestions,omitempty" json:"max_suggestions,omitempty"`
	BirthdayDays     int     `toml:"birthday_days,omitempty" json:"birthday_days,omitempty"`
	BackupKeep       int     `toml:"backup_keep,omitempty" json:"backup_keep,omitempty"`
	MetricsFile      string  `toml:"metrics_file,omitempty" json:"metrics_file,omitempty"`
}

// validKeys lists the allowed configuration keys.
var validKeys = map[string]bool{
	"data_dir":          true,
	"store_mode":        true,
	"default_format":    true,
	"color":             true,
	"fuzzy_threshold":   true,
	"suggest_threshold": true,
	"max_suggestions":   true,
	"birthday_days":     true,
	"backup_keep":       true,
	"metrics_file":      true,
}

// ValidKeys returns the sorted list of valid configuration keys.
func ValidKeys() []string {
	return []string{
		"backup_keep", "birthday_days", "color", "data_dir", "default_format",
		"fuzzy_threshold", "max_suggestions", "metrics_file", "store_mode", "suggest_threshold",
	}
}

// Home returns the assistant home directory: $PA_HOME when set, otherwise
// ~/.personal_assistant.
func Home() string {
	if h := os.Getenv(EnvHome); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".personal_assistant")
	}
	return filepath.Join(home, ".personal_assistant")
}

// Path returns the config file path inside home.
func Path(home string) string {
	return filepath.Join(home, "config.toml")
}

// Load reads the config from the default home directory.
func Load() (*Config, error) {
	return LoadFrom(Path(Home()))
}

// LoadFrom reads the config from a specific path. Returns an empty Config if
// the file does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// SaveTo writes the config to a specific path, creating parent directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ResolveDataDir returns data_dir when set, otherwise home.
func (c *Config) ResolveDataDir(home string) string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return home
}

// Birthdays returns birthday_days or its default.
func (c *Config) Birthdays() int {
	if c.BirthdayDays > 0 {
		return c.BirthdayDays
	}
	return DefaultBirthdayDays
}

// Backups returns backup_keep or its default.
func (c *Config) Backups() int {
	if c.BackupKeep > 0 {
		return c.BackupKeep
	}
	return DefaultBackupKeep
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Get returns the string value of a configuration key. Unset keys read as "".
func (c *Config) Get(key string) (string, error) {
	if !validKeys[key] {
		return "", unknownKey(key)
	}
	switch key {
	case "data_dir":
		return c.DataDir, nil
	case "store_mode":
		return c.StoreMode, nil
	case "default_format":
		return c.DefaultFormat, nil
	case "color":
		return c.Color, nil
	case "fuzzy_threshold":
		return formatFloat(c.FuzzyThreshold), nil
	case "suggest_threshold":
		return formatFloat(c.SuggestThreshold), nil
	case "max_suggestions":
		return formatInt(c.MaxSuggestions), nil
	case "birthday_days":
		return formatInt(c.BirthdayDays), nil
	case "backup_keep":
		return formatInt(c.BackupKeep), nil
	case "metrics_file":
		return c.MetricsFile, nil
	default:
		return "", unknownKey(key)
	}
}

func oneOf(key, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}

func parseFloat(key, value string, max float64) (float64, error) {
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 || f > max {
		return 0, fmt.Errorf("%s must be a number in (0, %g], got %q", key, max, value)
	}
	return f, nil
}

func parseInt(key, value string, max int) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("%s must be an integer in [1, %d], got %q", key, max, value)
	}
	return n, nil
}

// Set assigns a value to a configuration key. An empty value resets the
// key to its default.
func (c *Config) Set(key, value string) error {
	if !validKeys[key] {
		return unknownKey(key)
	}
	var err error
	switch key {
	case "data_dir":
		c.DataDir = value
	case "store_mode":
		if err = oneOf(key, value, "json", "sqlite"); err == nil {
			c.StoreMode = value
		}
	case "default_format":
		if err = oneOf(key, value, "table", "json"); err == nil {
			c.DefaultFormat = value
		}
	case "color":
		if err = oneOf(key, value, "auto", "always", "never"); err == nil {
			c.Color = value
		}
	case "fuzzy_threshold", "suggest_threshold":
		var f float64
		if f, err = parseFloat(key, value, 2); err == nil {
			if key == "fuzzy_threshold" {
				c.FuzzyThreshold = f
			} else {
				c.SuggestThreshold = f
			}
		}
	case "max_suggestions", "birthday_days", "backup_keep":
		limits := map[string]int{"max_suggestions": 20, "birthday_days": 366, "backup_keep": 1000}
		var n int
		if n, err = parseInt(key, value, limits[key]); err == nil {
			switch key {
			case "max_suggestions":
				c.MaxSuggestions = n
			case "birthday_days":
				c.BirthdayDays = n
			default:
				c.BackupKeep = n
			}
		}
	case "metrics_file":
		c.MetricsFile = value
	}
	return err
}
