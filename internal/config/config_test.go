package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg != (Config{}) {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "config.toml")
	cfg := &Config{
		DataDir:          "/srv/pa",
		StoreMode:        "sqlite",
		DefaultFormat:    "json",
		Color:            "never",
		FuzzyThreshold:   0.75,
		SuggestThreshold: 0.5,
		MaxSuggestions:   4,
		BirthdayDays:     14,
		BackupKeep:       3,
		MetricsFile:      "/tmp/pa.prom",
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "fuzzy_threshold = 0.75") {
		t.Errorf("unexpected TOML:\n%s", data)
	}
}

func TestSaveOmitsUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := (&Config{StoreMode: "json"}).SaveTo(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "backup_keep") {
		t.Errorf("unset key written:\n%s", data)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("store_mode = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestGetSet(t *testing.T) {
	cfg := &Config{}
	tests := []struct {
		key, value string
	}{
		{"data_dir", "/data"},
		{"store_mode", "sqlite"},
		{"default_format", "table"},
		{"color", "always"},
		{"fuzzy_threshold", "0.8"},
		{"suggest_threshold", "0.35"},
		{"max_suggestions", "5"},
		{"birthday_days", "30"},
		{"backup_keep", "20"},
		{"metrics_file", "pa.prom"},
	}
	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err != nil {
			t.Errorf("Set(%s, %s): %v", tt.key, tt.value, err)
			continue
		}
		got, err := cfg.Get(tt.key)
		if err != nil {
			t.Errorf("Get(%s): %v", tt.key, err)
		}
		if got != tt.value {
			t.Errorf("Get(%s) = %q, want %q", tt.key, got, tt.value)
		}
	}
	if len(tests) != len(ValidKeys()) {
		t.Errorf("test covers %d keys, ValidKeys has %d", len(tests), len(ValidKeys()))
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	cfg := &Config{FuzzyThreshold: 0.7, BackupKeep: 5}
	bad := []struct {
		key, value string
	}{
		{"store_mode", "remote"},
		{"default_format", "xml"},
		{"color", "sometimes"},
		{"fuzzy_threshold", "abc"},
		{"fuzzy_threshold", "-1"},
		{"fuzzy_threshold", "3"},
		{"max_suggestions", "0"},
		{"birthday_days", "400"},
		{"backup_keep", "1.5"},
		{"nope", "x"},
	}
	for _, tt := range bad {
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%s, %q) should fail", tt.key, tt.value)
		}
	}
	if cfg.FuzzyThreshold != 0.7 || cfg.BackupKeep != 5 {
		t.Errorf("failed Set changed values: %+v", cfg)
	}
	if _, err := cfg.Get("nope"); err == nil {
		t.Error("Get of unknown key should fail")
	}
}

func TestSetEmptyResets(t *testing.T) {
	cfg := &Config{StoreMode: "sqlite", BirthdayDays: 30}
	if err := cfg.Set("store_mode", ""); err != nil || cfg.StoreMode != "" {
		t.Errorf("store_mode not reset: %v %+v", err, cfg)
	}
	if err := cfg.Set("birthday_days", ""); err != nil || cfg.Birthdays() != DefaultBirthdayDays {
		t.Errorf("birthday_days not reset: %v %+v", err, cfg)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.Birthdays() != 7 || cfg.Backups() != 10 {
		t.Errorf("defaults = %d/%d", cfg.Birthdays(), cfg.Backups())
	}
	if got := cfg.ResolveDataDir("/home/x"); got != "/home/x" {
		t.Errorf("ResolveDataDir = %q", got)
	}
	cfg.DataDir = "/elsewhere"
	if got := cfg.ResolveDataDir("/home/x"); got != "/elsewhere" {
		t.Errorf("ResolveDataDir = %q", got)
	}
}

func TestHomeEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	if Home() != dir {
		t.Errorf("Home = %q, want %q", Home(), dir)
	}
	if Path(dir) != filepath.Join(dir, "config.toml") {
		t.Errorf("Path = %q", Path(dir))
	}

	cfg := &Config{Color: "never"}
	if err := cfg.SaveTo(Path(dir)); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Color != "never" {
		t.Errorf("Load via PA_HOME = %+v", loaded)
	}
}
