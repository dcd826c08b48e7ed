package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

func TestEmbeddedDefaultMatchesDefault(t *testing.T) {
	cfg := Default()
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		t.Fatalf("embedded YAML does not parse: %v", err)
	}
	want := Default()
	if cfg.Rules.Variant != want.Rules.Variant ||
		cfg.CPU.ThinkDelay != want.CPU.ThinkDelay ||
		cfg.Server.Address != want.Server.Address ||
		cfg.Server.IdleTimeout != want.Server.IdleTimeout ||
		cfg.Storage.Path != want.Storage.Path ||
		cfg.Log.Level != want.Log.Level {
		t.Errorf("embedded default %+v differs from Default() %+v", cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", `
rules:
  board_size: 6
  fleet:
    - {name: Skiff, length: 2}
    - {name: Sloop, length: 3}
cpu:
  think_delay: 2s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.Rules.Custom() {
		t.Fatal("Custom() = false")
	}
	rules := cfg.Rules.ToRules()
	if rules.BoardSize != 6 || len(rules.Fleet) != 2 || rules.Fleet[1].Name != "Sloop" {
		t.Errorf("ToRules() = %+v", rules)
	}
	if cfg.CPU.ThinkDelay != 2*time.Second {
		t.Errorf("ThinkDelay = %s, want 2s", cfg.CPU.ThinkDelay)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.Address != ":2222" || cfg.CPU.Name != "Bingo" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) should fail")
	}

	bad := writeFile(t, dir, "bad.yaml", "rules: [not, a, map")
	if _, err := Load(bad); err == nil {
		t.Error("Load(bad yaml) should fail")
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Rules.Variant != "classic" {
		t.Errorf("embedded default variant = %q", cfg.Rules.Variant)
	}

	writeFile(t, home, ".battleship/config.yaml", "rules:\n  variant: quick\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Rules.Variant != "quick" {
		t.Errorf("user config variant = %q, want quick", cfg.Rules.Variant)
	}

	// A broken user file falls through to the defaults.
	writeFile(t, home, ".battleship/config.yaml", "rules: [broken")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Rules.Variant != "classic" {
		t.Errorf("variant after broken user file = %q, want classic", cfg.Rules.Variant)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"no variant", func(c *Config) { c.Rules.Variant = "" }, true},
		{"bad custom fleet", func(c *Config) {
			c.Rules.Fleet = []ShipConfig{{Name: "Huge", Length: 9}}
		}, true},
		{"good custom fleet", func(c *Config) {
			c.Rules.Variant = ""
			c.Rules.Fleet = []ShipConfig{{Name: "Skiff", Length: 2}}
		}, false},
		{"bad pace", func(c *Config) { c.CPU.Pace = "ludicrous" }, true},
		{"negative delay", func(c *Config) { c.CPU.ThinkDelay = -time.Second }, true},
		{"no address", func(c *Config) { c.Server.Address = "" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyPace(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"instant", 0},
		{"", 600 * time.Millisecond},
		{"normal", 600 * time.Millisecond},
		{"slow", 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		p, err := ParsePace(tt.in)
		if err != nil {
			t.Fatalf("ParsePace(%q) failed: %v", tt.in, err)
		}
		cfg := Default()
		ApplyPace(&cfg, p)
		if cfg.CPU.ThinkDelay != tt.want {
			t.Errorf("ApplyPace(%q) delay = %s, want %s", tt.in, cfg.CPU.ThinkDelay, tt.want)
		}
	}

	if _, err := ParsePace("warp"); err == nil {
		t.Error("ParsePace(warp) should fail")
	}
}
