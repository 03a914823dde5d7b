package config

import (
	"errors"
	"path/filepath"
	"testing"

	"entroflow/internal/hydro"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.T9 != 10.0 {
		t.Errorf("expected t9 10, got %f", cfg.T9)
	}
	if cfg.Dtime <= 0 {
		t.Error("dtime should be positive")
	}
	if cfg.TEnd <= 0 {
		t.Error("tend should be positive")
	}
	if !cfg.T9Guess {
		t.Error("the temperature extrapolation should be on by default")
	}
	if cfg.Integrator != "adams-bashforth" {
		t.Errorf("expected integrator adams-bashforth, got %s", cfg.Integrator)
	}
}

func TestParams(t *testing.T) {
	p, err := DefaultConfig().Params()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.RhoRemainder != 1.0e7 {
		t.Errorf("expected rho_2 1e7, got %g", p.RhoRemainder)
	}
}

func TestParams_BadSplit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rho1 = 2.0e8
	_, err := cfg.Params()
	if !errors.Is(err, hydro.ErrDensitySplit) {
		t.Errorf("expected density split error, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Tau = 0.25
	cfg.SdotView = "fuel"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Tau != 0.25 {
		t.Errorf("expected tau 0.25, got %f", loaded.Tau)
	}
	if loaded.SdotView != "fuel" {
		t.Errorf("expected sdot view fuel, got %q", loaded.SdotView)
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	partial := &Config{Tau: 0.5}
	if err := Save(path, partial); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// A fully marshaled file overrides every field, so the zero values of
	// the partial config land as-is after loading.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Tau != 0.5 {
		t.Errorf("expected tau 0.5, got %f", loaded.Tau)
	}
	if loaded.T9 != 0 {
		t.Errorf("expected t9 0 from the saved file, got %f", loaded.T9)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("fiducial")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Tau != 0.1 {
		t.Errorf("expected tau 0.1, got %f", cfg.Tau)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
}
