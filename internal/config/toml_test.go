package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/retype/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing config file is not an error: %v", err)
	}
	if cfg.Practice.PauseDelay != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `[practice]
pause-delay = 3.5
advance-on-error = false
instant-death = true
space-glyph = "_"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.PauseDelay == nil || *cfg.Practice.PauseDelay != 3.5 {
		t.Fatalf("pause-delay = %v, want 3.5", cfg.Practice.PauseDelay)
	}
	if cfg.Practice.AdvanceOnError == nil || *cfg.Practice.AdvanceOnError {
		t.Fatalf("advance-on-error not read")
	}
	if cfg.Practice.InstantDeath == nil || !*cfg.Practice.InstantDeath {
		t.Fatalf("instant-death not read")
	}
	if cfg.Practice.SpaceGlyph == nil || *cfg.Practice.SpaceGlyph != "_" {
		t.Fatalf("space-glyph not read")
	}
	if cfg.Practice.Ghost != nil {
		t.Fatalf("unset key decoded to %v", *cfg.Practice.Ghost)
	}
}

func TestValidate(t *testing.T) {
	valid := model.Config{
		PauseDelay:   7 * time.Second,
		SpaceGlyph:   '␣',
		NewlineGlyph: '⏎',
		TabGlyph:     '→',
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	negative := valid
	negative.PauseDelay = -time.Second
	if err := Validate(negative); err == nil {
		t.Fatalf("negative pause-delay accepted")
	}

	zeroDelay := valid
	zeroDelay.PauseDelay = 0
	if err := Validate(zeroDelay); err == nil {
		t.Fatalf("zero pause-delay accepted")
	}

	noGlyph := valid
	noGlyph.SpaceGlyph = 0
	if err := Validate(noGlyph); err == nil {
		t.Fatalf("missing glyph accepted")
	}
}

func TestGlyph(t *testing.T) {
	if got := Glyph("␣x", '.'); got != '␣' {
		t.Fatalf("Glyph = %q, want ␣", got)
	}
	if got := Glyph("", '.'); got != '.' {
		t.Fatalf("Glyph fallback = %q, want .", got)
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(1.5); got != 1500*time.Millisecond {
		t.Fatalf("Seconds(1.5) = %v", got)
	}
}
