// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/retype/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	PauseDelay     *float64 `toml:"pause-delay"`
	AdvanceOnError *bool    `toml:"advance-on-error"`
	InstantDeath   *bool    `toml:"instant-death"`
	Ghost          *bool    `toml:"ghost"`
	SpaceGlyph     *string  `toml:"space-glyph"`
	NewlineGlyph   *string  `toml:"newline-glyph"`
	TabGlyph       *string  `toml:"tab-glyph"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks an assembled engine configuration once at the boundary.
// Invalid values are rejected here so the engine never sees them.
func Validate(cfg model.Config) error {
	if cfg.PauseDelay <= 0 {
		return fmt.Errorf("pause-delay must be positive, got %v", cfg.PauseDelay)
	}
	for name, glyph := range map[string]rune{
		"space-glyph":   cfg.SpaceGlyph,
		"newline-glyph": cfg.NewlineGlyph,
		"tab-glyph":     cfg.TabGlyph,
	} {
		if glyph == 0 || glyph == utf8.RuneError {
			return fmt.Errorf("%s must be a single printable character", name)
		}
	}
	return nil
}

// Glyph returns the first rune of a configured glyph string, or the fallback
// when the string is empty or not valid UTF-8.
func Glyph(s string, fallback rune) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return fallback
	}
	return r
}

// Seconds converts a configured float seconds value to a duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
