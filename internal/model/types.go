// Package model defines shared data structures.
package model

import "time"

// CharState is the per-position outcome for a reference character.
type CharState byte

// Per-position states. Untyped is the zero value.
const (
	Untyped CharState = iota
	Correct
	Incorrect
)

// Checkpoint is the persisted partial progress for one file. At most one
// exists per file; it is replaced on save and deleted on completion or reset.
type Checkpoint struct {
	FilePath        string
	ContentHash     string
	CursorPosition  int
	TotalCharacters int
	CorrectCount    int
	IncorrectCount  int
	Elapsed         time.Duration
	IsPaused        bool
	// States holds one CharState byte per position below CursorPosition,
	// so a restored session shows the same correct/incorrect marks.
	States    []byte
	UpdatedAt time.Time
}

// SessionResult is one row of the append-only session history.
type SessionResult struct {
	FilePath       string
	Language       string
	WPM            float64
	Accuracy       float64
	CorrectCount   int
	IncorrectCount int
	Duration       time.Duration
	Completed      bool
	RecordedAt     time.Time
}

// GhostSample is one (elapsed, cursor) point of a ghost trace.
type GhostSample struct {
	Elapsed  time.Duration `json:"t"`
	Position int           `json:"p"`
}

// GhostTrace is the time-ordered cursor trace of the fastest completed run
// for a file. It is replaced only by a strictly faster completion.
type GhostTrace struct {
	FilePath    string
	ContentHash string
	WPM         float64
	Duration    time.Duration
	RecordedAt  time.Time
	Samples     []GhostSample
}

// Config holds the read-only engine and display settings for a practice run.
type Config struct {
	PauseDelay     time.Duration
	AdvanceOnError bool
	InstantDeath   bool
	Ghost          bool
	SpaceGlyph     rune
	NewlineGlyph   rune
	TabGlyph       rune
}
