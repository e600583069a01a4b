// Package engine implements the typing session state machine: keystroke
// validation, pause/resume time accounting, checkpoint restore, metrics,
// and ghost race traces.
package engine

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/verte-zerg/retype/internal/model"
)

// Status is the lifecycle state of a session.
type Status int

// Session lifecycle states.
const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusCompleted
	StatusAborted
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrSessionFinished is returned when input reaches a Completed or Aborted
// session. The input is rejected as a no-op; Reset starts over.
var ErrSessionFinished = errors.New("session is finished")

// ErrCheckpointMismatch is returned by Restore when a stored checkpoint does
// not belong to the live reference text. The session stays fresh.
var ErrCheckpointMismatch = errors.New("checkpoint does not match reference text")

// KeystrokeResult reports the outcome of one accepted keystroke.
type KeystrokeResult struct {
	Correct   bool
	Expected  rune
	Completed bool
	Aborted   bool
}

// Session owns the mutable state of one typing run over an immutable
// reference text. It performs no internal concurrency and holds no clock:
// every mutating operation takes the caller's notion of now.
type Session struct {
	filePath    string
	contentHash string
	ref         []rune
	states      []model.CharState

	cursor    int
	correct   int
	incorrect int

	status       Status
	active       time.Duration // accrued active time up to runningSince
	runningSince time.Time     // valid while StatusRunning
	lastInput    time.Time
	startedAt    time.Time

	pauseDelay     time.Duration
	advanceOnError bool
	instantDeath   bool

	recorder *Recorder
}

// NewSession builds a fresh Idle session over the given reference text.
// The content hash is the identity used to validate checkpoints and ghosts.
func NewSession(filePath string, ref []rune, contentHash string, cfg model.Config) *Session {
	s := &Session{
		filePath:       filePath,
		contentHash:    contentHash,
		ref:            ref,
		states:         make([]model.CharState, len(ref)),
		status:         StatusIdle,
		pauseDelay:     cfg.PauseDelay,
		advanceOnError: cfg.AdvanceOnError,
		instantDeath:   cfg.InstantDeath,
	}
	if cfg.Ghost {
		s.recorder = NewRecorder()
	}
	return s
}

// FilePath returns the file identifier the session was opened for.
func (s *Session) FilePath() string { return s.filePath }

// ContentHash returns the reference text identity.
func (s *Session) ContentHash() string { return s.contentHash }

// Status returns the current lifecycle state.
func (s *Session) Status() Status { return s.status }

// Cursor returns the current typing position, always in [0, Total()].
func (s *Session) Cursor() int { return s.cursor }

// Total returns the reference text length in logical characters.
func (s *Session) Total() int { return len(s.ref) }

// Rune returns the logical reference character at position i.
func (s *Session) Rune(i int) rune { return s.ref[i] }

// States exposes the per-position outcomes for rendering. The slice is owned
// by the session; callers must not modify it.
func (s *Session) States() []model.CharState { return s.states }

// Recorder returns the ghost recorder, or nil when ghost sampling is off.
func (s *Session) Recorder() *Recorder { return s.recorder }

// SetPauseDelay changes the inactivity delay mid-session. The new value is
// checked against the already-elapsed idle window on the next Tick. A
// non-positive delay is rejected and the previous value kept.
func (s *Session) SetPauseDelay(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("pause delay must be positive, got %v", d)
	}
	s.pauseDelay = d
	return nil
}

// Restore applies a checkpoint to a fresh session. The checkpoint must carry
// the same content identity and length as the live reference text and be
// internally consistent; anything else returns ErrCheckpointMismatch and
// leaves the session untouched. On success the session is Paused at the
// stored position with per-position marks reapplied.
func (s *Session) Restore(cp model.Checkpoint) error {
	if cp.ContentHash != s.contentHash {
		return fmt.Errorf("%w: content hash %q != %q", ErrCheckpointMismatch, cp.ContentHash, s.contentHash)
	}
	if cp.TotalCharacters != len(s.ref) {
		return fmt.Errorf("%w: stored length %d != %d", ErrCheckpointMismatch, cp.TotalCharacters, len(s.ref))
	}
	if cp.CursorPosition < 0 || cp.CursorPosition > len(s.ref) {
		return fmt.Errorf("%w: cursor %d out of range", ErrCheckpointMismatch, cp.CursorPosition)
	}
	if cp.CorrectCount < 0 || cp.IncorrectCount < 0 || cp.Elapsed < 0 {
		return fmt.Errorf("%w: negative counters", ErrCheckpointMismatch)
	}
	if len(cp.States) != cp.CursorPosition {
		return fmt.Errorf("%w: %d stored states for cursor %d", ErrCheckpointMismatch, len(cp.States), cp.CursorPosition)
	}
	states := make([]model.CharState, len(s.ref))
	for i, b := range cp.States {
		st := model.CharState(b)
		if st != model.Correct && st != model.Incorrect {
			return fmt.Errorf("%w: invalid state %d at position %d", ErrCheckpointMismatch, b, i)
		}
		states[i] = st
	}

	s.states = states
	s.cursor = cp.CursorPosition
	s.correct = cp.CorrectCount
	s.incorrect = cp.IncorrectCount
	s.active = cp.Elapsed
	s.status = StatusPaused
	return nil
}

// Snapshot captures the current progress as a checkpoint record.
func (s *Session) Snapshot(now time.Time) model.Checkpoint {
	states := make([]byte, s.cursor)
	for i := 0; i < s.cursor; i++ {
		states[i] = byte(s.states[i])
	}
	return model.Checkpoint{
		FilePath:        s.filePath,
		ContentHash:     s.contentHash,
		CursorPosition:  s.cursor,
		TotalCharacters: len(s.ref),
		CorrectCount:    s.correct,
		IncorrectCount:  s.incorrect,
		Elapsed:         s.Elapsed(now),
		IsPaused:        s.status != StatusRunning,
		States:          states,
		UpdatedAt:       now,
	}
}

// AcceptKeystroke compares the input to the expected logical character at the
// cursor. A match marks the position Correct and advances; a mismatch marks
// it Incorrect and advances only when advance-on-error is set. With instant
// death enabled a mismatch aborts the session instead.
func (s *Session) AcceptKeystroke(input rune, now time.Time) (KeystrokeResult, error) {
	if s.status == StatusCompleted || s.status == StatusAborted {
		return KeystrokeResult{}, ErrSessionFinished
	}
	if s.cursor >= len(s.ref) {
		// Only reachable with an empty reference text.
		s.status = StatusCompleted
		return KeystrokeResult{Completed: true}, nil
	}
	s.resume(now)

	expected := s.ref[s.cursor]
	res := KeystrokeResult{Expected: expected}
	if input == expected {
		s.states[s.cursor] = model.Correct
		s.cursor++
		s.correct++
		res.Correct = true
	} else {
		s.states[s.cursor] = model.Incorrect
		s.incorrect++
		switch {
		case s.instantDeath:
			s.stopClock(now)
			s.status = StatusAborted
			res.Aborted = true
		case s.advanceOnError:
			s.cursor++
		}
	}

	if s.recorder != nil && !res.Aborted {
		s.recorder.Record(s.Elapsed(now), s.cursor)
	}
	if s.cursor == len(s.ref) && s.status == StatusRunning {
		s.stopClock(now)
		s.status = StatusCompleted
		res.Completed = true
	}
	return res, nil
}

// Backspace moves back one position, resets it to Untyped, and decrements
// exactly the counter that was incremented when that position was last set.
// It counts as input for pause purposes.
func (s *Session) Backspace(now time.Time) error {
	if s.status == StatusCompleted || s.status == StatusAborted {
		return ErrSessionFinished
	}
	if s.cursor == 0 {
		return nil
	}
	s.resume(now)
	s.backspaceOne()
	return nil
}

// WordDelete backspaces across the maximal trailing run of non-whitespace
// characters, then across any immediately preceding run of whitespace.
func (s *Session) WordDelete(now time.Time) error {
	if s.status == StatusCompleted || s.status == StatusAborted {
		return ErrSessionFinished
	}
	if s.cursor == 0 {
		return nil
	}
	s.resume(now)
	for s.cursor > 0 && !unicode.IsSpace(s.ref[s.cursor-1]) {
		s.backspaceOne()
	}
	for s.cursor > 0 && unicode.IsSpace(s.ref[s.cursor-1]) {
		s.backspaceOne()
	}
	return nil
}

func (s *Session) backspaceOne() {
	// A mismatch that did not advance leaves a stale Incorrect mark at the
	// cursor; clear it without touching counters.
	if s.cursor < len(s.ref) && s.states[s.cursor] == model.Incorrect {
		s.states[s.cursor] = model.Untyped
	}
	s.cursor--
	switch s.states[s.cursor] {
	case model.Correct:
		s.correct--
	case model.Incorrect:
		s.incorrect--
	}
	s.states[s.cursor] = model.Untyped
}

// Tick drives auto-pause. If the session is Running and the inactivity window
// has reached the pause delay, it transitions to Paused and active time stops
// accruing. Tick reports whether that transition happened on this call.
func (s *Session) Tick(now time.Time) bool {
	if s.status != StatusRunning {
		return false
	}
	if now.Sub(s.lastInput) >= s.pauseDelay {
		s.stopClock(now)
		s.status = StatusPaused
		return true
	}
	return false
}

// Pause suspends the session explicitly. It reports whether the session was
// Running.
func (s *Session) Pause(now time.Time) bool {
	if s.status != StatusRunning {
		return false
	}
	s.stopClock(now)
	s.status = StatusPaused
	return true
}

// Reset returns the session to a fresh Idle state: all positions Untyped,
// counters and active time zeroed. The caller is responsible for deleting
// any persisted checkpoint.
func (s *Session) Reset() {
	for i := range s.states {
		s.states[i] = model.Untyped
	}
	s.cursor = 0
	s.correct = 0
	s.incorrect = 0
	s.active = 0
	s.status = StatusIdle
	s.runningSince = time.Time{}
	s.lastInput = time.Time{}
	s.startedAt = time.Time{}
	if s.recorder != nil {
		s.recorder.Reset()
	}
}

// Elapsed returns the accrued active typing time. While Running it includes
// the interval since the last resume; paused intervals never count.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.status == StatusRunning {
		return s.active + now.Sub(s.runningSince)
	}
	return s.active
}

// Metrics derives the current performance record from the session state.
func (s *Session) Metrics(now time.Time) Metrics {
	elapsed := s.Elapsed(now)
	return Metrics{
		WPM:             WPM(s.correct, elapsed),
		Accuracy:        Accuracy(s.correct, s.incorrect),
		CorrectCount:    s.correct,
		IncorrectCount:  s.incorrect,
		TotalKeystrokes: s.correct + s.incorrect,
		Elapsed:         elapsed,
		Status:          s.status,
	}
}

func (s *Session) resume(now time.Time) {
	if s.status != StatusRunning {
		if s.status == StatusIdle {
			s.startedAt = now
		}
		s.runningSince = now
		s.status = StatusRunning
	}
	s.lastInput = now
}

func (s *Session) stopClock(now time.Time) {
	if s.status == StatusRunning {
		s.active += now.Sub(s.runningSince)
	}
}
