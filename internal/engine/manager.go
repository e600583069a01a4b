package engine

import (
	"context"
	"errors"
	"time"

	"github.com/verte-zerg/retype/internal/model"
)

// Manager coordinates sessions with the persistence boundary. It guarantees
// at most one live session per file and turns store failures into warnings:
// the engine keeps running in memory and retries at the next checkpoint
// opportunity, so the worst case of a failing store is losing the progress
// made since the last successful save.
type Manager struct {
	store    Store
	cfg      model.Config
	sessions map[string]*Session
	warnf    func(format string, args ...any)
}

// NewManager builds a manager over the given store. warnf receives non-fatal
// persistence and validation warnings; nil discards them.
func NewManager(store Store, cfg model.Config, warnf func(format string, args ...any)) *Manager {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Manager{
		store:    store,
		cfg:      cfg,
		sessions: make(map[string]*Session),
		warnf:    warnf,
	}
}

// Open returns the session for a file, restoring a stored checkpoint when it
// matches the live reference text. A stale or corrupted checkpoint is
// discarded with a warning and the session starts fresh. Opening a file that
// is already open reuses the live session while the content is unchanged,
// and otherwise saves its progress before replacing it; that checkpoint is
// kept so the old content can still be resumed later.
func (m *Manager) Open(ctx context.Context, filePath string, ref []rune, contentHash string, now time.Time) *Session {
	if live, ok := m.sessions[filePath]; ok {
		if live.ContentHash() == contentHash {
			return live
		}
		m.saveProgress(ctx, live, now)
		delete(m.sessions, filePath)
		// The checkpoint just written describes the replaced content and
		// cannot match the new reference. It stays on disk so the old
		// content can be resumed if the file is restored.
		sess := NewSession(filePath, ref, contentHash, m.cfg)
		m.sessions[filePath] = sess
		return sess
	}

	sess := NewSession(filePath, ref, contentHash, m.cfg)
	cp, err := m.store.LoadCheckpoint(ctx, filePath)
	if err != nil {
		m.warnf("load checkpoint for %s: %v", filePath, err)
	} else if cp != nil {
		if rerr := sess.Restore(*cp); rerr != nil {
			if errors.Is(rerr, ErrCheckpointMismatch) {
				m.warnf("discarding stale checkpoint for %s: %v", filePath, rerr)
				if derr := m.store.DeleteCheckpoint(ctx, filePath); derr != nil {
					m.warnf("delete stale checkpoint for %s: %v", filePath, derr)
				}
			} else {
				m.warnf("restore checkpoint for %s: %v", filePath, rerr)
			}
		}
	}
	m.sessions[filePath] = sess
	return sess
}

// Ghost loads the stored best-run trace for a file and returns a comparator
// over it, or nil when no usable ghost exists. A ghost recorded against
// different content is ignored.
func (m *Manager) Ghost(ctx context.Context, filePath, contentHash string) *Comparator {
	trace, err := m.store.LoadGhost(ctx, filePath)
	if err != nil {
		m.warnf("load ghost for %s: %v", filePath, err)
		return nil
	}
	if trace == nil {
		return nil
	}
	if trace.ContentHash != contentHash {
		m.warnf("ignoring ghost for %s: content changed since it was recorded", filePath)
		return nil
	}
	return NewComparator(*trace)
}

// Checkpoint persists the session's current progress. Sessions without
// progress are not written.
func (m *Manager) Checkpoint(ctx context.Context, sess *Session, now time.Time) {
	if sess.Cursor() == 0 && sess.Status() == StatusIdle {
		return
	}
	if err := m.store.SaveCheckpoint(ctx, sess.Snapshot(now)); err != nil {
		m.warnf("save checkpoint for %s: %v", sess.FilePath(), err)
	}
}

// Complete records a finished run: the checkpoint is deleted, the result is
// appended to history, and when the run is strictly faster than the file's
// current best (or no best exists) its trace replaces the stored ghost.
func (m *Manager) Complete(ctx context.Context, sess *Session, language string, now time.Time) {
	met := sess.Metrics(now)
	if err := m.store.DeleteCheckpoint(ctx, sess.FilePath()); err != nil {
		m.warnf("delete checkpoint for %s: %v", sess.FilePath(), err)
	}

	best, err := m.store.BestResult(ctx, sess.FilePath())
	if err != nil {
		m.warnf("load best result for %s: %v", sess.FilePath(), err)
	}

	res := model.SessionResult{
		FilePath:       sess.FilePath(),
		Language:       language,
		WPM:            met.WPM,
		Accuracy:       met.Accuracy,
		CorrectCount:   met.CorrectCount,
		IncorrectCount: met.IncorrectCount,
		Duration:       met.Elapsed,
		Completed:      true,
		RecordedAt:     now,
	}
	if err := m.store.AppendResult(ctx, res); err != nil {
		m.warnf("append result for %s: %v", sess.FilePath(), err)
	}

	rec := sess.Recorder()
	if rec == nil {
		return
	}
	if best != nil && met.Elapsed >= best.Duration {
		return
	}
	trace := model.GhostTrace{
		FilePath:    sess.FilePath(),
		ContentHash: sess.ContentHash(),
		WPM:         met.WPM,
		Duration:    met.Elapsed,
		RecordedAt:  now,
		Samples:     rec.Samples(),
	}
	if err := m.store.SaveGhost(ctx, trace); err != nil {
		m.warnf("save ghost for %s: %v", sess.FilePath(), err)
	}
}

// Abort records an instant-death abort. Aborted runs are always kept in
// history as partial results (Completed=false); they never touch the ghost,
// and their checkpoint is removed because the run must restart from zero.
func (m *Manager) Abort(ctx context.Context, sess *Session, language string, now time.Time) {
	if err := m.store.DeleteCheckpoint(ctx, sess.FilePath()); err != nil {
		m.warnf("delete checkpoint for %s: %v", sess.FilePath(), err)
	}
	met := sess.Metrics(now)
	res := model.SessionResult{
		FilePath:       sess.FilePath(),
		Language:       language,
		WPM:            met.WPM,
		Accuracy:       met.Accuracy,
		CorrectCount:   met.CorrectCount,
		IncorrectCount: met.IncorrectCount,
		Duration:       met.Elapsed,
		Completed:      false,
		RecordedAt:     now,
	}
	if err := m.store.AppendResult(ctx, res); err != nil {
		m.warnf("append result for %s: %v", sess.FilePath(), err)
	}
}

// Reset starts the session over and deletes its checkpoint.
func (m *Manager) Reset(ctx context.Context, sess *Session) {
	sess.Reset()
	if err := m.store.DeleteCheckpoint(ctx, sess.FilePath()); err != nil {
		m.warnf("delete checkpoint for %s: %v", sess.FilePath(), err)
	}
}

// Shutdown saves a checkpoint for every live session that still has
// unfinished progress.
func (m *Manager) Shutdown(ctx context.Context, now time.Time) {
	for _, sess := range m.sessions {
		switch sess.Status() {
		case StatusCompleted, StatusAborted:
			continue
		}
		m.saveProgress(ctx, sess, now)
	}
}

// Unfinished lists the files that have a stored checkpoint, i.e. sessions
// that can be resumed.
func (m *Manager) Unfinished(ctx context.Context) ([]model.Checkpoint, error) {
	return m.store.ListCheckpoints(ctx)
}

func (m *Manager) saveProgress(ctx context.Context, sess *Session, now time.Time) {
	if sess.Cursor() == 0 && sess.Status() == StatusIdle {
		return
	}
	if err := m.store.SaveCheckpoint(ctx, sess.Snapshot(now)); err != nil {
		m.warnf("save checkpoint for %s: %v", sess.FilePath(), err)
	}
}
