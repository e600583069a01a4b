// Package store handles SQLite persistence.
package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/retype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for checkpoints, session history, and ghosts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS checkpoints (
			file_path TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			cursor_position INTEGER NOT NULL,
			total_characters INTEGER NOT NULL,
			correct_keystrokes INTEGER NOT NULL,
			incorrect_keystrokes INTEGER NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			is_paused INTEGER NOT NULL,
			states BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_history (
			id INTEGER PRIMARY KEY,
			file_path TEXT NOT NULL,
			language TEXT NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			correct_keystrokes INTEGER NOT NULL,
			incorrect_keystrokes INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ghosts (
			file_path TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			wpm REAL NOT NULL,
			duration_ns INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			trace BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_session_history_file_path
			ON session_history(file_path, duration_ns);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadCheckpoint returns the saved progress for a file, or nil if none exists.
func (s *Store) LoadCheckpoint(ctx context.Context, filePath string) (*model.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT content_hash, cursor_position, total_characters, correct_keystrokes,
			incorrect_keystrokes, elapsed_ns, is_paused, states, updated_at
		 FROM checkpoints WHERE file_path = ?`, filePath)

	var cp model.Checkpoint
	var elapsedNs int64
	var updatedAt string
	err := row.Scan(&cp.ContentHash, &cp.CursorPosition, &cp.TotalCharacters,
		&cp.CorrectCount, &cp.IncorrectCount, &elapsedNs, &cp.IsPaused, &cp.States, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cp.FilePath = filePath
	cp.Elapsed = time.Duration(elapsedNs)
	parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, err
	}
	cp.UpdatedAt = parsed
	return &cp, nil
}

// SaveCheckpoint stores partial progress, replacing any previous row for the file.
func (s *Store) SaveCheckpoint(ctx context.Context, cp model.Checkpoint) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO checkpoints
			(file_path, content_hash, cursor_position, total_characters, correct_keystrokes,
			 incorrect_keystrokes, elapsed_ns, is_paused, states, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.FilePath,
		cp.ContentHash,
		cp.CursorPosition,
		cp.TotalCharacters,
		cp.CorrectCount,
		cp.IncorrectCount,
		int64(cp.Elapsed),
		cp.IsPaused,
		cp.States,
		cp.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// DeleteCheckpoint removes the saved progress for a file.
func (s *Store) DeleteCheckpoint(ctx context.Context, filePath string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE file_path = ?`, filePath)
	return err
}

// ListCheckpoints returns all saved checkpoints, most recently updated first.
func (s *Store) ListCheckpoints(ctx context.Context) ([]model.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path, content_hash, cursor_position, total_characters, correct_keystrokes,
			incorrect_keystrokes, elapsed_ns, is_paused, states, updated_at
		 FROM checkpoints ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Checkpoint
	for rows.Next() {
		var cp model.Checkpoint
		var elapsedNs int64
		var updatedAt string
		if err := rows.Scan(&cp.FilePath, &cp.ContentHash, &cp.CursorPosition, &cp.TotalCharacters,
			&cp.CorrectCount, &cp.IncorrectCount, &elapsedNs, &cp.IsPaused, &cp.States, &updatedAt); err != nil {
			return nil, err
		}
		cp.Elapsed = time.Duration(elapsedNs)
		parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, err
		}
		cp.UpdatedAt = parsed
		result = append(result, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AppendResult stores one session outcome in the append-only history.
func (s *Store) AppendResult(ctx context.Context, res model.SessionResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_history
			(file_path, language, wpm, accuracy, correct_keystrokes, incorrect_keystrokes,
			 duration_ns, completed, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.FilePath,
		res.Language,
		res.WPM,
		res.Accuracy,
		res.CorrectCount,
		res.IncorrectCount,
		int64(res.Duration),
		res.Completed,
		res.RecordedAt.Format(time.RFC3339Nano),
	)
	return err
}

// BestResult returns the fastest completed run for a file, or nil if the file
// has never been completed. Durations are stored at nanosecond precision so
// the strictly-faster comparison never loses to rounding.
func (s *Store) BestResult(ctx context.Context, filePath string) (*model.SessionResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT language, wpm, accuracy, correct_keystrokes, incorrect_keystrokes,
			duration_ns, recorded_at
		 FROM session_history
		 WHERE file_path = ? AND completed = 1
		 ORDER BY duration_ns ASC LIMIT 1`, filePath)

	var res model.SessionResult
	var durationNs int64
	var recordedAt string
	err := row.Scan(&res.Language, &res.WPM, &res.Accuracy, &res.CorrectCount,
		&res.IncorrectCount, &durationNs, &recordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res.FilePath = filePath
	res.Completed = true
	res.Duration = time.Duration(durationNs)
	parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return nil, err
	}
	res.RecordedAt = parsed
	return &res, nil
}

// SaveGhost stores the best-run trace for a file, replacing any previous one.
// The sample trace is kept as a gzip-compressed JSON blob.
func (s *Store) SaveGhost(ctx context.Context, trace model.GhostTrace) error {
	blob, err := encodeTrace(trace.Samples)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO ghosts
			(file_path, content_hash, wpm, duration_ns, recorded_at, trace)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		trace.FilePath,
		trace.ContentHash,
		trace.WPM,
		int64(trace.Duration),
		trace.RecordedAt.Format(time.RFC3339Nano),
		blob,
	)
	return err
}

// LoadGhost returns the stored ghost for a file, or nil if none exists.
// A trace blob that fails to decode is deleted so a corrupted ghost is never
// applied; the caller sees the decode error once.
func (s *Store) LoadGhost(ctx context.Context, filePath string) (*model.GhostTrace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT content_hash, wpm, duration_ns, recorded_at, trace
		 FROM ghosts WHERE file_path = ?`, filePath)

	var trace model.GhostTrace
	var durationNs int64
	var recordedAt string
	var blob []byte
	err := row.Scan(&trace.ContentHash, &trace.WPM, &durationNs, &recordedAt, &blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	trace.FilePath = filePath
	trace.Duration = time.Duration(durationNs)
	parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return nil, err
	}
	trace.RecordedAt = parsed

	samples, err := decodeTrace(blob)
	if err != nil {
		if _, derr := s.db.ExecContext(ctx, `DELETE FROM ghosts WHERE file_path = ?`, filePath); derr != nil {
			// Best-effort removal of the corrupted row.
			_ = derr
		}
		return nil, fmt.Errorf("ghost trace corrupted, removed: %w", err)
	}
	trace.Samples = samples
	return &trace, nil
}

// DeleteGhost removes the stored ghost for a file.
func (s *Store) DeleteGhost(ctx context.Context, filePath string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ghosts WHERE file_path = ?`, filePath)
	return err
}

func encodeTrace(samples []model.GhostSample) ([]byte, error) {
	raw, err := json.Marshal(samples)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeTrace(blob []byte) ([]model.GhostSample, error) {
	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := zr.Close(); cerr != nil {
			// Best-effort reader close.
			_ = cerr
		}
	}()
	var samples []model.GhostSample
	if err := json.NewDecoder(zr).Decode(&samples); err != nil {
		return nil, err
	}
	return samples, nil
}
