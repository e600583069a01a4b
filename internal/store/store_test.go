package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/retype/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "retype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestCheckpointRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	cp := model.Checkpoint{
		FilePath:        "src/main.go",
		ContentHash:     "abcd1234",
		CursorPosition:  3,
		TotalCharacters: 10,
		CorrectCount:    2,
		IncorrectCount:  1,
		Elapsed:         4200 * time.Millisecond,
		IsPaused:        true,
		States:          []byte{byte(model.Correct), byte(model.Incorrect), byte(model.Correct)},
		UpdatedAt:       time.Unix(1000, 0).UTC(),
	}
	if err := st.SaveCheckpoint(ctx, cp); err != nil {
		t.Fatalf("save checkpoint: %v", err)
	}

	got, err := st.LoadCheckpoint(ctx, "src/main.go")
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if got == nil {
		t.Fatalf("checkpoint not found")
	}
	if got.ContentHash != cp.ContentHash || got.CursorPosition != cp.CursorPosition ||
		got.CorrectCount != cp.CorrectCount || got.IncorrectCount != cp.IncorrectCount ||
		got.Elapsed != cp.Elapsed || !got.IsPaused {
		t.Fatalf("loaded checkpoint %+v != saved %+v", got, cp)
	}
	if string(got.States) != string(cp.States) {
		t.Fatalf("states = %v, want %v", got.States, cp.States)
	}

	// A second save replaces the row.
	cp.CursorPosition = 5
	cp.States = append(cp.States, byte(model.Correct), byte(model.Correct))
	if err := st.SaveCheckpoint(ctx, cp); err != nil {
		t.Fatalf("replace checkpoint: %v", err)
	}
	got, err = st.LoadCheckpoint(ctx, "src/main.go")
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if got.CursorPosition != 5 {
		t.Fatalf("cursor = %d, want 5", got.CursorPosition)
	}

	list, err := st.ListCheckpoints(ctx)
	if err != nil {
		t.Fatalf("list checkpoints: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("checkpoints = %d, want 1", len(list))
	}

	if err := st.DeleteCheckpoint(ctx, "src/main.go"); err != nil {
		t.Fatalf("delete checkpoint: %v", err)
	}
	got, err = st.LoadCheckpoint(ctx, "src/main.go")
	if err != nil {
		t.Fatalf("load after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("checkpoint survived deletion: %+v", got)
	}
}

func TestMissingCheckpointIsNil(t *testing.T) {
	st := openTestStore(t)
	got, err := st.LoadCheckpoint(context.Background(), "nope.go")
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestBestResult(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	runs := []model.SessionResult{
		{FilePath: "a.go", Language: "Go", WPM: 40, Accuracy: 0.9, Duration: 90 * time.Second, Completed: true, RecordedAt: time.Unix(1, 0)},
		{FilePath: "a.go", Language: "Go", WPM: 55, Accuracy: 0.95, Duration: 60 * time.Second, Completed: true, RecordedAt: time.Unix(2, 0)},
		{FilePath: "a.go", Language: "Go", WPM: 80, Accuracy: 0.8, Duration: 30 * time.Second, Completed: false, RecordedAt: time.Unix(3, 0)},
		{FilePath: "b.go", Language: "Go", WPM: 99, Accuracy: 1.0, Duration: 10 * time.Second, Completed: true, RecordedAt: time.Unix(4, 0)},
	}
	for _, r := range runs {
		if err := st.AppendResult(ctx, r); err != nil {
			t.Fatalf("append result: %v", err)
		}
	}

	best, err := st.BestResult(ctx, "a.go")
	if err != nil {
		t.Fatalf("best result: %v", err)
	}
	if best == nil {
		t.Fatalf("no best result")
	}
	// The fastest completed run wins; the incomplete 30s run does not count.
	if best.Duration != 60*time.Second || best.WPM != 55 {
		t.Fatalf("best = %+v, want the 60s completed run", best)
	}

	none, err := st.BestResult(ctx, "never-typed.go")
	if err != nil {
		t.Fatalf("best result: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil best, got %+v", none)
	}
}

func TestBestResultKeepsSubMillisecondPrecision(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	// Two runs less than a millisecond apart must still order correctly.
	slower := 2*time.Second + 600*time.Microsecond
	faster := 2*time.Second + 400*time.Microsecond
	runs := []model.SessionResult{
		{FilePath: "a.go", Language: "Go", WPM: 50, Accuracy: 1.0, Duration: slower, Completed: true, RecordedAt: time.Unix(1, 0)},
		{FilePath: "a.go", Language: "Go", WPM: 51, Accuracy: 1.0, Duration: faster, Completed: true, RecordedAt: time.Unix(2, 0)},
	}
	for _, r := range runs {
		if err := st.AppendResult(ctx, r); err != nil {
			t.Fatalf("append result: %v", err)
		}
	}

	best, err := st.BestResult(ctx, "a.go")
	if err != nil {
		t.Fatalf("best result: %v", err)
	}
	if best == nil || best.Duration != faster {
		t.Fatalf("best = %+v, want duration %v", best, faster)
	}
}

func TestGhostRoundTripAndReplace(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	trace := model.GhostTrace{
		FilePath:    "a.go",
		ContentHash: "hash-1",
		WPM:         62.5,
		Duration:    45 * time.Second,
		RecordedAt:  time.Unix(1000, 0).UTC(),
		Samples: []model.GhostSample{
			{Elapsed: time.Second, Position: 5},
			{Elapsed: 2 * time.Second, Position: 11},
		},
	}
	if err := st.SaveGhost(ctx, trace); err != nil {
		t.Fatalf("save ghost: %v", err)
	}

	got, err := st.LoadGhost(ctx, "a.go")
	if err != nil {
		t.Fatalf("load ghost: %v", err)
	}
	if got == nil {
		t.Fatalf("ghost not found")
	}
	if got.ContentHash != trace.ContentHash || got.Duration != trace.Duration || got.WPM != trace.WPM {
		t.Fatalf("loaded ghost %+v != saved %+v", got, trace)
	}
	if len(got.Samples) != 2 || got.Samples[1] != trace.Samples[1] {
		t.Fatalf("samples = %+v, want %+v", got.Samples, trace.Samples)
	}

	trace.Duration = 30 * time.Second
	trace.Samples = trace.Samples[:1]
	if err := st.SaveGhost(ctx, trace); err != nil {
		t.Fatalf("replace ghost: %v", err)
	}
	got, err = st.LoadGhost(ctx, "a.go")
	if err != nil {
		t.Fatalf("load ghost: %v", err)
	}
	if got.Duration != 30*time.Second || len(got.Samples) != 1 {
		t.Fatalf("ghost not replaced: %+v", got)
	}
}

func TestCorruptGhostIsRemoved(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.db.ExecContext(ctx,
		`INSERT INTO ghosts (file_path, content_hash, wpm, duration_ns, recorded_at, trace)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"a.go", "hash-1", 50.0, 1000, time.Unix(0, 0).Format(time.RFC3339Nano), []byte("not gzip"))
	if err != nil {
		t.Fatalf("insert corrupt ghost: %v", err)
	}

	if _, err := st.LoadGhost(ctx, "a.go"); err == nil {
		t.Fatalf("corrupt ghost loaded without error")
	} else if !strings.Contains(err.Error(), "corrupted") {
		t.Fatalf("err = %v, want corruption report", err)
	}

	// The corrupt row is gone; subsequent loads act as if no ghost exists.
	got, err := st.LoadGhost(ctx, "a.go")
	if err != nil {
		t.Fatalf("load after recovery: %v", err)
	}
	if got != nil {
		t.Fatalf("corrupt ghost still present: %+v", got)
	}
}

func TestMissingGhostIsNil(t *testing.T) {
	st := openTestStore(t)
	got, err := st.LoadGhost(context.Background(), "nope.go")
	if err != nil {
		t.Fatalf("load ghost: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
