package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/retype/internal/engine"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/source"
)

func testSession(t *testing.T, text string) *engine.Session {
	t.Helper()
	cfg := model.Config{PauseDelay: 7 * time.Second, AdvanceOnError: true}
	return engine.NewSession("demo.go", []rune(text), "hash", cfg)
}

func TestRenderFooterFormats(t *testing.T) {
	sess := testSession(t, "abcd")
	now := time.Unix(100, 0)
	for i, r := range "ab" {
		if _, err := sess.AcceptKeystroke(r, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("accept: %v", err)
		}
	}

	m := &Model{
		cfg:     testGlyphs,
		session: sess,
		text:    &source.Text{Path: "demo.go", Runes: []rune("abcd")},
		ghost: engine.NewComparator(model.GhostTrace{
			Samples: []model.GhostSample{{Elapsed: 0, Position: 3}},
		}),
	}
	out := m.renderFooter(now.Add(2 * time.Second))
	for _, want := range []string{"WPM", "100.0%", "Progress 50%", "Ghost -1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}

func TestRenderFooterShowsPaused(t *testing.T) {
	sess := testSession(t, "ab")
	now := time.Unix(100, 0)
	if _, err := sess.AcceptKeystroke('a', now); err != nil {
		t.Fatalf("accept: %v", err)
	}
	sess.Pause(now.Add(time.Second))

	m := &Model{cfg: testGlyphs, session: sess, text: &source.Text{Runes: []rune("ab")}}
	out := m.renderFooter(now.Add(time.Second))
	if !strings.Contains(out, "[paused]") {
		t.Fatalf("footer missing paused marker: %s", out)
	}
}

func TestRenderSummary(t *testing.T) {
	sess := testSession(t, "cat")
	now := time.Unix(100, 0)
	for i, r := range "cxt" {
		if _, err := sess.AcceptKeystroke(r, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("accept: %v", err)
		}
	}

	m := &Model{cfg: testGlyphs, session: sess, text: &source.Text{Runes: []rune("cat")}, finished: true, headline: "Completed"}
	out := m.renderSummary()
	for _, want := range []string{"Completed", "WPM", "Accuracy", "66.7%", "Incorrect 1 (33.3%)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q: %s", want, out)
		}
	}
}
