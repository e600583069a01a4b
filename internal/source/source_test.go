package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNormalizesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.go")
	if err := os.WriteFile(path, []byte("package main\r\n\r\nfunc main() {}\n\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	text, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := string(text.Runes); got != "package main\n\nfunc main() {}" {
		t.Fatalf("normalized content = %q", got)
	}
	if text.Language != "Go" {
		t.Fatalf("language = %q, want Go", text.Language)
	}
	if len(text.Hash) != 16 {
		t.Fatalf("hash = %q, want 16 hex chars", text.Hash)
	}
}

func TestLoadHashTracksContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	a, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := os.WriteFile(path, []byte("hello!"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if a.Hash == b.Hash {
		t.Fatalf("hash unchanged after edit: %q", a.Hash)
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("empty file loaded without error")
	}
}

func TestLanguage(t *testing.T) {
	cases := map[string]string{
		"a/b/main.go":  "Go",
		"script.PY":    "Python",
		"notes.txt":    "Text",
		"Makefile":     "Unknown",
		"style.scss":   "SCSS",
		"query.sql":    "SQL",
		"doc.markdown": "Unknown",
	}
	for path, want := range cases {
		if got := Language(path); got != want {
			t.Fatalf("Language(%q) = %q, want %q", path, got, want)
		}
	}
}
