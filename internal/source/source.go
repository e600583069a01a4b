// Package source loads files as immutable reference texts.
package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Text is the immutable reference for one typing session: the logical
// characters, a content identity for checkpoint and ghost validation, and
// the detected language.
type Text struct {
	Path     string
	Runes    []rune
	Hash     string
	Language string
}

// Load reads a file and normalizes it into a reference text: CRLF becomes
// LF and trailing newlines are dropped. The hash is computed over the
// normalized content, so editing the file invalidates stored progress.
func Load(path string) (*Text, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%s is not valid UTF-8 text", path)
	}
	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return &Text{
		Path:     path,
		Runes:    []rune(content),
		Hash:     HashContent(content),
		Language: Language(path),
	}, nil
}

// HashContent returns the content identity used to validate checkpoints and
// ghosts: the first 16 hex characters of the SHA-256 digest.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

var languageByExt = map[string]string{
	".py":    "Python",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".java":  "Java",
	".c":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".cxx":   "C++",
	".h":     "C/C++ Header",
	".hpp":   "C++ Header",
	".cs":    "C#",
	".go":    "Go",
	".rs":    "Rust",
	".rb":    "Ruby",
	".php":   "PHP",
	".swift": "Swift",
	".kt":    "Kotlin",
	".m":     "Objective-C",
	".scala": "Scala",
	".r":     "R",
	".dart":  "Dart",
	".lua":   "Lua",
	".pl":    "Perl",
	".sh":    "Shell",
	".bash":  "Bash",
	".zsh":   "Zsh",
	".fish":  "Fish",
	".ps1":   "PowerShell",
	".sql":   "SQL",
	".html":  "HTML",
	".htm":   "HTML",
	".css":   "CSS",
	".scss":  "SCSS",
	".sass":  "Sass",
	".less":  "Less",
	".xml":   "XML",
	".json":  "JSON",
	".yaml":  "YAML",
	".yml":   "YAML",
	".toml":  "TOML",
	".md":    "Markdown",
	".txt":   "Text",
}

// Language maps a file extension to a language name, or "Unknown".
func Language(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return "Unknown"
}
