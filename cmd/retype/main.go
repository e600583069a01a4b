// Package main provides the CLI entrypoint for retype.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/retype/internal/config"
	"github.com/verte-zerg/retype/internal/engine"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/resumeui"
	"github.com/verte-zerg/retype/internal/source"
	"github.com/verte-zerg/retype/internal/store"
	"github.com/verte-zerg/retype/internal/tui"
)

const (
	defaultPauseDelay     = 7.0
	defaultAdvanceOnError = true
	defaultInstantDeath   = false
	defaultGhost          = true
	defaultSpaceGlyph     = "␣"
	defaultNewlineGlyph   = "⏎"
	defaultTabGlyph       = "→"
)

var (
	practicePauseDelay     float64
	practiceAdvanceOnError bool
	practiceInstantDeath   bool
	practiceGhost          bool
	practiceSpaceGlyph     string
	practiceNewlineGlyph   string
	practiceTabGlyph       string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "retype FILE",
		Short:         "Practice typing over your own files",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().Float64Var(&practicePauseDelay, "pause-delay", defaultPauseDelay, "seconds of inactivity before auto-pause")
	rootCmd.Flags().BoolVar(&practiceAdvanceOnError, "advance-on-error", defaultAdvanceOnError, "advance the cursor past an incorrect keystroke")
	rootCmd.Flags().BoolVar(&practiceInstantDeath, "instant-death", defaultInstantDeath, "abort the session on the first mistake")
	rootCmd.Flags().BoolVar(&practiceGhost, "ghost", defaultGhost, "record and race against the best completed run")
	rootCmd.Flags().StringVar(&practiceSpaceGlyph, "space-glyph", defaultSpaceGlyph, "display glyph for spaces")
	rootCmd.Flags().StringVar(&practiceNewlineGlyph, "newline-glyph", defaultNewlineGlyph, "display glyph for newlines")
	rootCmd.Flags().StringVar(&practiceTabGlyph, "tab-glyph", defaultTabGlyph, "display glyph for tabs")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newResumeCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := assembleConfig(cmd)
	if err != nil {
		return err
	}
	return runPractice(cfg, args[0])
}

func assembleConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "pause-delay", &practicePauseDelay, fileCfg.Practice.PauseDelay)
	applyBoolConfig(cmd, "advance-on-error", &practiceAdvanceOnError, fileCfg.Practice.AdvanceOnError)
	applyBoolConfig(cmd, "instant-death", &practiceInstantDeath, fileCfg.Practice.InstantDeath)
	applyBoolConfig(cmd, "ghost", &practiceGhost, fileCfg.Practice.Ghost)
	applyStringConfig(cmd, "space-glyph", &practiceSpaceGlyph, fileCfg.Practice.SpaceGlyph)
	applyStringConfig(cmd, "newline-glyph", &practiceNewlineGlyph, fileCfg.Practice.NewlineGlyph)
	applyStringConfig(cmd, "tab-glyph", &practiceTabGlyph, fileCfg.Practice.TabGlyph)

	cfg := model.Config{
		PauseDelay:     config.Seconds(practicePauseDelay),
		AdvanceOnError: practiceAdvanceOnError,
		InstantDeath:   practiceInstantDeath,
		Ghost:          practiceGhost,
		SpaceGlyph:     config.Glyph(practiceSpaceGlyph, '␣'),
		NewlineGlyph:   config.Glyph(practiceNewlineGlyph, '⏎'),
		TabGlyph:       config.Glyph(practiceTabGlyph, '→'),
	}
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runPractice(cfg model.Config, path string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("retype needs an interactive terminal")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	text, err := source.Load(absPath)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	now := time.Now()
	manager := engine.NewManager(st, cfg, logErrf)
	session := manager.Open(ctx, text.Path, text.Runes, text.Hash, now)
	var ghost *engine.Comparator
	if cfg.Ghost {
		ghost = manager.Ghost(ctx, text.Path, text.Hash)
	}

	uiModel := tui.NewModel(cfg, manager, session, text, ghost)
	program := tea.NewProgram(uiModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	// Application shutdown is a defined checkpoint.
	manager.Shutdown(ctx, time.Now())
	return nil
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Pick up an unfinished session",
		Args:  cobra.NoArgs,
		RunE:  runResumeCmd,
	}
}

func runResumeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := assembleConfig(cmd)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	manager := engine.NewManager(st, cfg, logErrf)
	checkpoints, err := manager.Unfinished(context.Background())
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	if err != nil {
		return fmt.Errorf("failed to list unfinished sessions: %w", err)
	}
	if len(checkpoints) == 0 {
		logErrln("No unfinished sessions.")
		return nil
	}

	picker := resumeui.NewModel(checkpoints)
	program := tea.NewProgram(picker, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run picker: %w", err)
	}
	selected := picker.Selected()
	if selected == "" {
		return nil
	}
	return runPractice(cfg, selected)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# retype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# pause-delay = %.1f        # Seconds of inactivity before auto-pause
# advance-on-error = %t    # Advance the cursor past an incorrect keystroke
# instant-death = %t      # Abort the session on the first mistake
# ghost = %t               # Record and race against the best completed run
# space-glyph = %q
# newline-glyph = %q
# tab-glyph = %q
`,
		defaultPauseDelay,
		defaultAdvanceOnError,
		defaultInstantDeath,
		defaultGhost,
		defaultSpaceGlyph,
		defaultNewlineGlyph,
		defaultTabGlyph,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
