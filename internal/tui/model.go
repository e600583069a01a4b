// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/retype/internal/engine"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/source"
)

const tickInterval = 250 * time.Millisecond

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pausedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model implements the Bubble Tea practice UI hosting one typing session.
type Model struct {
	cfg     model.Config
	manager *engine.Manager
	session *engine.Session
	text    *source.Text
	ghost   *engine.Comparator

	width  int
	height int

	finished bool
	headline string
}

// NewModel constructs a practice model for an opened session.
func NewModel(cfg model.Config, manager *engine.Manager, session *engine.Session, text *source.Text, ghost *engine.Comparator) *Model {
	return &Model{
		cfg:     cfg,
		manager: manager,
		session: session,
		text:    text,
		ghost:   ghost,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.session.Tick(time.Time(msg)) {
			// Auto-pause is a defined checkpoint.
			m.manager.Checkpoint(context.Background(), m.session, time.Time(msg))
		}
		return m, tickCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := time.Now()
	ctx := context.Background()

	switch msg.Type {
	case tea.KeyCtrlC:
		m.manager.Shutdown(ctx, now)
		return m, tea.Quit
	case tea.KeyEsc:
		if m.finished {
			return m, tea.Quit
		}
		if m.session.Pause(now) {
			m.manager.Checkpoint(ctx, m.session, now)
		}
		return m, nil
	case tea.KeyCtrlR:
		m.manager.Reset(ctx, m.session)
		m.finished = false
		m.headline = ""
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		op := engine.Backspace()
		if msg.Alt {
			op = engine.WordDelete()
		}
		m.apply(op, now)
		return m, nil
	case tea.KeyCtrlW:
		m.apply(engine.WordDelete(), now)
		return m, nil
	case tea.KeyEnter:
		m.apply(engine.Insert('\n'), now)
		return m, nil
	case tea.KeyTab:
		m.apply(engine.Insert('\t'), now)
		return m, nil
	case tea.KeySpace:
		m.apply(engine.Insert(' '), now)
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.apply(engine.Insert(r), now)
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) apply(op engine.Op, now time.Time) {
	res, err := m.session.Apply(op, now)
	if err != nil {
		// Input to a finished session is rejected as a no-op.
		return
	}
	ctx := context.Background()
	switch {
	case res.Completed:
		m.manager.Complete(ctx, m.session, m.text.Language, now)
		m.finished = true
		m.headline = "Completed"
	case res.Aborted:
		m.manager.Abort(ctx, m.session, m.text.Language, now)
		m.finished = true
		m.headline = "Aborted on first mistake"
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.finished {
		return m.renderSummary()
	}
	cells := buildCells(m.text.Runes, m.session.States(), m.session.Cursor(), m.cfg)
	content := renderCells(cells)
	if m.width > 0 {
		contentWidth := int(float64(m.width) * 0.70)
		if contentWidth < 1 {
			contentWidth = 1
		}
		content = lipgloss.NewStyle().Width(contentWidth).Render(wrapCells(cells, contentWidth))
	}
	footer := m.renderFooter(time.Now())
	if m.width == 0 || m.height < 3 {
		if footer == "" {
			return content
		}
		return content + "\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFooter(now time.Time) string {
	met := m.session.Metrics(now)
	progress := 0
	if total := m.session.Total(); total > 0 {
		progress = m.session.Cursor() * 100 / total
	}
	segments := []string{
		fmt.Sprintf("%.1f WPM", met.WPM),
		fmt.Sprintf("%.1f%%", met.Accuracy*100),
		fmt.Sprintf("Progress %d%%", progress),
	}
	if m.ghost != nil {
		lead := m.ghost.Lead(m.session.Cursor(), met.Elapsed)
		segments = append(segments, fmt.Sprintf("Ghost %+d", lead))
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	switch met.Status {
	case engine.StatusPaused:
		footer += "  " + pausedStyle.Render("[paused]")
	case engine.StatusIdle:
		footer += "  " + pausedStyle.Render("[type to start]")
	}
	return footer
}

func (m *Model) renderSummary() string {
	met := m.session.Metrics(time.Now())
	breakdown := engine.KeystrokeBreakdown(met.CorrectCount, met.IncorrectCount)
	lines := []string{
		m.headline,
		"",
		fmt.Sprintf("WPM       %.1f", met.WPM),
		fmt.Sprintf("Accuracy  %.1f%%", met.Accuracy*100),
		fmt.Sprintf("Correct   %d (%.1f%%)", breakdown.Correct, breakdown.CorrectPct),
		fmt.Sprintf("Incorrect %d (%.1f%%)", breakdown.Incorrect, breakdown.IncorrectPct),
		fmt.Sprintf("Time      %s", met.Elapsed.Round(100*time.Millisecond)),
		"",
		footerStyle.Render("ctrl+r restart · esc quit"),
	}
	content := summaryStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
