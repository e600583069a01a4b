// Package resumeui provides the Bubble Tea picker for unfinished sessions.
package resumeui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/retype/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model lets the user pick one checkpoint to resume.
type Model struct {
	checkpoints []model.Checkpoint
	table       table.Model
	selected    string

	width  int
	height int
}

// NewModel builds a picker over the stored checkpoints.
func NewModel(checkpoints []model.Checkpoint) *Model {
	columns := []table.Column{
		{Title: "File", Width: 48},
		{Title: "Progress", Width: 10},
		{Title: "Time", Width: 10},
		{Title: "Updated", Width: 18},
	}
	rows := make([]table.Row, 0, len(checkpoints))
	for _, cp := range checkpoints {
		progress := "0%"
		if cp.TotalCharacters > 0 {
			progress = fmt.Sprintf("%d%%", cp.CursorPosition*100/cp.TotalCharacters)
		}
		rows = append(rows, table.Row{
			cp.FilePath,
			progress,
			cp.Elapsed.Round(time.Second).String(),
			cp.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(true),
	)
	return &Model{checkpoints: checkpoints, table: t}
}

// Selected returns the file path the user chose, or "" if the picker was
// dismissed.
func (m *Model) Selected() string { return m.selected }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if row := m.table.SelectedRow(); row != nil {
				m.selected = row[0]
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	content := titleStyle.Render("Unfinished sessions") + "\n\n" +
		m.table.View() + "\n\n" +
		hintStyle.Render("enter resume · esc quit")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
