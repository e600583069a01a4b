package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/retype/internal/model"
)

// tabPadding is the total display width a tab occupies.
const tabPadding = 4

type cell struct {
	s         string
	width     int
	isSpace   bool
	hardBreak bool
}

// buildCells maps each logical reference character to a styled display cell.
// Whitespace is substituted with its configured glyph; the substitution is
// cosmetic and never affects which rune the engine compares against.
func buildCells(ref []rune, states []model.CharState, cursor int, cfg model.Config) []cell {
	out := make([]cell, 0, len(ref))
	for i, target := range ref {
		style := pendingStyle
		switch states[i] {
		case model.Correct:
			style = correctStyle
		case model.Incorrect:
			style = incorrectStyle
		}
		if i == cursor {
			style = style.Underline(true)
		}

		c := cell{isSpace: target == ' ' || target == '\t'}
		switch target {
		case ' ':
			c.s = style.Render(string(cfg.SpaceGlyph))
			c.width = runewidth.RuneWidth(cfg.SpaceGlyph)
		case '\t':
			pad := tabPadding - runewidth.RuneWidth(cfg.TabGlyph)
			if pad < 0 {
				pad = 0
			}
			c.s = style.Render(string(cfg.TabGlyph) + strings.Repeat(" ", pad))
			c.width = runewidth.RuneWidth(cfg.TabGlyph) + pad
		case '\n':
			c.s = style.Render(string(cfg.NewlineGlyph))
			c.width = runewidth.RuneWidth(cfg.NewlineGlyph)
			c.hardBreak = true
		default:
			c.s = style.Render(string(target))
			c.width = runewidth.RuneWidth(target)
		}
		out = append(out, c)
	}
	return out
}

func renderCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
		if c.hardBreak {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// wrapCells soft-wraps at spaces within the given width; newline cells always
// force a line break after their glyph.
func wrapCells(cells []cell, width int) string {
	if width <= 0 {
		return renderCells(cells)
	}
	var out strings.Builder
	line := make([]cell, 0, len(cells))
	lineWidth := 0
	lastSpaceIdx := -1

	flush := func() {
		out.WriteString(renderLine(line))
		out.WriteRune('\n')
		line = line[:0]
		lineWidth = 0
		lastSpaceIdx = -1
	}

	for i := 0; i < len(cells); {
		c := cells[i]
		if lineWidth+c.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderLine(line[:lastSpaceIdx+1]))
				out.WriteRune('\n')
				line = append([]cell{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				flush()
			}
			continue
		}
		line = append(line, c)
		lineWidth += c.width
		if c.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
		if c.hardBreak {
			flush()
		}
	}
	out.WriteString(renderLine(line))
	return out.String()
}

func renderLine(line []cell) string {
	var b strings.Builder
	for _, c := range line {
		b.WriteString(c.s)
	}
	return b.String()
}

func lineWidthOf(line []cell) int {
	total := 0
	for _, c := range line {
		total += c.width
	}
	return total
}

func lastSpaceIndex(line []cell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
