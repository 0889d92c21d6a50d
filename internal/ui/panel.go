package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Panel is a bordered box of raw text, such as a log tail or a
// configuration document.
type Panel struct {
	Title    string   // e.g., "/boot.log"
	Lines    []string // Content lines
	Width    int
	MaxLines int // Maximum lines to display (0 = unlimited), keeping the last ones
}

// NewPanel creates a panel over content
func NewPanel(title, content string) *Panel {
	content = strings.TrimRight(content, "\n")
	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
	}
	return &Panel{
		Title: title,
		Lines: lines,
		Width: GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (p *Panel) SetWidth(width int) *Panel {
	p.Width = width
	return p
}

// SetMaxLines limits the number of lines displayed
func (p *Panel) SetMaxLines(max int) *Panel {
	p.MaxLines = max
	return p
}

// Filter keeps only lines containing any of the patterns
func (p *Panel) Filter(patterns ...string) *Panel {
	if len(patterns) == 0 {
		return p
	}
	var filtered []string
	for _, line := range p.Lines {
		for _, pattern := range patterns {
			if strings.Contains(line, pattern) {
				filtered = append(filtered, line)
				break
			}
		}
	}
	p.Lines = filtered
	return p
}

// visible returns the lines that fit MaxLines plus how many were dropped
func (p *Panel) visible() ([]string, int) {
	if p.MaxLines > 0 && len(p.Lines) > p.MaxLines {
		return p.Lines[len(p.Lines)-p.MaxLines:], len(p.Lines) - p.MaxLines
	}
	return p.Lines, 0
}

// Render returns the styled panel as a string
func (p *Panel) Render() string {
	width := p.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines, dropped := p.visible()
	body := make([]string, 0, len(lines)+1)
	if dropped > 0 {
		body = append(body, StepNoteStyle.Render(fmt.Sprintf("... (%d earlier lines)", dropped)))
	}
	body = append(body, lines...)
	if len(body) == 0 {
		body = append(body, StepNoteStyle.Render("(empty)"))
	}

	inner := lipgloss.JoinVertical(lipgloss.Left,
		PanelTitleStyle.Render(p.Title),
		"",
		PanelContentStyle.Render(strings.Join(body, "\n")))

	boxWidth := width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(boxWidth).
		Padding(0, 1).
		MarginLeft(2).
		Render(inner)
}

// String implements fmt.Stringer
func (p *Panel) String() string {
	return p.Render()
}
