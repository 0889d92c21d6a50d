package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/rcstore/internal/deviceconfig"
	"github.com/muurk/rcstore/internal/ui"
)

const labelWidth = 22

// Model is the bubbletea model of the profile editor
type Model struct {
	store  *deviceconfig.Store
	fields []deviceconfig.FieldValue
	saved  map[string]string // values as last loaded or saved

	// Navigation
	Cursor  int
	Editing bool
	Input   textinput.Model

	// Status
	Err         string
	Status      string
	confirmQuit bool

	Width int
	Keys  keyMap
	Help  help.Model
}

// New creates an editor over the in-memory profile of store. The profile
// is expected to be loaded already.
func New(store *deviceconfig.Store) Model {
	input := textinput.New()
	input.CharLimit = 32
	input.Width = 30
	input.Prompt = ""

	m := Model{
		store: store,
		Input: input,
		Keys:  defaultKeyMap(),
		Help:  help.New(),
	}
	m.refresh()
	m.markSaved()
	return m
}

// Init initializes the editor
func (m Model) Init() tea.Cmd {
	return nil
}

// Fields returns the current field values in document order
func (m Model) Fields() []deviceconfig.FieldValue {
	return m.fields
}

// Changed returns the keys whose value differs from the last save
func (m Model) Changed() []string {
	var keys []string
	for _, f := range m.fields {
		if m.saved[f.Key] != f.Value {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Dirty reports whether there are unsaved changes
func (m Model) Dirty() bool {
	return len(m.Changed()) > 0
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.Editing {
			return m.updateEditing(msg)
		}
		return m.updateNormalMode(msg)
	}

	if m.Editing {
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateNormalMode handles keys when no field is being edited
func (m Model) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.Keys.Quit) {
		m.confirmQuit = false
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		if m.Dirty() && !m.confirmQuit {
			m.confirmQuit = true
			m.Status = "Unsaved changes: press q again to quit without saving"
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Up):
		m.Cursor--
		if m.Cursor < 0 {
			m.Cursor = len(m.fields) - 1
		}
		m.Err = ""

	case key.Matches(msg, m.Keys.Down):
		m.Cursor++
		if m.Cursor >= len(m.fields) {
			m.Cursor = 0
		}
		m.Err = ""

	case key.Matches(msg, m.Keys.Edit):
		return m.startEditing()

	case key.Matches(msg, m.Keys.Save):
		return m.save()

	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
	}

	return m, nil
}

// updateEditing handles keys while the inline input is active
func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		m.Editing = false
		m.Err = ""
		m.Input.Blur()
		return m, nil

	case key.Matches(msg, m.Keys.Edit):
		f := m.fields[m.Cursor]
		value := strings.TrimSpace(m.Input.Value())
		if err := m.store.SetField(f.Key, value); err != nil {
			// Stay in edit mode so the value can be corrected
			m.Err = reason(err)
			return m, nil
		}
		m.Editing = false
		m.Err = ""
		m.Input.Blur()
		m.refresh()
		m.Status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// startEditing opens the inline input on the focused field
func (m Model) startEditing() (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}
	m.Editing = true
	m.Err = ""
	m.Input.SetValue(m.fields[m.Cursor].Value)
	m.Input.CursorEnd()
	return m, m.Input.Focus()
}

// save writes the profile to the card
func (m Model) save() (tea.Model, tea.Cmd) {
	if err := m.store.Save(); err != nil {
		m.Err = err.Error()
		m.Status = ""
		return m, nil
	}
	m.markSaved()
	m.Err = ""
	m.Status = fmt.Sprintf("%s Saved %s", ui.SuccessMarker, m.store.Path())
	return m, nil
}

func (m *Model) refresh() {
	m.fields = m.store.Values()
}

func (m *Model) markSaved() {
	m.saved = make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		m.saved[f.Key] = f.Value
	}
}

// reason strips the operation and path prefix from a store error
func reason(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}

// View renders the editor
func (m Model) View() string {
	header := lipgloss.NewStyle().Foreground(ui.PrimaryColor).Bold(true).
		Render(fmt.Sprintf("Profile: %s • %s", m.store.Kind(), m.store.Path()))

	var statusLine string
	switch {
	case m.Status != "" && m.confirmQuit:
		statusLine = lipgloss.NewStyle().Foreground(ui.WarningColor).Bold(true).Render(m.Status)
	case m.Dirty():
		statusLine = lipgloss.NewStyle().Foreground(ui.WarningColor).Bold(true).
			Render(ui.WarningMarker + " MODIFIED")
	case m.Status != "":
		statusLine = lipgloss.NewStyle().Foreground(ui.SuccessColor).Render(m.Status)
	}

	width := m.Width
	if width <= 0 || width > 60 {
		width = 60
	}
	divider := lipgloss.NewStyle().Foreground(ui.PrimaryColor).Render(strings.Repeat("─", width))

	lines := make([]string, 0, len(m.fields)+1)
	for i, f := range m.fields {
		lines = append(lines, m.renderField(i, f))
		if i == m.Cursor && m.Err != "" {
			lines = append(lines, lipgloss.NewStyle().Foreground(ui.ErrorColor).
				PaddingLeft(2+labelWidth).Render(ui.FailureMarker+" "+m.Err))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		statusLine,
		divider,
		strings.Join(lines, "\n"),
		"",
		m.Help.View(m.Keys),
	) + "\n"
}

// renderField renders one field line:
// "→ key                   value *" when selected, with "*" marking an
// unsaved change
func (m Model) renderField(i int, f deviceconfig.FieldValue) string {
	selected := i == m.Cursor

	labelStyle := lipgloss.NewStyle().Width(labelWidth).Foreground(ui.MutedColor)
	valueStyle := lipgloss.NewStyle()
	if selected {
		labelStyle = labelStyle.Foreground(ui.SuccessColor).Bold(true)
		valueStyle = valueStyle.Foreground(ui.SuccessColor).Bold(true)
	}

	arrow := "  "
	if selected {
		arrow = "→ "
	}

	value := valueStyle.Render(f.Value)
	if selected && m.Editing {
		value = m.Input.View()
	}

	marker := ""
	if m.saved[f.Key] != f.Value {
		marker = lipgloss.NewStyle().Foreground(ui.WarningColor).Render(" *")
	}

	return lipgloss.JoinHorizontal(lipgloss.Left, arrow, labelStyle.Render(f.Key), value, marker)
}
