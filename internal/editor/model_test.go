package editor

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/muurk/rcstore/internal/deviceconfig"
	"github.com/muurk/rcstore/internal/storage"
)

func newPeerStore(t *testing.T) (*deviceconfig.Store, *storage.Backend) {
	t.Helper()
	b := storage.NewBackend(storage.NewMemDriver(0), nil)
	if err := b.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Unmount() })

	s := deviceconfig.NewStore(b, deviceconfig.KindPeer, deviceconfig.Options{})
	if _, err := s.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	return s, b
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNavigationWraps(t *testing.T) {
	s, _ := newPeerStore(t)
	m := New(s)

	m = press(t, m, "up")
	if m.Cursor != len(m.Fields())-1 {
		t.Errorf("Cursor after up = %d, want %d", m.Cursor, len(m.Fields())-1)
	}
	m = press(t, m, "down")
	if m.Cursor != 0 {
		t.Errorf("Cursor after down = %d, want 0", m.Cursor)
	}
	m = press(t, m, "j", "j")
	if m.Cursor != 2 {
		t.Errorf("Cursor after j j = %d, want 2", m.Cursor)
	}
}

func TestEditAcceptsValidValue(t *testing.T) {
	s, _ := newPeerStore(t)
	m := New(s)

	// espnow_timeout
	m = press(t, m, "down", "enter")
	if !m.Editing {
		t.Fatal("enter did not start editing")
	}
	if got := m.Input.Value(); got != "2000" {
		t.Errorf("input value = %q, want current value 2000", got)
	}

	m.Input.SetValue("3500")
	m = press(t, m, "enter")

	if m.Editing {
		t.Error("still editing after accepted value")
	}
	if s.Peer().EspnowTimeout != 3500 {
		t.Errorf("EspnowTimeout = %d, want 3500", s.Peer().EspnowTimeout)
	}
	if diff := cmp.Diff([]string{"espnow_timeout"}, m.Changed()); diff != "" {
		t.Errorf("Changed() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(m.View(), "MODIFIED") {
		t.Error("view does not show the modified status")
	}
}

func TestEditRejectsInvalidValue(t *testing.T) {
	s, _ := newPeerStore(t)
	m := New(s)

	m = press(t, m, "down", "enter")
	m.Input.SetValue("99999")
	m = press(t, m, "enter")

	if !m.Editing {
		t.Error("rejected value left edit mode")
	}
	if m.Err == "" {
		t.Error("no error shown for rejected value")
	}
	if s.Peer().EspnowTimeout != deviceconfig.DefaultTimeoutMs {
		t.Errorf("EspnowTimeout = %d, want unchanged %d", s.Peer().EspnowTimeout, deviceconfig.DefaultTimeoutMs)
	}
	if !strings.Contains(m.View(), m.Err) {
		t.Errorf("view does not show error %q", m.Err)
	}

	m = press(t, m, "esc")
	if m.Editing || m.Err != "" {
		t.Error("esc did not cancel the edit")
	}
	if m.Dirty() {
		t.Error("cancelled edit marked the profile dirty")
	}
}

func TestSaveWritesCard(t *testing.T) {
	s, b := newPeerStore(t)
	m := New(s)

	m = press(t, m, "down", "down", "enter")
	m.Input.SetValue("1.25")
	m = press(t, m, "enter", "s")

	if m.Dirty() {
		t.Errorf("Dirty() after save, changed = %v", m.Changed())
	}
	if !strings.Contains(m.Status, "Saved") {
		t.Errorf("Status = %q, want a saved message", m.Status)
	}

	stored, err := b.ReadAll(deviceconfig.PeerConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stored, `"battery_calibration": 1.25`) {
		t.Errorf("stored document missing new value:\n%s", stored)
	}
}

func TestSaveFailureShown(t *testing.T) {
	s, b := newPeerStore(t)
	m := New(s)
	_ = b.Unmount()

	m = press(t, m, "s")
	if m.Err == "" {
		t.Error("save on unmounted card showed no error")
	}
}

func TestQuitAsksTwiceWhenDirty(t *testing.T) {
	s, _ := newPeerStore(t)
	m := New(s)

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q on a clean profile did not quit")
	}

	m = press(t, m, "down", "enter")
	m.Input.SetValue("2500")
	m = press(t, m, "enter")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		t.Fatal("first q with unsaved changes quit")
	}
	m = next.(Model)
	if !strings.Contains(m.View(), "press q again") {
		t.Error("view does not ask for confirmation")
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("second q did not quit")
	}
}

func TestHelpToggle(t *testing.T) {
	s, _ := newPeerStore(t)
	m := New(s)

	m = press(t, m, "?")
	if !m.Help.ShowAll {
		t.Error("? did not expand help")
	}
	if !strings.Contains(m.View(), "cancel") {
		t.Error("full help does not list esc")
	}
	m = press(t, m, "?")
	if m.Help.ShowAll {
		t.Error("? did not collapse help")
	}
}
