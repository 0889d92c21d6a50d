// Package editor provides an interactive terminal editor for the
// configuration profile stored on the card.
//
// The editor lists every field of the active profile. Selecting a field
// opens an inline text input; the new value goes through
// deviceconfig.Store.SetField, so a value the device would reject is
// refused in place with the reason shown under the field. Nothing is
// written until the user saves with 's'.
//
// Usage:
//
//	m := editor.New(store)
//	final, err := tea.NewProgram(m).Run()
//	if err != nil {
//	    return err
//	}
//	if final.(editor.Model).Dirty() {
//	    // quit without saving
//	}
//
// Key bindings:
//
//	↑/k ↓/j   move between fields
//	enter     edit the field, or accept the edited value
//	esc       abandon the edit
//	s         save the profile to the card
//	?         toggle full help
//	q         quit (asks again when there are unsaved changes)
package editor
