// Package ui provides terminal UI components for the rcstore CLI.
//
// Components use Lipgloss for styling and follow a "render once and exit"
// pattern: they print polished output but never wait for interaction, except
// for Confirm, which guards destructive commands such as clear-logs.
//
// # Components
//
//   - Header: command banner with the card path and profile
//   - Progress / Runner: numbered step list for multi-step commands (init)
//   - Result: success, warning (configuration repaired) and failure boxes
//   - Panel: bordered text for log tails and configuration documents
//   - UsageBar: card usage drawn with the bubbles progress bar
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Card Init",
//	    Command:   "rcstore init",
//	    Params:    map[string]string{"Card": root},
//	    StepNames: []string{"Mount card", "Load configuration"},
//	})
//
//	_, err := runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "")
//	    return nil, nil
//	})
//
// Diagnostic logging is silent unless RCSTORE_LOG_LEVEL or --log-level is
// set, so the curated UI output is shown cleanly.
package ui
