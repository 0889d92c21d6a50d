package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/rcstore/internal/editor"
	"github.com/muurk/rcstore/internal/ui"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

// editCmd implements the 'edit' command
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the profile interactively",
	Long: `Open an interactive editor on the configuration profile.

The profile is loaded (and repaired if needed) as the device would at boot.
Each value is checked when entered; values outside the valid range are
refused. Press 's' to save to the card and 'q' to quit.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	p := ui.NewPrinter(cmd.OutOrStdout())

	s, err := openSession()
	if err != nil {
		p.PrintFailure("Cannot mount card", err, cardTips)
		return err
	}
	defer s.close()

	if _, err := s.store.Begin(); err != nil {
		p.PrintFailure("Cannot load configuration", err, cardTips)
		return err
	}

	program := tea.NewProgram(editor.New(s.store),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}

	if m, ok := final.(editor.Model); ok && m.Dirty() {
		p.PrintWarning("Changes discarded", map[string]string{
			"Fields": strings.Join(m.Changed(), ", "),
		})
	}
	return nil
}
