package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/rcstore/internal/config"
	"github.com/muurk/rcstore/internal/deviceconfig"
	"github.com/muurk/rcstore/internal/eventlog"
	"github.com/muurk/rcstore/internal/storage"
	"github.com/muurk/rcstore/internal/ui"
	"github.com/muurk/rcstore/internal/version"
)

// Command flags
var (
	bootReason  string
	showFormat  string
	validateFix bool
	infoPlain   bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(mountTestCmd)
	rootCmd.AddCommand(settingsCmd)
}

// initCmd implements the 'init' command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Run the boot-time storage sequence against the card",
	Long: `Perform what the device does with its card at boot:

  1. Mount the card
  2. Enable the event logs
  3. Record the boot start on /boot.log
  4. Load the configuration profile, writing defaults when none exists and
     repairing out-of-range fields
  5. Record the boot summary on /boot.log

Running init on a blank card leaves it with a default profile and a boot log.`,
	Example: `  # Initialise a blank card image for the peer device
  rcstore init --card ./card --profile peer`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&bootReason, "reason", "Power-on", "Boot reason written to the boot record")
}

func runInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	s := newSession()
	defer s.close()

	var (
		outcome deviceconfig.Outcome
		logErrs []error
	)
	start := time.Now()

	// Log writes never abort the sequence; they are reported at the end
	logStep := func(onStep ui.StepCallback, n int, write func() error) {
		if err := runStep(onStep, n, func() (string, error) { return "", write() }); err != nil {
			logErrs = append(logErrs, err)
		}
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Card Init",
		Command: "rcstore init",
		Params:  cardParams(),
		StepNames: []string{
			"Mount card",
			"Enable event logs",
			"Record boot start",
			"Load configuration",
			"Record boot complete",
		},
		Troubleshooting: cardTips,
		Output:          cmd.OutOrStdout(),
	})

	_, err := runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
		if err := runStep(onStep, 1, func() (string, error) {
			if err := s.backend.Mount(); err != nil {
				return "", err
			}
			return s.backend.Info().CardType.String(), nil
		}); err != nil {
			return nil, err
		}

		logStep(onStep, 2, s.router.Begin)
		logStep(onStep, 3, func() error {
			return s.router.LogBootStart(bootReason, eventlog.RuntimeHeap{}.FreeHeap(), version.FirmwareVersion)
		})

		if err := runStep(onStep, 4, func() (string, error) {
			var err error
			outcome, err = s.store.Begin()
			if err != nil {
				return "", err
			}
			return outcome.String(), nil
		}); err != nil {
			_ = s.router.LogSetupStep("Config", false, err.Error())
			_ = s.router.LogFailure("Config", err)
			return nil, err
		}

		setupMsg := outcome.String()
		if outcome == deviceconfig.OutcomeRepaired {
			setupMsg = fmt.Sprintf("%s, %d correction(s)", setupMsg, len(s.store.Corrections()))
		}
		if err := s.router.LogSetupStep("Config", true, setupMsg); err != nil {
			logErrs = append(logErrs, err)
		}

		logStep(onStep, 5, func() error {
			return s.router.LogBootComplete(uint32(time.Since(start).Milliseconds()), true)
		})

		details := map[string]string{
			"Config":  s.store.Path(),
			"Outcome": outcome.String(),
		}
		if len(logErrs) > 0 {
			details["Log errors"] = strconv.Itoa(len(logErrs))
		}
		return details, nil
	})
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	if outcome == deviceconfig.OutcomeRepaired {
		p.Newline()
		p.PrintResult(correctionsResult("Configuration repaired", s.store.Corrections()))
	}
	if len(logErrs) > 0 {
		p.Newline()
		p.PrintFailure("Event log not fully written", errors.Join(logErrs...), []string{
			"Check the card is not write protected",
			"Run: rcstore mount-test",
		})
	}
	return nil
}

// correctionsResult renders validation corrections as a warning box
func correctionsResult(title string, fixes []deviceconfig.Correction) *ui.Result {
	r := ui.NewWarningResult(title, nil)
	for _, fix := range fixes {
		r.AddNote(fix.String())
	}
	return r
}

// showCmd implements the 'show' command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration profile stored on the card",
	Long: `Print the configuration profile stored on the card.

Nothing is written. A missing or unreadable document is shown as the
compiled defaults, and out-of-range fields are shown as they would be
repaired at boot; both cases are reported on stderr.

Formats:
  detailed   full listing with device type (default)
  compact    one line per subsystem
  json       the canonical document as written to the card
  yaml       the same fields as YAML`,
	Example: `  rcstore show
  rcstore show --profile peer --format json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "detailed", "Output format: detailed, compact, json, yaml")
}

func runShow(cmd *cobra.Command, args []string) error {
	switch showFormat {
	case "detailed", "compact", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (expected detailed, compact, json or yaml)", showFormat)
	}
	cmd.SilenceUsage = true

	s, err := openSession()
	if err != nil {
		ui.NewPrinter(cmd.ErrOrStderr()).PrintFailure("Cannot mount card", err, cardTips)
		return err
	}
	defer s.close()

	loaded, err := s.loadProfile()
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	if !loaded {
		fmt.Fprintf(stderr, "warning: no usable %s on card, showing defaults\n", s.store.Path())
	} else if !s.store.Validate() {
		fmt.Fprintf(stderr, "warning: stored profile has invalid fields, showing repaired values:\n%s",
			deviceconfig.FormatCorrections(s.store.Corrections()))
	}

	out := cmd.OutOrStdout()
	switch showFormat {
	case "compact":
		fmt.Fprint(out, s.store.FormatCompact())
	case "json":
		doc, err := s.store.Document()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(doc))
	case "yaml":
		data, err := yaml.Marshal(s.store.Profile())
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		fmt.Fprint(out, string(data))
	default:
		fmt.Fprint(out, s.store.FormatDetailed())
	}
	return nil
}

// setCmd implements the 'set' command
var setCmd = &cobra.Command{
	Use:   "set key=value [key=value...]",
	Short: "Change configuration fields and save the profile",
	Long: `Assign one or more fields of the profile and save it to the card.

The profile is first brought to a valid state exactly as at boot (defaults
written when missing, invalid fields repaired). Each value must parse as the
field's type and be in range; if any assignment is rejected nothing is saved.

Keys are the document keys, for example backlight_default or espnow_timeout.`,
	Example: `  rcstore set backlight_default=128
  rcstore set espnow_peer_mac=24:6f:28:aa:bb:cc espnow_heartbeat=250
  rcstore set --profile peer espnow_timeout=5000`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	type assignment struct{ key, value string }

	assignments := make([]assignment, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid assignment %q (expected key=value)", arg)
		}
		assignments = append(assignments, assignment{key, value})
	}
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

	details := make(map[string]string, len(assignments))
	for _, a := range assignments {
		if err := s.store.SetField(a.key, a.value); err != nil {
			p.PrintFailure("Invalid value", err, []string{
				"Valid keys: " + strings.Join(deviceconfig.Keys(s.store.Kind()), ", "),
				"Nothing was saved",
			})
			return err
		}
		details[a.key] = a.value
	}

	if err := s.store.Save(); err != nil {
		p.PrintFailure("Save failed", err, []string{"Check the card is not write protected"})
		return err
	}

	p.PrintSuccess("Saved "+s.store.Path(), details)
	return nil
}

// validateCmd implements the 'validate' command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the stored profile against the valid ranges",
	Long: `Check every field of the stored profile.

Without --fix the card is not modified and the command fails when any field
is out of range. With --fix the repaired profile is saved.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateFix, "fix", false, "Save the repaired profile")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	p := ui.NewPrinter(cmd.OutOrStdout())

	s, err := openSession()
	if err != nil {
		p.PrintFailure("Cannot mount card", err, cardTips)
		return err
	}
	defer s.close()

	loaded, err := s.loadProfile()
	if err != nil {
		return err
	}
	if !loaded {
		err := fmt.Errorf("no usable profile at %s", s.store.Path())
		p.PrintFailure("Validation failed", err, []string{"Write defaults with: rcstore init"})
		return err
	}

	if s.store.Validate() {
		p.PrintSuccess("Profile valid", map[string]string{"Path": s.store.Path()})
		return nil
	}

	fixes := s.store.Corrections()
	if !validateFix {
		p.PrintResult(correctionsResult("Profile has invalid fields", fixes).
			AddNote("Run with --fix to save the repaired values"))
		return fmt.Errorf("%d invalid field group(s) in %s", len(fixes), s.store.Path())
	}

	if err := s.store.Save(); err != nil {
		p.PrintFailure("Save failed", err, []string{"Check the card is not write protected"})
		return err
	}
	p.PrintResult(correctionsResult("Profile repaired and saved", fixes))
	return nil
}

// infoCmd implements the 'info' command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show card usage, log files and the configuration summary",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoPlain, "plain", false, "Print directly instead of through the terminal renderer")
}

func runInfo(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	s, err := openSession()
	if err != nil {
		ui.NewPrinter(cmd.OutOrStdout()).PrintFailure("Cannot mount card", err, cardTips)
		return err
	}
	defer s.close()

	var b strings.Builder
	p := ui.NewPrinter(&b)

	p.PrintHeader("Card Info", "rcstore info", cardParams())

	info := s.backend.Info()
	p.Println(fmt.Sprintf("  Card type: %s", info.CardType))
	p.PrintUsage("Usage", info.Used, info.Total)
	p.Println(fmt.Sprintf("  Free:      %s", ui.FormatBytes(info.Free)))
	p.Newline()

	entries, err := s.backend.List("/")
	if err != nil {
		return err
	}
	var files strings.Builder
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(&files, "%s/\n", e.Name)
			continue
		}
		fmt.Fprintf(&files, "%-20s %s\n", e.Name, ui.FormatBytes(e.Size))
	}
	p.PrintPanel(ui.NewPanel("Card files", files.String()))
	p.PrintPanel(ui.NewPanel("Event logs", s.router.FormatInfo()))

	loaded, err := s.loadProfile()
	if err != nil {
		return err
	}
	title := "Configuration " + s.store.Path()
	if !loaded {
		title += " (not on card, defaults shown)"
	} else if !s.store.Validate() {
		title += " (needs repair)"
	}
	p.PrintPanel(ui.NewPanel(title, s.store.FormatCompact()))

	if infoPlain {
		fmt.Fprint(cmd.OutOrStdout(), b.String())
		return nil
	}
	return ui.RenderOnce(cmd.OutOrStdout(), b.String())
}

// mountTestCmd implements the 'mount-test' command
var mountTestCmd = &cobra.Command{
	Use:   "mount-test",
	Short: "Check the card can be mounted, written and read",
	Long: `Exercise every storage operation on a scratch file:
write, read back, append, rename, delete, then unmount.

The scratch files are removed; nothing else on the card is touched.`,
	Args: cobra.NoArgs,
	RunE: runMountTest,
}

const (
	scratchPath  = "/rcstore_test.txt"
	scratchMoved = "/rcstore_test.old"
)

func runMountTest(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	s := newSession()
	defer s.close()

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Mount Test",
		Command: "rcstore mount-test",
		Params:  cardParams(),
		StepNames: []string{
			"Mount card",
			"Write scratch file",
			"Read back",
			"Append line",
			"Rename",
			"Delete",
			"Unmount",
		},
		Troubleshooting: append([]string{"Check the card is not write protected"}, cardTips...),
		Output:          cmd.OutOrStdout(),
	})

	const payload = "rcstore mount test\n"

	_, err := runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
		var info storage.Info

		steps := []func() (string, error){
			func() (string, error) {
				if err := s.backend.Mount(); err != nil {
					return "", err
				}
				info = s.backend.Info()
				return info.CardType.String(), nil
			},
			func() (string, error) {
				if err := s.backend.WriteAll(scratchPath, payload); err != nil {
					return "", err
				}
				return ui.FormatBytes(uint64(len(payload))), nil
			},
			func() (string, error) {
				got, err := s.backend.ReadAll(scratchPath)
				if err != nil {
					return "", err
				}
				if got != payload {
					return "", fmt.Errorf("read back %q, wrote %q", got, payload)
				}
				return "", nil
			},
			func() (string, error) {
				if err := s.backend.AppendLine(scratchPath, "appended"); err != nil {
					return "", err
				}
				return ui.FormatBytes(s.backend.Size(scratchPath)), nil
			},
			func() (string, error) { return "", s.backend.Rename(scratchPath, scratchMoved) },
			func() (string, error) { return "", s.backend.Delete(scratchMoved) },
			func() (string, error) { return "", s.backend.Unmount() },
		}

		for i, step := range steps {
			if err := runStep(onStep, i+1, step); err != nil {
				// Leave no scratch files behind on a writable card
				if s.backend.IsAvailable() {
					_ = s.backend.Delete(scratchPath)
					_ = s.backend.Delete(scratchMoved)
				}
				return nil, err
			}
		}

		return map[string]string{
			"Card type": info.CardType.String(),
			"Capacity":  ui.FormatBytes(info.Total),
			"Free":      ui.FormatBytes(info.Free),
		}, nil
	})
	return err
}

// settingsCmd groups the settings file commands
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or save the host settings file",
	Long: `The settings file stores defaults for the global flags (card, profile,
capacity) and the diagnostic log configuration. Flags always override it.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsFile()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(settings)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, data)
		return nil
	},
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the effective settings (including flags) as the new defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		path, err := settingsFile()
		if err != nil {
			return err
		}
		if err := settings.SaveTo(path); err != nil {
			return err
		}

		details := cardParams()
		details["Path"] = path
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Settings saved", details)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSaveCmd)
}

// settingsFile returns --settings or the default location
func settingsFile() (string, error) {
	if settingsPath != "" {
		return settingsPath, nil
	}
	return config.GetConfigPath()
}
