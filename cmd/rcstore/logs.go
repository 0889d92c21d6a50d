package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/rcstore/internal/eventlog"
	"github.com/muurk/rcstore/internal/faults"
	"github.com/muurk/rcstore/internal/storage"
	"github.com/muurk/rcstore/internal/ui"
	"github.com/muurk/rcstore/internal/version"
)

// Event flags
var (
	eventReason   string
	eventHeap     uint32
	eventFailed   bool
	eventMessage  string
	eventTimeMs   uint32
	eventVoltage  float64
	eventPercent  uint8
	eventLow      bool
	eventCritical bool
	eventRSSI     int8
	eventSent     uint32
	eventReceived uint32
	eventLost     uint32
	eventCode     string
	eventPC       string
	eventExcVAddr string
	eventExcCause uint32
)

// Log reading flags
var (
	logsLines  int
	logsBackup bool
	logsFilter []string
	clearYes   bool
)

func init() {
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(clearLogsCmd)

	logCmd.AddCommand(logBootStartCmd)
	logCmd.AddCommand(logSetupStepCmd)
	logCmd.AddCommand(logBootCompleteCmd)
	logCmd.AddCommand(logBatteryCmd)
	logCmd.AddCommand(logConnectionCmd)
	logCmd.AddCommand(logConnectionStatsCmd)
	logCmd.AddCommand(logErrorCmd)
	logCmd.AddCommand(logCrashCmd)

	logBootStartCmd.Flags().StringVar(&eventReason, "reason", "Power-on", "Boot reason")
	logBootStartCmd.Flags().Uint32Var(&eventHeap, "heap", 0, "Free heap in bytes (0 = this process)")

	logSetupStepCmd.Flags().BoolVar(&eventFailed, "failed", false, "Record the step as failed")
	logSetupStepCmd.Flags().StringVarP(&eventMessage, "message", "m", "", "Optional detail")

	logBootCompleteCmd.Flags().Uint32Var(&eventTimeMs, "time-ms", 0, "Total boot time in milliseconds")
	logBootCompleteCmd.Flags().BoolVar(&eventFailed, "failed", false, "Record the boot as failed")

	logBatteryCmd.Flags().Float64Var(&eventVoltage, "voltage", 0, "Battery voltage")
	logBatteryCmd.Flags().Uint8Var(&eventPercent, "percent", 0, "State of charge (0-100)")
	logBatteryCmd.Flags().BoolVar(&eventLow, "low", false, "Battery is low")
	logBatteryCmd.Flags().BoolVar(&eventCritical, "critical", false, "Battery is critical (takes precedence over --low)")
	_ = logBatteryCmd.MarkFlagRequired("voltage")

	logConnectionCmd.Flags().Int8Var(&eventRSSI, "rssi", 0, "Signal strength in dBm (0 = unknown)")

	logConnectionStatsCmd.Flags().Uint32Var(&eventSent, "sent", 0, "Packets sent")
	logConnectionStatsCmd.Flags().Uint32Var(&eventReceived, "received", 0, "Packets received")
	logConnectionStatsCmd.Flags().Uint32Var(&eventLost, "lost", 0, "Packets lost")
	logConnectionStatsCmd.Flags().Int8Var(&eventRSSI, "avg-rssi", 0, "Average signal strength in dBm")

	logErrorCmd.Flags().StringVar(&eventCode, "code", "ERR_NONE", "Fault code name (ERR_SD_MOUNT, SD_MOUNT) or number")
	logErrorCmd.Flags().StringVarP(&eventMessage, "message", "m", "", "Error description")
	logErrorCmd.Flags().Uint32Var(&eventHeap, "heap", 0, "Free heap in bytes (0 = this process)")

	logCrashCmd.Flags().StringVar(&eventPC, "pc", "0", "Program counter (0x-prefixed hex or decimal)")
	logCrashCmd.Flags().StringVar(&eventExcVAddr, "excvaddr", "0", "Faulting address (0x-prefixed hex or decimal)")
	logCrashCmd.Flags().Uint32Var(&eventExcCause, "exccause", 0, "Exception cause")

	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 20, "Lines to show per channel (0 = all)")
	logsCmd.Flags().BoolVar(&logsBackup, "backup", false, "Show the rotated backup instead of the active file")
	logsCmd.Flags().StringSliceVar(&logsFilter, "grep", nil, "Only show lines containing any of these strings")

	clearLogsCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
}

// logCmd groups the event recording commands
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Append an event record to the card logs",
	Long: `Append one event record, formatted exactly as the device writes it.

Records go to /boot.log, /battery.log, /connection.log or /error.log and
the file is rotated to <name>.1 first when it has grown past 1 MiB.
Timestamps are milliseconds since this command started.`,
	Example: `  rcstore log boot-start --reason Watchdog
  rcstore log battery --voltage 3.21 --percent 4 --critical
  rcstore log error SD --code ERR_SD_MOUNT -m "Mount failed"`,
}

// withRouter mounts the card, runs fn with the router and unmounts
func withRouter(cmd *cobra.Command, fn func(r *eventlog.Router) error) error {
	cmd.SilenceUsage = true

	s, err := openSession()
	if err != nil {
		ui.NewPrinter(cmd.ErrOrStderr()).PrintFailure("Cannot mount card", err, cardTips)
		return err
	}
	defer s.close()

	if err := s.router.Begin(); err != nil {
		return err
	}
	return fn(s.router)
}

var logBootStartCmd = &cobra.Command{
	Use:   "boot-start",
	Short: "Record the start of a boot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(r *eventlog.Router) error {
			heap := eventHeap
			if heap == 0 {
				heap = eventlog.RuntimeHeap{}.FreeHeap()
			}
			return r.LogBootStart(eventReason, heap, version.FirmwareVersion)
		})
	},
}

var logSetupStepCmd = &cobra.Command{
	Use:   "setup-step <module>",
	Short: "Record the result of initialising a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(r *eventlog.Router) error {
			return r.LogSetupStep(args[0], !eventFailed, eventMessage)
		})
	},
}

var logBootCompleteCmd = &cobra.Command{
	Use:   "boot-complete",
	Short: "Record the boot summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(r *eventlog.Router) error {
			return r.LogBootComplete(eventTimeMs, !eventFailed)
		})
	},
}

var logBatteryCmd = &cobra.Command{
	Use:   "battery",
	Short: "Record a battery reading",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if eventPercent > 100 {
			return fmt.Errorf("--percent must be 0-100, got %d", eventPercent)
		}
		return withRouter(cmd, func(r *eventlog.Router) error {
			return r.LogBattery(eventVoltage, eventPercent, eventLow, eventCritical)
		})
	},
}

var logConnectionCmd = &cobra.Command{
	Use:   "connection <peer-mac> <event>",
	Short: "Record a radio link event",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(r *eventlog.Router) error {
			return r.LogConnection(args[0], args[1], eventRSSI)
		})
	},
}

var logConnectionStatsCmd = &cobra.Command{
	Use:   "connection-stats <peer-mac>",
	Short: "Record radio link counters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(r *eventlog.Router) error {
			return r.LogConnectionStats(args[0], eventSent, eventReceived, eventLost, eventRSSI)
		})
	},
}

var logErrorCmd = &cobra.Command{
	Use:   "error <module>",
	Short: "Record a fault on the error log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := faults.Parse(eventCode)
		if err != nil {
			return err
		}
		return withRouter(cmd, func(r *eventlog.Router) error {
			return r.LogError(args[0], code, eventMessage, eventHeap)
		})
	},
}

var logCrashCmd = &cobra.Command{
	Use:   "crash",
	Short: "Record a processor exception on the error log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := parseAddress("pc", eventPC)
		if err != nil {
			return err
		}
		addr, err := parseAddress("excvaddr", eventExcVAddr)
		if err != nil {
			return err
		}
		return withRouter(cmd, func(r *eventlog.Router) error {
			return r.LogCrash(pc, addr, eventExcCause)
		})
	},
}

// parseAddress accepts 0x-prefixed hex, 0-prefixed octal or decimal
func parseAddress(flag, s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	return uint32(n), nil
}

// logsCmd implements the 'logs' command
var logsCmd = &cobra.Command{
	Use:   "logs [channel...]",
	Short: "Show the event logs",
	Long: `Show the last lines of each event log.

Channels are boot, battery, connection and error (or their file names).
Without arguments every channel is shown.`,
	Example: `  rcstore logs
  rcstore logs error -n 0
  rcstore logs boot --backup
  rcstore logs --grep CRITICAL --grep FATAL`,
	ValidArgs: []string{"boot", "battery", "connection", "error"},
	RunE:      runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
	channels := eventlog.Channels
	if len(args) > 0 {
		channels = make([]eventlog.Channel, 0, len(args))
		for _, arg := range args {
			ch, err := eventlog.ParseChannel(arg)
			if err != nil {
				return err
			}
			channels = append(channels, ch)
		}
	}
	cmd.SilenceUsage = true

	p := ui.NewPrinter(cmd.OutOrStdout())

	return withRouter(cmd, func(r *eventlog.Router) error {
		for _, ch := range channels {
			title := ch.Path()
			if logsBackup {
				title = ch.BackupPath()
			}

			text, err := r.Read(ch, logsBackup)
			if err != nil && !storage.IsNotFound(err) {
				return err
			}

			panel := ui.NewPanel(title, text).Filter(logsFilter...).SetMaxLines(logsLines)
			p.PrintPanel(panel)
		}
		return nil
	})
}

// clearLogsCmd implements the 'clear-logs' command
var clearLogsCmd = &cobra.Command{
	Use:   "clear-logs",
	Short: "Delete the active event logs",
	Long: `Delete /boot.log, /battery.log, /connection.log and /error.log.

Rotated backups (<name>.1) are kept. You are asked to confirm unless --yes
is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		p := ui.NewPrinter(cmd.OutOrStdout())

		if !clearYes {
			warnings := []string{"All four active event logs will be deleted", "Rotated backups are kept"}
			if !p.Confirm(cmd.InOrStdin(), "Clear event logs on "+settings.Card.Root, warnings, "CLEAR") {
				return nil
			}
		}

		return withRouter(cmd, func(r *eventlog.Router) error {
			if err := r.ClearAllLogs(); err != nil {
				p.PrintFailure("Clear failed", err, []string{"Check the card is not write protected"})
				return err
			}
			p.PrintSuccess("Event logs cleared", map[string]string{"Card": settings.Card.Root})
			return nil
		})
	},
}
