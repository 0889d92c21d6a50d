// Rcstore manages the storage card of a two-device radio controller.
//
// The controller keeps its configuration profile (main or peer) and four
// event logs on an SD card. This utility operates on that card from a host,
// either through the card's mount point or a directory holding a copy of
// it:
//
//   - Simulate a device boot (mount, load or repair config, boot records)
//   - Show, validate and edit the configuration profile
//   - Append event records and read or clear the event logs
//   - Report card usage and check the card is writable
//
// See 'rcstore --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/rcstore/internal/config"
	"github.com/muurk/rcstore/internal/logging"
	"github.com/muurk/rcstore/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	cardRoot     string
	profileName  string
	capacityMB   uint64
	logLevel     string
	settingsPath string
)

// settings is the effective configuration after flags are applied
var settings *config.Settings

var rootCmd = &cobra.Command{
	Use:   "rcstore",
	Short: "Radio controller card storage utility",
	Long: `Manage the configuration profile and event logs stored on the SD card
of a two-device radio controller.

The card holds:
  /config_main.json or /config_peer.json   configuration profile
  /boot.log /battery.log                   event logs
  /connection.log /error.log               (each rotated to <name>.1 at 1 MiB)

Point --card at the card's mount point or at a directory containing a copy.
Defaults for --card and --profile can be stored with 'rcstore settings save'.`,
	Version: version.Version,
	Example: `  # Simulate a boot of the main device against a mounted card
  rcstore init --card /media/sdcard

  # Show the peer profile as JSON
  rcstore show --card ./card --profile peer --format json

  # Change a setting
  rcstore set espnow_timeout=3000

  # Record a battery reading and read it back
  rcstore log battery --voltage 3.21 --percent 4 --critical
  rcstore logs battery`,
	PersistentPreRunE: loadSettings,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&cardRoot, "card", "c", "", "Card mount point or image directory (default from settings, else .)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "Configuration profile: main or peer (default from settings, else main)")
	rootCmd.PersistentFlags().Uint64Var(&capacityMB, "capacity-mb", 0, "Reported card size in MiB (0 = 4096)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error (default: $"+logging.LogLevelEnvVar+" or silent)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default: OS config dir)")

	rootCmd.AddCommand(versionCmd)
}

// loadSettings reads the settings file, applies flag overrides and sets
// up diagnostic logging
func loadSettings(cmd *cobra.Command, args []string) error {
	var (
		s   *config.Settings
		err error
	)
	if settingsPath != "" {
		s, err = config.LoadFrom(settingsPath)
	} else {
		s, err = config.Load()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("card") {
		s.Card.Root = cardRoot
	}
	if flags.Changed("profile") {
		s.Card.Profile = profileName
	}
	if flags.Changed("capacity-mb") {
		s.Card.CapacityMB = capacityMB
	}
	if flags.Changed("log-level") {
		s.Log.Level = logLevel
	}
	if err := s.Validate(); err != nil {
		return err
	}
	settings = s

	if err := logging.InitializeWithOptions(s.LoggingOptions()); err != nil {
		return err
	}
	logging.Debug("Settings loaded")
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rcstore %s\n", version.Full())
	},
}
