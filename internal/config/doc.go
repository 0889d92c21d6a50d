// Package config manages the rcstore host-tool settings file.
//
// The settings file is YAML and records which card image the tools operate
// on, which configuration profile it carries, and how diagnostic logging is
// set up. It is not the device configuration: that lives on the card and is
// handled by package deviceconfig.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/rcstore/settings.yaml or $HOME/.config/rcstore/settings.yaml
//   - macOS: $HOME/.config/rcstore/settings.yaml
//   - Windows: %LOCALAPPDATA%\rcstore\settings.yaml
//
// # Usage Example
//
//	settings, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings.Card.Root = "/media/sdcard"
//	if _, err := settings.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// A missing file yields defaults. Saves are atomic (temporary file plus
// rename).
package config
