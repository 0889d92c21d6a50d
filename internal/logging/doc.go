// Package logging builds the diagnostic logger used by rcstore.
//
// Diagnostic output is separate from the on-card event logs written by
// package eventlog: it describes what the tools are doing (mounts, rotations,
// repairs) and is silent unless a level is configured.
//
// # Log Levels
//
//   - Debug: every file operation and configuration step
//   - Info: mounts, rotations, defaults written
//   - Warn: repaired configuration, failed writes
//   - Error: command failures
//
// # Configuration
//
//	logger, err := logging.New(logging.Options{Level: "debug", File: "/tmp/rcstore.log"})
//
// Components take a *zap.Logger through their Options and treat nil as
// silent. The CLI initialises a global logger instead:
//
//	if err := logging.Initialize(level); err != nil { ... }
//	defer logging.Sync()
//
// When File is set, output goes through lumberjack and is rotated by size.
package logging
