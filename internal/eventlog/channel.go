package eventlog

import (
	"fmt"
	"strings"
)

// Channel is one of the four independent log files
type Channel int

const (
	Boot Channel = iota
	Battery
	Connection
	Error
)

// Channels lists every channel in file-table order
var Channels = []Channel{Boot, Battery, Connection, Error}

var channelPaths = [...]string{
	Boot:       "/boot.log",
	Battery:    "/battery.log",
	Connection: "/connection.log",
	Error:      "/error.log",
}

// BackupSuffix is appended to a channel path to name its single backup generation
const BackupSuffix = ".1"

// Path returns the card path of the active log file
func (c Channel) Path() string {
	if c < Boot || c > Error {
		return ""
	}
	return channelPaths[c]
}

// BackupPath returns the card path of the rotated generation
func (c Channel) BackupPath() string {
	return c.Path() + BackupSuffix
}

func (c Channel) String() string {
	switch c {
	case Boot:
		return "boot"
	case Battery:
		return "battery"
	case Connection:
		return "connection"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// ParseChannel resolves a channel name ("boot", "battery", "connection", "error")
func ParseChannel(s string) (Channel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Channels {
		if c.String() == name {
			return c, nil
		}
	}
	return Boot, fmt.Errorf("unknown log channel %q", s)
}

// Level is the severity written into each line
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelCritical
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	case LevelFatal:
		return "FATAL"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}
