// Package faults defines the fault codes written into the error log.
//
// The numeric values are part of the on-card log format and must not be
// renumbered. Subsystems keep their own typed errors and map to a Code only
// when a value is about to be written to the log.
package faults

import (
	"fmt"
	"strconv"
)

// Code is a stable fault classification recorded as "Code: <n>" in the
// error log.
type Code int

const (
	None            Code = 0
	DisplayInit     Code = 1
	TouchInit       Code = 2
	SDInit          Code = 3
	SDMount         Code = 4
	FileOpen        Code = 5
	FileWrite       Code = 6
	FileRead        Code = 7
	BatteryInit     Code = 8
	BatteryCritical Code = 9
)

var codeNames = map[Code]string{
	None:            "ERR_NONE",
	DisplayInit:     "ERR_DISPLAY_INIT",
	TouchInit:       "ERR_TOUCH_INIT",
	SDInit:          "ERR_SD_INIT",
	SDMount:         "ERR_SD_MOUNT",
	FileOpen:        "ERR_FILE_OPEN",
	FileWrite:       "ERR_FILE_WRITE",
	FileRead:        "ERR_FILE_READ",
	BatteryInit:     "ERR_BATTERY_INIT",
	BatteryCritical: "ERR_BATTERY_CRITICAL",
}

// String returns the symbolic name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Known reports whether c is one of the defined codes.
func (c Code) Known() bool {
	_, ok := codeNames[c]
	return ok
}

// Parse resolves a symbolic name ("ERR_SD_MOUNT", "SD_MOUNT") or a decimal
// number into a Code. Unknown numbers are accepted as-is.
func Parse(s string) (Code, error) {
	for code, name := range codeNames {
		if s == name || "ERR_"+s == name {
			return code, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return None, fmt.Errorf("unknown fault code %q", s)
	}
	return Code(n), nil
}
