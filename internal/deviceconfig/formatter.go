package deviceconfig

import (
	"fmt"
	"strings"
)

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// FormatMain returns a multi-line listing of a main profile
func FormatMain(c *MainConfig) string {
	var b strings.Builder

	b.WriteString("=== Main Config ===\n")
	b.WriteString(fmt.Sprintf("Backlight:        %d\n", c.BacklightDefault))
	b.WriteString(fmt.Sprintf("Touch Min/Max X:  %d / %d\n", c.TouchMinX, c.TouchMaxX))
	b.WriteString(fmt.Sprintf("Touch Min/Max Y:  %d / %d\n", c.TouchMinY, c.TouchMaxY))
	b.WriteString(fmt.Sprintf("Touch Threshold:  %d\n", c.TouchThreshold))
	b.WriteString(fmt.Sprintf("Joy Center X/Y:   %d / %d\n", c.JoystickCenterX, c.JoystickCenterY))
	b.WriteString(fmt.Sprintf("Joy Deadzone:     %d\n", c.JoystickDeadzone))
	b.WriteString(fmt.Sprintf("Peer MAC:         %s\n", c.EspnowPeerMAC))
	b.WriteString(fmt.Sprintf("Heartbeat:        %dms\n", c.EspnowHeartbeat))
	b.WriteString(fmt.Sprintf("Timeout:          %dms\n", c.EspnowTimeout))
	b.WriteString(fmt.Sprintf("Battery Cal:      %.2f\n", c.BatteryCalibration))
	b.WriteString(fmt.Sprintf("Debug Serial:     %s\n", onOff(c.DebugSerial)))

	return b.String()
}

// FormatPeer returns a multi-line listing of a peer profile
func FormatPeer(c *PeerConfig) string {
	var b strings.Builder

	b.WriteString("=== Peer Config ===\n")
	b.WriteString(fmt.Sprintf("Main MAC:         %s\n", c.EspnowMainMAC))
	b.WriteString(fmt.Sprintf("Timeout:          %dms\n", c.EspnowTimeout))
	b.WriteString(fmt.Sprintf("Battery Cal:      %.2f\n", c.BatteryCalibration))
	b.WriteString(fmt.Sprintf("Debug Serial:     %s\n", onOff(c.DebugSerial)))

	return b.String()
}

// FormatDetailed returns the full profile with a banner and device type
func (s *Store) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("╔═══════════════════════════════════════════════╗\n")
	b.WriteString("║           CONFIG MANAGER INFO                 ║\n")
	b.WriteString("╚═══════════════════════════════════════════════╝\n")
	b.WriteString("\n")

	if s.IsPeer() {
		b.WriteString("Device Type: Peer\n\n")
		b.WriteString(FormatPeer(&s.peer))
	} else {
		b.WriteString("Device Type: Main\n\n")
		b.WriteString(FormatMain(&s.main))
	}

	return b.String()
}

// FormatCompact returns a short summary suitable for terminal display
func (s *Store) FormatCompact() string {
	var b strings.Builder

	if s.IsPeer() {
		c := &s.peer
		b.WriteString(fmt.Sprintf("Profile: peer (%s)\n", s.Path()))
		b.WriteString(fmt.Sprintf("Link:    main %s, timeout %dms\n", c.EspnowMainMAC, c.EspnowTimeout))
		b.WriteString(fmt.Sprintf("Battery: cal %.2f\n", c.BatteryCalibration))
		b.WriteString(fmt.Sprintf("Debug:   %s\n", onOff(c.DebugSerial)))
		return b.String()
	}

	c := &s.main
	b.WriteString(fmt.Sprintf("Profile: main (%s)\n", s.Path()))
	b.WriteString(fmt.Sprintf("Display: backlight %d\n", c.BacklightDefault))
	b.WriteString(fmt.Sprintf("Touch:   x %d-%d, y %d-%d, threshold %d\n",
		c.TouchMinX, c.TouchMaxX, c.TouchMinY, c.TouchMaxY, c.TouchThreshold))
	b.WriteString(fmt.Sprintf("Stick:   center %d/%d, deadzone %d\n",
		c.JoystickCenterX, c.JoystickCenterY, c.JoystickDeadzone))
	peer := c.EspnowPeerMAC.String()
	if c.EspnowPeerMAC.IsZero() {
		peer += " (unpaired)"
	}
	b.WriteString(fmt.Sprintf("Link:    peer %s, heartbeat %dms, timeout %dms\n",
		peer, c.EspnowHeartbeat, c.EspnowTimeout))
	b.WriteString(fmt.Sprintf("Battery: cal %.2f\n", c.BatteryCalibration))
	b.WriteString(fmt.Sprintf("Debug:   %s\n", onOff(c.DebugSerial)))

	return b.String()
}

// FormatCorrections lists validation corrections, one per line
func FormatCorrections(fixes []Correction) string {
	if len(fixes) == 0 {
		return "(no corrections)\n"
	}
	var b strings.Builder
	for _, fix := range fixes {
		b.WriteString("  - " + fix.String() + "\n")
	}
	return b.String()
}
