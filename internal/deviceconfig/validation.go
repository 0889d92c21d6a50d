package deviceconfig

import (
	"fmt"
	"strings"
)

// Correction records one field group that validation reset or rewrote
type Correction struct {
	Fields []string // Document keys that changed
	Reason string   // Why the old value was rejected
}

func (c Correction) String() string {
	return fmt.Sprintf("%s: %s", strings.Join(c.Fields, ", "), c.Reason)
}

// ValidateBacklight checks a backlight level
func ValidateBacklight(level int) error {
	if level < 0 || level > MaxBacklight {
		return fmt.Errorf("backlight must be 0-%d, got %d", MaxBacklight, level)
	}
	return nil
}

// ValidateTouchBounds checks that both calibration axes are non-empty ranges
func ValidateTouchBounds(minX, maxX, minY, maxY int) error {
	if minX >= maxX {
		return fmt.Errorf("touch min x (%d) must be below max x (%d)", minX, maxX)
	}
	if minY >= maxY {
		return fmt.Errorf("touch min y (%d) must be below max y (%d)", minY, maxY)
	}
	return nil
}

// ValidateTimeout checks a link timeout in milliseconds
func ValidateTimeout(ms int) error {
	if ms < MinTimeoutMs || ms > MaxTimeoutMs {
		return fmt.Errorf("timeout must be %d-%d ms, got %d", MinTimeoutMs, MaxTimeoutMs, ms)
	}
	return nil
}

// ValidateCalibration checks a battery voltage calibration factor.
// NaN fails both comparisons and is rejected.
func ValidateCalibration(f float64) error {
	if !(f > 0 && f <= MaxBatteryCalibration) {
		return fmt.Errorf("battery calibration must be in (0, %.1f], got %v", MaxBatteryCalibration, f)
	}
	return nil
}

// healMAC canonicalises *m, or resets it to def when malformed
func healMAC(key string, m *MACAddress, def MACAddress) *Correction {
	c, ok := m.Canonical()
	if !ok {
		old := *m
		*m = def
		return &Correction{Fields: []string{key}, Reason: fmt.Sprintf("malformed MAC address %q", string(old))}
	}
	if c != *m {
		old := *m
		*m = c
		return &Correction{Fields: []string{key}, Reason: fmt.Sprintf("non-canonical MAC address %q", string(old))}
	}
	return nil
}

// ValidateMain repairs c in place and returns what it changed. An empty
// result means every field was already valid. c is always valid afterwards.
func ValidateMain(c *MainConfig) []Correction {
	var fixes []Correction

	if err := ValidateBacklight(c.BacklightDefault); err != nil {
		c.BacklightDefault = DefaultBacklight
		fixes = append(fixes, Correction{Fields: []string{"backlight_default"}, Reason: err.Error()})
	}

	// Touch bounds are one calibration: reset all four together
	if err := ValidateTouchBounds(c.TouchMinX, c.TouchMaxX, c.TouchMinY, c.TouchMaxY); err != nil {
		c.TouchMinX = DefaultTouchMinX
		c.TouchMaxX = DefaultTouchMaxX
		c.TouchMinY = DefaultTouchMinY
		c.TouchMaxY = DefaultTouchMaxY
		fixes = append(fixes, Correction{
			Fields: []string{"touch_min_x", "touch_max_x", "touch_min_y", "touch_max_y"},
			Reason: err.Error(),
		})
	}

	if fix := healMAC("espnow_peer_mac", &c.EspnowPeerMAC, DefaultPeerMAC); fix != nil {
		fixes = append(fixes, *fix)
	}

	if err := ValidateTimeout(c.EspnowTimeout); err != nil {
		c.EspnowTimeout = DefaultTimeoutMs
		fixes = append(fixes, Correction{Fields: []string{"espnow_timeout"}, Reason: err.Error()})
	}

	if err := ValidateCalibration(c.BatteryCalibration); err != nil {
		c.BatteryCalibration = DefaultBatteryCalibration
		fixes = append(fixes, Correction{Fields: []string{"battery_calibration"}, Reason: err.Error()})
	}

	return fixes
}

// ValidatePeer repairs c in place and returns what it changed
func ValidatePeer(c *PeerConfig) []Correction {
	var fixes []Correction

	if fix := healMAC("espnow_main_mac", &c.EspnowMainMAC, DefaultMainMAC); fix != nil {
		fixes = append(fixes, *fix)
	}

	if err := ValidateTimeout(c.EspnowTimeout); err != nil {
		c.EspnowTimeout = DefaultTimeoutMs
		fixes = append(fixes, Correction{Fields: []string{"espnow_timeout"}, Reason: err.Error()})
	}

	if err := ValidateCalibration(c.BatteryCalibration); err != nil {
		c.BatteryCalibration = DefaultBatteryCalibration
		fixes = append(fixes, Correction{Fields: []string{"battery_calibration"}, Reason: err.Error()})
	}

	return fixes
}
