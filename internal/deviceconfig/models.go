package deviceconfig

import (
	"fmt"
	"strings"
)

// Kind selects which of the two configuration profiles a Store manages.
// It is fixed for the lifetime of the Store.
type Kind int

const (
	// KindMain is the handheld controller with display, touch and joystick
	KindMain Kind = iota
	// KindPeer is the wireless receiver paired with the controller
	KindPeer
)

// String returns the profile name
func (k Kind) String() string {
	switch k {
	case KindMain:
		return "main"
	case KindPeer:
		return "peer"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Path returns the card path of the profile's document
func (k Kind) Path() string {
	if k == KindPeer {
		return PeerConfigPath
	}
	return MainConfigPath
}

// ParseKind accepts "main" or "peer" (case-insensitive)
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "main":
		return KindMain, nil
	case "peer":
		return KindPeer, nil
	default:
		return KindMain, fmt.Errorf("unknown profile %q (expected main or peer)", s)
	}
}

// Card paths of the two profile documents
const (
	MainConfigPath = "/config_main.json"
	PeerConfigPath = "/config_peer.json"
)

// Compiled-in defaults
const (
	DefaultBacklight = 200

	DefaultTouchMinX      = 200
	DefaultTouchMaxX      = 3700
	DefaultTouchMinY      = 240
	DefaultTouchMaxY      = 3800
	DefaultTouchThreshold = 600

	DefaultJoystickCenterX  = 2048
	DefaultJoystickCenterY  = 2048
	DefaultJoystickDeadzone = 100

	DefaultHeartbeatMs = 500
	DefaultTimeoutMs   = 2000

	DefaultBatteryCalibration = 0.7
	DefaultDebugSerial        = true

	// DefaultPeerMAC is the unpaired placeholder stored on a fresh main device
	DefaultPeerMAC MACAddress = "00:00:00:00:00:00"
	// DefaultMainMAC is the factory-paired controller address stored on a fresh peer
	DefaultMainMAC MACAddress = "10:20:BA:4D:6C:E4"
)

// Validation bounds
const (
	MaxBacklight = 255

	MinTimeoutMs = 1000
	MaxTimeoutMs = 30000

	MaxBatteryCalibration = 2.0
)

// MainConfig is the persisted profile of the main controller.
// Field order matches the on-card document key order.
type MainConfig struct {
	// Display
	BacklightDefault int `json:"backlight_default" yaml:"backlight_default"` // 0-255

	// Touch calibration (raw ADC units)
	TouchMinX      int `json:"touch_min_x" yaml:"touch_min_x"`
	TouchMaxX      int `json:"touch_max_x" yaml:"touch_max_x"`
	TouchMinY      int `json:"touch_min_y" yaml:"touch_min_y"`
	TouchMaxY      int `json:"touch_max_y" yaml:"touch_max_y"`
	TouchThreshold int `json:"touch_threshold" yaml:"touch_threshold"`

	// Joystick
	JoystickCenterX  int `json:"joystick_center_x" yaml:"joystick_center_x"`
	JoystickCenterY  int `json:"joystick_center_y" yaml:"joystick_center_y"`
	JoystickDeadzone int `json:"joystick_deadzone" yaml:"joystick_deadzone"`

	// Radio link
	EspnowPeerMAC   MACAddress `json:"espnow_peer_mac" yaml:"espnow_peer_mac"`
	EspnowHeartbeat int        `json:"espnow_heartbeat" yaml:"espnow_heartbeat"` // ms
	EspnowTimeout   int        `json:"espnow_timeout" yaml:"espnow_timeout"`     // ms, 1000-30000

	BatteryCalibration float64 `json:"battery_calibration" yaml:"battery_calibration"` // (0, 2.0]
	DebugSerial        bool    `json:"debug_serial" yaml:"debug_serial"`
}

// PeerConfig is the persisted profile of the peer device.
type PeerConfig struct {
	EspnowMainMAC      MACAddress `json:"espnow_main_mac" yaml:"espnow_main_mac"`
	EspnowTimeout      int        `json:"espnow_timeout" yaml:"espnow_timeout"`
	BatteryCalibration float64    `json:"battery_calibration" yaml:"battery_calibration"`
	DebugSerial        bool       `json:"debug_serial" yaml:"debug_serial"`
}

// DefaultMainConfig returns a main profile holding only compiled defaults
func DefaultMainConfig() MainConfig {
	return MainConfig{
		BacklightDefault:   DefaultBacklight,
		TouchMinX:          DefaultTouchMinX,
		TouchMaxX:          DefaultTouchMaxX,
		TouchMinY:          DefaultTouchMinY,
		TouchMaxY:          DefaultTouchMaxY,
		TouchThreshold:     DefaultTouchThreshold,
		JoystickCenterX:    DefaultJoystickCenterX,
		JoystickCenterY:    DefaultJoystickCenterY,
		JoystickDeadzone:   DefaultJoystickDeadzone,
		EspnowPeerMAC:      DefaultPeerMAC,
		EspnowHeartbeat:    DefaultHeartbeatMs,
		EspnowTimeout:      DefaultTimeoutMs,
		BatteryCalibration: DefaultBatteryCalibration,
		DebugSerial:        DefaultDebugSerial,
	}
}

// DefaultPeerConfig returns a peer profile holding only compiled defaults
func DefaultPeerConfig() PeerConfig {
	return PeerConfig{
		EspnowMainMAC:      DefaultMainMAC,
		EspnowTimeout:      DefaultTimeoutMs,
		BatteryCalibration: DefaultBatteryCalibration,
		DebugSerial:        DefaultDebugSerial,
	}
}

// field binds a document key to the profile member it populates.
// target is one of *int, *float64, *bool or *MACAddress and def holds a
// value of the matching element type.
type field struct {
	key    string
	target any
	def    any
}

func (c *MainConfig) fields() []field {
	d := DefaultMainConfig()
	return []field{
		{"backlight_default", &c.BacklightDefault, d.BacklightDefault},
		{"touch_min_x", &c.TouchMinX, d.TouchMinX},
		{"touch_max_x", &c.TouchMaxX, d.TouchMaxX},
		{"touch_min_y", &c.TouchMinY, d.TouchMinY},
		{"touch_max_y", &c.TouchMaxY, d.TouchMaxY},
		{"touch_threshold", &c.TouchThreshold, d.TouchThreshold},
		{"joystick_center_x", &c.JoystickCenterX, d.JoystickCenterX},
		{"joystick_center_y", &c.JoystickCenterY, d.JoystickCenterY},
		{"joystick_deadzone", &c.JoystickDeadzone, d.JoystickDeadzone},
		{"espnow_peer_mac", &c.EspnowPeerMAC, d.EspnowPeerMAC},
		{"espnow_heartbeat", &c.EspnowHeartbeat, d.EspnowHeartbeat},
		{"espnow_timeout", &c.EspnowTimeout, d.EspnowTimeout},
		{"battery_calibration", &c.BatteryCalibration, d.BatteryCalibration},
		{"debug_serial", &c.DebugSerial, d.DebugSerial},
	}
}

func (c *PeerConfig) fields() []field {
	d := DefaultPeerConfig()
	return []field{
		{"espnow_main_mac", &c.EspnowMainMAC, d.EspnowMainMAC},
		{"espnow_timeout", &c.EspnowTimeout, d.EspnowTimeout},
		{"battery_calibration", &c.BatteryCalibration, d.BatteryCalibration},
		{"debug_serial", &c.DebugSerial, d.DebugSerial},
	}
}

// Keys returns the document keys of a profile in canonical order
func Keys(kind Kind) []string {
	var fs []field
	if kind == KindPeer {
		fs = (&PeerConfig{}).fields()
	} else {
		fs = (&MainConfig{}).fields()
	}
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.key
	}
	return keys
}
