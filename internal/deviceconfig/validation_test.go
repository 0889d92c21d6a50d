package deviceconfig

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateBacklight(t *testing.T) {
	tests := []struct {
		name    string
		level   int
		wantErr bool
	}{
		{"Valid: off", 0, false},
		{"Valid: default", DefaultBacklight, false},
		{"Valid: max", 255, false},
		{"Invalid: negative", -1, true},
		{"Invalid: too high", 256, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBacklight(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBacklight(%d) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTimeout(t *testing.T) {
	tests := []struct {
		name    string
		ms      int
		wantErr bool
	}{
		{"Valid: lower bound", 1000, false},
		{"Valid: default", DefaultTimeoutMs, false},
		{"Valid: upper bound", 30000, false},
		{"Invalid: below", 999, true},
		{"Invalid: above", 30001, true},
		{"Invalid: zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeout(tt.ms)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimeout(%d) error = %v, wantErr %v", tt.ms, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCalibration(t *testing.T) {
	tests := []struct {
		name    string
		f       float64
		wantErr bool
	}{
		{"Valid: tiny", 0.0001, false},
		{"Valid: default", DefaultBatteryCalibration, false},
		{"Valid: upper bound", 2.0, false},
		{"Invalid: zero", 0, true},
		{"Invalid: negative", -0.5, true},
		{"Invalid: above", 2.0001, true},
		{"Invalid: NaN", math.NaN(), true},
		{"Invalid: Inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCalibration(tt.f)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCalibration(%v) error = %v, wantErr %v", tt.f, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTouchBounds(t *testing.T) {
	tests := []struct {
		name                   string
		minX, maxX, minY, maxY int
		wantErr                bool
	}{
		{"Valid: defaults", DefaultTouchMinX, DefaultTouchMaxX, DefaultTouchMinY, DefaultTouchMaxY, false},
		{"Valid: one unit wide", 0, 1, 0, 1, false},
		{"Invalid: x equal", 100, 100, 0, 10, true},
		{"Invalid: x inverted", 200, 100, 0, 10, true},
		{"Invalid: y equal", 0, 10, 5, 5, true},
		{"Invalid: y inverted", 0, 10, 9, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTouchBounds(tt.minX, tt.maxX, tt.minY, tt.maxY)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTouchBounds() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMainDefaultsAreValid(t *testing.T) {
	c := DefaultMainConfig()
	if fixes := ValidateMain(&c); len(fixes) != 0 {
		t.Errorf("default main profile needs corrections: %v", fixes)
	}

	p := DefaultPeerConfig()
	if fixes := ValidatePeer(&p); len(fixes) != 0 {
		t.Errorf("default peer profile needs corrections: %v", fixes)
	}
}

func TestValidateMainRepairs(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*MainConfig)
		want      func(*MainConfig)
		wantFixes int
	}{
		{
			name:      "Backlight reset",
			mutate:    func(c *MainConfig) { c.BacklightDefault = 1000 },
			want:      func(c *MainConfig) {},
			wantFixes: 1,
		},
		{
			name: "Only X inverted resets both axes",
			mutate: func(c *MainConfig) {
				c.TouchMinX, c.TouchMaxX = 3000, 100
				c.TouchMinY, c.TouchMaxY = 10, 20
			},
			want:      func(c *MainConfig) {},
			wantFixes: 1,
		},
		{
			name:      "Malformed MAC reset to unpaired",
			mutate:    func(c *MainConfig) { c.EspnowPeerMAC = "hello" },
			want:      func(c *MainConfig) {},
			wantFixes: 1,
		},
		{
			name:      "MAC canonicalised",
			mutate:    func(c *MainConfig) { c.EspnowPeerMAC = "0a:1b:2c:3d:4e:5f" },
			want:      func(c *MainConfig) { c.EspnowPeerMAC = "0A:1B:2C:3D:4E:5F" },
			wantFixes: 1,
		},
		{
			name: "Untouched fields survive",
			mutate: func(c *MainConfig) {
				c.JoystickDeadzone = 7
				c.EspnowTimeout = 50000
			},
			want:      func(c *MainConfig) { c.JoystickDeadzone = 7 },
			wantFixes: 1,
		},
		{
			name: "Four groups at once",
			mutate: func(c *MainConfig) {
				c.BacklightDefault = -3
				c.TouchMinY = 9999
				c.EspnowTimeout = 1
				c.BatteryCalibration = 0
			},
			want:      func(c *MainConfig) {},
			wantFixes: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultMainConfig()
			tt.mutate(&got)
			want := DefaultMainConfig()
			tt.want(&want)

			fixes := ValidateMain(&got)
			if len(fixes) != tt.wantFixes {
				t.Errorf("ValidateMain() returned %d corrections, want %d: %v", len(fixes), tt.wantFixes, fixes)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ValidateMain() result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidatePeerRepairs(t *testing.T) {
	c := PeerConfig{
		EspnowMainMAC:      "10:20:ba:4d:6c:e4",
		EspnowTimeout:      99999,
		BatteryCalibration: 3,
		DebugSerial:        false,
	}

	fixes := ValidatePeer(&c)
	if len(fixes) != 3 {
		t.Errorf("ValidatePeer() returned %d corrections, want 3: %v", len(fixes), fixes)
	}

	want := PeerConfig{
		EspnowMainMAC:      DefaultMainMAC,
		EspnowTimeout:      DefaultTimeoutMs,
		BatteryCalibration: DefaultBatteryCalibration,
		DebugSerial:        false,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("ValidatePeer() mismatch (-want +got):\n%s", diff)
	}
}

func TestCorrectionString(t *testing.T) {
	c := Correction{Fields: []string{"touch_min_x", "touch_max_x"}, Reason: "inverted"}
	if got, want := c.String(), "touch_min_x, touch_max_x: inverted"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
