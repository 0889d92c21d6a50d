package deviceconfig

import (
	"strings"
	"testing"
)

func TestFormatDetailed(t *testing.T) {
	main := NewStore(nil, KindMain, Options{})
	out := main.FormatDetailed()

	for _, want := range []string{
		"CONFIG MANAGER INFO",
		"Device Type: Main",
		"Backlight:        200",
		"Touch Min/Max X:  200 / 3700",
		"Peer MAC:         00:00:00:00:00:00",
		"Battery Cal:      0.70",
		"Debug Serial:     ON",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatDetailed() missing %q\n%s", want, out)
		}
	}

	peer := NewStore(nil, KindPeer, Options{})
	peer.Peer().DebugSerial = false
	out = peer.FormatDetailed()
	for _, want := range []string{"Device Type: Peer", "Main MAC:         10:20:BA:4D:6C:E4", "Debug Serial:     OFF"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatDetailed() missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Backlight") {
		t.Error("peer listing must not show main fields")
	}
}

func TestFormatCompact(t *testing.T) {
	s := NewStore(nil, KindMain, Options{})
	out := s.FormatCompact()
	if !strings.Contains(out, "(unpaired)") {
		t.Errorf("FormatCompact() should flag the zero peer address:\n%s", out)
	}

	s.Main().EspnowPeerMAC = "AA:BB:CC:DD:EE:FF"
	out = s.FormatCompact()
	if strings.Contains(out, "(unpaired)") {
		t.Errorf("FormatCompact() flagged a paired address:\n%s", out)
	}
	if !strings.Contains(out, "Profile: main (/config_main.json)") {
		t.Errorf("FormatCompact() missing profile line:\n%s", out)
	}
}

func TestFormatCorrections(t *testing.T) {
	if got := FormatCorrections(nil); got != "(no corrections)\n" {
		t.Errorf("FormatCorrections(nil) = %q", got)
	}
	got := FormatCorrections([]Correction{{Fields: []string{"espnow_timeout"}, Reason: "too long"}})
	if got != "  - espnow_timeout: too long\n" {
		t.Errorf("FormatCorrections() = %q", got)
	}
}
