package eventlog

import "testing"

func TestChannelPaths(t *testing.T) {
	tests := []struct {
		ch     Channel
		path   string
		backup string
		name   string
	}{
		{Boot, "/boot.log", "/boot.log.1", "boot"},
		{Battery, "/battery.log", "/battery.log.1", "battery"},
		{Connection, "/connection.log", "/connection.log.1", "connection"},
		{Error, "/error.log", "/error.log.1", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ch.Path(); got != tt.path {
				t.Errorf("Path() = %q, want %q", got, tt.path)
			}
			if got := tt.ch.BackupPath(); got != tt.backup {
				t.Errorf("BackupPath() = %q, want %q", got, tt.backup)
			}
			if got := tt.ch.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			parsed, err := ParseChannel(tt.name)
			if err != nil || parsed != tt.ch {
				t.Errorf("ParseChannel(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}

	if Channel(7).Path() != "" {
		t.Error("unknown channel should have no path")
	}
	if _, err := ParseChannel("debug"); err == nil {
		t.Error("ParseChannel(debug) should fail")
	}
}

func TestLevelString(t *testing.T) {
	want := map[Level]string{
		LevelInfo:     "INFO",
		LevelWarn:     "WARN",
		LevelError:    "ERROR",
		LevelCritical: "CRITICAL",
		LevelFatal:    "FATAL",
	}
	for l, s := range want {
		if l.String() != s {
			t.Errorf("Level(%d).String() = %q, want %q", int(l), l.String(), s)
		}
	}
}

func TestLineBuilder(t *testing.T) {
	got := newLine(42, LevelWarn, "Msg").field("K", "V").text("free").tag("T").String()
	if want := "[42ms] WARN - Msg | K: V | free [T]"; got != want {
		t.Errorf("line = %q, want %q", got, want)
	}

	if hex(0xDEADBEEF) != "0xdeadbeef" {
		t.Errorf("hex() = %q", hex(0xDEADBEEF))
	}
	if dBm(-128) != "-128 dBm" {
		t.Errorf("dBm() = %q", dBm(-128))
	}
}

func TestCollaboratorDefaults(t *testing.T) {
	c := NewMonotonicClock()
	if c.Millis() > 1000 {
		t.Error("new clock should start near zero")
	}
	if HostChip().Model == "" {
		t.Error("HostChip() should report a model")
	}
	_ = RuntimeHeap{}.FreeHeap()
}
