package version

import (
	"strings"
	"testing"
)

func TestFull(t *testing.T) {
	if Version == "" || Commit == "" {
		t.Fatal("init should always populate Version and Commit")
	}

	full := Full()
	for _, part := range []string{Version, Commit, FirmwareVersion} {
		if !strings.Contains(full, part) {
			t.Errorf("Full() = %q, missing %q", full, part)
		}
	}
}
