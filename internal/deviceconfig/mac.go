package deviceconfig

import (
	"fmt"
	"net"
	"strings"
)

// MACAddress is a radio peer address kept in its textual document form.
//
// Any string can be held; well-formedness is checked when a profile is
// validated, where malformed values are replaced and well-formed ones are
// rewritten to the canonical XX:XX:XX:XX:XX:XX form.
type MACAddress string

// ParseMAC parses a 6-byte hardware address in any notation accepted by
// net.ParseMAC and returns it in canonical form.
func ParseMAC(s string) (MACAddress, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid MAC address %q: %w", s, err)
	}
	if len(hw) != 6 {
		return "", fmt.Errorf("invalid MAC address %q: expected 6 bytes, got %d", s, len(hw))
	}
	return canonical(hw), nil
}

func canonical(hw net.HardwareAddr) MACAddress {
	return MACAddress(strings.ToUpper(hw.String()))
}

// Valid reports whether m parses as a 6-byte hardware address
func (m MACAddress) Valid() bool {
	_, err := ParseMAC(string(m))
	return err == nil
}

// Canonical returns m in XX:XX:XX:XX:XX:XX form. ok is false when m is
// malformed, in which case m is returned unchanged.
func (m MACAddress) Canonical() (MACAddress, bool) {
	c, err := ParseMAC(string(m))
	if err != nil {
		return m, false
	}
	return c, true
}

// IsZero reports whether m is the all-zero "not paired" address
func (m MACAddress) IsZero() bool {
	c, ok := m.Canonical()
	return ok && c == DefaultPeerMAC
}

// HardwareAddr returns the parsed address, nil when malformed
func (m MACAddress) HardwareAddr() net.HardwareAddr {
	hw, err := net.ParseMAC(string(m))
	if err != nil || len(hw) != 6 {
		return nil
	}
	return hw
}

func (m MACAddress) String() string {
	return string(m)
}
