// Package forward sends gesture messages as OSC packets to a network target.
package forward

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// ErrInvalidTarget is returned when a network target cannot be parsed.
var ErrInvalidTarget = errors.New("invalid network target")

// Target is the IPv4 address and UDP port messages are sent to.
type Target struct {
	Addr netip.Addr
	Port uint16
}

// IsSet reports whether the target has an address.
func (t Target) IsSet() bool {
	return t.Addr.IsValid()
}

// String returns the target as "a.b.c.d:port", or "" if unset.
func (t Target) String() string {
	if !t.IsSet() {
		return ""
	}
	return netip.AddrPortFrom(t.Addr, t.Port).String()
}

// Octets returns the four address octets as decimal strings.
func (t Target) Octets() [4]string {
	var out [4]string
	if !t.Addr.Is4() {
		return out
	}
	for i, b := range t.Addr.As4() {
		out[i] = strconv.Itoa(int(b))
	}
	return out
}

// ParseTarget builds a Target from four decimal octet strings and a port string.
func ParseTarget(octets [4]string, port string) (Target, error) {
	var ip [4]byte
	for i, s := range octets {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
		if err != nil {
			return Target{}, fmt.Errorf("%w: octet %d %q", ErrInvalidTarget, i+1, s)
		}
		ip[i] = byte(v)
	}

	p, err := strconv.ParseUint(strings.TrimSpace(port), 10, 16)
	if err != nil {
		return Target{}, fmt.Errorf("%w: port %q", ErrInvalidTarget, port)
	}

	return Target{Addr: netip.AddrFrom4(ip), Port: uint16(p)}, nil
}

// ParseTargetString parses "a.b.c.d:port".
func ParseTargetString(s string) (Target, error) {
	ap, err := netip.ParseAddrPort(strings.TrimSpace(s))
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	if !ap.Addr().Is4() {
		return Target{}, fmt.Errorf("%w: %s is not an IPv4 address", ErrInvalidTarget, ap.Addr())
	}
	return Target{Addr: ap.Addr(), Port: ap.Port()}, nil
}
