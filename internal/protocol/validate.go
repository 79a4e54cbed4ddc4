package protocol

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	domainLabel = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_-]{0,61}[a-z0-9])?$`)
	tldLabel    = regexp.MustCompile(`^(?:[a-z]{2,63}|xn--[a-z0-9-]{1,59})$`)
	methodToken = regexp.MustCompile(`^[a-z0-9][a-z0-9_.+-]*$`)
)

// IsValidHost accepts IPv4, IPv6 (bracketed or bare) and dotted domain names.
func IsValidHost(host string) bool {
	host = strings.TrimSpace(host)
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" || len(host) > 253 {
		return false
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return true
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !domainLabel.MatchString(label) {
			return false
		}
	}
	return tldLabel.MatchString(labels[len(labels)-1])
}

// IsValidPort accepts a decimal port in 1-65535.
func IsValidPort(port string) bool {
	_, ok := parsePort(port)
	return ok
}

func parsePort(port string) (int, bool) {
	port = strings.TrimSpace(port)
	if port == "" || len(port) > 5 {
		return 0, false
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return 0, false
	}
	return n, true
}

// isValidPortSpec accepts "443", "20000-30000" and comma lists of either,
// as used by port hopping.
func isValidPortSpec(spec string) bool {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return false
	}
	for _, part := range strings.Split(spec, ",") {
		lo, hi, isRange := strings.Cut(strings.TrimSpace(part), "-")
		from, ok := parsePort(lo)
		if !ok {
			return false
		}
		if !isRange {
			continue
		}
		to, ok := parsePort(hi)
		if !ok || to < from {
			return false
		}
	}
	return true
}

// IsValidUUID accepts only the canonical 36 character form.
func IsValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func isBoolish(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "1", "true", "false":
		return true
	}
	return false
}

// hostPortOK is the endpoint check shared by the URI-shaped protocols.
func hostPortOK(p linkParts) bool {
	return IsValidHost(p.Host) && IsValidPort(p.Port)
}

// schemeIn reports whether the parsed scheme is one of names.
func schemeIn(p linkParts, names ...string) bool {
	for _, n := range names {
		if p.Scheme == n {
			return true
		}
	}
	return false
}
