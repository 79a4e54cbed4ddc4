package protocol

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"
)

// DecodeBase64 decodes standard or URL-safe base64 with or without padding.
func DecodeBase64(s string) ([]byte, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "=")
	if s == "" {
		return nil, false
	}
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	out, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return out, true
}

func isBase64Char(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '+', r == '/', r == '-', r == '_', r == '=':
		return true
	}
	return false
}

// trimBase64Tail drops trailing characters that cannot belong to a base64 body.
func trimBase64Tail(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool { return !isBase64Char(r) })
}

// normalizeFragment canonicalizes a display name: decode, trim, spaces to
// underscores, encode. An empty result means the fragment should be dropped.
func normalizeFragment(raw string) string {
	name := unescape(raw)
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return ""
	}
	return url.PathEscape(name)
}

func withFragment(base, rawFragment string) string {
	if frag := normalizeFragment(rawFragment); frag != "" {
		return base + "#" + frag
	}
	return base
}

// cleanURI lower-cases the scheme and normalizes the fragment, leaving the
// rest of the link untouched.
func cleanURI(link string) string {
	link = strings.TrimSpace(link)
	idx := strings.Index(link, "://")
	if idx <= 0 {
		return link
	}
	link = strings.ToLower(link[:idx]) + link[idx:]
	base, frag, found := strings.Cut(link, "#")
	if !found {
		return base
	}
	return withFragment(base, frag)
}

// splitPayload cuts scheme://payload?query#fragment for the base64-bodied
// protocols. query keeps its leading '?'.
func splitPayload(link string) (scheme, payload, query, fragment string, hasFragment, ok bool) {
	link = strings.TrimSpace(link)
	idx := strings.Index(link, "://")
	if idx <= 0 {
		return "", "", "", "", false, false
	}
	scheme = strings.ToLower(link[:idx])
	rest := link[idx+3:]
	rest, fragment, hasFragment = strings.Cut(rest, "#")
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		rest, query = rest[:q], rest[q:]
	}
	return scheme, rest, query, fragment, hasFragment, true
}

func joinPayload(scheme, payload, query, fragment string, hasFragment bool) string {
	base := scheme + "://" + payload + query
	if !hasFragment {
		return base
	}
	return withFragment(base, fragment)
}

// joinHostPort brackets IPv6 literals.
func joinHostPort(host string, port int) string {
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	return host + ":" + strconv.Itoa(port)
}

func queryEscape(s string) string {
	return url.QueryEscape(s)
}
