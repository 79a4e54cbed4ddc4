package protocol

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"
)

// ssrValidator checks ssr://base64(host:port:protocol:method:obfs:base64pass/?params).
type ssrValidator struct{}

type ssrTuple struct {
	host     string
	port     string
	protocol string
	method   string
	obfs     string
	password string
	params   string
}

func (ssrValidator) Validate(link string) bool {
	t, ok := parseSSR(link)
	if !ok {
		return false
	}
	return IsValidHost(t.host) &&
		IsValidPort(t.port) &&
		methodToken.MatchString(strings.ToLower(t.protocol)) &&
		methodToken.MatchString(strings.ToLower(t.method)) &&
		methodToken.MatchString(strings.ToLower(t.obfs)) &&
		t.password != ""
}

func parseSSR(link string) (ssrTuple, bool) {
	scheme, payload, _, _, _, ok := splitPayload(link)
	if !ok || scheme != "ssr" {
		return ssrTuple{}, false
	}
	raw, ok := DecodeBase64(trimBase64Tail(payload))
	if !ok {
		return ssrTuple{}, false
	}
	decoded := strings.TrimSpace(string(raw))
	main, params, found := strings.Cut(decoded, "/?")
	if !found {
		main, params, _ = strings.Cut(decoded, "?")
	}
	main = strings.TrimRight(main, "/")

	// Fields are taken from the right so IPv6 hosts keep their colons.
	parts := strings.Split(main, ":")
	if len(parts) < 6 {
		return ssrTuple{}, false
	}
	n := len(parts)
	pass, ok := DecodeBase64(parts[n-1])
	if !ok {
		return ssrTuple{}, false
	}
	return ssrTuple{
		host:     strings.Join(parts[:n-5], ":"),
		port:     parts[n-5],
		protocol: parts[n-4],
		method:   parts[n-3],
		obfs:     parts[n-2],
		password: string(pass),
		params:   params,
	}, true
}

// Clean re-encodes the payload as unpadded URL-safe base64.
func (ssrValidator) Clean(link string) string {
	scheme, payload, query, fragment, hasFragment, ok := splitPayload(link)
	if !ok {
		return cleanURI(link)
	}
	raw, ok := DecodeBase64(trimBase64Tail(payload))
	if !ok {
		return joinPayload(scheme, payload, query, fragment, hasFragment)
	}
	return joinPayload(scheme, base64.RawURLEncoding.EncodeToString(raw), query, fragment, hasFragment)
}

// SSROptions carries the optional fields of an SSR share link.
type SSROptions struct {
	Name       string
	ObfsParam  string
	ProtoParam string
}

// BuildSSRURI renders an ssr:// link from its tuple.
func BuildSSRURI(host string, port int, protocol, method, obfs, password string, opts SSROptions) string {
	enc := base64.RawURLEncoding
	var b strings.Builder
	b.WriteString(strings.Trim(host, "[]"))
	b.WriteString(":")
	b.WriteString(strconv.Itoa(port))
	for _, field := range []string{protocol, method, obfs, enc.EncodeToString([]byte(password))} {
		b.WriteString(":")
		b.WriteString(field)
	}
	params := url.Values{}
	if opts.ObfsParam != "" {
		params.Set("obfsparam", enc.EncodeToString([]byte(opts.ObfsParam)))
	}
	if opts.ProtoParam != "" {
		params.Set("protoparam", enc.EncodeToString([]byte(opts.ProtoParam)))
	}
	if opts.Name != "" {
		params.Set("remarks", enc.EncodeToString([]byte(opts.Name)))
	}
	b.WriteString("/?")
	b.WriteString(params.Encode())
	return "ssr://" + enc.EncodeToString([]byte(b.String()))
}
