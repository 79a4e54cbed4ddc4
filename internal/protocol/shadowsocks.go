package protocol

import (
	"encoding/base64"
	"strings"
)

var shadowsocksCiphers = map[string]struct{}{
	"none": {}, "plain": {}, "table": {}, "rc4": {}, "rc4-md5": {},
	"aes-128-gcm": {}, "aes-192-gcm": {}, "aes-256-gcm": {},
	"aes-128-cfb": {}, "aes-192-cfb": {}, "aes-256-cfb": {},
	"aes-128-ctr": {}, "aes-192-ctr": {}, "aes-256-ctr": {},
	"aes-128-ccm": {}, "aes-256-ccm": {},
	"aes-128-gcm-siv": {}, "aes-256-gcm-siv": {},
	"camellia-128-cfb": {}, "camellia-192-cfb": {}, "camellia-256-cfb": {},
	"bf-cfb": {}, "salsa20": {}, "chacha20": {}, "chacha20-ietf": {},
	"chacha20-poly1305": {}, "chacha20-ietf-poly1305": {},
	"xchacha20": {}, "xchacha20-poly1305": {}, "xchacha20-ietf-poly1305": {},
	"2022-blake3-aes-128-gcm": {}, "2022-blake3-aes-256-gcm": {},
	"2022-blake3-chacha20-poly1305": {}, "2022-blake3-chacha8-poly1305": {},
}

// IsShadowsocksCipher reports whether method is a cipher name clients understand.
func IsShadowsocksCipher(method string) bool {
	_, ok := shadowsocksCiphers[strings.ToLower(strings.TrimSpace(method))]
	return ok
}

// shadowsocksValidator handles SIP002 (base64 userinfo), plain userinfo and
// the legacy fully-encoded form.
type shadowsocksValidator struct{}

type ssLink struct {
	method   string
	password string
	host     string
	port     string
}

func (shadowsocksValidator) Validate(link string) bool {
	info, ok := parseShadowsocks(link)
	if !ok {
		return false
	}
	return IsShadowsocksCipher(info.method) &&
		info.password != "" &&
		IsValidHost(info.host) &&
		IsValidPort(info.port)
}

func parseShadowsocks(link string) (ssLink, bool) {
	scheme, payload, _, _, _, ok := splitPayload(link)
	if !ok || scheme != "ss" || payload == "" {
		return ssLink{}, false
	}
	if at := strings.LastIndex(payload, "@"); at >= 0 {
		p, ok := splitLink(link)
		if !ok {
			return ssLink{}, false
		}
		method, password, ok := shadowsocksUserInfo(payload[:at])
		if !ok {
			return ssLink{}, false
		}
		return ssLink{method: method, password: password, host: p.Host, port: p.Port}, true
	}

	raw, ok := DecodeBase64(trimBase64Tail(strings.TrimRight(payload, "/")))
	if !ok {
		return ssLink{}, false
	}
	decoded := string(raw)
	at := strings.LastIndex(decoded, "@")
	if at < 0 {
		return ssLink{}, false
	}
	method, password, ok := strings.Cut(decoded[:at], ":")
	if !ok {
		return ssLink{}, false
	}
	host, port := splitHostPort(strings.TrimRight(decoded[at+1:], "/"))
	return ssLink{method: method, password: password, host: host, port: port}, true
}

// shadowsocksUserInfo accepts base64(method:password) or a plain method:password.
func shadowsocksUserInfo(userinfo string) (string, string, bool) {
	plain := unescape(userinfo)
	if method, password, ok := strings.Cut(plain, ":"); ok {
		return method, password, true
	}
	raw, ok := DecodeBase64(plain)
	if !ok {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}

// Clean re-encodes base64 bodies as unpadded URL-safe base64 (SIP002).
// Plain userinfo is left as written.
func (shadowsocksValidator) Clean(link string) string {
	scheme, payload, query, fragment, hasFragment, ok := splitPayload(link)
	if !ok {
		return cleanURI(link)
	}
	if at := strings.LastIndex(payload, "@"); at >= 0 {
		userinfo := payload[:at]
		if strings.Contains(unescape(userinfo), ":") {
			return joinPayload(scheme, payload, query, fragment, hasFragment)
		}
		raw, ok := DecodeBase64(unescape(userinfo))
		if !ok {
			return joinPayload(scheme, payload, query, fragment, hasFragment)
		}
		payload = base64.RawURLEncoding.EncodeToString(raw) + payload[at:]
		return joinPayload(scheme, payload, query, fragment, hasFragment)
	}
	raw, ok := DecodeBase64(trimBase64Tail(strings.TrimRight(payload, "/")))
	if !ok {
		return joinPayload(scheme, payload, query, fragment, hasFragment)
	}
	return joinPayload(scheme, base64.RawURLEncoding.EncodeToString(raw), query, fragment, hasFragment)
}

// BuildShadowsocksURI renders a SIP002 link. plugin may be empty.
func BuildShadowsocksURI(method, password, host string, port int, plugin, name string) string {
	userinfo := base64.RawURLEncoding.EncodeToString([]byte(method + ":" + password))
	var b strings.Builder
	b.WriteString("ss://")
	b.WriteString(userinfo)
	b.WriteString("@")
	b.WriteString(joinHostPort(host, port))
	if plugin != "" {
		b.WriteString("?plugin=")
		b.WriteString(queryEscape(plugin))
	}
	return withFragment(b.String(), name)
}
