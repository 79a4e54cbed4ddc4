package protocol

import (
	"net/url"
	"strings"
)

// linkParts is a lenient split of scheme://userinfo@host:port/path?query#fragment.
// net/url rejects too much of what shows up in the wild (raw '%' in names,
// '@' inside passwords), so the pieces are cut by hand and decoded lazily.
type linkParts struct {
	Scheme      string
	UserInfo    string
	HasUser     bool
	Host        string
	Port        string
	Path        string
	RawQuery    string
	Query       url.Values
	Fragment    string
	HasFragment bool
}

func splitLink(raw string) (linkParts, bool) {
	var p linkParts
	raw = strings.TrimSpace(raw)
	idx := strings.Index(raw, "://")
	if idx <= 0 {
		return p, false
	}
	p.Scheme = strings.ToLower(raw[:idx])
	rest := raw[idx+3:]

	if before, frag, ok := strings.Cut(rest, "#"); ok {
		rest, p.Fragment, p.HasFragment = before, frag, true
	}
	if before, query, ok := strings.Cut(rest, "?"); ok {
		rest, p.RawQuery = before, query
	}
	if rest == "" {
		return p, false
	}

	hostPart := rest
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		p.UserInfo, p.HasUser = rest[:at], true
		hostPart = rest[at+1:]
	}
	if slash := strings.IndexByte(hostPart, '/'); slash >= 0 {
		p.Path = hostPart[slash:]
		hostPart = hostPart[:slash]
	}
	p.Host, p.Port = splitHostPort(hostPart)
	p.Query = parseQuery(p.RawQuery)
	return p, true
}

func splitHostPort(hostport string) (string, string) {
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return hostport, ""
		}
		host := hostport[1:end]
		rest := hostport[end+1:]
		if strings.HasPrefix(rest, ":") {
			return host, rest[1:]
		}
		if rest != "" {
			// garbage after the bracket, keep it so validation fails
			return hostport, ""
		}
		return host, ""
	}
	if strings.Count(hostport, ":") > 1 {
		return hostport, ""
	}
	if host, port, ok := strings.Cut(hostport, ":"); ok {
		return host, port
	}
	return hostport, ""
}

// parseQuery splits pairs by hand so bad escapes or stray semicolons only
// spoil their own pair. Keys are lower-cased.
func parseQuery(raw string) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = strings.ToLower(queryUnescape(key))
		if key == "" {
			continue
		}
		values[key] = append(values[key], queryUnescape(value))
	}
	return values
}

func queryUnescape(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}

// User returns the percent-decoded userinfo.
func (p linkParts) User() string {
	return unescape(p.UserInfo)
}

// Credentials splits the decoded userinfo at the first colon.
func (p linkParts) Credentials() (string, string) {
	user, pass, _ := strings.Cut(p.User(), ":")
	return user, pass
}

// Param returns the first non-empty value of any key, compared case-insensitively.
func (p linkParts) Param(keys ...string) string {
	for _, key := range keys {
		for _, v := range p.Query[strings.ToLower(key)] {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Params returns every value of key.
func (p linkParts) Params(key string) []string {
	return p.Query[strings.ToLower(key)]
}

func (p linkParts) HasParam(key string) bool {
	_, ok := p.Query[strings.ToLower(key)]
	return ok
}

func unescape(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

// schemeOf returns the lower-cased scheme or "".
func schemeOf(link string) string {
	idx := strings.Index(link, "://")
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(link[:idx])
}
