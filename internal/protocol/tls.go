package protocol

import "strings"

// URI-shaped protocols whose share links carry credentials in userinfo and
// TLS hints in the query string.

func validTrojan(link string) bool {
	p, ok := splitLink(link)
	if !ok || p.Scheme != "trojan" {
		return false
	}
	return p.User() != "" && hostPortOK(p)
}

// tlsEvidence is true when the link names an SNI or explicitly opts out of
// certificate checks.
func tlsEvidence(p linkParts) bool {
	if p.Param("sni", "peer", "servername") != "" {
		return true
	}
	return truthy(p.Param("allow_insecure")) || truthy(p.Param("allowinsecure")) || truthy(p.Param("insecure"))
}

func validTUIC(link string) bool {
	p, ok := splitLink(link)
	if !ok || p.Scheme != "tuic" {
		return false
	}
	id, password := p.Credentials()
	return IsValidUUID(id) && password != "" && hostPortOK(p) && tlsEvidence(p)
}

func validJuicity(link string) bool {
	p, ok := splitLink(link)
	if !ok || p.Scheme != "juicity" {
		return false
	}
	id, password := p.Credentials()
	return IsValidUUID(id) && password != "" && hostPortOK(p) && tlsEvidence(p)
}

func validAnyTLS(link string) bool {
	p, ok := splitLink(link)
	if !ok || p.Scheme != "anytls" {
		return false
	}
	return p.User() != "" && hostPortOK(p)
}

func validNaive(link string) bool {
	p, ok := splitLink(link)
	if !ok || !schemeIn(p, "naive+https", "naive+quic") {
		return false
	}
	if p.User() == "" || !IsValidHost(p.Host) {
		return false
	}
	return p.Port == "" || IsValidPort(p.Port)
}

// hysteria2Validator also folds the hy2:// alias into hysteria2://.
type hysteria2Validator struct{}

func (hysteria2Validator) Validate(link string) bool {
	p, ok := splitLink(link)
	if !ok || !schemeIn(p, "hysteria2", "hy2") {
		return false
	}
	if p.User() == "" || !IsValidHost(p.Host) || !isValidPortSpec(p.Port) {
		return false
	}
	if p.HasParam("insecure") && !isBoolish(p.Param("insecure")) {
		return false
	}
	return true
}

func (hysteria2Validator) Clean(link string) string {
	link = cleanURI(link)
	if strings.HasPrefix(link, "hy2://") {
		return "hysteria2://" + strings.TrimPrefix(link, "hy2://")
	}
	return link
}

func validHysteria(link string) bool {
	p, ok := splitLink(link)
	if !ok || p.Scheme != "hysteria" || !hostPortOK(p) {
		return false
	}
	return startsWithDigit(p.Param("upmbps", "up")) && startsWithDigit(p.Param("downmbps", "down"))
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func validSnell(link string) bool {
	p, ok := splitLink(link)
	if !ok || p.Scheme != "snell" || !hostPortOK(p) {
		return false
	}
	return p.Param("psk") != "" || p.User() != ""
}
