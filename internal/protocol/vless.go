package protocol

import "strings"

type vlessValidator struct{}

func (vlessValidator) Validate(link string) bool {
	p, ok := splitLink(link)
	if !ok || p.Scheme != "vless" {
		return false
	}
	return IsValidUUID(p.User()) && hostPortOK(p)
}

func (vlessValidator) Clean(link string) string { return cleanURI(link) }

// IsReality reports whether a vless link uses the reality security profile.
func IsReality(link string) bool {
	p, ok := splitLink(link)
	if !ok {
		return false
	}
	return strings.EqualFold(p.Param("security"), "reality")
}

// realityValidator accepts vless links with security=reality and a public key.
type realityValidator struct{}

func (realityValidator) Validate(link string) bool {
	if !(vlessValidator{}).Validate(link) {
		return false
	}
	p, _ := splitLink(link)
	return strings.EqualFold(p.Param("security"), "reality") && p.Param("pbk", "publickey") != ""
}

func (realityValidator) Clean(link string) string { return cleanURI(link) }
