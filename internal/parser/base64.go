package parser

import (
	"encoding/base64"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

// base64Body is the whole-document shape of a base64 subscription once
// line breaks are removed.
var base64Body = regexp.MustCompile(`^[A-Za-z0-9+/_-]+={0,2}$`)

const minBase64Length = 10

// MaybeDecodeBase64 reverses one layer of base64 when the whole document is
// encoded. The decoded text is returned only when it contains something the
// registry recognizes; otherwise ok is false and the caller keeps the raw text.
func MaybeDecodeBase64(content string, reg *protocol.Registry) (string, bool) {
	compact := strings.Join(strings.Fields(content), "")
	if len(compact) < minBase64Length || !base64Body.MatchString(compact) {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		var ok bool
		if raw, ok = protocol.DecodeBase64(compact); !ok {
			return "", false
		}
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	decoded := string(raw)
	trimmed := strings.TrimSpace(strings.TrimPrefix(decoded, "\ufeff"))
	if reg.CombinedPrefixPattern().MatchString(decoded) || reg.HasKnownPrefix(trimmed) {
		return decoded, true
	}
	return "", false
}
