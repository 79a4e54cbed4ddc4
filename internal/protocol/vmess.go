package protocol

import (
	"encoding/base64"

	"github.com/tidwall/gjson"
)

// vmessRequired are the v2rayN share fields every vmess payload must carry.
var vmessRequired = []string{"v", "ps", "add", "port", "id", "aid", "net", "type"}

type vmessValidator struct{}

func (vmessValidator) Validate(link string) bool {
	doc, ok := vmessDocument(link)
	if !ok {
		return false
	}
	for _, field := range vmessRequired {
		if !doc.Get(field).Exists() {
			return false
		}
	}
	port := doc.Get("port")
	if port.Type != gjson.String && port.Type != gjson.Number {
		return false
	}
	return IsValidUUID(doc.Get("id").String()) &&
		IsValidHost(doc.Get("add").String()) &&
		IsValidPort(port.String())
}

// Clean re-encodes the payload with padded standard base64, the v2rayN form.
func (vmessValidator) Clean(link string) string {
	scheme, payload, query, fragment, hasFragment, ok := splitPayload(link)
	if !ok {
		return cleanURI(link)
	}
	raw, ok := DecodeBase64(trimBase64Tail(payload))
	if !ok {
		return cleanURI(link)
	}
	return joinPayload(scheme, base64.StdEncoding.EncodeToString(raw), query, fragment, hasFragment)
}

func vmessDocument(link string) (gjson.Result, bool) {
	scheme, payload, _, _, _, ok := splitPayload(link)
	if !ok || scheme != "vmess" {
		return gjson.Result{}, false
	}
	raw, ok := DecodeBase64(trimBase64Tail(payload))
	if !ok || !gjson.ValidBytes(raw) {
		return gjson.Result{}, false
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return gjson.Result{}, false
	}
	return doc, true
}
