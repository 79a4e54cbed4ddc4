package parser

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

// ErrMalformedJSON is returned when text looks like JSON but does not parse.
var ErrMalformedJSON = errors.New("malformed json document")

// singBoxSkipped are outbound types that never carry a shareable endpoint.
var singBoxSkipped = map[string]struct{}{
	"direct": {}, "block": {}, "selector": {}, "urltest": {}, "fallback": {},
	"loadbalance": {}, "dns": {}, "http": {}, "socks": {},
}

// ExtractSingBox reads the outbounds of a sing-box configuration. Proxy
// outbounds are flattened to text for the segmenter; urltest groups with a
// url are reported as subscription candidates.
func ExtractSingBox(content string) ([]Candidate, error) {
	doc, ok, err := parseJSON(content)
	if !ok || err != nil {
		return nil, err
	}
	if !doc.IsObject() {
		return nil, nil
	}
	outbounds := doc.Get("outbounds")
	if !outbounds.IsArray() {
		return nil, nil
	}

	var out []Candidate
	outbounds.ForEach(func(_, outbound gjson.Result) bool {
		if !outbound.IsObject() {
			return true
		}
		kind := strings.ToLower(outbound.Get("type").String())
		if kind == "urltest" {
			if u := strings.TrimSpace(outbound.Get("url").String()); u != "" {
				out = append(out, Candidate{Protocol: protocol.Subscription, Text: u})
			}
			return true
		}
		if _, skip := singBoxSkipped[kind]; skip {
			return true
		}
		if flat := flattenJSON(outbound, nil); len(flat) > 0 {
			out = append(out, Candidate{Text: strings.Join(flat, "\n")})
		}
		return true
	})
	return out, nil
}

// ExtractJSON flattens any JSON document to its string leaves, in document
// order, so links nested at arbitrary depth reach the segmenter.
func ExtractJSON(content string) ([]Candidate, error) {
	doc, ok, err := parseJSON(content)
	if !ok || err != nil {
		return nil, err
	}
	flat := flattenJSON(doc, nil)
	if len(flat) == 0 {
		return nil, nil
	}
	return []Candidate{{Text: strings.Join(flat, "\n")}}, nil
}

// parseJSON reports ok=false without an error when the text is plainly not
// JSON, so free text does not produce noise.
func parseJSON(content string) (gjson.Result, bool, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(content, "\ufeff"))
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return gjson.Result{}, false, nil
	}
	if !gjson.Valid(trimmed) {
		return gjson.Result{}, false, ErrMalformedJSON
	}
	return gjson.Parse(trimmed), true, nil
}

func flattenJSON(node gjson.Result, out []string) []string {
	switch {
	case node.IsObject(), node.IsArray():
		node.ForEach(func(_, value gjson.Result) bool {
			out = flattenJSON(value, out)
			return true
		})
	case node.Type == gjson.String:
		if s := node.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
