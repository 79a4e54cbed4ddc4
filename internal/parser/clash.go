package parser

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

// ExtractClash reads a Clash/Mihomo YAML profile. ss and ssr proxies are
// rebuilt as share links, other proxy types are flattened back to text for
// the segmenter, and HTTP(S) proxy providers become subscription candidates.
// Text that is not a YAML mapping yields nothing; malformed YAML yields an error.
func ExtractClash(content string) ([]Candidate, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		return nil, fmt.Errorf("decode clash yaml: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, nil
	}
	var doc struct {
		Proxies        []any          `yaml:"proxies"`
		ProxyProviders map[string]any `yaml:"proxy-providers"`
	}
	if err := root.Content[0].Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode clash profile: %w", err)
	}

	var out []Candidate
	for _, item := range doc.Proxies {
		proxy, ok := asMap(item)
		if !ok {
			continue
		}
		if link := clashProxyLink(proxy); link != "" {
			out = append(out, Candidate{Text: link})
			continue
		}
		if flat := flattenValue(proxy, nil); len(flat) > 0 {
			out = append(out, Candidate{Text: strings.Join(flat, "\n")})
		}
	}

	names := make([]string, 0, len(doc.ProxyProviders))
	for name := range doc.ProxyProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		provider, ok := asMap(doc.ProxyProviders[name])
		if !ok {
			continue
		}
		if u := strings.TrimSpace(valueString(provider, "url")); isHTTPURL(u) {
			out = append(out, Candidate{Protocol: protocol.Subscription, Text: u})
		}
	}
	return out, nil
}

// clashProxyLink rebuilds ss and ssr entries. Anything else, or an entry
// missing a required field, returns "".
func clashProxyLink(proxy map[string]any) string {
	switch strings.ToLower(valueString(proxy, "type")) {
	case "ss", "shadowsocks":
		return clashShadowsocks(proxy)
	case "ssr", "shadowsocksr":
		return clashShadowsocksR(proxy)
	}
	return ""
}

func clashShadowsocks(proxy map[string]any) string {
	cipher := valueString(proxy, "cipher")
	password := valueString(proxy, "password")
	server := valueString(proxy, "server")
	port, ok := valuePort(proxy, "port")
	if cipher == "" || password == "" || server == "" || !ok {
		return ""
	}
	return protocol.BuildShadowsocksURI(cipher, password, server, port, clashPlugin(proxy), valueString(proxy, "name"))
}

// clashPlugin maps plugin/plugin-opts to the SIP003 plugin parameter.
func clashPlugin(proxy map[string]any) string {
	plugin := strings.ToLower(valueString(proxy, "plugin"))
	switch plugin {
	case "":
		return ""
	case "obfs":
		parts := []string{"obfs-local"}
		if mode := valueString(proxy, "plugin-opts.mode"); mode != "" {
			parts = append(parts, "obfs="+mode)
		}
		if host := valueString(proxy, "plugin-opts.host"); host != "" {
			parts = append(parts, "obfs-host="+host)
		}
		return strings.Join(parts, ";")
	case "v2ray-plugin":
		parts := []string{"v2ray-plugin"}
		if mode := valueString(proxy, "plugin-opts.mode"); mode != "" {
			parts = append(parts, "mode="+mode)
		}
		if valueBool(proxy, "plugin-opts.tls") {
			parts = append(parts, "tls")
		}
		if host := valueString(proxy, "plugin-opts.host"); host != "" {
			parts = append(parts, "host="+host)
		}
		if path := valueString(proxy, "plugin-opts.path"); path != "" {
			parts = append(parts, "path="+path)
		}
		return strings.Join(parts, ";")
	default:
		return plugin
	}
}

func clashShadowsocksR(proxy map[string]any) string {
	server := valueString(proxy, "server")
	port, ok := valuePort(proxy, "port")
	proto := valueString(proxy, "protocol")
	method := valueFirst(proxy, "cipher", "method")
	obfs := valueString(proxy, "obfs")
	password := valueString(proxy, "password")
	if server == "" || !ok || proto == "" || method == "" || obfs == "" || password == "" {
		return ""
	}
	return protocol.BuildSSRURI(server, port, proto, method, obfs, password, protocol.SSROptions{
		Name:       valueString(proxy, "name"),
		ObfsParam:  valueFirst(proxy, "obfs-param", "obfsparam"),
		ProtoParam: valueFirst(proxy, "protocol-param", "protocolparam"),
	})
}

func isHTTPURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
