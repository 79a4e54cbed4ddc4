// 文件路径: internal/protocol/types.go
// 模块说明: 协议描述符与校验器接口定义，注册表与各协议校验器都依赖这里的类型。
package protocol

// Subscription is the pseudo-protocol attached to discovered subscription URLs.
// It is never registered and never validated; extractors emit it directly.
const Subscription = "subscription"

// Descriptor describes how a protocol is recognized inside free text.
type Descriptor struct {
	Name string
	// Prefixes are the lower-case scheme prefixes ("vless://"). Variants that
	// share their parent's scheme leave this empty.
	Prefixes []string
	// Priority orders ambiguous matches; lower runs first.
	Priority int
	// Parent names the protocol a variant refines (reality -> vless).
	Parent string
}

// IsVariant reports whether the descriptor refines another protocol.
func (d Descriptor) IsVariant() bool {
	return d.Parent != ""
}

// Validator checks and canonicalizes candidate links of one protocol.
//
// Clean must be idempotent, and Validate(x) must imply Validate(Clean(x)).
type Validator interface {
	Validate(link string) bool
	Clean(link string) string
}

// ValidatorFunc adapts a plain predicate into a Validator whose Clean only
// normalizes scheme case and fragment.
type ValidatorFunc func(link string) bool

func (f ValidatorFunc) Validate(link string) bool { return f(link) }

func (f ValidatorFunc) Clean(link string) string { return cleanURI(link) }

type builtin struct {
	desc      Descriptor
	validator Validator
}

// builtins lists every known protocol in match order. Variants precede their
// parent and longer schemes precede the ones they extend (hysteria2 before hysteria).
var builtins = []builtin{
	{Descriptor{Name: "reality", Parent: "vless"}, realityValidator{}},
	{Descriptor{Name: "vless", Prefixes: []string{"vless://"}}, vlessValidator{}},
	{Descriptor{Name: "vmess", Prefixes: []string{"vmess://"}}, vmessValidator{}},
	{Descriptor{Name: "trojan", Prefixes: []string{"trojan://"}}, ValidatorFunc(validTrojan)},
	{Descriptor{Name: "ss", Prefixes: []string{"ss://"}}, shadowsocksValidator{}},
	{Descriptor{Name: "ssr", Prefixes: []string{"ssr://"}}, ssrValidator{}},
	{Descriptor{Name: "tuic", Prefixes: []string{"tuic://"}}, ValidatorFunc(validTUIC)},
	{Descriptor{Name: "hysteria2", Prefixes: []string{"hysteria2://", "hy2://"}}, hysteria2Validator{}},
	{Descriptor{Name: "hysteria", Prefixes: []string{"hysteria://"}}, ValidatorFunc(validHysteria)},
	{Descriptor{Name: "juicity", Prefixes: []string{"juicity://"}}, ValidatorFunc(validJuicity)},
	{Descriptor{Name: "wireguard", Prefixes: []string{"wireguard://", "wg://"}}, ValidatorFunc(validWireGuard)},
	{Descriptor{Name: "warp", Prefixes: []string{"warp://"}}, ValidatorFunc(validWarp)},
	{Descriptor{Name: "ssh", Prefixes: []string{"ssh://"}}, ValidatorFunc(validSSH)},
	{Descriptor{Name: "socks", Prefixes: []string{"socks://", "socks5://", "socks4://"}}, ValidatorFunc(validSocks)},
	{Descriptor{Name: "anytls", Prefixes: []string{"anytls://"}}, ValidatorFunc(validAnyTLS)},
	{Descriptor{Name: "mieru", Prefixes: []string{"mieru://", "mierus://"}}, ValidatorFunc(validMieru)},
	{Descriptor{Name: "snell", Prefixes: []string{"snell://"}}, ValidatorFunc(validSnell)},
	{Descriptor{Name: "naive", Prefixes: []string{"naive+https://", "naive+quic://"}}, ValidatorFunc(validNaive)},
}

// DefaultActive returns every built-in protocol name in match order.
func DefaultActive() []string {
	names := make([]string, 0, len(builtins))
	for _, b := range builtins {
		names = append(names, b.desc.Name)
	}
	return names
}

func lookupBuiltin(name string) (builtin, bool) {
	for i, b := range builtins {
		if b.desc.Name == name {
			b.desc.Priority = i
			b.desc.Prefixes = append([]string(nil), b.desc.Prefixes...)
			return b, true
		}
	}
	return builtin{}, false
}
