// 文件路径: internal/protocol/registry.go
// 模块说明: 协议注册表，按启用列表构建一次，之后只读，可被多个解析协程共享。
package protocol

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// Registry 保存启用协议的描述符、校验器与匹配顺序。
type Registry struct {
	order       []string
	descriptors map[string]Descriptor
	validators  map[string]Validator
	detect      map[string][]string
	prefixes    []string
	pattern     *regexp.Regexp
	logger      *slog.Logger
}

// RegistryOption customizes registry construction.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for construction warnings.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry 根据启用的协议名构建注册表。
// 未知协议不会报错，而是退化为只校验前缀的通用校验器并记录警告。
func NewRegistry(active []string, opts ...RegistryOption) *Registry {
	r := &Registry{
		descriptors: make(map[string]Descriptor),
		validators:  make(map[string]Validator),
		detect:      make(map[string][]string),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	wanted := make(map[string]struct{})
	var unknown []string
	for _, name := range active {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" || n == Subscription {
			continue
		}
		if _, ok := wanted[n]; ok {
			continue
		}
		wanted[n] = struct{}{}
		if _, ok := lookupBuiltin(n); !ok {
			unknown = append(unknown, n)
		}
	}

	for _, b := range builtins {
		if _, ok := wanted[b.desc.Name]; !ok {
			continue
		}
		known, _ := lookupBuiltin(b.desc.Name)
		r.add(known.desc, known.validator)
	}
	for i, name := range unknown {
		r.logger.Warn("unknown protocol, using permissive prefix validator", "protocol", name)
		desc := Descriptor{
			Name:     name,
			Prefixes: []string{name + "://"},
			Priority: len(builtins) + i,
		}
		r.add(desc, genericValidator{scheme: name})
	}

	r.pattern = compilePrefixPattern(r.prefixes)
	return r
}

func (r *Registry) add(desc Descriptor, v Validator) {
	prefixes := desc.Prefixes
	if len(prefixes) == 0 && desc.Parent != "" {
		if parent, ok := lookupBuiltin(desc.Parent); ok {
			prefixes = parent.desc.Prefixes
		}
	}
	r.order = append(r.order, desc.Name)
	r.descriptors[desc.Name] = desc
	r.validators[desc.Name] = v
	r.detect[desc.Name] = prefixes
	for _, p := range prefixes {
		if !containsString(r.prefixes, p) {
			r.prefixes = append(r.prefixes, p)
		}
	}
}

// compilePrefixPattern joins the prefixes longest first so that socks5:// wins
// over socks:// and hysteria2:// over hysteria://. The leading word boundary
// keeps ss:// from firing inside vmess:// or ssr://.
func compilePrefixPattern(prefixes []string) *regexp.Regexp {
	if len(prefixes) == 0 {
		return regexp.MustCompile(`a^`)
	}
	sorted := append([]string(nil), prefixes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, p := range sorted {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`)
}

// MatchOrder returns the active protocol names in precedence order.
func (r *Registry) MatchOrder() []string {
	return append([]string(nil), r.order...)
}

// ActiveDescriptors returns a copy of the active descriptors keyed by name.
func (r *Registry) ActiveDescriptors() map[string]Descriptor {
	out := make(map[string]Descriptor, len(r.descriptors))
	for name, desc := range r.descriptors {
		desc.Prefixes = append([]string(nil), desc.Prefixes...)
		out[name] = desc
	}
	return out
}

// Descriptors returns the active descriptors in match order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		desc := r.descriptors[name]
		desc.Prefixes = append([]string(nil), desc.Prefixes...)
		out = append(out, desc)
	}
	return out
}

// CombinedPrefixPattern matches the start of any active protocol prefix.
// The returned regexp is shared; callers must not mutate it.
func (r *Registry) CombinedPrefixPattern() *regexp.Regexp {
	return r.pattern
}

// IsActive reports whether name is in the active set.
func (r *Registry) IsActive(name string) bool {
	_, ok := r.descriptors[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Validator returns the validator registered for name.
func (r *Registry) Validator(name string) (Validator, bool) {
	v, ok := r.validators[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// HasKnownPrefix reports whether text starts with any active prefix.
func (r *Registry) HasKnownPrefix(text string) bool {
	for _, p := range r.prefixes {
		if hasPrefixFold(text, p) {
			return true
		}
	}
	return false
}

// Match 按匹配顺序返回第一个前缀命中且校验通过的协议名。
// 变体（如 reality）校验失败时会继续尝试父协议，命中后立即返回，不会重复输出父协议。
func (r *Registry) Match(candidate string) (string, bool) {
	for _, name := range r.order {
		if !r.detects(name, candidate) {
			continue
		}
		if r.validators[name].Validate(candidate) {
			return name, true
		}
	}
	return "", false
}

func (r *Registry) detects(name, candidate string) bool {
	for _, p := range r.detect[name] {
		if hasPrefixFold(candidate, p) {
			return true
		}
	}
	return false
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
