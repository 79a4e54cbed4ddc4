package protocol

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_MatchOrderFollowsPrecedence(t *testing.T) {
	reg := NewRegistry([]string{"hysteria", "vless", "HYSTERIA2", "reality", "vless", " "})
	assert.Equal(t, []string{"reality", "vless", "hysteria2", "hysteria"}, reg.MatchOrder())

	descs := reg.ActiveDescriptors()
	require.Contains(t, descs, "reality")
	assert.Equal(t, "vless", descs["reality"].Parent)
	assert.Empty(t, descs["reality"].Prefixes)
	assert.Equal(t, []string{"hysteria2://", "hy2://"}, descs["hysteria2"].Prefixes)
}

func TestNewRegistry_UnknownProtocolFallsBackToGeneric(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	reg := NewRegistry([]string{"vmess", "brook"}, WithLogger(logger))
	assert.Equal(t, []string{"vmess", "brook"}, reg.MatchOrder())
	assert.Contains(t, buf.String(), "unknown protocol")
	assert.Contains(t, buf.String(), "brook")

	name, ok := reg.Match("brook://anything-goes")
	require.True(t, ok)
	assert.Equal(t, "brook", name)

	_, ok = reg.Match("brook://")
	assert.False(t, ok)
}

func TestCombinedPrefixPattern(t *testing.T) {
	reg := NewRegistry(DefaultActive())
	re := reg.CombinedPrefixPattern()

	assert.Equal(t, []string{"vmess://"}, re.FindAllString("vmess://abc", -1))
	assert.Equal(t, []string{"ssr://"}, re.FindAllString("ssr://abc", -1))
	assert.Equal(t, []string{"socks5://", "HY2://"}, re.FindAllString("x socks5://a HY2://b", -1))
	assert.Equal(t, []string{"hysteria2://"}, re.FindAllString("hysteria2://a", -1))
	assert.Equal(t, []string{"naive+https://"}, re.FindAllString("naive+https://u@h", -1))
}

func TestCombinedPrefixPattern_OnlyActive(t *testing.T) {
	reg := NewRegistry([]string{"trojan"})
	assert.Empty(t, reg.CombinedPrefixPattern().FindString("vless://x"))
	assert.True(t, reg.HasKnownPrefix("TROJAN://x"))
	assert.False(t, reg.HasKnownPrefix("vless://x"))

	empty := NewRegistry(nil)
	assert.Empty(t, empty.CombinedPrefixPattern().FindString("vless://x"))
}

func TestRegistryMatch_RealityShortCircuitsVless(t *testing.T) {
	reg := NewRegistry(DefaultActive())
	realityLink := "vless://" + testUUID + "@1.2.3.4:443?security=reality&pbk=abc"
	plainLink := "vless://" + testUUID + "@1.2.3.4:443?security=tls"

	name, ok := reg.Match(realityLink)
	require.True(t, ok)
	assert.Equal(t, "reality", name)

	name, ok = reg.Match(plainLink)
	require.True(t, ok)
	assert.Equal(t, "vless", name)

	assert.True(t, IsReality(realityLink))
	assert.False(t, IsReality(plainLink))
}

func TestRegistryMatch_InactiveVariantFallsToParent(t *testing.T) {
	reg := NewRegistry([]string{"vless"})
	name, ok := reg.Match("vless://" + testUUID + "@1.2.3.4:443?security=reality&pbk=abc")
	require.True(t, ok)
	assert.Equal(t, "vless", name)
}

func TestRegistryMatch_InactiveProtocolIgnored(t *testing.T) {
	reg := NewRegistry([]string{"vmess"})
	_, ok := reg.Match("trojan://secret@example.com:443")
	assert.False(t, ok)
}

func TestRegistryValidator(t *testing.T) {
	reg := NewRegistry([]string{"ss"})
	v, ok := reg.Validator("SS")
	require.True(t, ok)
	assert.True(t, v.Validate("ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388"))

	_, ok = reg.Validator("vmess")
	assert.False(t, ok)
	assert.True(t, reg.IsActive("ss"))
}
