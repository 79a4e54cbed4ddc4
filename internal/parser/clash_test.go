package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

const clashProfile = `
port: 7890
proxies:
  - name: node1
    type: ss
    server: 1.2.3.4
    port: 8388
    cipher: aes-256-gcm
    password: p@ss
  - name: obfs node
    type: ss
    server: example.com
    port: "443"
    cipher: chacha20-ietf-poly1305
    password: pw
    plugin: obfs
    plugin-opts:
      mode: tls
      host: bing.com
  - name: broken
    type: ss
    server: example.com
    cipher: aes-256-gcm
  - name: r1
    type: ssr
    server: 5.6.7.8
    port: 443
    cipher: aes-256-cfb
    protocol: origin
    obfs: plain
    password: secret
  - name: t1
    type: trojan
    server: example.org
    port: 443
    password: pw
    sni: example.org
proxy-providers:
  remote:
    type: http
    url: https://example.com/sub.yaml
  local:
    type: file
    path: ./local.yaml
  ftp:
    type: http
    url: ftp://example.com/sub
`

func TestExtractClash(t *testing.T) {
	got, err := ExtractClash(clashProfile)
	require.NoError(t, err)
	require.Len(t, got, 6)

	assert.Equal(t, Candidate{Text: "ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388#node1"}, got[0])

	assert.True(t, strings.HasPrefix(got[1].Text, "ss://"))
	assert.Contains(t, got[1].Text, "@example.com:443?plugin=obfs-local%3Bobfs%3Dtls%3Bobfs-host%3Dbing.com")
	assert.True(t, strings.HasSuffix(got[1].Text, "#obfs_node"))

	// incomplete ss entries and other proxy types are flattened for the segmenter
	assert.Empty(t, got[2].Protocol)
	assert.NotContains(t, got[2].Text, "://")

	assert.True(t, strings.HasPrefix(got[3].Text, "ssr://"))
	reg := protocol.NewRegistry(protocol.DefaultActive())
	name, ok := reg.Match(got[3].Text)
	assert.True(t, ok)
	assert.Equal(t, "ssr", name)

	assert.Empty(t, got[4].Protocol)
	assert.Contains(t, got[4].Text, "example.org")

	assert.Equal(t, Candidate{Protocol: protocol.Subscription, Text: "https://example.com/sub.yaml"}, got[5])
}

func TestExtractClash_NonProfiles(t *testing.T) {
	got, err := ExtractClash("- a\n- b\n")
	assert.NoError(t, err)
	assert.Empty(t, got)

	got, err = ExtractClash("trojan://pw@example.com:443")
	assert.NoError(t, err)
	assert.Empty(t, got)

	_, err = ExtractClash("proxies: [\n")
	assert.Error(t, err)
}
