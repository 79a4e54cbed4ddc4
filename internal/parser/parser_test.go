package parser

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

const testUUID = "b831381d-6324-4d53-ad4f-8cda48b30811"

type countingRecorder struct {
	mu    sync.Mutex
	calls []Stats
}

func (r *countingRecorder) RecordParse(stats Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, stats)
}

func (r *countingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestParser(t *testing.T, active []string, opts ...Option) *Parser {
	t.Helper()
	if active == nil {
		active = protocol.DefaultActive()
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(protocol.NewRegistry(active, protocol.WithLogger(logger)), append([]Option{WithLogger(logger)}, opts...)...)
}

func vmessShare(t *testing.T, name, host string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"v": "2", "ps": name, "add": host, "port": "443", "id": testUUID,
		"aid": "0", "net": "ws", "type": "none", "tls": "tls",
	})
	require.NoError(t, err)
	return "vmess://" + base64.StdEncoding.EncodeToString(raw)
}

func TestParse_RealityOnly(t *testing.T) {
	p := newTestParser(t, nil)
	cases := []struct {
		name, in, want string
	}{
		{
			name: "with sni",
			in:   "vless://" + testUUID + "@1.2.3.4:443?security=reality&pbk=abc&sni=www.microsoft.com#r",
			want: "vless://" + testUUID + "@1.2.3.4:443?security=reality&pbk=abc&sni=www.microsoft.com#r",
		},
		{
			name: "name cut at whitespace",
			in:   "vless://" + testUUID + "@example.com:443?type=ws&security=reality&pbk=abc#My Node",
			want: "vless://" + testUUID + "@example.com:443?type=ws&security=reality&pbk=abc#My",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, []Link{{Protocol: "reality", Link: tc.want}}, p.ParseContent(tc.in))
		})
	}
}

func TestParse_Base64Subscription(t *testing.T) {
	p := newTestParser(t, nil)
	links := []string{
		vmessShare(t, "a", "a.example.com"),
		vmessShare(t, "b", "b.example.com"),
		vmessShare(t, "c", "c.example.com"),
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(strings.Join(links, "\n")))

	res := p.Parse(encoded)
	require.Len(t, res.Links, 3)
	for i, l := range res.Links {
		assert.Equal(t, "vmess", l.Protocol)
		assert.Equal(t, links[i], l.Link)
	}
	assert.True(t, res.Stats.Base64)
	assert.Equal(t, 3, res.Stats.Links["vmess"])

	// without the base64 layer the same text yields nothing
	r := newRun(p)
	r.direct(encoded)
	assert.Empty(t, r.result().Links)
	assert.Empty(t, p.segmenter.Segment(encoded))
}

func TestParse_ClashProfile(t *testing.T) {
	p := newTestParser(t, nil)
	doc := "proxies:\n  - {name: node1, type: ss, server: 1.2.3.4, port: 8388, cipher: aes-256-gcm, password: p@ss}\n"
	assert.Equal(t, []Link{{Protocol: "ss", Link: "ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388#node1"}}, p.ParseContent(doc))
}

func TestParse_TrailingSpam(t *testing.T) {
	p := newTestParser(t, nil)
	want := []Link{{Protocol: "ss", Link: "ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388"}}
	assert.Equal(t, want, p.ParseContent("ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388🔥🔥 کانفیگ رایگان"))
	assert.Equal(t, want, p.ParseContent("ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388🔥🔥کانفیگ"))
}

func TestParse_InvalidPayload(t *testing.T) {
	p := newTestParser(t, nil)
	res := p.Parse("ss://badpayload@@@")
	assert.Empty(t, res.Links)
	assert.NotNil(t, res.Links)
	assert.Equal(t, 1, res.Stats.Candidates)
	assert.Equal(t, 1, res.Stats.Rejected)
}

func TestParse_EmptyAndGarbage(t *testing.T) {
	p := newTestParser(t, nil)
	for _, in := range []string{"", "   \n\t", "nothing to see here", "{\"a\":", "proxies: ["} {
		res := p.Parse(in)
		assert.Empty(t, res.Links, in)
		assert.Empty(t, res.Subscriptions, in)
	}
}

func TestParse_DeduplicatesFirstOccurrence(t *testing.T) {
	p := newTestParser(t, nil)
	text := "trojan://pw@example.com:443#a%20b\n" +
		"trojan://pw@example.com:443#a_b\n" +
		"vless://" + testUUID + "@example.com:443?security=tls#v\n" +
		"trojan://pw@example.com:443#a%20b"
	res := p.Parse(text)
	require.Len(t, res.Links, 2)
	assert.Equal(t, "trojan", res.Links[0].Protocol)
	assert.Equal(t, "vless", res.Links[1].Protocol)
	assert.Equal(t, 2, res.Stats.Duplicates)
}

func TestParse_RespectsActiveProtocols(t *testing.T) {
	p := newTestParser(t, []string{"vless"})
	text := "trojan://pw@example.com:443 vless://" + testUUID + "@example.com:443#v"
	links := p.ParseContent(text)
	require.Len(t, links, 1)
	assert.Equal(t, "vless", links[0].Protocol)
}

func TestParse_SubscriptionsKeptApart(t *testing.T) {
	p := newTestParser(t, nil)
	doc := strings.Join([]string{
		"proxy-providers:",
		"  a:",
		"    type: http",
		"    url: https://example.com/sub",
		"  b:",
		"    type: http",
		"    url: https://example.com/sub",
	}, "\n")
	res := p.Parse(doc)
	assert.Empty(t, res.Links)
	assert.Equal(t, []Link{{Protocol: protocol.Subscription, Link: "https://example.com/sub"}}, res.Subscriptions)
	assert.Equal(t, 1, res.Stats.Subscriptions)
}

func TestParse_Deterministic(t *testing.T) {
	p := newTestParser(t, nil)
	text := strings.Join([]string{
		vmessShare(t, "x", "x.example.com"),
		"hysteria2://pw@example.com:443?insecure=1#h",
		"ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388",
		"trojan://pw@example.com:443",
	}, " ")
	first := p.ParseContent(text)
	require.Len(t, first, 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, p.ParseContent(text))
	}
}

func TestParse_RecorderAndCustomJunk(t *testing.T) {
	rec := &countingRecorder{}
	p := newTestParser(t, nil, WithRecorder(rec), WithJunkPhrases("premium node"))
	links := p.ParseContent("trojan://pw@example.com:443#fast_premium-node")
	assert.Equal(t, []Link{{Protocol: "trojan", Link: "trojan://pw@example.com:443#fast_"}}, links)
	require.Equal(t, 1, rec.count())
	assert.Equal(t, 1, rec.calls[0].Links["trojan"])
}

func TestParse_ConcurrentUse(t *testing.T) {
	p := newTestParser(t, nil)
	text := "trojan://pw@example.com:443 ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388"
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, p.ParseContent(text), 2)
		}()
	}
	wg.Wait()
}
