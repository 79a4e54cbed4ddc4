package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

func newTestSegmenter(active ...string) *Segmenter {
	if len(active) == 0 {
		active = protocol.DefaultActive()
	}
	reg := protocol.NewRegistry(active)
	return NewSegmenter(reg, NewJunkTrimmer(DefaultJunkPhrases()), nil)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a b c", Sanitize("  a\n\n b\t\tc  "))
	assert.Equal(t, "vless://x", Sanitize("vl\u200bess:\u200f//x\ufeff"))
	assert.Equal(t, "a&b", Sanitize("a&amp;amp;b"))
	assert.Equal(t, "x?a=1&reserved=0,0,0", Sanitize("x?a=1&reserved=0,0,0"))
	assert.Equal(t, "<p>", Sanitize("&lt;p&gt;"))
}

func TestSegment_SplitsOnWhitespaceQuotesAndPrefixes(t *testing.T) {
	s := newTestSegmenter()
	text := `see <a href="trojan://pw@example.com:443#one">x</a> and ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388|trojan://pw@example.org:443`
	assert.Equal(t, []string{
		"trojan://pw@example.com:443#one",
		"ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388",
		"trojan://pw@example.org:443",
	}, s.Segment(text))
}

func TestSegment_AdjacentMentionsAfterNonWordCharacter(t *testing.T) {
	s := newTestSegmenter()
	got := s.Segment("vmess://eyJ2IjoiMiJ9==vless://id@example.com:443#n")
	assert.Equal(t, []string{"vmess://eyJ2IjoiMiJ9==", "vless://id@example.com:443#n"}, got)
}

func TestSegment_IgnoresInactiveProtocols(t *testing.T) {
	s := newTestSegmenter("trojan")
	assert.Equal(t, []string{"trojan://pw@example.com:443"}, s.Segment("vless://a@b.com:1 trojan://pw@example.com:443"))
	assert.Empty(t, s.Segment(""))
}

func TestJunkTrimmer(t *testing.T) {
	trim := NewJunkTrimmer(DefaultJunkPhrases())
	cases := []struct {
		in, want string
	}{
		{"ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388🔥🔥", "ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388"},
		{"ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388🔥🔥کانفیگ", "ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388"},
		{"trojan://pw@example.com:443#Germany🇩🇪", "trojan://pw@example.com:443#Germany"},
		{"trojan://pw@example.com:443#سرور_کانفیگ_رایگان", "trojan://pw@example.com:443#سرور_"},
		{"trojan://pw@example.com:443#name#tag#more", "trojan://pw@example.com:443#name"},
		{"trojan://pw@example.com:443#name|@channel", "trojan://pw@example.com:443#name"},
		{"trojan://pw@example.com:443#name@channel", "trojan://pw@example.com:443#name"},
		{"trojan://pw@example.com:443,", "trojan://pw@example.com:443"},
		{"trojan://pw@telegram.example.com:443#Join_Channel", "trojan://pw@telegram.example.com:443#"},
		{"trojan://pw@example.com:443?path=/join&sni=channel.example.com", "trojan://pw@example.com:443?path=/join&sni=channel.example.com"},
		{"trojan://pw@example.com:443#fast-node", "trojan://pw@example.com:443#fast-node"},
		{"trojan://pw@example.com:443#x_join_us", "trojan://pw@example.com:443#x_"},
		{"trojan://pw@example.com:443#x-Telegram", "trojan://pw@example.com:443#x-"},
		{"trojan://pw@example.com:443#MyChannel", "trojan://pw@example.com:443#MyChannel"},
		{"trojan://pw@example.com:443?type=grpc&serviceName=my_channel#n", "trojan://pw@example.com:443?type=grpc&serviceName=my_channel#n"},
		{"trojan://pw@example.com:443?type=grpc&serviceName=my_channel", "trojan://pw@example.com:443?type=grpc&serviceName=my_channel"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, trim.Trim(tc.in), tc.in)
	}
}

func TestJunkTrimmer_CustomPhraseWithSpaces(t *testing.T) {
	trim := NewJunkTrimmer([]string{"Best Proxy", "best proxy"})
	assert.Equal(t, "trojan://pw@example.com:443#", trim.Trim("trojan://pw@example.com:443#best_proxy"))
	assert.Equal(t, "trojan://pw@example.com:443#", trim.Trim("trojan://pw@example.com:443#BEST-PROXY"))
	assert.Equal(t, "trojan://pw@example.com:443#de_", trim.Trim("trojan://pw@example.com:443#de_best proxy"))
	assert.Equal(t, "trojan://pw@best-proxy.example.com:443#de", trim.Trim("trojan://pw@best-proxy.example.com:443#de"))
}
