package parser

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

func TestMaybeDecodeBase64(t *testing.T) {
	reg := protocol.NewRegistry(protocol.DefaultActive())
	plain := "trojan://pw@example.com:443\nss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388\n"

	t.Run("standard", func(t *testing.T) {
		decoded, ok := MaybeDecodeBase64(base64.StdEncoding.EncodeToString([]byte(plain)), reg)
		assert.True(t, ok)
		assert.Equal(t, plain, decoded)
	})

	t.Run("url safe without padding", func(t *testing.T) {
		decoded, ok := MaybeDecodeBase64(base64.RawURLEncoding.EncodeToString([]byte(plain)), reg)
		assert.True(t, ok)
		assert.Equal(t, plain, decoded)
	})

	t.Run("wrapped lines", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte(plain))
		var b strings.Builder
		for i := 0; i < len(encoded); i += 16 {
			end := min(i+16, len(encoded))
			b.WriteString(encoded[i:end])
			b.WriteString("\r\n")
		}
		decoded, ok := MaybeDecodeBase64(b.String(), reg)
		assert.True(t, ok)
		assert.Equal(t, plain, decoded)
	})

	t.Run("decodes to unrelated text", func(t *testing.T) {
		_, ok := MaybeDecodeBase64(base64.StdEncoding.EncodeToString([]byte("hello there, nothing to see")), reg)
		assert.False(t, ok)
	})

	t.Run("not base64", func(t *testing.T) {
		for _, in := range []string{"", "abc", "not base64 at all!", plain} {
			_, ok := MaybeDecodeBase64(in, reg)
			assert.False(t, ok, in)
		}
	})

	t.Run("inactive protocol only", func(t *testing.T) {
		vlessOnly := protocol.NewRegistry([]string{"vless"})
		_, ok := MaybeDecodeBase64(base64.StdEncoding.EncodeToString([]byte("trojan://pw@example.com:443")), vlessOnly)
		assert.False(t, ok)
	})
}
