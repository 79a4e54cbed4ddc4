package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, protocol.DefaultActive(), cfg.Parser.Protocols)
	assert.Empty(t, cfg.Parser.JunkPhrases)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 20*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
parser:
  protocols: [vless, trojan]
  junk_phrases: ["my channel"]
fetch:
  timeout: 5s
collect:
  sources:
    - https://example.com/sub
  schedule: "@every 30m"
`)
	t.Setenv("FREECONFIG_FETCH_CONCURRENCY", "2")
	t.Setenv("FREECONFIG_COLLECT_SOURCES", "a.txt, b.txt")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"vless", "trojan"}, cfg.Parser.Protocols)
	assert.Equal(t, []string{"my channel"}, cfg.Parser.JunkPhrases)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 2, cfg.Fetch.Concurrency)
	assert.Equal(t, []string{"a.txt", "b.txt"}, cfg.Collect.Sources)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ProtocolsFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FREECONFIG_PARSER_PROTOCOLS", "ss,vmess")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"ss", "vmess"}, cfg.Parser.Protocols)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "parser: [unterminated\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Parser: ParserConfig{Protocols: []string{"vless"}},
			Fetch:  FetchConfig{Concurrency: 1, MaxBytes: 1},
			HTTP:   HTTPConfig{MaxBodyBytes: 1},
		}
	}
	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Parser.Protocols = []string{" "}
	assert.ErrorIs(t, cfg.Validate(), ErrNoProtocols)

	cfg = base()
	cfg.Fetch.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.HTTP.MaxBodyBytes = -1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Collect.Schedule = "every now and then"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Collect.Schedule = "*/10 * * * *"
	assert.NoError(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LogConfig{Level: "DEBUG"}.SlogLevel().String())
	assert.Equal(t, "WARN", LogConfig{Level: "warning"}.SlogLevel().String())
	assert.Equal(t, "INFO", LogConfig{Level: ""}.SlogLevel().String())
}
