package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("FREECONFIG_LOG_LEVEL", "error")
	t.Setenv("FREECONFIG_METRICS_ENABLED", "false")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func TestExtract_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channel.txt")
	body := "new configs 🔥\ntrojan://pw@example.com:443#one\ntrojan://pw@example.com:443#one\n" +
		"ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388🔥🔥 کانفیگ رایگان\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out, err := runCLI(t, "", "extract", path)
	require.NoError(t, err)
	assert.Equal(t, "trojan://pw@example.com:443#one\nss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388\n", out)

	out, err = runCLI(t, "", "extract", "--protocols", "ss", "--format", "base64", path)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388\n", string(decoded))
}

func TestExtract_OutputFileAndErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(in, []byte("trojan://pw@example.com:443"), 0o600))

	_, err := runCLI(t, "", "extract", "--format", "json", "--output", outPath, in)
	require.NoError(t, err)
	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"link": "trojan://pw@example.com:443"`)

	_, err = runCLI(t, "", "extract", "--format", "xml", in)
	assert.Error(t, err)

	_, err = runCLI(t, "", "extract", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestProtocolsCommand(t *testing.T) {
	out, err := runCLI(t, "", "protocols")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "reality")
	assert.Contains(t, out, "hysteria2://")
	assert.Less(t, strings.Index(out, "reality"), strings.Index(out, "vmess"))
}

func TestVersionSkipsConfig(t *testing.T) {
	out, err := runCLI(t, "", "--config", "/nonexistent/config.yaml", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "freeconfig dev")
}
