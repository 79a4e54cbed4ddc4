package collect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpnclashfa-backup/freeconfig/internal/parser"
	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
	"github.com/vpnclashfa-backup/freeconfig/internal/source"
)

type fakeLoader struct {
	docs     map[string][]source.Document
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeLoader) Load(ctx context.Context, ref string) ([]source.Document, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	docs, ok := f.docs[ref]
	if !ok {
		return nil, errors.New("no such source")
	}
	return docs, ctx.Err()
}

func newTestCollector(loader Loader, opts ...Option) *Collector {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := parser.New(protocol.NewRegistry(protocol.DefaultActive()), parser.WithLogger(logger))
	return New(loader, p, append([]Option{WithLogger(logger)}, opts...)...)
}

func TestRun_MergesInSourceOrder(t *testing.T) {
	loader := &fakeLoader{docs: map[string][]source.Document{
		"a": {{Name: "a", Content: "trojan://pw@a.example.com:443 trojan://pw@shared.example.com:443"}},
		"b": {
			{Name: "b1", Content: "trojan://pw@shared.example.com:443"},
			{Name: "b2", Content: "ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388"},
		},
		"c": {{Name: "c", Content: "proxy-providers:\n  p:\n    url: https://example.com/sub\n"}},
	}}
	c := newTestCollector(loader, WithConcurrency(2))

	report, err := c.Run(context.Background(), []string{"a", "missing", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, []parser.Link{
		{Protocol: "trojan", Link: "trojan://pw@a.example.com:443"},
		{Protocol: "trojan", Link: "trojan://pw@shared.example.com:443"},
		{Protocol: "ss", Link: "ss://YWVzLTI1Ni1nY206cEBzcw@1.2.3.4:8388"},
	}, report.Links)
	assert.Equal(t, []parser.Link{{Protocol: protocol.Subscription, Link: "https://example.com/sub"}}, report.Subscriptions)
	assert.Equal(t, map[string]int{"trojan": 2, "ss": 1}, report.ByProtocol())

	require.Len(t, report.Sources, 4)
	assert.Equal(t, "missing", report.Sources[1].Ref)
	assert.False(t, report.Sources[1].OK())
	assert.Equal(t, 2, report.Sources[2].Documents)
	assert.Equal(t, 2, report.Sources[2].Links)
	assert.Equal(t, 1, report.Failed())
	assert.LessOrEqual(t, loader.peak.Load(), int32(2))

	assert.Len(t, report.Filter("trojan"), 2)
	assert.Len(t, report.Filter(""), 3)
	assert.Empty(t, report.Filter("vmess"))
}

func TestRun_Errors(t *testing.T) {
	c := newTestCollector(&fakeLoader{})
	_, err := c.Run(context.Background(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Run(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummary(t *testing.T) {
	report := &Report{
		Links: []parser.Link{
			{Protocol: "vless", Link: "vless://a"},
			{Protocol: "vless", Link: "vless://b"},
			{Protocol: "ss", Link: "ss://c"},
		},
		Sources: []SourceReport{
			{Ref: "https://example.com/a", Links: 3},
			{Ref: "broken.txt", Error: "open broken.txt: no such file"},
		},
	}
	out := report.Summary()
	assert.Contains(t, out, "3 links, 0 subscriptions")
	assert.Contains(t, out, "vless")
	assert.Contains(t, out, "https://example.com/a")
	assert.Contains(t, out, "no such file")

	counts := sortedCounts(report.ByProtocol())
	assert.Equal(t, []protocolCount{{"vless", 2}, {"ss", 1}}, counts)
	assert.Len(t, []rune(shareBar(1, 0)), barWidth)
}
