package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpnclashfa-backup/freeconfig/internal/cache"
)

func TestCached_ParsesOncePerContent(t *testing.T) {
	rec := &countingRecorder{}
	c := NewCached(newTestParser(t, nil, WithRecorder(rec)), cache.NewStore(cache.Options{}), time.Minute)

	first := c.Parse("trojan://pw@example.com:443")
	second := c.Parse("trojan://pw@example.com:443")
	assert.Equal(t, first.Links, second.Links)
	assert.False(t, first.Stats.Cached)
	assert.True(t, second.Stats.Cached)
	assert.Equal(t, first.Stats.Candidates, second.Stats.Candidates)

	// mutating a returned result must not leak into the cache
	second.Links[0].Link = "changed"
	second.Stats.Links["trojan"] = 99
	third := c.Parse("trojan://pw@example.com:443")
	assert.Equal(t, "trojan://pw@example.com:443", third.Links[0].Link)
	assert.Equal(t, 1, third.Stats.Links["trojan"])
	assert.True(t, third.Stats.Cached)

	fresh := c.Parse("trojan://pw@example.org:443")
	assert.False(t, fresh.Stats.Cached)
	assert.Same(t, c.parser, c.Unwrap())
}

func TestCached_RecordsHits(t *testing.T) {
	rec := &countingRecorder{}
	c := NewCached(newTestParser(t, nil, WithRecorder(rec)), cache.NewStore(cache.Options{}), time.Minute)

	for i := 0; i < 3; i++ {
		c.Parse("trojan://pw@example.com:443")
	}
	require.Equal(t, 3, rec.count())
	assert.False(t, rec.calls[0].Cached)
	for _, stats := range rec.calls[1:] {
		assert.True(t, stats.Cached)
		assert.Equal(t, 1, stats.Links["trojan"])
	}
}
