package collect

import (
	"sort"
	"time"

	"github.com/vpnclashfa-backup/freeconfig/internal/parser"
)

// SourceReport describes what one reference contributed. Links and
// Subscriptions count before the cross-source merge.
type SourceReport struct {
	Ref           string        `json:"ref"`
	Documents     int           `json:"documents"`
	Links         int           `json:"links"`
	Subscriptions int           `json:"subscriptions"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// OK reports whether the source loaded.
func (s SourceReport) OK() bool { return s.Error == "" }

// Report is the merged outcome of one collection run.
type Report struct {
	Links         []parser.Link  `json:"links"`
	Subscriptions []parser.Link  `json:"subscriptions"`
	Sources       []SourceReport `json:"sources"`
	StartedAt     time.Time      `json:"started_at"`
	Duration      time.Duration  `json:"duration"`
}

// ByProtocol counts merged links per protocol.
func (r *Report) ByProtocol() map[string]int {
	out := make(map[string]int)
	for _, l := range r.Links {
		out[l.Protocol]++
	}
	return out
}

// Failed counts sources that could not be loaded.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Sources {
		if !s.OK() {
			n++
		}
	}
	return n
}

// Filter returns the links of the given protocol; an empty name returns all.
func (r *Report) Filter(protocol string) []parser.Link {
	if protocol == "" {
		return append([]parser.Link{}, r.Links...)
	}
	out := []parser.Link{}
	for _, l := range r.Links {
		if l.Protocol == protocol {
			out = append(out, l)
		}
	}
	return out
}

type protocolCount struct {
	name  string
	count int
}

// sortedCounts orders protocols by count, then name.
func sortedCounts(counts map[string]int) []protocolCount {
	out := make([]protocolCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, protocolCount{name, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}
