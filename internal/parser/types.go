// 文件路径: internal/parser/types.go
// 模块说明: 解析流水线对外暴露的结果类型与指标回调接口。
package parser

import "time"

// Link is a validated, canonical config link.
type Link struct {
	Protocol string `json:"protocol"`
	Link     string `json:"link"`
}

// Candidate is what an extractor hands back: either free text that still has
// to be segmented, or a subscription URL when Protocol is set.
type Candidate struct {
	Protocol string
	Text     string
}

// Stats summarizes one Parse call. Cached marks results served from a
// parse cache.
type Stats struct {
	Candidates    int            `json:"candidates"`
	Rejected      int            `json:"rejected"`
	Duplicates    int            `json:"duplicates"`
	Links         map[string]int `json:"links"`
	Subscriptions int            `json:"subscriptions"`
	Base64        bool           `json:"base64"`
	Cached        bool           `json:"cached"`
	Duration      time.Duration  `json:"duration"`
}

// Result holds the links found in one document. Subscriptions are discovery
// hints and are never mixed into Links.
type Result struct {
	Links         []Link `json:"links"`
	Subscriptions []Link `json:"subscriptions"`
	Stats         Stats  `json:"stats"`
}

// DocumentParser is implemented by Parser and Cached.
type DocumentParser interface {
	Parse(content string) Result
}

// Recorder receives per-call statistics, typically for metrics.
type Recorder interface {
	RecordParse(stats Stats)
}

func (r Result) clone() Result {
	out := Result{
		Links:         append([]Link(nil), r.Links...),
		Subscriptions: append([]Link(nil), r.Subscriptions...),
		Stats:         r.Stats,
	}
	if r.Stats.Links != nil {
		out.Stats.Links = make(map[string]int, len(r.Stats.Links))
		for k, v := range r.Stats.Links {
			out.Stats.Links[k] = v
		}
	}
	if out.Links == nil {
		out.Links = []Link{}
	}
	if out.Subscriptions == nil {
		out.Subscriptions = []Link{}
	}
	return out
}
