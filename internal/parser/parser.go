// 文件路径: internal/parser/parser.go
// 模块说明: 解析编排器，依次执行直接提取、base64 解码与结构化提取，合并结果并按链接去重。
package parser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

// Parser turns a document into validated links. It holds no mutable state
// and is safe for concurrent use.
type Parser struct {
	registry  *protocol.Registry
	segmenter *Segmenter
	logger    *slog.Logger
	recorder  Recorder
	phrases   []string
}

// Option customizes a Parser.
type Option func(*Parser)

// WithLogger sets the logger for debug notes about discarded input.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithJunkPhrases appends phrases to the default spam list.
func WithJunkPhrases(phrases ...string) Option {
	return func(p *Parser) {
		p.phrases = append(p.phrases, phrases...)
	}
}

// WithRecorder reports statistics for every Parse call.
func WithRecorder(r Recorder) Option {
	return func(p *Parser) {
		p.recorder = r
	}
}

// New builds a parser over an explicit registry.
func New(reg *protocol.Registry, opts ...Option) *Parser {
	p := &Parser{
		registry: reg,
		logger:   slog.Default(),
		phrases:  DefaultJunkPhrases(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.segmenter = NewSegmenter(reg, NewJunkTrimmer(p.phrases), p.logger)
	return p
}

// Registry returns the registry the parser validates against.
func (p *Parser) Registry() *protocol.Registry {
	return p.registry
}

// ParseContent returns the deduplicated links found in content.
func (p *Parser) ParseContent(content string) []Link {
	return p.Parse(content).Links
}

// Parse runs every extraction strategy and merges their output:
//
//  1. direct segmentation of the raw text
//  2. one base64 layer, then direct and structured extraction of the result
//  3. Clash, sing-box and generic JSON extraction of the raw text
//
// The first occurrence of a link wins. Subscriptions are kept apart.
func (p *Parser) Parse(content string) Result {
	start := time.Now()
	r := newRun(p)

	r.guard("direct", func() { r.direct(content) })
	if decoded, ok := MaybeDecodeBase64(content, p.registry); ok {
		r.stats.Base64 = true
		r.guard("base64", func() {
			r.direct(decoded)
			r.structured(decoded)
		})
	}
	r.guard("structured", func() { r.structured(content) })

	res := r.result()
	res.Stats.Duration = time.Since(start)
	if p.recorder != nil {
		p.recorder.RecordParse(res.Stats)
	}
	return res
}

type extractor struct {
	name string
	fn   func(string) ([]Candidate, error)
}

var extractors = []extractor{
	{"clash", ExtractClash},
	{"singbox", ExtractSingBox},
	{"json", ExtractJSON},
}

// run is the per-call accumulator.
type run struct {
	p         *Parser
	links     []Link
	subs      []Link
	seenLinks map[string]struct{}
	seenSubs  map[string]struct{}
	stats     Stats
}

func newRun(p *Parser) *run {
	return &run{
		p:         p,
		seenLinks: make(map[string]struct{}),
		seenSubs:  make(map[string]struct{}),
		stats:     Stats{Links: make(map[string]int)},
	}
}

// guard keeps one failing strategy from taking the others down.
func (r *run) guard(strategy string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.p.logger.Error("parse strategy panicked", "strategy", strategy, "error", fmt.Sprint(rec))
		}
	}()
	fn()
}

func (r *run) direct(text string) {
	for _, candidate := range r.p.segmenter.Segment(text) {
		r.accept(candidate)
	}
}

func (r *run) structured(text string) {
	for _, ex := range extractors {
		candidates, err := ex.fn(text)
		if err != nil {
			r.p.logger.Debug("structured extraction failed", "extractor", ex.name, "error", err)
			continue
		}
		for _, c := range candidates {
			if c.Protocol == protocol.Subscription {
				r.subscription(c.Text)
				continue
			}
			r.direct(c.Text)
		}
	}
}

func (r *run) accept(candidate string) {
	r.stats.Candidates++
	name, ok := r.p.registry.Match(candidate)
	if !ok {
		r.stats.Rejected++
		return
	}
	v, _ := r.p.registry.Validator(name)
	link := v.Clean(candidate)
	if _, dup := r.seenLinks[link]; dup {
		r.stats.Duplicates++
		return
	}
	r.seenLinks[link] = struct{}{}
	r.links = append(r.links, Link{Protocol: name, Link: link})
	r.stats.Links[name]++
}

func (r *run) subscription(u string) {
	if _, dup := r.seenSubs[u]; dup {
		return
	}
	r.seenSubs[u] = struct{}{}
	r.subs = append(r.subs, Link{Protocol: protocol.Subscription, Link: u})
	r.stats.Subscriptions++
}

func (r *run) result() Result {
	links := r.links
	if links == nil {
		links = []Link{}
	}
	subs := r.subs
	if subs == nil {
		subs = []Link{}
	}
	return Result{Links: links, Subscriptions: subs, Stats: r.stats}
}
