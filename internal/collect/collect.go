// 文件路径: internal/collect/collect.go
// 模块说明: 并发读取多个来源，逐个解析后按链接合并去重，失败的来源只记录不打断整体流程。
package collect

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vpnclashfa-backup/freeconfig/internal/parser"
	"github.com/vpnclashfa-backup/freeconfig/internal/source"
)

// Loader resolves a reference into documents. *source.Loader implements it.
type Loader interface {
	Load(ctx context.Context, ref string) ([]source.Document, error)
}

// Collector fans out over sources and merges what the parser finds.
type Collector struct {
	loader      Loader
	parser      parser.DocumentParser
	concurrency int
	logger      *slog.Logger
}

// Option customizes a Collector.
type Option func(*Collector)

// WithConcurrency bounds the number of sources loaded at once.
func WithConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the collector logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a Collector.
func New(loader Loader, p parser.DocumentParser, opts ...Option) *Collector {
	c := &Collector{
		loader:      loader,
		parser:      p,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type sourceResult struct {
	report SourceReport
	parsed []parser.Result
}

// Run loads and parses every ref. Links are merged in ref order, then
// document order, keeping the first occurrence. Only cancellation of ctx
// fails the run; a broken source is recorded in its SourceReport.
func (c *Collector) Run(ctx context.Context, refs []string) (*Report, error) {
	if len(refs) == 0 {
		return nil, errors.New("collect: no sources given")
	}
	started := time.Now()
	results := make([]sourceResult, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			results[i] = c.collectOne(gctx, ref)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Links:         []parser.Link{},
		Subscriptions: []parser.Link{},
		Sources:       make([]SourceReport, 0, len(refs)),
		StartedAt:     started,
	}
	seenLinks := make(map[string]struct{})
	seenSubs := make(map[string]struct{})
	for _, res := range results {
		for _, parsed := range res.parsed {
			for _, l := range parsed.Links {
				if _, dup := seenLinks[l.Link]; dup {
					continue
				}
				seenLinks[l.Link] = struct{}{}
				report.Links = append(report.Links, l)
			}
			for _, s := range parsed.Subscriptions {
				if _, dup := seenSubs[s.Link]; dup {
					continue
				}
				seenSubs[s.Link] = struct{}{}
				report.Subscriptions = append(report.Subscriptions, s)
			}
		}
		report.Sources = append(report.Sources, res.report)
	}
	report.Duration = time.Since(started)
	c.logger.Info("collection finished",
		"sources", len(refs),
		"failed", report.Failed(),
		"links", len(report.Links),
		"subscriptions", len(report.Subscriptions),
		"elapsed", report.Duration,
	)
	return report, nil
}

func (c *Collector) collectOne(ctx context.Context, ref string) sourceResult {
	start := time.Now()
	out := sourceResult{report: SourceReport{Ref: ref}}
	docs, err := c.loader.Load(ctx, ref)
	if err != nil {
		c.logger.Warn("source failed", "source", ref, "error", err)
		out.report.Error = err.Error()
		out.report.Duration = time.Since(start)
		return out
	}
	out.report.Documents = len(docs)
	for _, doc := range docs {
		res := c.parser.Parse(doc.Content)
		out.parsed = append(out.parsed, res)
		out.report.Links += len(res.Links)
		out.report.Subscriptions += len(res.Subscriptions)
		c.logger.Debug("document parsed", "source", ref, "document", doc.Name, "links", len(res.Links))
	}
	out.report.Duration = time.Since(start)
	return out
}
