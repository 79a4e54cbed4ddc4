package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vpnclashfa-backup/freeconfig/internal/cache"
	"github.com/vpnclashfa-backup/freeconfig/internal/collect"
	"github.com/vpnclashfa-backup/freeconfig/internal/config"
	"github.com/vpnclashfa-backup/freeconfig/internal/metrics"
	"github.com/vpnclashfa-backup/freeconfig/internal/parser"
	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
	"github.com/vpnclashfa-backup/freeconfig/internal/source"
)

// app is the object graph shared by extract and serve.
type app struct {
	registry  *protocol.Registry
	parser    parser.DocumentParser
	metrics   *prometheus.Registry
	loader    *source.Loader
	collector *collect.Collector
	// subset builds uncached parsers for a narrower protocol set; cached
	// results are keyed by content only and must not be shared across sets.
	subset func(names []string) parser.DocumentParser
}

// newApp builds the graph. protocols, when non-empty, replaces the
// configured active set.
func newApp(cfg *config.Config, logger *slog.Logger, protocols []string) *app {
	active := cfg.Parser.Protocols
	if len(protocols) > 0 {
		active = protocols
	}

	a := &app{metrics: prometheus.NewRegistry()}
	opts := []parser.Option{
		parser.WithLogger(logger),
		parser.WithJunkPhrases(cfg.Parser.JunkPhrases...),
	}
	if cfg.Metrics.Enabled {
		a.metrics.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, parser.WithRecorder(metrics.NewCollector(a.metrics, cfg.Metrics.Namespace)))
	}

	a.registry = protocol.NewRegistry(active, protocol.WithLogger(logger))
	base := parser.New(a.registry, opts...)
	a.parser = base
	if cfg.Cache.Enabled {
		store := cache.NewStore(cache.Options{
			DefaultTTL:      cfg.Cache.TTL,
			CleanupInterval: cfg.Cache.CleanupInterval,
			Prefix:          "freeconfig",
		})
		a.parser = parser.NewCached(base, store, cfg.Cache.TTL)
	}
	a.subset = func(names []string) parser.DocumentParser {
		return parser.New(protocol.NewRegistry(names, protocol.WithLogger(logger)), opts...)
	}

	a.loader = source.NewLoader(source.Options{
		Timeout:   cfg.Fetch.Timeout,
		MaxBytes:  cfg.Fetch.MaxBytes,
		StripHTML: cfg.Fetch.StripHTML,
		UserAgent: cfg.Fetch.UserAgent,
		Retry: source.RetryConfig{
			MaxRetries:      cfg.Fetch.MaxRetries,
			InitialInterval: cfg.Fetch.InitialInterval,
			MaxInterval:     cfg.Fetch.MaxInterval,
		},
		Logger: logger,
	})
	a.collector = collect.New(a.loader, a.parser,
		collect.WithConcurrency(cfg.Fetch.Concurrency),
		collect.WithLogger(logger),
	)
	return a
}
