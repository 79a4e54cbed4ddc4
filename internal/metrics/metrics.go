// 文件路径: internal/metrics/metrics.go
// 模块说明: 解析流水线的 Prometheus 指标，实现 parser.Recorder。
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vpnclashfa-backup/freeconfig/internal/parser"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "freeconfig"

// Collector records parse statistics.
type Collector struct {
	runs          prometheus.Counter
	candidates    *prometheus.CounterVec
	links         *prometheus.CounterVec
	subscriptions prometheus.Counter
	base64Runs    prometheus.Counter
	cacheHits     prometheus.Counter
	duration      prometheus.Histogram
}

var _ parser.Recorder = (*Collector)(nil)

// NewCollector registers the parser metrics on reg.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)
	return &Collector{
		runs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "runs_total",
			Help:      "Documents parsed.",
		}),
		candidates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "candidates_total",
			Help:      "Link candidates seen, by outcome.",
		}, []string{"result"}),
		links: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "links_total",
			Help:      "Unique links accepted, by protocol.",
		}, []string{"protocol"}),
		subscriptions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "subscriptions_total",
			Help:      "Subscription URLs discovered.",
		}),
		base64Runs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "base64_documents_total",
			Help:      "Documents that carried a base64 layer.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "cache_hits_total",
			Help:      "Documents served from the parse cache; also counted in runs_total.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "duration_seconds",
			Help:      "Time spent parsing one document.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}

// RecordParse implements parser.Recorder.
func (c *Collector) RecordParse(stats parser.Stats) {
	c.runs.Inc()
	accepted := 0
	for name, n := range stats.Links {
		c.links.WithLabelValues(name).Add(float64(n))
		accepted += n
	}
	c.candidates.WithLabelValues("accepted").Add(float64(accepted))
	c.candidates.WithLabelValues("rejected").Add(float64(stats.Rejected))
	c.candidates.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
	c.subscriptions.Add(float64(stats.Subscriptions))
	if stats.Base64 {
		c.base64Runs.Inc()
	}
	if stats.Cached {
		c.cacheHits.Inc()
	}
	c.duration.Observe(stats.Duration.Seconds())
}

// WriteTextfile dumps everything gathered by g in the node_exporter textfile
// format. Nothing is written when path is empty.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
