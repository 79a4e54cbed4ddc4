// 文件路径: internal/api/router.go
// 模块说明: 组装 chi 路由：健康检查、解析接口、协议列表、定时采集快照与 Prometheus 指标。
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vpnclashfa-backup/freeconfig/internal/api/handler"
	"github.com/vpnclashfa-backup/freeconfig/internal/api/middleware"
	"github.com/vpnclashfa-backup/freeconfig/internal/config"
	"github.com/vpnclashfa-backup/freeconfig/internal/parser"
	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Parser   parser.DocumentParser
	Registry *protocol.Registry
	// Subset builds parsers for ?protocols=; nil disables filtering.
	Subset handler.SubsetBuilder
	// Snapshot backs /v1/links; nil means no scheduled collection.
	Snapshot handler.Snapshot
	// Metrics registry; nil disables /metrics and request metrics.
	Metrics *prometheus.Registry
}

// NewRouter wires every endpoint.
func NewRouter(logger *slog.Logger, deps Deps, httpCfg config.HTTPConfig, metricsCfg config.MetricsConfig) http.Handler {
	if deps.Parser == nil {
		panic("router requires a parser")
	}
	if deps.Registry == nil {
		panic("router requires a protocol registry")
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)

	metricsEnabled := metricsCfg.Enabled && deps.Metrics != nil
	if metricsEnabled {
		mCfg := middleware.DefaultMetricsConfig()
		if metricsCfg.Namespace != "" {
			mCfg.Namespace = metricsCfg.Namespace
		}
		r.Use(middleware.NewMetrics(deps.Metrics, mCfg).Middleware())
	}

	r.Use(
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: 2 * time.Second,
			SkipPaths:     []string{"/health", "/healthz", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		chiMiddleware.Compress(5),
	)

	health := func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
	r.Get("/healthz", health)
	// Alias for Docker health check
	r.Get("/health", health)

	if metricsEnabled {
		metricsHandler := promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{Registry: deps.Metrics})
		if metricsCfg.Token != "" {
			r.With(middleware.MetricsGuard(metricsCfg.Token)).Handle("/metrics", metricsHandler)
		} else {
			r.Handle("/metrics", metricsHandler)
		}
	}

	r.Route("/v1", func(v1 chi.Router) {
		parse := v1.With(middleware.BodyLimit(httpCfg.MaxBodyBytes))
		if httpCfg.RateLimit > 0 {
			parse = parse.With(middleware.RateLimit(middleware.RateLimitConfig{Limit: httpCfg.RateLimit, Window: time.Minute}))
		}
		parse.Method(http.MethodPost, "/parse", handler.NewParseHandler(deps.Parser, deps.Registry, deps.Subset))
		v1.Get("/protocols", handler.ProtocolsHandler(deps.Registry))
		v1.Get("/links", handler.LinksHandler(deps.Snapshot))
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		logger.Debug("unmapped route hit", "method", req.Method, "path", req.URL.Path)
		http.NotFound(w, req)
	})

	return r
}
