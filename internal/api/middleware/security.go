// 文件路径: internal/api/middleware/security.go
// 模块说明: 限流与请求体大小限制，保护解析接口不被大文本或高频请求拖垮。
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter 固定窗口的内存限流器
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string]*rateLimitEntry
	limit    int
	window   time.Duration
	now      func() time.Time
	sweepAt  time.Time
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter 创建限流器；过期条目在后续请求中顺带清理。
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string]*rateLimitEntry),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow 检查是否允许请求，返回剩余次数与窗口重置时间。
func (rl *RateLimiter) Allow(key string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.After(rl.sweepAt) {
		for k, entry := range rl.requests {
			if now.After(entry.resetAt) {
				delete(rl.requests, k)
			}
		}
		rl.sweepAt = now.Add(rl.window)
	}

	entry, ok := rl.requests[key]
	if !ok || now.After(entry.resetAt) {
		entry = &rateLimitEntry{resetAt: now.Add(rl.window)}
		rl.requests[key] = entry
	}
	if entry.count >= rl.limit {
		return false, 0, entry.resetAt
	}
	entry.count++
	return true, rl.limit - entry.count, entry.resetAt
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Limit  int           // 每个窗口的请求数
	Window time.Duration // 时间窗口
}

// RateLimit 按客户端 IP 限流。
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	if config.Limit <= 0 {
		config.Limit = 60
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	limiter := NewRateLimiter(config.Limit, config.Window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, resetAt := limiter.Allow(clientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())+1))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit 限制请求体大小，超限时读取会返回 *http.MaxBytesError。
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 4 << 20
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP 依赖 chi RealIP 已改写 RemoteAddr。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
