package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source: %s returned HTTP %d", e.URL, e.Code)
}

// RetryConfig 控制抓取重试策略。
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryConfig 返回默认重试配置。
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
	}
}

// normalizeRetryConfig 填补缺省值。MaxRetries 为负表示不重试。
func normalizeRetryConfig(cfg RetryConfig) RetryConfig {
	def := DefaultRetryConfig()
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return cfg
}

// isRetryable treats transport failures, 429 and 5xx as transient.
func isRetryable(err error) bool {
	if errors.Is(err, ErrTooLarge) || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	return true
}

func (l *Loader) fetch(ctx context.Context, url string) (string, error) {
	cfg := normalizeRetryConfig(l.opts.Retry)
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.InitialInterval
	policy.MaxInterval = cfg.MaxInterval
	policy.Multiplier = cfg.Multiplier
	policy.MaxElapsedTime = 0

	var content string
	op := func() error {
		body, err := l.fetchOnce(ctx, url)
		if err != nil {
			if !isRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		content = body
		return nil
	}
	notify := func(err error, wait time.Duration) {
		l.logger.Warn("fetch failed, retrying", "url", url, "error", err, "wait", wait)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(cfg.MaxRetries)), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return content, nil
}

func (l *Loader) fetchOnce(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	if l.opts.UserAgent != "" {
		req.Header.Set("User-Agent", l.opts.UserAgent)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: url, Code: resp.StatusCode}
	}
	content, err := readLimited(resp.Body, l.opts.MaxBytes)
	if err != nil {
		return "", err
	}
	if l.opts.StripHTML && strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "text/html") {
		content = stripHTML(content)
	}
	return content, nil
}
