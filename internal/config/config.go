package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrNoProtocols 表示启用的协议集合为空。
var ErrNoProtocols = errors.New("config: parser.protocols must name at least one protocol")

// Config 汇总应用的全部配置。
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Parser  ParserConfig  `mapstructure:"parser"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Collect CollectConfig `mapstructure:"collect"`
}

// LogConfig 定义日志配置。
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// ParserConfig 定义启用的协议与额外的垃圾短语。
type ParserConfig struct {
	Protocols   []string `mapstructure:"protocols"`
	JunkPhrases []string `mapstructure:"junk_phrases"`
}

// CacheConfig 定义解析结果缓存。
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// FetchConfig 定义远程来源的抓取行为。
type FetchConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxBytes        int64         `mapstructure:"max_bytes"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	StripHTML       bool          `mapstructure:"strip_html"`
	UserAgent       string        `mapstructure:"user_agent"`
	Concurrency     int           `mapstructure:"concurrency"`
}

// HTTPConfig 定义 HTTP 服务配置。
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	// RateLimit 是 /v1/parse 每个 IP 每分钟的请求上限，0 表示不限流。
	RateLimit int `mapstructure:"rate_limit"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
	Textfile  string `mapstructure:"textfile"`
}

// CollectConfig 定义定时采集的来源与 cron 表达式。
type CollectConfig struct {
	Sources  []string `mapstructure:"sources"`
	Schedule string   `mapstructure:"schedule"`
}

// cronSpec matches the parser used by job.Scheduler.
var cronSpec = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate 检查配置是否可用。
func (c *Config) Validate() error {
	active := 0
	for _, name := range c.Parser.Protocols {
		if strings.TrimSpace(name) != "" {
			active++
		}
	}
	if active == 0 {
		return ErrNoProtocols
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("config: fetch.concurrency must be positive, got %d", c.Fetch.Concurrency)
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("config: fetch.max_bytes must be positive, got %d", c.Fetch.MaxBytes)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: http.max_body_bytes must be positive, got %d", c.HTTP.MaxBodyBytes)
	}
	if spec := strings.TrimSpace(c.Collect.Schedule); spec != "" {
		if _, err := cronSpec.Parse(spec); err != nil {
			return fmt.Errorf("config: collect.schedule %q: %w", spec, err)
		}
	}
	return nil
}

func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
