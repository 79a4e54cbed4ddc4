package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

// EnvPrefix 是环境变量前缀，例如 FREECONFIG_LOG_LEVEL。
const EnvPrefix = "FREECONFIG"

// Load 读取配置：默认值 < 配置文件 < 环境变量。
// path 为空时在当前目录与 /etc/freeconfig/ 查找 config.yaml，找不到不算错误。
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/freeconfig/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 列表类配置需要显式绑定，逗号分隔
	for _, key := range []string{"parser.protocols", "parser.junk_phrases", "collect.sources"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Parser.Protocols = splitList(cfg.Parser.Protocols)
	cfg.Parser.JunkPhrases = splitList(cfg.Parser.JunkPhrases)
	cfg.Collect.Sources = splitList(cfg.Collect.Sources)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)

	v.SetDefault("parser.protocols", protocol.DefaultActive())
	v.SetDefault("parser.junk_phrases", []string{})

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.cleanup_interval", "5m")

	v.SetDefault("fetch.timeout", "20s")
	v.SetDefault("fetch.max_bytes", 8<<20)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.initial_interval", "500ms")
	v.SetDefault("fetch.max_interval", "5s")
	v.SetDefault("fetch.strip_html", true)
	v.SetDefault("fetch.user_agent", "freeconfig/1.0")
	v.SetDefault("fetch.concurrency", 8)

	v.SetDefault("http.addr", "127.0.0.1:8080")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.max_body_bytes", 4<<20)
	v.SetDefault("http.rate_limit", 120)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "freeconfig")

	v.SetDefault("collect.sources", []string{})
	v.SetDefault("collect.schedule", "")
}

// splitList 兼容环境变量里的 "a,b" 写法，并去掉空白项。
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
