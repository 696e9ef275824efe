package auto_checker_config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("dashboard.base_url", "http://localhost:8080")
	// Generous: one /report call may itself wait on a 10s probe.
	v.SetDefault("dashboard.timeout", "30s")

	v.SetDefault("auto_check.enabled", true)
	v.SetDefault("auto_check.tick", "1m")
	v.SetDefault("auto_check.stale_window", "45m")
	v.SetDefault("auto_check.request_delay", "200ms")
	v.SetDefault("auto_check.constrained", false)
	v.SetDefault("auto_check.reduced_frequency_factor", 3)

	v.SetDefault("kafka.enable", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.topic", "sitestatus.status.logged")
	v.SetDefault("kafka.group_id", "auto-checker")

	v.SetDefault("server.metrics_addr", ":8085")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "auto-checker")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Dashboard.BaseURL == "" {
		return nil, errors.New("dashboard.base_url is empty")
	}
	if cfg.AutoCheck.ReducedFrequencyFactor < 1 {
		cfg.AutoCheck.ReducedFrequencyFactor = 1
	}
	return &cfg, nil
}
