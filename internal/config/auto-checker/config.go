package auto_checker_config

import (
	"time"

	"github.com/NordCoder/sitestatus/internal/obs"
)

type Dashboard struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AutoCheck struct {
	Enabled                bool          `mapstructure:"enabled"`
	Tick                   time.Duration `mapstructure:"tick"`
	StaleWindow            time.Duration `mapstructure:"stale_window"`
	RequestDelay           time.Duration `mapstructure:"request_delay"`
	Constrained            bool          `mapstructure:"constrained"`
	ReducedFrequencyFactor int           `mapstructure:"reduced_frequency_factor"`
}

type KafkaIn struct {
	Enable  bool     `mapstructure:"enable"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	Dashboard Dashboard `mapstructure:"dashboard"`
	AutoCheck AutoCheck `mapstructure:"auto_check"`
	Kafka     KafkaIn   `mapstructure:"kafka"`
	Server    Server    `mapstructure:"server"`
	Log       Log       `mapstructure:"log"`
	OTEL      OTEL      `mapstructure:"otel"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{Level: c.Log.Level, Pretty: c.Log.Pretty, App: "sitestatus/auto-checker"}
}

func (c *Config) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      c.OTEL.Enable,
		Endpoint:    c.OTEL.OTLPEndpoint,
		ServiceName: c.OTEL.ServiceName,
		SampleRatio: c.OTEL.SampleRatio,
	}
}
