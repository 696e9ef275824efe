package dashboard_config

import (
	"time"

	"github.com/NordCoder/sitestatus/internal/domain/project"
	"github.com/NordCoder/sitestatus/internal/obs"
	"github.com/NordCoder/sitestatus/internal/outbox"
	pg "github.com/NordCoder/sitestatus/internal/repository/postgres"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

func (a App) IsProduction() bool { return a.Env == "production" }

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	GRPCAddr        string        `mapstructure:"grpc_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type DB struct {
	// Driver is "postgres" or "sqlite"; for sqlite DSN is a file path.
	Driver    string `mapstructure:"driver"`
	pg.Config `mapstructure:",squash"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Kafka struct {
	Enable  bool     `mapstructure:"enable"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Admin struct {
	// TokenHash is a bcrypt hash of the X-Admin-Token value; empty disables the check.
	TokenHash string `mapstructure:"token_hash"`
}

type Preview struct {
	MaxRedirects        int           `mapstructure:"max_redirects"`
	UserAgent           string        `mapstructure:"user_agent"`
	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
	RedirectDelayMin    time.Duration `mapstructure:"redirect_delay_min"`
	RedirectDelayJitter time.Duration `mapstructure:"redirect_delay_jitter"`
	WaitForFullLoad     bool          `mapstructure:"wait_for_full_load"`
	LoadTimeout         time.Duration `mapstructure:"load_timeout"`
	CacheSeconds        int           `mapstructure:"cache_seconds"`
	MaxBodyBytes        int64         `mapstructure:"max_body_bytes"`
}

type Probe struct {
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRedirects int           `mapstructure:"max_redirects"`
}

type Config struct {
	App      App               `mapstructure:"app"`
	Server   Server            `mapstructure:"server"`
	DB       DB                `mapstructure:"db"`
	OTEL     OTEL              `mapstructure:"otel"`
	Log      Log               `mapstructure:"log"`
	Kafka    Kafka             `mapstructure:"kafka"`
	Outbox   outbox.Config     `mapstructure:"outbox"`
	Admin    Admin             `mapstructure:"admin"`
	Preview  Preview           `mapstructure:"preview"`
	Probe    Probe             `mapstructure:"probe"`
	Projects []project.Project `mapstructure:"projects"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
