package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Server struct {
	Host              string        `mapstructure:"host"`
	Port              string        `mapstructure:"port"`
	StaticDir         string        `mapstructure:"static_dir"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address built from Host and Port.
func (s Server) Addr() string { return net.JoinHostPort(s.Host, s.Port) }

type Refresh struct {
	Interval time.Duration `mapstructure:"interval"`
}

type HTTP struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Exchange configures one upstream price API.
type Exchange struct {
	Enabled              bool          `mapstructure:"enabled"`
	Name                 string        `mapstructure:"name"`
	BaseURL              string        `mapstructure:"base_url"`
	MaxRequestsPerMinute int           `mapstructure:"max_requests_per_minute"`
	Burst                int           `mapstructure:"burst"`
	MinRequestInterval   time.Duration `mapstructure:"min_request_interval"`
}

type Log struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	OutputFile  string `mapstructure:"output_file"`
	Environment string `mapstructure:"environment"`
}

// Redis configures the optional snapshot mirror. An empty Addr disables it.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	Channel  string        `mapstructure:"channel"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type Config struct {
	Server   Server   `mapstructure:"server"`
	Refresh  Refresh  `mapstructure:"refresh"`
	HTTP     HTTP     `mapstructure:"http"`
	Coinbase Exchange `mapstructure:"coinbase"`
	Kraken   Exchange `mapstructure:"kraken"`
	Log      Log      `mapstructure:"log"`
	Redis    Redis    `mapstructure:"redis"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 20*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("refresh.interval", 3*time.Second)

	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.user_agent", "quotesnap/1.0")

	v.SetDefault("coinbase.enabled", true)
	v.SetDefault("coinbase.name", "Coinbase")
	v.SetDefault("coinbase.base_url", "https://api.coinbase.com/v2/prices")
	v.SetDefault("coinbase.max_requests_per_minute", 0)
	v.SetDefault("coinbase.burst", 0)
	v.SetDefault("coinbase.min_request_interval", 0)

	v.SetDefault("kraken.enabled", true)
	v.SetDefault("kraken.name", "Kraken")
	v.SetDefault("kraken.base_url", "https://api.kraken.com/0/public")
	v.SetDefault("kraken.max_requests_per_minute", 0)
	v.SetDefault("kraken.burst", 0)
	v.SetDefault("kraken.min_request_interval", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "prod")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "quotesnap:snapshot")
	v.SetDefault("redis.channel", "quotesnap:snapshots")
	v.SetDefault("redis.ttl", 0)
}

// Load is Read followed by Validate. Startup fails fast on its error.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads configuration from, in increasing priority: defaults, a YAML
// file, a .env file and the process environment. path may be empty; then
// CONFIG_FILE is used, then ./config.yaml if present.
//
// Nested keys map to env vars with "." replaced by "_" (KRAKEN_BASE_URL).
// The listen address and interval also accept HOST, PORT and REFRESH_INTERVAL.
func Read(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v,
		[]string{"server.host", "HOST", "SERVER_HOST"},
		[]string{"server.port", "PORT", "SERVER_PORT"},
		[]string{"refresh.interval", "REFRESH_INTERVAL"},
	); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// bindEnv binds each key (first element) to the env names that follow it.
func bindEnv(v *viper.Viper, bindings ...[]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b...); err != nil {
			return fmt.Errorf("bind env %s: %w", b[0], err)
		}
	}
	return nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Host) == "" {
		errs = append(errs, errors.New("HOST is required"))
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("PORT is required"))
	} else if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Server.Port))
	}
	if c.Refresh.Interval <= 0 {
		errs = append(errs, fmt.Errorf("refresh.interval must be positive, got %s", c.Refresh.Interval))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout))
	}
	if !c.Coinbase.Enabled && !c.Kraken.Enabled {
		errs = append(errs, errors.New("at least one of coinbase or kraken must be enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
