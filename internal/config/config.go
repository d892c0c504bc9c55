package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "config.yaml"

// envPrefix namespaces environment overrides, e.g. WHITELIST_DATABASE_DSN.
const envPrefix = "WHITELIST"

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	JWT      JWTConfig      `mapstructure:"jwt" yaml:"jwt"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Flash    FlashConfig    `mapstructure:"flash" yaml:"flash"`
	Admin    AdminConfig    `mapstructure:"admin" yaml:"admin"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host" yaml:"host" default:"0.0.0.0"`
	Port         int           `mapstructure:"port" yaml:"port" default:"8080"`
	Mode         string        `mapstructure:"mode" yaml:"mode" default:"release"` // gin mode: debug, release or test.
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" default:"15s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" default:"30s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn" yaml:"dsn" default:"file:data/whitelist.db"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns" default:"25"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns" default:"25"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime" default:"30m"`
	TimeZone        string        `mapstructure:"time_zone" yaml:"time_zone"`
}

// JWTConfig contains admin token settings.
type JWTConfig struct {
	Secret string        `mapstructure:"secret" yaml:"secret"`
	Expiry time.Duration `mapstructure:"expiry" yaml:"expiry" default:"24h"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level" default:"info"`
	Format     string `mapstructure:"format" yaml:"format" default:"text"` // text or json.
	File       string `mapstructure:"file" yaml:"file"`                    // Optional rotating log file.
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" default:"50"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" default:"5"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days" default:"30"`
}

// Flash drivers.
const (
	FlashDriverCookie = "cookie"
	FlashDriverRedis  = "redis"
)

// FlashConfig selects where flash messages live between a redirect and the next page.
type FlashConfig struct {
	Driver        string        `mapstructure:"driver" yaml:"driver" default:"cookie"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr" default:"127.0.0.1:6379"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl" default:"5m"`
}

// AdminConfig controls the admin route group.
type AdminConfig struct {
	RoutePrefix string `mapstructure:"route_prefix" yaml:"route_prefix" default:"/v0/admin"`
	// FallbackRedirect is used for browser redirects when the request has no Referer.
	FallbackRedirect string `mapstructure:"fallback_redirect" yaml:"fallback_redirect" default:"/v0/admin/birthdate-ban-whitelist/view"`
	// UpdateSuccessOK makes a successful package update answer 200 instead of 500.
	UpdateSuccessOK bool `mapstructure:"update_success_ok" yaml:"update_success_ok"`
	SecureCookies   bool `mapstructure:"secure_cookies" yaml:"secure_cookies"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Disabled bool   `mapstructure:"disabled" yaml:"disabled"`
	Path     string `mapstructure:"path" yaml:"path" default:"/metrics"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	_ = defaults.Set(&cfg)
	return cfg
}

// ResolveConfigPath returns the configured path or the default one.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return trimmed
	}
	return DefaultConfigPath
}

// Load reads the YAML file at path, applies WHITELIST_* environment overrides and fills defaults.
// A missing file is not an error; the defaults and environment are used instead.
func Load(path string) (Config, error) {
	var cfg Config
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	path = ResolveConfigPath(path)
	if _, errStat := os.Stat(path); errStat == nil {
		v.SetConfigFile(path)
		if errRead := v.ReadInConfig(); errRead != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	} else if !errors.Is(errStat, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: stat %s: %w", path, errStat)
	}

	if errUnmarshal := v.Unmarshal(&cfg); errUnmarshal != nil {
		return cfg, fmt.Errorf("config: decode: %w", errUnmarshal)
	}
	if errDefaults := defaults.Set(&cfg); errDefaults != nil {
		return cfg, fmt.Errorf("config: defaults: %w", errDefaults)
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration values the service cannot run with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	switch c.Flash.Driver {
	case FlashDriverCookie, FlashDriverRedis:
	default:
		return fmt.Errorf("config: unknown flash.driver %q", c.Flash.Driver)
	}
	if !strings.HasPrefix(c.Admin.RoutePrefix, "/") {
		return fmt.Errorf("config: admin.route_prefix must start with /")
	}
	return nil
}

// WriteExample writes cfg as YAML to path, creating parent directories.
func WriteExample(path string, cfg Config) error {
	data, errMarshal := yaml.Marshal(cfg)
	if errMarshal != nil {
		return fmt.Errorf("config: encode: %w", errMarshal)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
			return fmt.Errorf("config: create dir: %w", errMkdir)
		}
	}
	if errWrite := os.WriteFile(path, data, 0o600); errWrite != nil {
		return fmt.Errorf("config: write %s: %w", path, errWrite)
	}
	return nil
}

// bindEnvKeys registers every known key so AutomaticEnv works with Unmarshal.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.host", "server.port", "server.mode", "server.read_timeout", "server.write_timeout",
		"database.dsn", "database.max_open_conns", "database.max_idle_conns", "database.conn_max_lifetime", "database.time_zone",
		"jwt.secret", "jwt.expiry",
		"logging.level", "logging.format", "logging.file", "logging.max_size_mb", "logging.max_backups", "logging.max_age_days",
		"flash.driver", "flash.redis_addr", "flash.redis_password", "flash.redis_db", "flash.ttl",
		"admin.route_prefix", "admin.fallback_redirect", "admin.update_success_ok", "admin.secure_cookies",
		"metrics.disabled", "metrics.path",
	} {
		_ = v.BindEnv(key)
	}
}
