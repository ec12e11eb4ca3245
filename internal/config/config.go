// Package config loads runtime settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"ixadmin/internal/models"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// ConfigPathEnvVar points at an explicit YAML file.
	ConfigPathEnvVar = "CONFIG_PATH"

	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	// DefaultJWTSecret must be overridden in production.
	DefaultJWTSecret = "default-secret-change-me"
)

// DefaultConfigPaths are probed when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml", "/etc/ixadmin/config.yaml"}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Admin    AdminConfig    `koanf:"admin"`
	CORS     CORSConfig     `koanf:"cors"`
	Grafana  GrafanaConfig  `koanf:"grafana"`
	Zabbix   ZabbixConfig   `koanf:"zabbix"`
	Logging  LoggingConfig  `koanf:"logging"`
	Live     LiveConfig     `koanf:"live"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	Environment     string        `koanf:"environment"`
	BodyLimit       int64         `koanf:"body_limit"`
	RateLimit       float64       `koanf:"rate_limit"`
	RateBurst       int           `koanf:"rate_burst"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// URL is sqlite://<path>, mysql://<dsn>, or a bare sqlite path.
	URL   string `koanf:"url"`
	Debug bool   `koanf:"debug"`
	Seed  bool   `koanf:"seed"`
}

type AuthConfig struct {
	JWTSecret    string `koanf:"jwt_secret"`
	JWTExpiresIn string `koanf:"jwt_expires_in"`
}

type AdminConfig struct {
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

type CORSConfig struct {
	FrontendURL string   `koanf:"frontend_url"`
	Origins     []string `koanf:"origins"`
}

type GrafanaConfig struct {
	URL            string                `koanf:"url"`
	APIKey         string                `koanf:"api_key"`
	DatasourceUID  string                `koanf:"datasource_uid"`
	DatasourceType string                `koanf:"datasource_type"`
	Timeout        time.Duration         `koanf:"timeout"`
	DashboardTTL   time.Duration         `koanf:"dashboard_ttl"`
	TrafficQueries []models.TrafficQuery `koanf:"traffic_queries"`
}

// Configured reports whether the traffic proxy can reach Grafana.
func (g GrafanaConfig) Configured() bool {
	return g.URL != "" && g.APIKey != ""
}

type ZabbixConfig struct {
	URL       string `koanf:"url"`
	APIToken  string `koanf:"api_token"`
	HostGroup string `koanf:"host_group"`
}

func (z ZabbixConfig) Configured() bool {
	return z.URL != ""
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

type LiveConfig struct {
	Interval      time.Duration `koanf:"interval"`
	ProbeSchedule string        `koanf:"probe_schedule"`
}

// DefaultTrafficQueries are the Eth-Trunk1 counters on the two core
// switches. Each pair is received then sent.
func DefaultTrafficQueries() []models.TrafficQuery {
	return []models.TrafficQuery{
		{Group: "Applications", Host: "LVSB SW-01", Item: "Interface Eth-Trunk1(): Bits received", ItemTag: "interface: Eth-Trunk1", Direction: models.DirectionIn},
		{Group: "Applications", Host: "LVSB SW-01", Item: "Interface Eth-Trunk1(): Bits sent", ItemTag: "interface: Eth-Trunk1", Direction: models.DirectionOut},
		{Group: "Applications", Host: "MB2 SW-01", Item: "Interface Eth-Trunk1(EQX MB2 to NTT TRUNK): Bits received", ItemTag: "description: EQX MB2 to NTT TRUNK", Direction: models.DirectionIn},
		{Group: "Applications", Host: "MB2 SW-01", Item: "Interface Eth-Trunk1(EQX MB2 to NTT TRUNK): Bits sent", ItemTag: "description: EQX MB2 to NTT TRUNK", Direction: models.DirectionOut},
	}
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			Environment:     EnvDevelopment,
			BodyLimit:       10 << 20,
			RateLimit:       100,
			RateBurst:       200,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URL:  "sqlite://data/ixadmin.db",
			Seed: true,
		},
		Auth: AuthConfig{
			JWTSecret:    DefaultJWTSecret,
			JWTExpiresIn: "7d",
		},
		Admin: AdminConfig{
			Email:    "admin@mx-ix.com",
			Password: "admin123",
		},
		CORS: CORSConfig{
			FrontendURL: "http://localhost:5173",
			Origins:     []string{"*.vercel.app", "*.mx-ix.com"},
		},
		Grafana: GrafanaConfig{
			DatasourceUID:  "bezy0nzf8ykg0c",
			DatasourceType: "alexanderzobnin-zabbix-datasource",
			Timeout:        10 * time.Second,
			DashboardTTL:   30 * time.Second,
		},
		Zabbix: ZabbixConfig{
			HostGroup: "Applications",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Live: LiveConfig{
			Interval:      5 * time.Second,
			ProbeSchedule: "@every 1m",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if len(cfg.Grafana.TrafficQueries) == 0 {
		cfg.Grafana.TrafficQueries = DefaultTrafficQueries()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"port":                   "server.port",
	"node_env":               "server.environment",
	"rate_limit":             "server.rate_limit",
	"rate_burst":             "server.rate_burst",
	"database_url":           "database.url",
	"database_debug":         "database.debug",
	"seed_on_start":          "database.seed",
	"jwt_secret":             "auth.jwt_secret",
	"jwt_expires_in":         "auth.jwt_expires_in",
	"admin_email":            "admin.email",
	"admin_password":         "admin.password",
	"frontend_url":           "cors.frontend_url",
	"cors_origins":           "cors.origins",
	"grafana_url":            "grafana.url",
	"grafana_api_key":        "grafana.api_key",
	"grafana_datasource_uid": "grafana.datasource_uid",
	"grafana_timeout":        "grafana.timeout",
	"zabbix_url":             "zabbix.url",
	"zabbix_api_token":       "zabbix.api_token",
	"zabbix_host_group":      "zabbix.host_group",
	"log_level":              "logging.level",
	"log_format":             "logging.format",
	"live_interval":          "live.interval",
	"probe_schedule":         "live.probe_schedule",
}

// envTransformFunc maps known variables onto config paths and drops the
// rest so unrelated environment does not leak into the config tree.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var sliceConfigPaths = []string{"cors.origins"}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks the loaded configuration for values the server cannot
// run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Server.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("server.environment %q must be development, production or test", c.Server.Environment))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		errs = append(errs, errors.New("auth.jwt_secret must be changed in production"))
	}
	if _, err := ParseExpiry(c.Auth.JWTExpiresIn); err != nil {
		errs = append(errs, err)
	}
	for i, q := range c.Grafana.TrafficQueries {
		if q.Direction != models.DirectionIn && q.Direction != models.DirectionOut {
			errs = append(errs, fmt.Errorf("grafana.traffic_queries[%d].direction must be in or out", i))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool { return c.Server.Environment == EnvDevelopment }
func (c *Config) IsProduction() bool  { return c.Server.Environment == EnvProduction }

// TokenExpiry returns the parsed JWT lifetime. Validate has already
// rejected unparsable values.
func (c *Config) TokenExpiry() time.Duration {
	d, _ := ParseExpiry(c.Auth.JWTExpiresIn)
	return d
}

// AllowedOrigins is the CORS allow-list: the frontend, local dev servers,
// and configured extras.
func (c *Config) AllowedOrigins() []string {
	origins := []string{c.CORS.FrontendURL, "http://localhost:5173", "http://localhost:3000"}
	return append(origins, c.CORS.Origins...)
}

// ParseExpiry accepts Go durations and a whole-day form such as "7d".
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("auth.jwt_expires_in is required")
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("auth.jwt_expires_in %q is not a valid day count", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("auth.jwt_expires_in %q is not a valid duration", s)
	}
	return d, nil
}
