package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/courserate-backend/internal/data/cache"
	"github.com/yungbote/courserate-backend/internal/data/db"
	"github.com/yungbote/courserate-backend/internal/observability"
	"github.com/yungbote/courserate-backend/internal/platform/envutil"
)

const envDevelopment = "development"

type Config struct {
	Environment string
	Port        string

	JWTSecretKey   string
	AccessTokenTTL time.Duration
	CookieSecure   bool
	CORSOrigins    []string

	DB    db.Config
	Redis cache.RedisConfig

	MetricsEnabled bool
	MetricsAddr    string
	Otel           observability.OtelConfig

	AggregateMaxAttempts int
}

// fileConfig mirrors Config for the optional CONFIG_FILE. Env vars always win.
type fileConfig struct {
	Environment          string   `yaml:"environment"`
	Port                 string   `yaml:"port"`
	JWTSecretKey         string   `yaml:"jwt_secret_key"`
	AccessTokenTTL       int      `yaml:"access_token_ttl_seconds"`
	CookieSecure         bool     `yaml:"cookie_secure"`
	CORSOrigins          []string `yaml:"cors_allow_origins"`
	AggregateMaxAttempts int      `yaml:"aggregate_max_attempts"`

	DB struct {
		Driver     string `yaml:"driver"`
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		Name       string `yaml:"name"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"db"`

	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	Otel struct {
		Enabled      bool    `yaml:"enabled"`
		ServiceName  string  `yaml:"service_name"`
		Endpoint     string  `yaml:"endpoint"`
		Insecure     bool    `yaml:"insecure"`
		SamplerRatio float64 `yaml:"sampler_ratio"`
	} `yaml:"otel"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	path = strings.TrimSpace(path)
	if path == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func orString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

// LoadConfig reads CONFIG_FILE (if set) and then the environment.
func LoadConfig() (Config, error) {
	fc, err := loadFileConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	environment := envutil.String("APP_ENV", orString(fc.Environment, envDevelopment))
	cfg := Config{
		Environment:    environment,
		Port:           envutil.String("PORT", orString(fc.Port, "8080")),
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", fc.JWTSecretKey),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", time.Duration(orInt(fc.AccessTokenTTL, 86400))*time.Second),
		CookieSecure:   envutil.Bool("COOKIE_SECURE", fc.CookieSecure),
		CORSOrigins:    envutil.List("CORS_ALLOW_ORIGINS", fc.CORSOrigins),
		DB: db.Config{
			Driver:           strings.ToLower(envutil.String("DB_DRIVER", orString(fc.DB.Driver, db.DriverPostgres))),
			PostgresHost:     envutil.String("POSTGRES_HOST", orString(fc.DB.Host, "localhost")),
			PostgresPort:     envutil.String("POSTGRES_PORT", orString(fc.DB.Port, "5432")),
			PostgresUser:     envutil.String("POSTGRES_USER", orString(fc.DB.User, "postgres")),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", fc.DB.Password),
			PostgresName:     envutil.String("POSTGRES_NAME", orString(fc.DB.Name, "courserate")),
			SQLitePath:       envutil.String("SQLITE_PATH", fc.DB.SQLitePath),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 10),
		},
		Redis: cache.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", fc.Redis.Addr),
			Password: envutil.String("REDIS_PASSWORD", fc.Redis.Password),
			DB:       envutil.Int("REDIS_DB", fc.Redis.DB),
			TTL:      envutil.Seconds("COURSE_CACHE_TTL", time.Duration(orInt(fc.Redis.TTLSeconds, 300))*time.Second),
		},
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", fc.Metrics.Enabled),
		MetricsAddr:    envutil.String("METRICS_ADDR", orString(fc.Metrics.Addr, ":9090")),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", fc.Otel.Enabled),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", orString(fc.Otel.ServiceName, "courserate-api")),
			Environment: environment,
			Version:     envutil.String("APP_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", fc.Otel.Endpoint),
			Headers:     observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", fc.Otel.Insecure),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", orFloat(fc.Otel.SamplerRatio, 0.1)),
		},
		AggregateMaxAttempts: envutil.Int("AGGREGATE_MAX_ATTEMPTS", orInt(fc.AggregateMaxAttempts, 3)),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.JWTSecretKey == "" {
		if c.Environment != envDevelopment {
			return fmt.Errorf("JWT_SECRET_KEY is required when APP_ENV=%s", c.Environment)
		}
		c.JWTSecretKey = "dev-only-secret"
	}
	if c.AggregateMaxAttempts < 1 {
		c.AggregateMaxAttempts = 1
	}
	return nil
}
