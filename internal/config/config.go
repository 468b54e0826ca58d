package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PUNCHCLOCK_"

type Config struct {
	HTTPAddr   string `yaml:"http_addr"`
	HealthAddr string `yaml:"health_addr"` // empty disables the gRPC health listener

	Env      string `yaml:"env"` // "dev" | "prod"
	LogLevel string `yaml:"log_level"`

	// DB
	DBDriver string `yaml:"db_driver"` // "sqlite" | "mysql"
	DBPath   string `yaml:"db_path"`   // sqlite only
	DBDSN    string `yaml:"db_dsn"`    // mysql only

	MaxBodyBytes                int64 `yaml:"max_body_bytes"`
	HeartbeatLogIntervalSeconds int   `yaml:"heartbeat_log_interval_seconds"`
	HealthCheckIntervalSeconds  int   `yaml:"health_check_interval_seconds"`
}

func Defaults() Config {
	return Config{
		HTTPAddr:                    ":8081",
		HealthAddr:                  ":9081",
		Env:                         "dev",
		LogLevel:                    "info",
		DBDriver:                    "sqlite",
		DBPath:                      "./data/punchclock.db",
		MaxBodyBytes:                8 << 20,
		HeartbeatLogIntervalSeconds: 5,
		HealthCheckIntervalSeconds:  15,
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then a .env file in the working directory,
// then PUNCHCLOCK_* environment variables. Later sources win.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	// A missing .env is normal in production. Existing env vars are kept.
	_ = godotenv.Load()

	applyEnv(&cfg)
	return cfg.normalize(), nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	if v, ok := os.LookupEnv(envPrefix + "HEALTH_ADDR"); ok {
		cfg.HealthAddr = strings.TrimSpace(v)
	}
	cfg.Env = getenvDefault("ENV", cfg.Env)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.DBDriver = getenvDefault("DB_DRIVER", cfg.DBDriver)
	cfg.DBPath = getenvDefault("DB_PATH", cfg.DBPath)
	cfg.DBDSN = getenvDefault("DB_DSN", cfg.DBDSN)
	cfg.MaxBodyBytes = int64(getenvInt("MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.HeartbeatLogIntervalSeconds = getenvInt("HEARTBEAT_LOG_INTERVAL_SECONDS", cfg.HeartbeatLogIntervalSeconds)
	cfg.HealthCheckIntervalSeconds = getenvInt("HEALTH_CHECK_INTERVAL_SECONDS", cfg.HealthCheckIntervalSeconds)
}

func (c Config) normalize() Config {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env != "dev" && c.Env != "prod" {
		// fail-soft: treat unknown as dev
		c.Env = "dev"
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.DBDriver == "" {
		c.DBDriver = "sqlite"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = Defaults().MaxBodyBytes
	}
	return c
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("db_path is required for sqlite")
		}
	case "mysql":
		if strings.TrimSpace(c.DBDSN) == "" {
			return errors.New("db_dsn is required for mysql")
		}
	default:
		return errors.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("http_addr is required")
	}
	return nil
}

func getenvDefault(key, def string) string {
	v := os.Getenv(envPrefix + key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
