package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverFile     = "file"
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv    string `env:"APP_ENV" env-default:"development"`
	Port      string `env:"PORT" env-default:"8080"`
	AppLocale string `env:"APP_LOCALE" env-default:"ko"`

	Remote RemoteConfig

	MaxPromptLength int    `env:"MAX_PROMPT_LENGTH" env-default:"500"`
	HistoryLimit    int    `env:"HISTORY_LIMIT" env-default:"0"`
	DefaultTheme    string `env:"DEFAULT_THEME" env-default:"light"`
	MaxUploadBytes  int64  `env:"MAX_UPLOAD_BYTES" env-default:"10485760"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" env-default:"30m"`

	StoreDriver string `env:"STORE_DRIVER" env-default:"file"`
	StorePath   string `env:"STORE_PATH" env-default:"./data"`
	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	GeoIPDBPath        string   `env:"GEOIP_DB_PATH"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
	RateLimitPerMin    int      `env:"RATE_LIMIT_PER_MINUTE" env-default:"60"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"120s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// RemoteConfig describes the generation backend.
type RemoteConfig struct {
	BaseURL      string        `env:"API_BASE_URL" env-default:"http://127.0.0.1:8000"`
	UseDummyData bool          `env:"USE_DUMMY_DATA" env-default:"false"`
	DummyDelay   time.Duration `env:"DUMMY_DELAY" env-default:"1s"`
	Timeout      time.Duration `env:"REMOTE_TIMEOUT" env-default:"60s"`

	InitialPath     string `env:"API_INITIAL_PATH" env-default:"/predict/initial"`
	TransformPath   string `env:"API_TRANSFORM_PATH" env-default:"/predict/final"`
	UploadPath      string `env:"API_UPLOAD_PATH" env-default:"/upload"`
	StyleMixingPath string `env:"API_STYLE_MIXING_PATH" env-default:"/style-mixing"`
	JobPath         string `env:"API_JOB_PATH" env-default:"/job"`
	DownloadPath    string `env:"API_DOWNLOAD_PATH" env-default:"/download"`
	HealthPath      string `env:"API_HEALTH_PATH" env-default:"/health"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverFile:
		if strings.TrimSpace(c.StorePath) == "" {
			return fmt.Errorf("STORE_PATH is required for the file store")
		}
	case StoreDriverMemory:
	case StoreDriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.DefaultTheme != "dark" && c.DefaultTheme != "light" {
		return fmt.Errorf("DEFAULT_THEME must be dark or light, got %q", c.DefaultTheme)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must not be negative")
	}
	if !c.Remote.UseDummyData && strings.TrimSpace(c.Remote.BaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required unless USE_DUMMY_DATA is set")
	}
	return nil
}
