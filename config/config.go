package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"5000"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"imagegallery"`

	// Empty keeps sessions in process memory.
	RedisURL string `env:"REDIS_URL"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"your-secret-key"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"gallery.sid"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	StaticDir          string   `env:"STATIC_DIR" envDefault:"public"`

	PageSizeDefault int           `env:"PAGE_SIZE_DEFAULT" envDefault:"10"`
	PageSizeMax     int           `env:"PAGE_SIZE_MAX" envDefault:"100"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// SeedSource is either an http(s) listing endpoint or s3://bucket/key.
	SeedSource      string        `env:"SEED_SOURCE" envDefault:"https://picsum.photos/v2/list"`
	SeedLimit       int           `env:"SEED_LIMIT" envDefault:"100"`
	SeedDownloadURL string        `env:"SEED_DOWNLOAD_URL" envDefault:"https://picsum.photos/id/{id}/400/400"`
	SeedAttempts    int           `env:"SEED_ATTEMPTS" envDefault:"3"`
	SeedBackoff     time.Duration `env:"SEED_BACKOFF" envDefault:"5s"`
	SeedHTTPTimeout time.Duration `env:"SEED_HTTP_TIMEOUT" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("config: SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.PageSizeDefault < 1 || cfg.PageSizeMax < cfg.PageSizeDefault {
		return nil, fmt.Errorf("config: invalid page sizes default=%d max=%d", cfg.PageSizeDefault, cfg.PageSizeMax)
	}
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func trimAll(values []string) []string {
	res := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}
