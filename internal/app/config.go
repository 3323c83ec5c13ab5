package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr string `default:"0.0.0.0:8080" usage:"API server listen address"`

	// CatalogBackend selects where products live: "memory" runs the fixed
	// demo catalog in-process, "postgres" uses DatabaseURL.
	CatalogBackend string `default:"memory" usage:"Catalog backend: memory or postgres" flag:"catalog-backend"`
	DatabaseURL    string `usage:"PostgreSQL connection URL (SHOP_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	// RedisURL, when set, moves session state to Redis; otherwise sessions
	// live in process memory.
	RedisURL string `usage:"Redis connection URL for session storage (SHOP_REDIS_URL or REDIS_URL)" flag:"redis-url"`

	ImageBaseURL  string `default:"" usage:"Base URL prepended to relative product image paths" flag:"image-base-url"`
	SecureCookies bool   `default:"false" usage:"Mark the session cookie Secure (requires TLS)" flag:"secure-cookies"`

	Admin      AdminConfig
	SessionTTL time.Duration `default:"24h" usage:"Idle session lifetime" flag:"session-ttl"`

	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// AdminConfig holds the single configured admin credential pair.
type AdminConfig struct {
	Username string `usage:"Admin username (SHOP_ADMIN_USERNAME)"`
	Password string `usage:"Admin password (SHOP_ADMIN_PASSWORD)"`
}

// RateLimitConfig controls the per-client token bucket rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (session cookie)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform-provided defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	switch cfg.CatalogBackend {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("database URL is required: set SHOP_DATABASE_URL or DATABASE_URL")
		}
	default:
		return nil, errors.Errorf("unknown catalog backend %q", cfg.CatalogBackend)
	}

	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		return nil, errors.New("admin credentials are required: set SHOP_ADMIN_USERNAME and SHOP_ADMIN_PASSWORD")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and
// PORT onto the SHOP_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
			if c.CatalogBackend == "memory" {
				c.CatalogBackend = "postgres"
			}
		}
	}
	if c.RedisURL == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
