package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API     APIConfig
	Session SessionConfig
	Mail    MailConfig
	Stub    StubConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// APIConfig points at the hosted backend.
type APIConfig struct {
	BaseURL     string        `env:"PORTAL_API_BASE_URL, default=http://localhost:8081"`
	Timeout     time.Duration `env:"PORTAL_API_TIMEOUT,  default=15s"`
	ProfilePath string        `env:"PORTAL_API_PROFILE_PATH"`
}

type SessionConfig struct {
	TTL    time.Duration `env:"SESSION_TTL,    default=24h"`
	Driver string        `env:"SESSION_DRIVER, default=memory"`
	File   string        `env:"SESSION_FILE"`
	Cookie string        `env:"SESSION_COOKIE, default=portal_visitor"`
}

type MailConfig struct {
	Workers int `env:"MAIL_WORKERS, default=4"`
}

// StubConfig configures the development stand-in for the hosted backend.
type StubConfig struct {
	Port      string        `env:"STUB_PORT,       default=8081"`
	JWTSecret string        `env:"STUB_JWT_SECRET, default=dev-secret"`
	TokenTTL  time.Duration `env:"STUB_TOKEN_TTL,  default=24h"`

	// Store holds accounts: memory or mongo.
	Store string `env:"STUB_STORE, default=memory"`
	// OTPDriver holds reset codes; any session driver except file.
	OTPDriver string `env:"STUB_OTP_DRIVER, default=memory"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the portal runs in the development environment.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// LoadWith reads configuration from the given lookuper (tests).
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
