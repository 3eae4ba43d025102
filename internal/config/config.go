package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	ListenAddr string    `env:"LISTEN_ADDR" envDefault:":8000"`
	LogLevel   int       `env:"LOG_LEVEL" envDefault:"0"`
	RedisURL   string    `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Challenge  Challenge `envPrefix:"SIWE_"`
	Auth       Auth      `envPrefix:"AUTH_"`
	RateLimit  RateLimit `envPrefix:"RATE_"`
	Storage    Storage   `envPrefix:"MINIO_"`
	Pinner     Pinner    `envPrefix:"PIN_"`
}

// Challenge contains challenge message parameters.
type Challenge struct {
	Domain   string        `env:"DOMAIN" envDefault:"localhost"`
	URI      string        `env:"URI" envDefault:"http://localhost:8000"`
	ChainID  int64         `env:"CHAIN_ID" envDefault:"1"`
	NonceTTL time.Duration `env:"NONCE_TTL" envDefault:"300s"`
}

// Auth contains bearer credential parameters.
type Auth struct {
	Secret     string        `env:"SECRET" envDefault:"devsecret"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`
}

// RateLimit contains per-IP request window parameters for the auth endpoints.
type RateLimit struct {
	NonceLimit  int           `env:"NONCE_LIMIT" envDefault:"10"`
	VerifyLimit int           `env:"VERIFY_LIMIT" envDefault:"10"`
	Window      time.Duration `env:"WINDOW" envDefault:"60s"`
}

// Storage contains object storage parameters for profile blobs.
type Storage struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"sigil-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"sigil-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"sigil-profiles"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Pinner contains remote pinning API parameters. An empty endpoint disables
// pinning.
type Pinner struct {
	Endpoint string        `env:"ENDPOINT"`
	Token    string        `env:"TOKEN"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
