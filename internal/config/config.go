package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// weakSecrets are placeholder values that must never sign production tokens.
var weakSecrets = map[string]struct{}{
	"":         {},
	"secret":   {},
	"changeme": {},
}

type Config struct {
	Port       string        `env:"PORT, default=5000"`
	Env        string        `env:"ENV, default=development"`
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL, default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=12"`
	LogLevel   string        `env:"LOG_LEVEL, default=info"`

	DB    DBConfig
	Redis RedisConfig
	Admin AdminConfig
}

type DBConfig struct {
	URL         string        `env:"DATABASE_URL, required"`
	MaxOpen     int           `env:"DB_MAX_OPEN, default=25"`
	MaxIdle     int           `env:"DB_MAX_IDLE, default=25"`
	MaxLifetime time.Duration `env:"DB_MAX_LIFETIME, default=5m"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB, default=0"`
	StatsTTL time.Duration `env:"STATS_CACHE_TTL, default=30s"`
}

// AdminConfig seeds an administrator account at startup when Email and
// Password are both set.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME, default=System Administrator Account"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, apperr.Wrap(apperr.KindMisconfiguration, "load configuration", err)
	}
	return &cfg, nil
}

// Validate reports deployment mistakes as Misconfiguration errors. It returns
// ephemeral=true when, outside production, it generated a throwaway signing
// secret because none was set.
func (c *Config) Validate() (ephemeral bool, err error) {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return false, apperr.New(apperr.KindMisconfiguration,
			fmt.Sprintf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.TokenTTL <= 0 {
		return false, apperr.New(apperr.KindMisconfiguration, "TOKEN_TTL must be positive")
	}

	if _, weak := weakSecrets[c.JWTSecret]; weak {
		if c.IsProduction() {
			return false, apperr.New(apperr.KindMisconfiguration, "JWT_SECRET is missing or uses a default value")
		}
		if c.JWTSecret == "" {
			secret, err := randomSecret()
			if err != nil {
				return false, apperr.Wrap(apperr.KindMisconfiguration, "generate signing secret", err)
			}
			c.JWTSecret = secret
			return true, nil
		}
	}
	return false, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
