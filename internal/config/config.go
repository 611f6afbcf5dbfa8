package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Drivers de almacenamiento soportados.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort               string `env:"HTTP_PORT" envDefault:"3000"`
	StoreDriver            string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL            string `env:"DATABASE_URL"`
	DBMaxConns             int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	MigrateOnStart         bool   `env:"MIGRATE_ON_START" envDefault:"true"`
	RedisAddr              string `env:"REDIS_ADDR"`
	RedisPassword          string `env:"REDIS_PASSWORD"`
	RedisDB                int    `env:"REDIS_DB" envDefault:"0"`
	JWTSecret              string `env:"JWT_SECRET,required"`
	JWTTTLMinutes          int    `env:"JWT_TTL_MINUTES" envDefault:"60"`
	JWTIssuer              string `env:"JWT_ISSUER" envDefault:"task-manager"`
	BcryptCost             int    `env:"BCRYPT_COST" envDefault:"10"`
	CORSAllowedOrigin      string `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
	ShutdownTimeoutSeconds int    `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa las reglas que dependen de más de una variable.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreDriverRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis store")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be blank")
	}
	if c.JWTTTLMinutes <= 0 {
		return fmt.Errorf("JWT_TTL_MINUTES must be positive, got %d", c.JWTTTLMinutes)
	}
	return nil
}
