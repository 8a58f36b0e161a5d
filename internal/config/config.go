package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable application configuration. It is built once at
// startup and passed explicitly to the components that need it.
type Config struct {
	ServerPort string
	GinMode    string

	DBDriver    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret          string
	JWTAlgorithm       string
	AccessTokenMinutes int

	SuperuserSecret string

	LogLevel string
	LogDev   bool
	LogFile  string
}

const devJWTSecret = "dev-secret-change-me"

var (
	supportedDrivers    = map[string]bool{"postgres": true, "mysql": true, "sqlite": true}
	supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}
)

// Load builds Config from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		DBDriver:           getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=project_tracker port=5432 sslmode=disable"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTAlgorithm:       getEnv("JWT_ALGORITHM", "HS256"),
		AccessTokenMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60),
		SuperuserSecret:    os.Getenv("SUPERUSER_SECRET"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogDev:             os.Getenv("LOG_DEV") == "1",
		LogFile:            os.Getenv("LOG_FILE"),
	}

	if cfg.JWTSecret == "" {
		if cfg.GinMode == "release" {
			return nil, errors.New("JWT_SECRET must be set in release mode")
		}
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that enumerated settings hold supported values.
func (c *Config) Validate() error {
	if !supportedDrivers[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if !supportedAlgorithms[c.JWTAlgorithm] {
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}
	if c.AccessTokenMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenMinutes)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT secret is empty")
	}
	return nil
}

// AccessTokenTTL returns the configured token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

// String returns a representation of the config with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, Mode: %s, DB: %s, Redis: %s, JWT: %s/%dm, Superuser bootstrap: %t}",
		c.ServerPort, c.GinMode, c.DBDriver, c.RedisAddr, c.JWTAlgorithm, c.AccessTokenMinutes, c.SuperuserSecret != "")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}
