// Package config reads server and client settings from the environment,
// after loading a .env file when one is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Kishan-kumar001/mern-task-manager/db"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	DefaultAPIURL = "http://localhost:5000/api"
)

type Config struct {
	Port     int
	Env      string
	LogLevel string

	Store        string
	Postgres     db.Postgres
	SQLitePath   string
	MongoURI     string
	MongoDB      string
	StoreTimeout time.Duration

	RedisAddr string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CORSAllowedOrigins []string

	APIURL      string
	SessionFile string

	// DotEnvLoaded is set by Load when a .env file was read.
	DotEnvLoaded bool
}

// Load reads .env (if any) and then the process environment. Logging is
// not configured yet at this point, so Load only records whether the
// file was found.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil
	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = loaded
	return cfg, nil
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Env:      get("APP_ENV", "development"),
		LogLevel: get("LOG_LEVEL", "info"),
		Store:    get("STORE", StoreSQLite),
		Postgres: db.Postgres{
			Host:     get("DB_HOST", "localhost"),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD"),
			Name:     get("DB_NAME", "taskman"),
			SSLMode:  get("DB_SSLMODE", "disable"),
		},
		SQLitePath: get("SQLITE_PATH", "taskman.db"),
		MongoURI:   get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    get("MONGO_DB", "taskman"),
		RedisAddr:  getenv("REDIS_ADDR"),
		JWTSecret:  getenv("JWT_SECRET_KEY"),
		APIURL:     strings.TrimRight(get("TASKMAN_API_URL", DefaultAPIURL), "/"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(get("PORT", "5000")); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if cfg.StoreTimeout, err = time.ParseDuration(get("STORE_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT: %w", err)
	}
	if cfg.AccessTokenTTL, err = time.ParseDuration(get("ACCESS_TOKEN_TTL", "15m")); err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}
	if cfg.RefreshTokenTTL, err = time.ParseDuration(get("REFRESH_TOKEN_TTL", "168h")); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL: %w", err)
	}

	switch cfg.Store {
	case StoreSQLite, StorePostgres, StoreMongo:
	default:
		return nil, fmt.Errorf("invalid STORE %q: want %s, %s or %s", cfg.Store, StoreSQLite, StorePostgres, StoreMongo)
	}

	for _, o := range strings.Split(get("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.SessionFile = get("TASKMAN_SESSION_FILE", DefaultSessionFile())
	return cfg, nil
}

// DefaultSessionFile is $XDG_CONFIG_HOME/taskman/session.json, falling
// back to ~/.config.
func DefaultSessionFile() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskman", "session.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".config", "taskman", "session.json")
}
