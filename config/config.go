package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port    string
	GinMode string
	DB      Database
	Redis   Redis
	Auth    Auth
	Log     Log
}

type Database struct {
	Driver string // mysql | postgres | sqlite
	URL    string
}

type Redis struct {
	Addr     string // empty disables the like-count cache
	Password string
	DB       int
	LikeTTL  time.Duration
}

type Auth struct {
	JWTSecret   string
	TokenTTL    time.Duration
	AllowHeader bool // accept X-User-Id as caller identity
}

type Log struct {
	Level  string
	Format string // json | text
}

// LoadDotenv loads the first .env found in the working directory or its
// parents. A missing file is not an error.
func LoadDotenv() string {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return p
		}
	}
	return ""
}

// env mirrors the environment variables Load reads.
type env struct {
	Port            string        `mapstructure:"PORT"`
	GinMode         string        `mapstructure:"GIN_MODE"`
	DBDriver        string        `mapstructure:"DB_DRIVER"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	LikeCacheTTL    time.Duration `mapstructure:"LIKE_CACHE_TTL"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	JWTExpiresIn    time.Duration `mapstructure:"JWT_EXPIRES_IN"`
	AuthAllowHeader bool          `mapstructure:"AUTH_ALLOW_HEADER"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogFormat       string        `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"PORT":              "8080",
	"GIN_MODE":          "",
	"DB_DRIVER":         "mysql",
	"DATABASE_URL":      "",
	"REDIS_ADDR":        "",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"LIKE_CACHE_TTL":    5 * time.Minute,
	"JWT_SECRET":        "",
	"JWT_EXPIRES_IN":    7 * 24 * time.Hour,
	"AUTH_ALLOW_HEADER": false,
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "json",
}

// Load reads configuration from the environment. Empty variables count as
// unset and take the default.
func Load() (Config, error) {
	v := viper.New()
	// every key needs a default, or Unmarshal never asks the environment for it
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	v.AutomaticEnv()

	var e env
	if err := v.Unmarshal(&e); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg := Config{
		Port:    e.Port,
		GinMode: e.GinMode,
		DB: Database{
			Driver: strings.ToLower(e.DBDriver),
			URL:    e.DatabaseURL,
		},
		Redis: Redis{
			Addr:     e.RedisAddr,
			Password: e.RedisPassword,
			DB:       e.RedisDB,
			LikeTTL:  e.LikeCacheTTL,
		},
		Auth: Auth{
			JWTSecret:   e.JWTSecret,
			TokenTTL:    e.JWTExpiresIn,
			AllowHeader: e.AuthAllowHeader,
		},
		Log: Log{
			Level:  e.LogLevel,
			Format: e.LogFormat,
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres":
		if c.DB.URL == "" {
			return errors.New("config: DATABASE_URL is not set")
		}
	case "sqlite":
		if c.DB.URL == "" {
			c.DB.URL = "murmur.db"
		}
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is not set")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: JWT_EXPIRES_IN must be positive")
	}
	return nil
}
