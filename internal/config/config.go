// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DevSecret signs session tokens when JWT_SECRET is unset and ENV is "dev".
const DevSecret = "loveletter-dev-secret"

// Config holds the server settings read from the environment.
type Config struct {
	Env            string
	Port           int
	RedisAddr      string // Empty disables the action stream.
	RedisPassword  string
	RedisDB        int
	DatabaseURL    string // Empty disables the result archive.
	JWTSecret      string
	SessionTTL     time.Duration
	LogLevel       string
	LogFormat      string
	OriginAllow    []string
	PublicURL      string
	ShutdownPeriod time.Duration
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", 8080)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("ORIGIN_ALLOWLIST", "")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Load reads envFiles (a missing file is skipped) and then the process
// environment. With no files given it tries ".env".
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logrus.Debugf("No env file at %s, using environment.", f)
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Env:            v.GetString("ENV"),
		Port:           v.GetInt("PORT"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		OriginAllow:    splitList(v.GetString("ORIGIN_ALLOWLIST")),
		PublicURL:      strings.TrimRight(v.GetString("PUBLIC_URL"), "/"),
		ShutdownPeriod: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.JWTSecret == "" {
		if c.Env != "dev" {
			return errors.New("JWT_SECRET is required outside dev")
		}
		logrus.Warn("JWT_SECRET unset, using the dev signing secret.")
		c.JWTSecret = DevSecret
	}
	return nil
}

// ConfigureLogger applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger.
func (c *Config) ConfigureLogger() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info.", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
