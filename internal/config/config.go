package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	AllowOrigins    string
	RemoteURL       string
	RemoteTimeout   time.Duration
	RedisURL        string
	SessionName     string
	JWTSecret       string
	TokenTTL        time.Duration
	EventsLocalOnly bool
	LoginRateLimit  int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TEAMHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "TeamHub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("remote.timeout", "0s")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("session.name", "vex_user")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("events.local_only", false)
	v.SetDefault("login.rate_limit", 10)

	remoteTimeout, err := parseDuration(v, "remote.timeout")
	if err != nil {
		return Config{}, err
	}

	tokenTTL, err := parseDuration(v, "jwt.ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		AllowOrigins:    v.GetString("cors.origins"),
		RemoteURL:       strings.TrimRight(v.GetString("remote.url"), "/"),
		RemoteTimeout:   remoteTimeout,
		RedisURL:        v.GetString("redis.url"),
		SessionName:     v.GetString("session.name"),
		JWTSecret:       v.GetString("jwt.secret"),
		TokenTTL:        tokenTTL,
		EventsLocalOnly: v.GetBool("events.local_only"),
		LoginRateLimit:  v.GetInt("login.rate_limit"),
	}

	if cfg.RemoteURL == "" {
		return Config{}, fmt.Errorf("remote url must be provided")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SessionName == "" {
		cfg.SessionName = "vex_user"
	}

	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}

	return d, nil
}
