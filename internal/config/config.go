package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the progression service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	NotificationChannel    string
	JWTSecret              string
	RankingCacheTTL        time.Duration
	RankingRefreshInterval time.Duration
	Timezone               string
	Location               *time.Location
	PolicyFile             string
	SeedCatalog            bool
	PurchaseRateLimit      int
	PurchaseRateWindow     time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Progression")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("notification.channel", "gema:progression")
	v.SetDefault("ranking.cache_ttl", "30s")
	v.SetDefault("ranking.refresh_interval", "1m")
	v.SetDefault("progression.timezone", "UTC")
	v.SetDefault("catalog.seed", true)
	v.SetDefault("shop.purchase_rate_limit", 5)
	v.SetDefault("shop.purchase_rate_window", "10s")

	cacheTTL, err := parseDuration(v, "ranking.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	refresh, err := parseDuration(v, "ranking.refresh_interval")
	if err != nil {
		return Config{}, err
	}
	purchaseWindow, err := parseDuration(v, "shop.purchase_rate_window")
	if err != nil {
		return Config{}, err
	}

	timezone := strings.TrimSpace(v.GetString("progression.timezone"))
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid progression timezone: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		NotificationChannel:    v.GetString("notification.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		RankingCacheTTL:        cacheTTL,
		RankingRefreshInterval: refresh,
		Timezone:               timezone,
		Location:               location,
		PolicyFile:             v.GetString("progression.policy_file"),
		SeedCatalog:            v.GetBool("catalog.seed"),
		PurchaseRateLimit:      v.GetInt("shop.purchase_rate_limit"),
		PurchaseRateWindow:     purchaseWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.PurchaseRateLimit <= 0 {
		cfg.PurchaseRateLimit = 5
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return duration, nil
}
