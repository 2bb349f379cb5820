package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/truckledger/service-logistics/internal/platform/cache"
	"github.com/truckledger/service-logistics/internal/platform/database"
)

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// SessionConfig controls login sessions.
type SessionConfig struct {
	TTL time.Duration
}

// GeocodeConfig configures the Nominatim client.
type GeocodeConfig struct {
	BaseURL     string
	UserAgent   string
	CountryCode string
	Timeout     time.Duration
	CacheTTL    time.Duration
}

// ProximityConfig configures arrival detection.
type ProximityConfig struct {
	ThresholdMeters  float64
	HysteresisMeters float64
}

// ServiceConfig holds all configuration for the logistics service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	DBConfig        database.PostgresConfig
	RedisConfig     cache.RedisConfig
	KafkaConfig     KafkaConfig
	SessionConfig   SessionConfig
	GeocodeConfig   GeocodeConfig
	ProximityConfig ProximityConfig
}

// Load reads configuration from a .env file (if any) and LOGISTICS_* environment variables.
func Load() (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("LOGISTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	port := v.GetString("service.port")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	cfg := &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("app.env"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		RedisConfig: cache.RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("kafka.brokers")),
			GroupPrefix: v.GetString("kafka.group_prefix"),
		},
		SessionConfig: SessionConfig{
			TTL: v.GetDuration("session.ttl"),
		},
		GeocodeConfig: GeocodeConfig{
			BaseURL:     v.GetString("geocode.base_url"),
			UserAgent:   v.GetString("geocode.user_agent"),
			CountryCode: v.GetString("geocode.country_code"),
			Timeout:     v.GetDuration("geocode.timeout"),
			CacheTTL:    v.GetDuration("geocode.cache_ttl"),
		},
		ProximityConfig: ProximityConfig{
			ThresholdMeters:  v.GetFloat64("proximity.threshold_meters"),
			HysteresisMeters: v.GetFloat64("proximity.hysteresis_meters"),
		},
	}

	if len(cfg.KafkaConfig.Brokers) == 0 {
		return nil, fmt.Errorf("LOGISTICS_KAFKA_BROKERS must list at least one broker")
	}
	if cfg.ProximityConfig.ThresholdMeters <= 0 {
		return nil, fmt.Errorf("LOGISTICS_PROXIMITY_THRESHOLD_METERS must be positive")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.port", "8080")
	v.SetDefault("app.env", "development")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "logistics")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_prefix", "")

	v.SetDefault("session.ttl", 30*24*time.Hour)

	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "service-logistics/1.0")
	v.SetDefault("geocode.country_code", "co")
	v.SetDefault("geocode.timeout", 10*time.Second)
	v.SetDefault("geocode.cache_ttl", 24*time.Hour)

	v.SetDefault("proximity.threshold_meters", 250.0)
	v.SetDefault("proximity.hysteresis_meters", 100.0)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
