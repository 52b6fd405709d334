package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string `validate:"required"`
	LogLevel           string `validate:"oneof=debug info warn warning error"`
	LogFormat          string `validate:"oneof=json text"`
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Document store.
	StoreBackend string `validate:"oneof=file redis memory"`
	DataFile     string `validate:"required_if=StoreBackend file"`
	RedisAddr    string `validate:"required_if=StoreBackend redis"`
	RedisKey     string `validate:"required_if=StoreBackend redis"`

	// OpenWeatherMap.
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string  `validate:"required,url"`
	SiteLatitude       float64 `validate:"gte=-90,lte=90"`
	SiteLongitude      float64 `validate:"gte=-180,lte=180"`
	SiteLocation       *time.Location
	WeatherTimeout     time.Duration
	WeatherCacheTTL    time.Duration

	// Alerting.
	AlertDedupWindow        time.Duration
	AlertDedupKey           string `validate:"oneof=message semantic"`
	AlertEvaluationInterval time.Duration

	// Alert publishing (disabled when no brokers are set).
	KafkaBrokers    []string
	KafkaAlertTopic string

	// Static assets.
	PhotosDir      string `validate:"required"`
	PhotosMaxBytes int64  `validate:"gt=0"`
	LayersDir      string `validate:"required"`
	InfografiasDir string `validate:"required"`
}

// WeatherEnabled reports whether live weather lookups are configured. The
// placeholder key "demo_key" counts as unset.
func (c *Config) WeatherEnabled() bool {
	return c.OpenWeatherAPIKey != "" && c.OpenWeatherAPIKey != "demo_key"
}

// KafkaEnabled reports whether persisted alerts are published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "4s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("WEATHER_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	dedupWindow, err := parsePositiveDuration("ALERT_DEDUP_WINDOW", "1h")
	if err != nil {
		return nil, err
	}
	evalInterval, err := parseDuration("ALERT_EVALUATION_INTERVAL", "0s")
	if err != nil {
		return nil, err
	}

	siteLat, err := parseFloat("SITE_LAT", "4.5828")
	if err != nil {
		return nil, err
	}
	siteLon, err := parseFloat("SITE_LON", "-74.2120")
	if err != nil {
		return nil, err
	}

	siteLoc, err := time.LoadLocation(sharedcfg.EnvOrDefault("SITE_TIMEZONE", "America/Bogota"))
	if err != nil {
		return nil, errors.New("invalid SITE_TIMEZONE")
	}

	maxBytes, err := strconv.ParseInt(sharedcfg.EnvOrDefault("PHOTOS_MAX_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid PHOTOS_MAX_BYTES")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		StoreBackend: sharedcfg.EnvOrDefault("STORE_BACKEND", "file"),
		DataFile:     sharedcfg.EnvOrDefault("DATA_FILE", "dashboard_data.json"),
		RedisAddr:    sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisKey:     sharedcfg.EnvOrDefault("REDIS_KEY", "soacha:dashboard"),

		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		SiteLatitude:       siteLat,
		SiteLongitude:      siteLon,
		SiteLocation:       siteLoc,
		WeatherTimeout:     weatherTimeout,
		WeatherCacheTTL:    cacheTTL,

		AlertDedupWindow:        dedupWindow,
		AlertDedupKey:           sharedcfg.EnvOrDefault("ALERT_DEDUP_KEY", "message"),
		AlertEvaluationInterval: evalInterval,

		KafkaBrokers:    brokers,
		KafkaAlertTopic: sharedcfg.EnvOrDefault("KAFKA_ALERT_TOPIC", "soacha-alerts"),

		PhotosDir:      sharedcfg.EnvOrDefault("PHOTOS_DIR", "assets/photos"),
		PhotosMaxBytes: maxBytes,
		LayersDir:      sharedcfg.EnvOrDefault("LAYERS_DIR", "assets/layers"),
		InfografiasDir: sharedcfg.EnvOrDefault("INFOGRAFIAS_DIR", "assets/infografias"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.KafkaEnabled() && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_ALERT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key, def string) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
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
