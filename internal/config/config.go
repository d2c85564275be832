package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	DBSource      string `mapstructure:"DB_SOURCE"`

	NominatimURL       string        `mapstructure:"NOMINATIM_URL"`
	NominatimUserAgent string        `mapstructure:"NOMINATIM_USER_AGENT"`
	HTTPTimeout        time.Duration `mapstructure:"HTTP_TIMEOUT"`
	GeocodeCacheSize   int           `mapstructure:"GEOCODE_CACHE_SIZE"`

	BreakerMaxRequests      uint32        `mapstructure:"BREAKER_MAX_REQUESTS"`
	BreakerInterval         time.Duration `mapstructure:"BREAKER_INTERVAL"`
	BreakerTimeout          time.Duration `mapstructure:"BREAKER_TIMEOUT"`
	BreakerMinRequests      uint32        `mapstructure:"BREAKER_MIN_REQUESTS"`
	BreakerFailureThreshold float64       `mapstructure:"BREAKER_FAILURE_THRESHOLD"`

	BaseURL         string  `mapstructure:"BASE_URL"`
	TileURL         string  `mapstructure:"TILE_URL"`
	TileAttribution string  `mapstructure:"TILE_ATTRIBUTION"`
	MapLinkTemplate string  `mapstructure:"MAP_LINK_TEMPLATE"`
	DefaultLat      float64 `mapstructure:"DEFAULT_LAT"`
	DefaultLng      float64 `mapstructure:"DEFAULT_LNG"`
	DefaultZoom     int     `mapstructure:"DEFAULT_ZOOM"`
	FallbackColor   string  `mapstructure:"FALLBACK_COLOR"`
	// AvatarHosts are extra hosts avatars may be fetched from, comma separated.
	AvatarHosts []string `mapstructure:"AVATAR_HOSTS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("NOMINATIM_USER_AGENT", "memomap/1.0")
	v.SetDefault("HTTP_TIMEOUT", 10*time.Second)
	v.SetDefault("GEOCODE_CACHE_SIZE", 1024)
	v.SetDefault("BREAKER_MAX_REQUESTS", 1)
	v.SetDefault("BREAKER_INTERVAL", 30*time.Second)
	v.SetDefault("BREAKER_TIMEOUT", 60*time.Second)
	v.SetDefault("BREAKER_MIN_REQUESTS", 5)
	v.SetDefault("BREAKER_FAILURE_THRESHOLD", 0.8)
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("TILE_URL", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("TILE_ATTRIBUTION", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`)
	v.SetDefault("MAP_LINK_TEMPLATE", "https://www.google.com/maps/search/?api=1&query=%s,%s")
	v.SetDefault("DEFAULT_LAT", 51.505)
	v.SetDefault("DEFAULT_LNG", -0.09)
	v.SetDefault("DEFAULT_ZOOM", 13)
	v.SetDefault("FALLBACK_COLOR", "gray")
	v.SetDefault("AVATAR_HOSTS", []string{})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
}

// LoadConfig reads configuration from app.env in path, a local .env file, and the environment.
// Environment variables win over the file; a missing file is not an error.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("config: failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	return config, config.Validate()
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	if c.DBSource == "" {
		return errors.New("config: DB_SOURCE is required")
	}
	if c.NominatimUserAgent == "" {
		return errors.New("config: NOMINATIM_USER_AGENT is required by the Nominatim usage policy")
	}
	if c.DefaultZoom < 0 || c.DefaultZoom > 19 {
		return fmt.Errorf("config: DEFAULT_ZOOM out of range: %d", c.DefaultZoom)
	}
	return nil
}
