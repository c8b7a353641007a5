package config

import (
	"reflect"
	"strings"

	"goldwatch/core/database"
	"goldwatch/core/logger"
	"goldwatch/core/server"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Feed holds configuration for the external gold price feed.
	Feed FeedConfig `mapstructure:"feed"`
	// Cache holds configuration for the read-path cache.
	Cache CacheConfig `mapstructure:"cache"`
}

// FeedConfig configures the scheduled gold price feed update.
type FeedConfig struct {
	// URL is the endpoint of the external gold price provider.
	URL string `mapstructure:"url" default:"https://sls.g2g.com/offer/search"`
	// IntervalMinutes is the delay between runs, measured from run completion.
	IntervalMinutes int `mapstructure:"interval_minutes" default:"60"`
	// TimeoutSeconds bounds one feed request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// Enabled toggles the background updater.
	Enabled bool `mapstructure:"enabled" default:"true"`
}

// CacheConfig configures the TTL cache in front of read-only query paths.
// The cache only controls staleness; every query path works without it.
type CacheConfig struct {
	// TTLSeconds is the time-to-live of a cached result.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"60"`
	// Enabled toggles caching.
	Enabled bool `mapstructure:"enabled" default:"true"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values
// in Viper based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
