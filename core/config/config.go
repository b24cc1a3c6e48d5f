package config

import (
	"reflect"
	"strings"

	"material-reconciler/core/cache"
	"material-reconciler/core/database"
	"material-reconciler/core/logger"
	"material-reconciler/core/reconcile"
	"material-reconciler/core/server"
	"material-reconciler/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage holding catalog snapshots.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Cache holds configuration for the Redis mapping cache.
	Cache cache.Config `mapstructure:"cache"`
	// Catalog selects where warehouse materials are read from.
	Catalog CatalogConfig `mapstructure:"catalog"`
	// Mappings selects the durable mapping store.
	Mappings MappingsConfig `mapstructure:"mappings"`
	// Matching holds the scoring thresholds and weights.
	Matching reconcile.Config `mapstructure:"matching"`
}

// CatalogConfig selects the warehouse catalog source.
type CatalogConfig struct {
	// Source is "database" or "storage".
	Source string `mapstructure:"source" default:"database"`
	// Object is the snapshot object name in the storage bucket.
	Object string `mapstructure:"object" default:"warehouse_materials.json"`
	// CacheTTLSeconds is how long the normalized catalog is reused. Zero reloads on every batch.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"300"`
}

// MappingsConfig selects the mapping store backend.
type MappingsConfig struct {
	// Backend is "database" or "badger".
	Backend string `mapstructure:"backend" default:"database"`
	// BadgerPath is the directory of the embedded store.
	BadgerPath string `mapstructure:"badger_path" default:"data/mappings"`
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

	// Map environment variables to nested keys (e.g. MATCHING_AUTO_ACCEPT -> matching.auto_accept)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
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
