// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for every optional knob (pool sizing, static dirs, logging).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Key idea in this file:
	- Env vars are read using a prefix: DEALERDASH_
	- Keys are normalized (lowercased, prefix removed)
	- A double underscore separates nesting levels, a single underscore stays
	  part of the key name:
	  DEALERDASH_DATABASE__MAX_CONNS -> database.max_conns -> Config.Database.MaxConns
	- List-valued keys are comma separated
	  DEALERDASH_STATIC__DIRS=preview/dist,core/dist -> []string{"preview/dist", "core/dist"}
*/

// EnvPrefix is the prefix every recognised environment variable carries.
const EnvPrefix = "DEALERDASH_"

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Static        StaticConfig         `koanf:"static" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=local development staging production test"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// SSLMode is the libpq TLS mode (disable, allow, prefer, require, verify-ca,
// verify-full). MinConns may legitimately be zero, so it is not "required".
type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required,min=1,max=65535"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns        int32         `koanf:"max_conns" validate:"required,min=1"`
	MinConns        int32         `koanf:"min_conns" validate:"min=0,ltefield=MaxConns"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time" validate:"required"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime" validate:"required"`
	QueryTimeout    time.Duration `koanf:"query_timeout" validate:"required"`
}

// StaticConfig describes where the dashboard's built assets live.
//
// Dirs are searched in order. Index is the single-page-application entry
// document served for unmatched non-API routes.
type StaticConfig struct {
	Dirs        []string `koanf:"dirs" validate:"required,min=1"`
	Index       string   `koanf:"index" validate:"required"`
	APITestPage string   `koanf:"api_test_page"`
}

// Default returns the configuration used before environment values are applied.
//
// Pool sizing follows the dashboard's historical settings: at most 10
// connections, no minimum, idle connections evicted after 30 seconds.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "9090",
			ReadTimeout:        10,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "require",
			MaxConns:        10,
			MinConns:        0,
			MaxConnIdleTime: 30 * time.Second,
			MaxConnLifetime: time.Hour,
			QueryTimeout:    15 * time.Second,
		},
		Static: StaticConfig{
			Dirs:        []string{"preview/dist", "core/dist", "public"},
			Index:       "preview/dist/index.html",
			APITestPage: "public/api-test.html",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables on top of
// Default(), validates it and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix DEALERDASH_
//   - Unmarshals into a Config pre-populated with defaults
//   - Validates struct tags, then the observability block
//   - Forces observability service name + environment
func LoadConfig() (*Config, error) {
	return load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue))
}

// load is split out so tests can feed a provider of their own.
func load(provider koanf.Provider) (*Config, error) {
	// "." is the key-path delimiter koanf uses to represent nesting.
	k := koanf.New(".")

	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := Default()

	// Unmarshal only overwrites fields that are present in koanf,
	// so every default above survives unless the environment sets it.
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	mainConfig.Observability.ServiceName = "dealer-dashboard"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// listKeys are the koanf keys whose values are comma separated lists.
var listKeys = map[string]bool{
	"server.cors_allowed_origins": true,
	"static.dirs":                 true,
}

// envKeyValue maps DEALERDASH_SERVER__READ_TIMEOUT=10 to ("server.read_timeout", "10")
// and splits list-valued keys into slices.
func envKeyValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")

	if listKeys[key] {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}

	return key, value
}
