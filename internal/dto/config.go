package dto

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres  = "postgres"
	StoreDriverSQLite    = "sqlite"
	StoreDriverFirestore = "firestore"
	StoreDriverMemory    = "memory"
)

type Config struct {
	Port          int    `env:"PORT" envDefault:"8080"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	DemoDayTarget      int `env:"DEMO_DAY_TARGET" envDefault:"15"`
	PrivatePitchTarget int `env:"PRIVATE_PITCH_TARGET" envDefault:"20"`

	StoreDriver       string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL       string `env:"DATABASE_URL"`
	SQLitePath        string `env:"SQLITE_PATH" envDefault:"demoday.db"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	FirebaseKey       string `env:"FIREBASE_KEY"`
	RabbitMQURL       string `env:"RABBITMQ_URL"`

	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`

	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string   `env:"LOG_FORMAT" envDefault:"text"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(envFiles ...string) (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse env: %v", ErrConfiguration, err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports missing endpoints for the selected store driver and other
// settings the application cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AdminPassword) == "" {
		return fmt.Errorf("%w: ADMIN_PASSWORD is required", ErrConfiguration)
	}
	if c.DemoDayTarget < 0 || c.PrivatePitchTarget < 0 {
		return fmt.Errorf("%w: category targets must not be negative", ErrConfiguration)
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres store", ErrConfiguration)
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite store", ErrConfiguration)
		}
	case StoreDriverFirestore:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("%w: FIREBASE_PROJECT_ID is required for the firestore store", ErrConfiguration)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrConfiguration, c.StoreDriver)
	}
	return nil
}

// DecodeFirebaseKey returns the service account JSON. FIREBASE_KEY holds it
// base64 encoded; an empty key means application default credentials.
func (c Config) DecodeFirebaseKey() ([]byte, error) {
	if c.FirebaseKey == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(c.FirebaseKey)
	if err != nil {
		return nil, fmt.Errorf("%w: FIREBASE_KEY is not valid base64: %v", ErrConfiguration, err)
	}
	return decoded, nil
}
