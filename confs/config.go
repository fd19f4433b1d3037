package confs

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting of the rental server.
type Config struct {
	Port string `envconfig:"PORT" default:"5000"`
	Env  string `envconfig:"SERVICE_ENV" default:"dev"`

	// Database. DB_URL wins over the individual parameters.
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"` // postgres | sqlite
	DBURL      string `envconfig:"DB_URL"`
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"rental.db"`
	DBDebug    bool   `envconfig:"DB_DEBUG" default:"false"`

	// Auth
	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	AdminEmail string        `envconfig:"ADMIN_EMAIL" default:"admin@airbnbbm.com"`

	// Property cache. Empty REDIS_ADDR keeps the in-memory cache.
	RedisAddr        string        `envconfig:"REDIS_ADDR"`
	RedisPassword    string        `envconfig:"REDIS_PASSWORD"`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`
	PropertyCacheTTL time.Duration `envconfig:"PROPERTY_CACHE_TTL" default:"5m"`

	// Domain events are mirrored to RabbitMQ when RABBIT_URL is set.
	RabbitURL      string `envconfig:"RABBIT_URL"`
	RabbitExchange string `envconfig:"RABBIT_EXCHANGE" default:"rental.events"`

	OTELEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoadConfig loads environment variables from a .env file if present
// and decodes them into a Config.
func LoadConfig() (*Config, error) {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: could not load .env: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}
	return &cfg, nil
}
