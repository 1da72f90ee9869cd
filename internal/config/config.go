package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type CartManager struct {
	Port            string        `env:"PORT" envDefault:"8090"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	// Stock and product lookups
	CatalogURL string `env:"CATALOG_URL" envDefault:"http://localhost:3333"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"cart-storage.json"`
	StorageKey     string `env:"STORAGE_KEY" envDefault:"@shop:cart"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DatabaseDSN    string `env:"CART_DB_DSN"`
	RunMigrations  bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Empty disables event publishing
	RabbitMQURL string `env:"RABBITMQ_URL"`

	SerializeMutations  bool `env:"SERIALIZE_MUTATIONS" envDefault:"false"`
	NotificationHistory int  `env:"NOTIFICATION_HISTORY" envDefault:"50"`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func LoadCartManager() (CartManager, error) {
	var cfg CartManager
	if err := env.Parse(&cfg); err != nil {
		return CartManager{}, errors.Wrap(err, "parse cart manager config")
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	switch cfg.StorageBackend {
	case BackendMemory, BackendFile, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseDSN == "" {
			return CartManager{}, errors.New("CART_DB_DSN is required for the postgres storage backend")
		}
	default:
		return CartManager{}, errors.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.UpstreamTimeout <= 0 {
		return CartManager{}, errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	return cfg, nil
}

type CatalogServer struct {
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":3333"`
	Backend       string `env:"CATALOG_BACKEND" envDefault:"memory"`
	FixturePath   string `env:"CATALOG_FIXTURE"`
	DatabaseDSN   string `env:"CATALOG_DB_DSN"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`
}

func LoadCatalogServer() (CatalogServer, error) {
	var cfg CatalogServer
	if err := env.Parse(&cfg); err != nil {
		return CatalogServer{}, errors.Wrap(err, "parse catalog server config")
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	switch cfg.Backend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseDSN == "" {
			return CatalogServer{}, errors.New("CATALOG_DB_DSN is required for the postgres catalog backend")
		}
	default:
		return CatalogServer{}, errors.Errorf("unknown CATALOG_BACKEND %q", cfg.Backend)
	}
	return cfg, nil
}
