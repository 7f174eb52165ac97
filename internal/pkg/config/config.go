package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMongo    = "mongo"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ServiceName     string        `env:"SERVICE_NAME,     default=users-management"`
	JWTSecret       string        `env:"JWT_SECRET,       required"`
	BcryptCost      int           `env:"BCRYPT_COST,      default=10"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES"`

	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
	Kafka KafkaConfig
}

type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER,    default=postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH,     default=users.db"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE, default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=users_management"`
}

// RedisConfig configures the auth rate limiter. An empty Addr disables it.
type RedisConfig struct {
	Addr            string `env:"REDIS_ADDR"`
	Password        string `env:"REDIS_PASSWORD"`
	DB              int    `env:"REDIS_DB,              default=0"`
	RateLimitPerMin int    `env:"RATE_LIMIT_PER_MINUTE, default=20"`
}

// KafkaConfig configures lifecycle event publishing. No brokers means events
// are logged and discarded.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC,   default=users.events"`
	Workers int      `env:"EVENT_WORKERS, default=4"`
}

// Load reads a .env file when present, then processes environment variables.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes configuration from the given lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is empty")
	}
	switch c.Store.Driver {
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres store")
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH is required for the sqlite store")
		}
	case StoreMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("config: MONGO_URI and MONGO_DB are required for the mongo store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Redis.Addr != "" && c.Redis.RateLimitPerMin <= 0 {
		return errors.New("config: RATE_LIMIT_PER_MINUTE must be positive")
	}
	if _, err := c.TrustedProxyRanges(); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("config: SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// TrustedProxyRanges parses TRUSTED_PROXIES. Bare addresses are treated as
// single-host ranges.
func (c *Config) TrustedProxyRanges() ([]*net.IPNet, error) {
	ranges := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q", raw)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			ranges = append(ranges, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q: %w", raw, err)
		}
		ranges = append(ranges, n)
	}
	return ranges, nil
}

// StoreDSN returns the connection string for the relational drivers.
func (c *Config) StoreDSN() string {
	if c.Store.Driver == StoreSQLite {
		return c.Store.SQLitePath
	}
	return c.Store.DatabaseURL
}
