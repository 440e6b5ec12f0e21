// Package config loads the search service configuration from the
// environment. Every knob has a default suitable for local development; an
// empty ELASTICSEARCH_URL, REDIS_ADDR, KAFKA_BROKERS, or REINDEX_SCHEDULE
// disables the corresponding subsystem rather than failing startup.
package config

import (
	"strings"
	"time"

	pkgconfig "github.com/mekongmart/search-service/pkg/config"
	"github.com/mekongmart/search-service/pkg/database"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"search-service"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8087"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Index engine. An empty URL runs the service in fallback-only mode.
	ElasticsearchURL string `env:"ELASTICSEARCH_URL" envDefault:""`
	IndexPrefix      string `env:"SEARCH_INDEX_PREFIX" envDefault:"market"`

	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"market"`
	PostgresPassword string        `env:"POSTGRES_PASSWORD" envDefault:"market_secret"`
	PostgresDB       string        `env:"POSTGRES_DB" envDefault:"market"`
	PostgresSSLMode  string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns int32         `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	PostgresMinConns int32         `env:"POSTGRES_MIN_CONNS" envDefault:"5"`
	PostgresConnLife time.Duration `env:"POSTGRES_CONN_LIFETIME" envDefault:"1h"`
	PostgresConnIdle time.Duration `env:"POSTGRES_CONN_IDLE" envDefault:"30m"`

	// Suggestion cache. An empty address disables caching.
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:""`
	RedisPassword   string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	SuggestCacheTTL time.Duration `env:"SUGGEST_CACHE_TTL" envDefault:"2m"`

	// Event intake. Empty brokers disable the consumers and the reindex
	// completion event.
	KafkaBrokers  string `env:"KAFKA_BROKERS" envDefault:""`
	ConsumerGroup string `env:"KAFKA_CONSUMER_GROUP" envDefault:"search-service"`

	// Reindex reconciliation. An empty schedule disables the cron job; the
	// admin endpoint still works.
	ReindexSchedule  string `env:"REINDEX_SCHEDULE" envDefault:""`
	ReindexBatchSize int    `env:"REINDEX_BATCH_SIZE" envDefault:"500"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := pkgconfig.Load(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Postgres assembles the pool configuration for pkg/database.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPassword,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSLMode,
		MaxConns:        c.PostgresMaxConns,
		MinConns:        c.PostgresMinConns,
		MaxConnLifetime: c.PostgresConnLife,
		MaxConnIdleTime: c.PostgresConnIdle,
	}
}

// Redis assembles the cache configuration. Only meaningful when CacheEnabled.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Brokers splits the comma-separated broker list. Empty means no Kafka.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
