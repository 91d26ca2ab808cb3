// Package config loads application configuration from a YAML file, an
// optional .env file and PM_* environment overrides. Every subsystem gets a
// typed section with local-development defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Model     ModelConfig     `yaml:"model"`
	NLP       NLPConfig       `yaml:"nlp"`
	Matching  MatchingConfig  `yaml:"matching"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
}

// Catalog sources.
const (
	SourceJSON     = "json"
	SourcePostgres = "postgres"
	SourceTabular  = "tabular"
)

// CatalogConfig says where categories and their products come from. Dir
// holds product-db.json and, for the json source, one directory per
// category. For the tabular source each category is read from
// <TabularDir>/<category id>.{csv,xls,xlsx}.
type CatalogConfig struct {
	Dir            string `yaml:"dir"`
	CategoriesFile string `yaml:"categoriesFile"`
	Source         string `yaml:"source"`
	TabularDir     string `yaml:"tabularDir"`
}

type ModelConfig struct {
	WeightsPath     string `yaml:"weightsPath"`
	WordVectorsPath string `yaml:"wordVectorsPath"`
}

type NLPConfig struct {
	Stemming        bool     `yaml:"stemming"`
	DictionaryPaths []string `yaml:"dictionaryPaths"`
}

type MatchingConfig struct {
	Workers        int     `yaml:"workers"`
	DefaultTopN    int     `yaml:"defaultTopN"`
	MaxTopN        int     `yaml:"maxTopN"`
	DefaultMinProb float64 `yaml:"defaultMinProb"`
	CacheEnabled   bool    `yaml:"cacheEnabled"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

type KafkaTopics struct {
	MatchEvents string `yaml:"matchEvents"`
}

// AnalyticsConfig controls match-event publishing and aggregation.
type AnalyticsConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Port             int           `yaml:"port"`
	BatchSize        int           `yaml:"batchSize"`
	FlushInterval    time.Duration `yaml:"flushInterval"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
	WindowSize       time.Duration `yaml:"windowSize"`
}

// LoggingConfig selects level and format. When File is set, records are
// also written to a rotating file.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
	AllowedMethods []string `yaml:"allowedMethods"`
	AllowedHeaders []string `yaml:"allowedHeaders"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// Load reads .env (when present), then the YAML file at path (when given),
// then applies PM_* environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case SourceJSON, SourcePostgres, SourceTabular:
	default:
		return fmt.Errorf("catalog.source must be json, postgres or tabular, got %q", c.Catalog.Source)
	}
	if c.Matching.DefaultMinProb < 0 || c.Matching.DefaultMinProb > 1 {
		return fmt.Errorf("matching.defaultMinProb must be in [0,1], got %v", c.Matching.DefaultMinProb)
	}
	if c.Matching.DefaultTopN < 1 {
		return fmt.Errorf("matching.defaultTopN must be positive, got %d", c.Matching.DefaultTopN)
	}
	if c.Matching.MaxTopN < c.Matching.DefaultTopN {
		return fmt.Errorf("matching.maxTopN (%d) is below defaultTopN (%d)", c.Matching.MaxTopN, c.Matching.DefaultTopN)
	}
	return nil
}

// Default returns the built-in configuration used before file and environment
// overrides.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Catalog: CatalogConfig{
			Dir:            "data",
			CategoriesFile: "product-db.json",
			Source:         SourceJSON,
		},
		Matching: MatchingConfig{
			DefaultTopN:    10,
			MaxTopN:        100,
			DefaultMinProb: 0.7,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "productmatching",
			User:            "productmatching",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "productmatching-analytics",
			Topics: KafkaTopics{
				MatchEvents: "match-events",
			},
		},
		Analytics: AnalyticsConfig{
			Port:             8083,
			BatchSize:        100,
			FlushInterval:    2 * time.Second,
			SnapshotInterval: time.Minute,
			WindowSize:       time.Hour,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
	}
}

// applyEnvOverrides reads PM_* variables. Unparseable numbers and booleans
// are ignored.
func applyEnvOverrides(cfg *Config) {
	setInt("PM_SERVER_PORT", &cfg.Server.Port)
	setString("PM_CATALOG_DIR", &cfg.Catalog.Dir)
	setString("PM_CATALOG_SOURCE", &cfg.Catalog.Source)
	setString("PM_CATALOG_TABULAR_DIR", &cfg.Catalog.TabularDir)
	setString("PM_MODEL_WEIGHTS_PATH", &cfg.Model.WeightsPath)
	setString("PM_MODEL_WORD_VECTORS_PATH", &cfg.Model.WordVectorsPath)
	setBool("PM_NLP_STEMMING", &cfg.NLP.Stemming)
	if v := os.Getenv("PM_NLP_DICTIONARY_PATHS"); v != "" {
		cfg.NLP.DictionaryPaths = strings.Split(v, ",")
	}
	setInt("PM_MATCHING_WORKERS", &cfg.Matching.Workers)
	setBool("PM_MATCHING_CACHE_ENABLED", &cfg.Matching.CacheEnabled)
	setString("PM_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("PM_POSTGRES_PORT", &cfg.Postgres.Port)
	setString("PM_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setString("PM_POSTGRES_USER", &cfg.Postgres.User)
	setString("PM_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setString("PM_POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)
	setString("PM_REDIS_ADDR", &cfg.Redis.Addr)
	setString("PM_REDIS_PASSWORD", &cfg.Redis.Password)
	if v := os.Getenv("PM_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	setBool("PM_ANALYTICS_ENABLED", &cfg.Analytics.Enabled)
	setString("PM_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("PM_LOGGING_FORMAT", &cfg.Logging.Format)
	setString("PM_LOGGING_FILE", &cfg.Logging.File)
	setBool("PM_RATE_LIMIT_ENABLED", &cfg.RateLimit.Enabled)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
