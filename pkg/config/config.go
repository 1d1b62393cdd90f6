// Package config loads and validates application configuration from YAML files
// with .env and environment-variable overrides. It provides typed structs for
// every subsystem (Server, Annotator, Summarizer, Cache, Redis, Kafka,
// Postgres, Analytics, etc.).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rateLimit"`
	Annotator  AnnotatorConfig  `yaml:"annotator"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Cache      CacheConfig      `yaml:"cache"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
	Postgres   PostgresConfig   `yaml:"postgres"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// TracingConfig controls span logging of the summarization pipeline.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowOrigins     []string `yaml:"allowOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}

// RateLimitConfig controls per-client request limits. Zero disables.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
}

// AnnotatorConfig selects the linguistic annotator.
type AnnotatorConfig struct {
	Type        string                `yaml:"type"`
	LexiconPath string                `yaml:"lexiconPath"`
	Remote      RemoteAnnotatorConfig `yaml:"remote"`
}

// RemoteAnnotatorConfig configures the HTTP annotation sidecar client.
type RemoteAnnotatorConfig struct {
	URL              string        `yaml:"url"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxAttempts      int           `yaml:"maxAttempts"`
	FailureThreshold int           `yaml:"failureThreshold"`
	ResetTimeout     time.Duration `yaml:"resetTimeout"`
}

// SummarizerConfig controls the scoring engine and request limits.
type SummarizerConfig struct {
	KeywordCount     int            `yaml:"keywordCount"`
	Themes           map[string]int `yaml:"themes"`
	MaxTextBytes     int            `yaml:"maxTextBytes"`
	MaxBatchSize     int            `yaml:"maxBatchSize"`
	BatchConcurrency int            `yaml:"batchConcurrency"`
}

// CacheConfig controls the optional Redis result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	SummarizeEvents string `yaml:"summarizeEvents"`
}

// AnalyticsConfig controls event collection and snapshotting.
type AnalyticsConfig struct {
	Enabled          bool          `yaml:"enabled"`
	BufferSize       int           `yaml:"bufferSize"`
	BatchSize        int           `yaml:"batchSize"`
	FlushInterval    time.Duration `yaml:"flushInterval"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// PostgresConfig holds PostgreSQL connection parameters.
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

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// DefaultThemes returns the built-in theme bonuses.
func DefaultThemes() map[string]int {
	themes := []string{
		"identidade", "redes", "sociais", "pertencimento", "autenticidade",
		"saúde", "mental", "planejamento", "urbano", "políticas", "públicas", "cidade",
	}
	m := make(map[string]int, len(themes))
	for _, t := range themes {
		m[t] = 5
	}
	return m
}

// Load reads a YAML config file (if provided), loads a .env file from the
// working directory when present and applies environment-variable overrides.
// It returns a Config populated with defaults for any missing values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		// a themes mapping in the file replaces the defaults instead of
		// merging into them
		cfg.Summarizer.Themes = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if cfg.Summarizer.Themes == nil {
			cfg.Summarizer.Themes = DefaultThemes()
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with defaults for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  20 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
				"http://localhost:5173",
				"https://kauebrandao.github.io",
			},
			AllowCredentials: true,
			MaxAge:           600,
		},
		Annotator: AnnotatorConfig{
			Type: "rule",
			Remote: RemoteAnnotatorConfig{
				URL:              "http://localhost:8090",
				Timeout:          5 * time.Second,
				MaxAttempts:      3,
				FailureThreshold: 5,
				ResetTimeout:     30 * time.Second,
			},
		},
		Summarizer: SummarizerConfig{
			KeywordCount:     5,
			Themes:           DefaultThemes(),
			MaxTextBytes:     1 << 20,
			MaxBatchSize:     32,
			BatchConcurrency: 4,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     10 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 10,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "textsummarizer-analytics",
			Topics: KafkaTopics{
				SummarizeEvents: "summarize-events",
			},
		},
		Analytics: AnalyticsConfig{
			Enabled:          false,
			BufferSize:       10000,
			BatchSize:        0,
			FlushInterval:    5 * time.Second,
			SnapshotInterval: time.Minute,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "textsummarizer",
			User:            "textsummarizer",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
	}
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		problems = append(problems, fmt.Sprintf("metrics.port %d out of range", c.Metrics.Port))
	}
	switch c.Annotator.Type {
	case "rule", "":
	case "remote":
		if c.Annotator.Remote.URL == "" {
			problems = append(problems, "annotator.remote.url is required for the remote annotator")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown annotator type %q", c.Annotator.Type))
	}
	if c.Summarizer.KeywordCount <= 0 {
		problems = append(problems, "summarizer.keywordCount must be positive")
	}
	for theme, weight := range c.Summarizer.Themes {
		if weight < 0 {
			problems = append(problems, fmt.Sprintf("summarizer.themes[%q] must not be negative", theme))
		}
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		problems = append(problems, "rateLimit.requestsPerMinute must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// applyEnvOverrides reads TS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TS_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("TS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TS_CORS_ALLOW_ORIGINS"); v != "" {
		cfg.CORS.AllowOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("TS_RATE_LIMIT_RPM"); v != "" {
		if rpm, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.RequestsPerMinute = rpm
		}
	}
	if v := os.Getenv("TS_ANNOTATOR_TYPE"); v != "" {
		cfg.Annotator.Type = v
	}
	if v := os.Getenv("TS_ANNOTATOR_URL"); v != "" {
		cfg.Annotator.Remote.URL = v
	}
	if v := os.Getenv("TS_ANNOTATOR_LEXICON"); v != "" {
		cfg.Annotator.LexiconPath = v
	}
	if v := os.Getenv("TS_KEYWORD_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Summarizer.KeywordCount = n
		}
	}
	if v := os.Getenv("TS_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Enabled = b
		}
	}
	if v := os.Getenv("TS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TS_ANALYTICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.Enabled = b
		}
	}
	if v := os.Getenv("TS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
}
