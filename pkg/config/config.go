package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Logging struct {
		Level             string `yaml:"level"`
		Format            string `yaml:"format"`
		Output            string `yaml:"output"`
		CollectorCapacity int    `yaml:"collector_capacity"`
	} `yaml:"logging"`
	Edgar struct {
		BaseURL           string        `yaml:"base_url"`
		TickersURL        string        `yaml:"tickers_url"`
		UserAgent         string        `yaml:"user_agent"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Burst             int           `yaml:"burst"`
		Timeout           time.Duration `yaml:"timeout"`
		FactsTTL          time.Duration `yaml:"facts_ttl"`
		TickersTTL        time.Duration `yaml:"tickers_ttl"`
	} `yaml:"edgar"`
	Cache struct {
		Backend string `yaml:"backend"` // memory, redis, badger, layered
		Memory  struct {
			MaxEntries      int           `yaml:"max_entries"`
			CleanupInterval time.Duration `yaml:"cleanup_interval"`
		} `yaml:"memory"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Badger struct {
			Path       string        `yaml:"path"`
			GCInterval time.Duration `yaml:"gc_interval"`
		} `yaml:"badger"`
	} `yaml:"cache"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	RateLimit struct {
		Enabled           bool `yaml:"enabled"`
		RequestsPerMinute int  `yaml:"requests_per_minute"`
		Burst             int  `yaml:"burst"`
	} `yaml:"rate_limit"`
	Kafka struct {
		Enabled  bool     `yaml:"enabled"`
		Brokers  []string `yaml:"brokers"`
		Topic    string   `yaml:"topic"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Refresh struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers"`
		QueueKey   string        `yaml:"queue_key"`
		PopTimeout time.Duration `yaml:"pop_timeout"`
	} `yaml:"refresh"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		Table        string        `yaml:"table"`
		AsyncInsert  bool          `yaml:"async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	// SeriesMetrics replaces the built-in metric table when non-empty.
	SeriesMetrics []SeriesMetric `yaml:"series_metrics"`
}

// SeriesMetric is the config-file form of one metric pipeline definition.
type SeriesMetric struct {
	Name                string   `yaml:"name"`
	Slug                string   `yaml:"slug"`
	Field               string   `yaml:"field"`
	Taxonomy            string   `yaml:"taxonomy"`
	Unit                string   `yaml:"unit"`
	Concepts            []string `yaml:"concepts"`
	NegativeIrrelevant  bool     `yaml:"negative_irrelevant"`
	PositiveDerivedOnly bool     `yaml:"positive_derived_only"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("EDGAR_USER_AGENT"); v != "" {
		c.Edgar.UserAgent = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	return c, nil
}

// Validate checks required fields and fills defaults for omitted ones.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Edgar.UserAgent == "" {
		// SEC rejects anonymous clients; an identifying UA is mandatory
		return fmt.Errorf("edgar.user_agent is required")
	}
	if c.Edgar.RequestsPerSecond < 0 || c.Edgar.RequestsPerSecond > 10 {
		return fmt.Errorf("edgar.requests_per_second must be within (0, 10], got %v", c.Edgar.RequestsPerSecond)
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Edgar.BaseURL == "" {
		c.Edgar.BaseURL = "https://data.sec.gov"
	}
	if c.Edgar.TickersURL == "" {
		c.Edgar.TickersURL = "https://www.sec.gov/files/company_tickers.json"
	}
	if c.Edgar.RequestsPerSecond == 0 {
		c.Edgar.RequestsPerSecond = 10
	}
	if c.Edgar.Burst == 0 {
		c.Edgar.Burst = int(c.Edgar.RequestsPerSecond)
	}
	if c.Edgar.Timeout == 0 {
		c.Edgar.Timeout = 30 * time.Second
	}
	if c.Edgar.FactsTTL == 0 {
		c.Edgar.FactsTTL = 6 * time.Hour
	}
	if c.Edgar.TickersTTL == 0 {
		c.Edgar.TickersTTL = 24 * time.Hour
	}

	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = "memory"
	case "memory", "badger":
	case "redis", "layered":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for backend '%s'", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis', 'badger' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Cache.Backend == "badger" && c.Cache.Badger.Path == "" {
		return fmt.Errorf("cache.badger.path is required for backend 'badger'")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
		if c.Kafka.Consumer.GroupID == "" {
			c.Kafka.Consumer.GroupID = "factpull-filings"
		}
	}

	if c.Refresh.Enabled {
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required when refresh is enabled (queue backend)")
		}
		if c.Refresh.Workers == 0 {
			c.Refresh.Workers = 2
		}
		if c.Refresh.QueueKey == "" {
			c.Refresh.QueueKey = "factpull:refresh"
		}
		if c.Refresh.PopTimeout == 0 {
			c.Refresh.PopTimeout = 5 * time.Second
		}
	}

	if c.ClickHouse.Enabled {
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
		}
		if c.ClickHouse.Port == 0 {
			c.ClickHouse.Port = 9000
		}
		if c.ClickHouse.Database == "" {
			c.ClickHouse.Database = "default"
		}
		if c.ClickHouse.Table == "" {
			c.ClickHouse.Table = "series_points"
		}
		if c.ClickHouse.DialTimeout == 0 {
			c.ClickHouse.DialTimeout = 5 * time.Second
		}
		if c.ClickHouse.WriteTimeout == 0 {
			c.ClickHouse.WriteTimeout = 10 * time.Second
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute == 0 {
			c.RateLimit.RequestsPerMinute = 120
		}
		if c.RateLimit.Burst == 0 {
			c.RateLimit.Burst = 30
		}
	}

	for i, m := range c.SeriesMetrics {
		if m.Name == "" || m.Field == "" || len(m.Concepts) == 0 {
			return fmt.Errorf("series_metrics[%d]: name, field and concepts are required", i)
		}
	}

	return nil
}
