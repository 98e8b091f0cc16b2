package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// Config holds all configuration for sharp-lines-service
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Store      StoreConfig      `mapstructure:"store"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Detection  DetectionConfig  `mapstructure:"detection"`
	Estimation EstimationConfig `mapstructure:"estimation"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// ProviderConfig holds market-data provider configuration
type ProviderConfig struct {
	BaseURL    string            `mapstructure:"base_url"`
	APIKey     string            `mapstructure:"api_key"` // also read from ODDS_API_KEY
	Timeout    time.Duration     `mapstructure:"timeout"`
	Regions    string            `mapstructure:"regions"`
	Bookmakers []string          `mapstructure:"bookmakers"` // request filter and selection priority
	Sports     map[string]string `mapstructure:"sports"`     // category -> provider sport key
}

// StoreConfig holds snapshot store configuration
type StoreConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// CacheConfig holds live query cache configuration
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // memory, redis
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"` // Topic to publish sharp alerts to
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DetectionConfig holds sharp-action thresholds
type DetectionConfig struct {
	PublicMajorityPct int     `mapstructure:"public_majority_pct"` // 55
	SteamThreshold    float64 `mapstructure:"steam_threshold"`     // 1.5 points
	DisplayThreshold  float64 `mapstructure:"display_threshold"`   // 0.5 points
}

// EstimationConfig holds public-money heuristic settings
type EstimationConfig struct {
	Mode             string  `mapstructure:"mode"` // per_event, per_call
	FavoriteBasePct  float64 `mapstructure:"favorite_base_pct"`
	FavoritePerPoint float64 `mapstructure:"favorite_per_point"`
	FavoriteCapPct   float64 `mapstructure:"favorite_cap_pct"`
	OverMinPct       float64 `mapstructure:"over_min_pct"`
	OverMaxPct       float64 `mapstructure:"over_max_pct"`
}

// IngestionConfig holds scheduled ingestion configuration
type IngestionConfig struct {
	Enabled   bool              `mapstructure:"enabled"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	Schedules map[string]string `mapstructure:"schedules"` // label -> cron spec with seconds, UTC
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file, .env and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("provider.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("provider.regions", "us")
	v.SetDefault("provider.bookmakers", []string{"draftkings", "fanduel", "betmgm"})
	v.SetDefault("provider.sports", map[string]string{
		"nba": "basketball_nba",
		"nhl": "icehockey_nhl",
		"cbb": "basketball_ncaab",
	})

	v.SetDefault("store.data_dir", "data")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "sharp_alerts")
	v.SetDefault("kafka.write_timeout", 10*time.Second)

	v.SetDefault("detection.public_majority_pct", 55)
	v.SetDefault("detection.steam_threshold", 1.5)
	v.SetDefault("detection.display_threshold", 0.5)

	v.SetDefault("estimation.mode", "per_event")
	v.SetDefault("estimation.favorite_base_pct", 55.0)
	v.SetDefault("estimation.favorite_per_point", 1.5)
	v.SetDefault("estimation.favorite_cap_pct", 75.0)
	v.SetDefault("estimation.over_min_pct", 53.0)
	v.SetDefault("estimation.over_max_pct", 65.0)

	v.SetDefault("ingestion.enabled", true)
	v.SetDefault("ingestion.timeout", 2*time.Minute)
	v.SetDefault("ingestion.schedules", map[string]string{
		models.LabelOpening: "0 0 3 * * *",  // 10pm US Eastern
		models.LabelMidday:  "0 0 17 * * *", // 12pm US Eastern
		models.LabelLatest:  "0 0 23 * * *",
	})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("SHARP_LINES")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("provider.api_key", "SHARP_LINES_PROVIDER_API_KEY", "ODDS_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind provider key: %w", err)
	}

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that would otherwise fail late at wiring time
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid cache.backend %q: expected memory or redis", c.Cache.Backend)
	}
	switch c.Estimation.Mode {
	case "per_event", "per_call":
	default:
		return fmt.Errorf("invalid estimation.mode %q: expected per_event or per_call", c.Estimation.Mode)
	}
	if c.Estimation.OverMaxPct < c.Estimation.OverMinPct {
		return fmt.Errorf("estimation.over_max_pct must not be below over_min_pct")
	}
	for label := range c.Ingestion.Schedules {
		if !models.IsSnapshotLabel(label) {
			return fmt.Errorf("invalid ingestion schedule label %q", label)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// ToDetectionParams converts config to detection parameters
func (c *DetectionConfig) ToDetectionParams() models.DetectionParams {
	return models.DetectionParams{
		PublicMajorityPct: c.PublicMajorityPct,
		SteamThreshold:    decimal.NewFromFloat(c.SteamThreshold),
		DisplayThreshold:  decimal.NewFromFloat(c.DisplayThreshold),
	}
}

// ToEstimationParams converts config to estimation parameters
func (c *EstimationConfig) ToEstimationParams() models.EstimationParams {
	return models.EstimationParams{
		FavoriteBasePct:  decimal.NewFromFloat(c.FavoriteBasePct),
		FavoritePerPoint: decimal.NewFromFloat(c.FavoritePerPoint),
		FavoriteCapPct:   decimal.NewFromFloat(c.FavoriteCapPct),
		OverMinPct:       c.OverMinPct,
		OverMaxPct:       c.OverMaxPct,
	}
}
