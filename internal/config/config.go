package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Log       LogConfig
	Extractor ExtractorConfig
	OCR       OCRConfig
	Pipeline  PipelineConfig
	Lookups   LookupConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExtractorProviderConfig holds settings for a single LLM extraction provider.
type ExtractorProviderConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	DefaultModel string  `mapstructure:"default_model"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	RatePerSec   float64 `mapstructure:"rate_per_sec"`
	RateBurst    int     `mapstructure:"rate_burst"`
}

// ExtractorConfig holds generative extraction settings with multi-provider
// support. The primary provider is tried first; the secondary picks up when
// the primary's circuit is open.
type ExtractorConfig struct {
	Primary   ExtractorProviderConfig `mapstructure:"primary"`
	Secondary ExtractorProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not set.
func (e *ExtractorConfig) SecondaryConfig() *ExtractorProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// OCRConfig holds AWS Textract settings for table extraction.
type OCRConfig struct {
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MinBytes      int    `mapstructure:"min_bytes"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// PipelineConfig bounds collaborator calls and whole-submission processing.
type PipelineConfig struct {
	AgentTimeout      time.Duration `mapstructure:"agent_timeout"`
	SubmissionTimeout time.Duration `mapstructure:"submission_timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// LookupConfig points at the CSV lookup tables. Empty paths fall back to the
// compiled-in defaults.
type LookupConfig struct {
	CityFile      string `mapstructure:"city_file"`
	VehicleFile   string `mapstructure:"vehicle_file"`
	CorporateFile string `mapstructure:"corporate_file"`
	DispatchFile  string `mapstructure:"dispatch_file"`
}

// Load reads configuration from environment variables with the FLEETDESK_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FLEETDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "fleetdesk")
	v.SetDefault("db.password", "fleetdesk_secret")
	v.SetDefault("db.name", "fleetdesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Extractor defaults
	v.SetDefault("extractor.primary.provider", "openai")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.default_model", "gpt-4o-mini")
	v.SetDefault("extractor.primary.timeout_secs", 60)
	v.SetDefault("extractor.primary.rate_per_sec", 3)
	v.SetDefault("extractor.primary.rate_burst", 5)
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.default_model", "")
	v.SetDefault("extractor.secondary.timeout_secs", 60)
	v.SetDefault("extractor.secondary.rate_per_sec", 3)
	v.SetDefault("extractor.secondary.rate_burst", 5)

	// OCR defaults
	v.SetDefault("ocr.region", "us-east-1")
	v.SetDefault("ocr.access_key", "")
	v.SetDefault("ocr.secret_key", "")
	v.SetDefault("ocr.min_bytes", 100)
	v.SetDefault("ocr.max_file_size_mb", 10)

	// Pipeline defaults
	v.SetDefault("pipeline.agent_timeout", "45s")
	v.SetDefault("pipeline.submission_timeout", "5m")
	v.SetDefault("pipeline.max_retries", 1)

	// Lookup defaults
	v.SetDefault("lookups.city_file", "")
	v.SetDefault("lookups.vehicle_file", "")
	v.SetDefault("lookups.corporate_file", "")
	v.SetDefault("lookups.dispatch_file", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "FLEETDESK_SERVER_PORT",
		"server.read_timeout":               "FLEETDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "FLEETDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":                "FLEETDESK_SERVER_ENVIRONMENT",
		"db.host":                           "FLEETDESK_DB_HOST",
		"db.port":                           "FLEETDESK_DB_PORT",
		"db.user":                           "FLEETDESK_DB_USER",
		"db.password":                       "FLEETDESK_DB_PASSWORD",
		"db.name":                           "FLEETDESK_DB_NAME",
		"db.sslmode":                        "FLEETDESK_DB_SSLMODE",
		"db.max_open":                       "FLEETDESK_DB_MAX_OPEN",
		"db.max_idle":                       "FLEETDESK_DB_MAX_IDLE",
		"log.level":                         "FLEETDESK_LOG_LEVEL",
		"log.format":                        "FLEETDESK_LOG_FORMAT",
		"extractor.primary.provider":        "FLEETDESK_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":         "FLEETDESK_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.default_model":   "FLEETDESK_EXTRACTOR_PRIMARY_DEFAULT_MODEL",
		"extractor.primary.timeout_secs":    "FLEETDESK_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.primary.rate_per_sec":    "FLEETDESK_EXTRACTOR_PRIMARY_RATE_PER_SEC",
		"extractor.primary.rate_burst":      "FLEETDESK_EXTRACTOR_PRIMARY_RATE_BURST",
		"extractor.secondary.provider":      "FLEETDESK_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":       "FLEETDESK_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.default_model": "FLEETDESK_EXTRACTOR_SECONDARY_DEFAULT_MODEL",
		"extractor.secondary.timeout_secs":  "FLEETDESK_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"extractor.secondary.rate_per_sec":  "FLEETDESK_EXTRACTOR_SECONDARY_RATE_PER_SEC",
		"extractor.secondary.rate_burst":    "FLEETDESK_EXTRACTOR_SECONDARY_RATE_BURST",
		"ocr.region":                        "FLEETDESK_OCR_REGION",
		"ocr.access_key":                    "FLEETDESK_OCR_ACCESS_KEY",
		"ocr.secret_key":                    "FLEETDESK_OCR_SECRET_KEY",
		"ocr.min_bytes":                     "FLEETDESK_OCR_MIN_BYTES",
		"ocr.max_file_size_mb":              "FLEETDESK_OCR_MAX_FILE_SIZE_MB",
		"pipeline.agent_timeout":            "FLEETDESK_PIPELINE_AGENT_TIMEOUT",
		"pipeline.submission_timeout":       "FLEETDESK_PIPELINE_SUBMISSION_TIMEOUT",
		"pipeline.max_retries":              "FLEETDESK_PIPELINE_MAX_RETRIES",
		"lookups.city_file":                 "FLEETDESK_LOOKUPS_CITY_FILE",
		"lookups.vehicle_file":              "FLEETDESK_LOOKUPS_VEHICLE_FILE",
		"lookups.corporate_file":            "FLEETDESK_LOOKUPS_CORPORATE_FILE",
		"lookups.dispatch_file":             "FLEETDESK_LOOKUPS_DISPATCH_FILE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FLEETDESK_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FLEETDESK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Extractor = ExtractorConfig{
		Primary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.primary.provider"),
			APIKey:       v.GetString("extractor.primary.api_key"),
			DefaultModel: v.GetString("extractor.primary.default_model"),
			TimeoutSecs:  v.GetInt("extractor.primary.timeout_secs"),
			RatePerSec:   v.GetFloat64("extractor.primary.rate_per_sec"),
			RateBurst:    v.GetInt("extractor.primary.rate_burst"),
		},
		Secondary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.secondary.provider"),
			APIKey:       v.GetString("extractor.secondary.api_key"),
			DefaultModel: v.GetString("extractor.secondary.default_model"),
			TimeoutSecs:  v.GetInt("extractor.secondary.timeout_secs"),
			RatePerSec:   v.GetFloat64("extractor.secondary.rate_per_sec"),
			RateBurst:    v.GetInt("extractor.secondary.rate_burst"),
		},
	}
	cfg.OCR = OCRConfig{
		Region:        v.GetString("ocr.region"),
		AccessKey:     v.GetString("ocr.access_key"),
		SecretKey:     v.GetString("ocr.secret_key"),
		MinBytes:      v.GetInt("ocr.min_bytes"),
		MaxFileSizeMB: v.GetInt64("ocr.max_file_size_mb"),
	}
	cfg.Pipeline = PipelineConfig{
		AgentTimeout:      v.GetDuration("pipeline.agent_timeout"),
		SubmissionTimeout: v.GetDuration("pipeline.submission_timeout"),
		MaxRetries:        v.GetInt("pipeline.max_retries"),
	}
	cfg.Lookups = LookupConfig{
		CityFile:      v.GetString("lookups.city_file"),
		VehicleFile:   v.GetString("lookups.vehicle_file"),
		CorporateFile: v.GetString("lookups.corporate_file"),
		DispatchFile:  v.GetString("lookups.dispatch_file"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OCR.MinBytes < 0 {
		return fmt.Errorf("ocr.min_bytes must be non-negative, got %d", c.OCR.MinBytes)
	}
	if c.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("pipeline.max_retries must be non-negative, got %d", c.Pipeline.MaxRetries)
	}
	return nil
}
