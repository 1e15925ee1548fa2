package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Pipeline configuration
	DataDir           string
	OutputDir         string
	QualitySchema     string // Quality checks are skipped when empty
	QualityReportDir  string
	StrictQuality     bool // Abort the run when quality checks fail
	CheckDuplicateIDs bool
	ExportXLSX        bool

	// Synthetic data generation
	GeneratorApps int
	GeneratorSeed int64

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Outbound integrations
	PushgatewayURL    string
	DiscordWebhookURL string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	initErr  error
	once     sync.Once

	v = newViper()
)

// Viper returns the settings store that command line flags are bound to
func Viper() *viper.Viper {
	return v
}

// Init loads the global configuration once. configFile is optional; without
// it a config.yaml in the working directory is used when present.
func Init(configFile string) (*Config, error) {
	once.Do(func() {
		instance, initErr = load(v, configFile)
	})
	return instance, initErr
}

// Get returns the global configuration instance
func Get() *Config {
	cfg, err := Init("")
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("pipeline.data_dir", "data")
	v.SetDefault("pipeline.output_dir", "output")
	v.SetDefault("pipeline.quality_report_dir", "quality_output")
	v.SetDefault("pipeline.strict_quality", false)
	v.SetDefault("pipeline.check_duplicate_ids", false)
	v.SetDefault("pipeline.export_xlsx", false)
	v.SetDefault("generator.n_apps", 200)
	v.SetDefault("generator.seed", 42)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("environment", "development")

	// Map nested keys to env vars like SCORECARD_PIPELINE_DATA_DIR
	v.SetEnvPrefix("SCORECARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names are accepted for the database
	_ = v.BindEnv("database.url", "SCORECARD_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("database.name", "SCORECARD_DATABASE_NAME", "DATABASE_NAME")
	_ = v.BindEnv("environment", "SCORECARD_ENVIRONMENT", "ENVIRONMENT")
	return v
}

// load reads configuration from the config file, environment and bound flags
func load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("No config.yaml found, using defaults and env vars")
	} else {
		log.WithField("file", v.ConfigFileUsed()).Debug("Loaded config file")
	}

	config := &Config{
		DatabaseURL:  v.GetString("database.url"),
		DatabaseName: v.GetString("database.name"),

		DataDir:           v.GetString("pipeline.data_dir"),
		OutputDir:         v.GetString("pipeline.output_dir"),
		QualitySchema:     v.GetString("pipeline.quality_schema"),
		QualityReportDir:  v.GetString("pipeline.quality_report_dir"),
		StrictQuality:     v.GetBool("pipeline.strict_quality"),
		CheckDuplicateIDs: v.GetBool("pipeline.check_duplicate_ids"),
		ExportXLSX:        v.GetBool("pipeline.export_xlsx"),

		GeneratorApps: v.GetInt("generator.n_apps"),
		GeneratorSeed: v.GetInt64("generator.seed"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),

		PushgatewayURL:    v.GetString("metrics.pushgateway_url"),
		DiscordWebhookURL: v.GetString("notify.discord_webhook_url"),

		Environment: v.GetString("environment"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Environment != "test" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: expected text or json", c.LogFormat)
	}
	if c.GeneratorApps < 0 {
		return fmt.Errorf("invalid generator.n_apps %d", c.GeneratorApps)
	}
	if c.DataDir == "" {
		return fmt.Errorf("pipeline.data_dir is required")
	}
	return nil
}

// ConfigureLogging applies the log level and format to the global logger
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
