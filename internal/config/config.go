// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port                 string  `mapstructure:"PORT"`
	OpenAIAPIKey         string  `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL        string  `mapstructure:"OPENAI_BASE_URL"`
	TextModel            string  `mapstructure:"TEXT_MODEL"`
	ImageModel           string  `mapstructure:"IMAGE_MODEL"`
	DataFile             string  `mapstructure:"DATA_FILE"`
	UploadDir            string  `mapstructure:"UPLOAD_DIR"`
	WebDir               string  `mapstructure:"WEB_DIR"`
	AllowedOrigins       string  `mapstructure:"ALLOWED_ORIGINS"`
	Env                  string  `mapstructure:"APP_ENV"`
	RemoteTimeoutSeconds int     `mapstructure:"REMOTE_TIMEOUT_SECONDS"`
	MaxUploadSizeMB      int     `mapstructure:"MAX_UPLOAD_SIZE_MB"`
	TracingEnabled       bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter      string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint         string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8480")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	viper.SetDefault("TEXT_MODEL", "gpt-4o-mini")
	viper.SetDefault("IMAGE_MODEL", "gpt-image-1")
	viper.SetDefault("DATA_FILE", "data/posts.json")
	viper.SetDefault("UPLOAD_DIR", "data/uploads")
	viper.SetDefault("WEB_DIR", "web")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("REMOTE_TIMEOUT_SECONDS", 120)
	viper.SetDefault("MAX_UPLOAD_SIZE_MB", 25)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.DataFile == "" {
		return errors.New("DATA_FILE is required")
	}
	if c.UploadDir == "" {
		return errors.New("UPLOAD_DIR is required")
	}
	if c.MaxUploadSizeMB <= 0 {
		return errors.New("MAX_UPLOAD_SIZE_MB must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
		if c.TracingEnabled && c.TracingExporter == "stdout" {
			log.Println("WARNING: TRACING_EXPORTER is 'stdout' in production. Consider 'otlp'.")
		}
	}

	return nil
}

// MaxUploadSizeBytes returns the per-file reference upload limit in bytes.
func (c *Config) MaxUploadSizeBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}
