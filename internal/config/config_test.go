package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:            "8480",
		OpenAIAPIKey:    "sk-test",
		DataFile:        "data/posts.json",
		UploadDir:       "data/uploads",
		MaxUploadSizeMB: 25,
		Env:             "development",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid development config", func(_ *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing API key", func(c *Config) { c.OpenAIAPIKey = "" }, true},
		{"Missing data file", func(c *Config) { c.DataFile = "" }, true},
		{"Missing upload dir", func(c *Config) { c.UploadDir = "" }, true},
		{"Zero upload limit", func(c *Config) { c.MaxUploadSizeMB = 0 }, true},
		{"Negative upload limit", func(c *Config) { c.MaxUploadSizeMB = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer os.Unsetenv("OPENAI_API_KEY")
	defer os.Unsetenv("APP_ENV")
	defer viper.Reset()

	os.Setenv("OPENAI_API_KEY", "sk-test")
	os.Setenv("APP_ENV", "development")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "8480", c.Port)
	assert.Equal(t, "https://api.openai.com", c.OpenAIBaseURL)
	assert.Equal(t, "gpt-4o-mini", c.TextModel)
	assert.Equal(t, "gpt-image-1", c.ImageModel)
	assert.Equal(t, 25, c.MaxUploadSizeMB)
	assert.Equal(t, int64(25*1024*1024), c.MaxUploadSizeBytes())
}

func TestLoadConfig_MissingAPIKey(t *testing.T) {
	defer viper.Reset()
	os.Unsetenv("OPENAI_API_KEY")

	_, err := LoadConfig()
	assert.Error(t, err)
}
