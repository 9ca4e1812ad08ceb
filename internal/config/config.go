package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`

	Gemini struct {
		APIKey            string `yaml:"api_key"`
		VisionModel       string `yaml:"vision_model"`
		VideoModel        string `yaml:"video_model"`
		ChatModel         string `yaml:"chat_model"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"gemini"`

	Storage struct {
		Type string `yaml:"type"` // "sqlite", "postgres" or "memory"
		Path string `yaml:"path"` // SQLite file
		URL  string `yaml:"url"`  // PostgreSQL URL
	} `yaml:"storage"`

	Community struct {
		Seed bool `yaml:"seed"`
	} `yaml:"community"`

	Logbook struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"logbook"`
}

// LoadConfig loads configuration from YAML file. ${VAR} references in
// the API key and storage URL are expanded from the environment.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	config.Community.Seed = true

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.setDefaults()

	config.Gemini.APIKey = os.ExpandEnv(config.Gemini.APIKey)
	config.Storage.URL = os.ExpandEnv(config.Storage.URL)

	if _, err := config.Location(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Gemini.VisionModel == "" {
		c.Gemini.VisionModel = "gemini-2.5-flash"
	}
	if c.Gemini.VideoModel == "" {
		c.Gemini.VideoModel = "gemini-2.5-pro"
	}
	if c.Gemini.ChatModel == "" {
		c.Gemini.ChatModel = "gemini-2.5-flash"
	}
	if c.Gemini.RequestsPerMinute == 0 {
		c.Gemini.RequestsPerMinute = 10
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "./data/farm.db"
	}
}

// Addr is the address the HTTP server listens on
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// StorageDSN is the data source for the configured storage type
func (c *Config) StorageDSN() string {
	if c.Storage.Type == "postgres" {
		return c.Storage.URL
	}
	return c.Storage.Path
}

// Location is the timezone calendar days are read in. An empty timezone
// means the local one.
func (c *Config) Location() (*time.Location, error) {
	if c.Logbook.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Logbook.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Logbook.Timezone, err)
	}
	return loc, nil
}
