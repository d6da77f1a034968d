package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mauv0809/courtbooker/internal/booking"
)

// defaultHourPreferences is used when the configuration supplies none.
var defaultHourPreferences = []string{"14:00", "15:00", "16:00"}

// Load reads a run configuration from a YAML file. Credentials may be
// overridden through the BOOKER_USERNAME and BOOKER_PASSWORD environment
// variables (a .env file is honored).
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, reading from environment variables")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if username, ok := os.LookupEnv("BOOKER_USERNAME"); ok {
		cfg.Username = username
	}
	if password, ok := os.LookupEnv("BOOKER_PASSWORD"); ok {
		cfg.Password = password
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills in the preference defaults the rest of the run relies
// on.
func (c *Config) ApplyDefaults() {
	if len(c.HourPreferences) == 0 {
		c.HourPreferences = append([]string(nil), defaultHourPreferences...)
	}
}

// Validate reports the first missing required field for the given run mode.
// Mock runs need no site or credential configuration.
func (c *Config) Validate(mode string) error {
	if mode == "mock" {
		return nil
	}
	if c.LoginURL == "" && c.HTTP.Endpoints.Login.URL == "" {
		return &booking.ConfigurationError{Reason: "loginUrl is required in live mode"}
	}
	if c.MemberURL == "" && c.HTTP.BaseURL == "" {
		return &booking.ConfigurationError{Reason: "memberUrl is required in live mode"}
	}
	if c.Username == "" {
		return &booking.ConfigurationError{Reason: "username is required in live mode"}
	}
	if c.Password == "" {
		return &booking.ConfigurationError{Reason: "password is required in live mode"}
	}
	return nil
}

// LoadServer reads the orchestrator server configuration from environment
// variables.
func LoadServer() ServerConfig {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	getEnv := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return fallback
	}

	return ServerConfig{
		Port:           getEnv("PORT", "3000"),
		SpoolDir:       getEnv("SPOOL_DIR", "./spool"),
		BaseConfigPath: getEnv("BASE_CONFIG", "./config.yaml"),
	}
}
