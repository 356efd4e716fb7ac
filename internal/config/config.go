package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars `json:"env"`
}

// EnvVars holds environment variables required by the application.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port             string   `env:"PORT" envDefault:"8080"`
	RecipeAPIBaseURL string   `env:"RECIPE_API_BASE_URL" envDefault:"https://recipesapi.herokuapp.com"`
	RecipeAPIKey     string   `env:"RECIPE_API_KEY"`
	NetworkTimeoutMs int      `env:"NETWORK_TIMEOUT_MS" envDefault:"3000"`
	NetworkWorkers   int      `env:"NETWORK_WORKERS" envDefault:"3"`
	RecipeAPIRPS     int      `env:"RECIPE_API_RPS" envDefault:"5" optional:"true"`
	SubmitRPS        int      `env:"SUBMIT_RPS" envDefault:"10" optional:"true"`
	DropStaleResults bool     `env:"DROP_STALE_RESULTS" optional:"true"`
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," optional:"true"`
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	return &config, nil
}

// NetworkTimeout is the fixed deadline applied to every recipe API request.
func (c *Config) NetworkTimeout() time.Duration {
	return time.Duration(c.EnvVars.NetworkTimeoutMs) * time.Millisecond
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	if err := checkFieldsRecursive(reflect.ValueOf(c.EnvVars)); err != nil {
		return err
	}
	if c.EnvVars.NetworkTimeoutMs <= 0 {
		return fmt.Errorf("$NetworkTimeoutMs must be positive, got %d", c.EnvVars.NetworkTimeoutMs)
	}
	if c.EnvVars.NetworkWorkers <= 0 {
		return fmt.Errorf("$NetworkWorkers must be positive, got %d", c.EnvVars.NetworkWorkers)
	}
	return nil
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if field.IsZero() {
			return fmt.Errorf("$%s must be set", fieldType.Name)
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}
