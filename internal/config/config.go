package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Email        EmailConfig        `mapstructure:"email"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port" default:"8080" validate:"min=1,max=65535"`
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30" validate:"min=1"`
	RateLimitRPS   int `mapstructure:"rate_limit_rps" default:"50" validate:"min=1"`
	RateLimitBurst int `mapstructure:"rate_limit_burst" default:"100" validate:"min=1"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"5432"`
	User     string `mapstructure:"user" default:"postgres"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" default:"booking"`
	SSLMode  string `mapstructure:"sslmode" default:"disable"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" default:"587"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type AvailabilityConfig struct {
	DoctorCacheTTL time.Duration `mapstructure:"doctor_cache_ttl" default:"5m"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" default:"info"`
	Pretty bool   `mapstructure:"pretty"`
}

// LoadConfig reads config.yaml, falling back to environment variables
// (BOOKING_ prefix) for env-only deployments.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("server.rate_limit_rps", 50)
	viper.SetDefault("server.rate_limit_burst", 100)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.name", "booking")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("email.port", 587)
	viper.SetDefault("availability.doctor_cache_ttl", "5m")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return loadFromEnv()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func loadFromEnv() (*Config, error) {
	var config Config
	if err := envconfig.Process("booking", &config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
