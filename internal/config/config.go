package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Store struct {
		// Driver selects the workflow store: "postgres" or "memory".
		Driver string `mapstructure:"driver"`
	} `mapstructure:"store"`
	Classifier struct {
		// URL of the classification sidecar. Empty selects the built-in
		// rule classifier.
		URL string `mapstructure:"url"`
	} `mapstructure:"classifier"`
	Pipeline struct {
		ConnectorTimeout time.Duration `mapstructure:"connector_timeout"`
	} `mapstructure:"pipeline"`
}

// LoadConfig loads the configuration from a file and the environment.
// A missing config file is not an error; defaults apply.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("OPSDESK")
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.name", "ai_ops_desk")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("store.driver", "postgres")
	viper.SetDefault("pipeline.connector_timeout", "10s")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
