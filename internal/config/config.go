package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	S3         S3Config         `mapstructure:"s3"`
	Generation GenerationConfig `mapstructure:"generation"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
}

// Enabled reports whether archiving to object storage is configured.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// GenerationConfig controls how a mesocycle schedule is written.
type GenerationConfig struct {
	// SetBatchSize caps the number of set rows per batched write.
	SetBatchSize int `mapstructure:"set_batch_size"`
	// Timeout bounds the whole start transition, generation included.
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig selects the log level ("debug", "info", "warn", "error") and format ("json", "text").
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const maxSetBatchSize = 1000

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, generation.set_batch_size -> GENERATION_SET_BATCH_SIZE
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("database.name", "training_planner")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("generation.set_batch_size", 500)
	v.SetDefault("generation.timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	err = v.ReadInConfig()
	// If config file not found, continue with defaults/env vars.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if err = config.Validate(); err != nil {
		return
	}
	return config, nil
}

// Validate checks values viper cannot check by type alone.
func (c Config) Validate() error {
	if c.Generation.SetBatchSize < 1 || c.Generation.SetBatchSize > maxSetBatchSize {
		return errors.New("generation.set_batch_size must be between 1 and 1000")
	}
	if c.Generation.Timeout <= 0 {
		return errors.New("generation.timeout must be positive")
	}
	if c.Database.URI == "" || c.Database.Name == "" {
		return errors.New("database.uri and database.name are required")
	}
	return nil
}
