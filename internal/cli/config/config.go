// Package config loads CLI settings.
package config

import (
	"fmt"
	"os"
	"time"

	"codearena/internal/common/storage"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL     = "http://127.0.0.1:8085"
	DefaultTimeout     = 10 * time.Second
	DefaultTopic       = "judge.tasks"
	DefaultHistoryFile = ".codearena_history"
)

// APIConfig holds judge HTTP API settings.
type APIConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

// KafkaConfig holds the producer settings for submitting tasks.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Config holds CLI configuration.
type Config struct {
	API         APIConfig           `yaml:"api"`
	MinIO       storage.MinIOConfig `yaml:"minio"`
	Kafka       KafkaConfig         `yaml:"kafka"`
	PrettyJSON  *bool               `yaml:"prettyJSON"`
	HistoryFile string              `yaml:"historyFile"`
}

// Load reads and validates the config file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file failed: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = DefaultTimeout
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultTopic
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = DefaultHistoryFile
	}
	if cfg.PrettyJSON == nil {
		value := true
		cfg.PrettyJSON = &value
	}
}
