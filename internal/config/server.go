package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the transcription serialization server. Values come
// from an optional YAML file with environment-variable fallbacks, so the
// server runs with sensible defaults out of the box.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	Environment  string `yaml:"environment" validate:"omitempty,oneof=development production"`
	QueueSize    int    `yaml:"queue_size" validate:"min=1,max=10000"`
	RetentionMin int    `yaml:"result_retention_min" validate:"min=1"`
	JobTimeoutS  int    `yaml:"job_timeout_s" validate:"min=1"`
	SyncTimeoutS int    `yaml:"sync_timeout_s" validate:"min=1"`

	Transcriber TranscriberConfig `yaml:"transcriber"`
	Archive     ArchiveConfig     `yaml:"archive"`
}

// TranscriberConfig selects and configures the speech-to-text backend.
type TranscriberConfig struct {
	// Provider is "whisper_cpp" (local binary) or "openai" (remote API).
	Provider   string `yaml:"provider" validate:"oneof=whisper_cpp openai"`
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	YTDLPPath  string `yaml:"ytdlp_path"`
}

// ArchiveConfig enables archiving fetched audio to S3-compatible storage.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// DefaultServerConfig mirrors the defaults the service shipped with: local
// only, a 50-deep queue, half-hour retention and sync wait.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         "5555",
		Environment:  "development",
		QueueSize:    50,
		RetentionMin: 30,
		JobTimeoutS:  1800,
		SyncTimeoutS: 1800,
		Transcriber: TranscriberConfig{
			Provider: "whisper_cpp",
			Language: "auto",
		},
	}
}

// LoadServerConfig reads the YAML file at path, layered over the defaults.
// An empty path returns defaults with env overrides only.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		raw, err := os.ReadFile(os.ExpandEnv(path))
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *ServerConfig) {
	if v := os.Getenv("YTSCOUT_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("YTSCOUT_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("WHISPER_CPP_BINARY"); v != "" {
		cfg.Transcriber.BinaryPath = v
	}
	if v := os.Getenv("WHISPER_CPP_MODEL"); v != "" {
		cfg.Transcriber.ModelPath = v
	}
	if v := os.Getenv("YTDLP_PATH"); v != "" {
		cfg.Transcriber.YTDLPPath = v
	}
}

// JobTimeout returns the per-job transcription bound.
func (c ServerConfig) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutS) * time.Second
}

// SyncTimeout returns the default synchronous wait bound.
func (c ServerConfig) SyncTimeout() time.Duration {
	return time.Duration(c.SyncTimeoutS) * time.Second
}

// Retention returns the result store retention window.
func (c ServerConfig) Retention() time.Duration {
	return time.Duration(c.RetentionMin) * time.Minute
}
