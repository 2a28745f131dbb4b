// Package config loads the service configuration from defaults, an optional
// teamstats.yaml and TEAMSTATS_* environment variables.
package config

import (
	"time"

	"github.com/Sternrassler/teamstats/pkg/bulk"
	"github.com/Sternrassler/teamstats/pkg/client"
	"github.com/Sternrassler/teamstats/pkg/logging"
	"github.com/Sternrassler/teamstats/pkg/worker"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Log    LogConfig    `mapstructure:"log" validate:"required"`
	Source SourceConfig `mapstructure:"source" validate:"required"`
	Queue  QueueConfig  `mapstructure:"queue" validate:"required"`
	Cache  CacheConfig  `mapstructure:"cache" validate:"required"`
	Bulk   BulkConfig   `mapstructure:"bulk" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn warning error"`
	Pretty bool   `mapstructure:"pretty"`
}

// SourceConfig describes the upstream sports data source.
type SourceConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Season    int           `mapstructure:"season" validate:"required,gt=0"`
	StatType  string        `mapstructure:"stat_type" validate:"required"`
	UserAgent string        `mapstructure:"user_agent" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// QueueConfig contains task queue consumer settings.
type QueueConfig struct {
	Workers int `mapstructure:"workers" validate:"required,gt=0"`
}

// CacheConfig selects and tunes the result cache backend.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend" validate:"required,oneof=memory redis"`
	TTL           time.Duration `mapstructure:"ttl" validate:"gt=0"`
	RedisURL      string        `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
}

// BulkConfig bounds the all-teams fetch.
type BulkConfig struct {
	FirstTeam      int `mapstructure:"first_team" validate:"required,gt=0"`
	LastTeam       int `mapstructure:"last_team" validate:"required,gtefield=FirstTeam"`
	TargetYear     int `mapstructure:"target_year" validate:"gte=0"`
	MaxConcurrency int `mapstructure:"max_concurrency" validate:"gte=0"`
}

// LoggingConfig converts the log section for logging.Setup. Level aliases
// such as "warning" are normalized; an unknown level keeps the default.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = level
	}
	cfg.Pretty = c.Log.Pretty
	return cfg
}

// ClientConfig converts the source section for client.New.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:   c.Source.BaseURL,
		Season:    c.Source.Season,
		StatType:  c.Source.StatType,
		UserAgent: c.Source.UserAgent,
		Timeout:   c.Source.Timeout,
	}
}

// WorkerConfig converts the queue section for worker.NewService.
func (c *Config) WorkerConfig() worker.Config {
	return worker.Config{Workers: c.Queue.Workers}
}

// BulkProcessorConfig converts the bulk section for bulk.NewProcessor.
func (c *Config) BulkProcessorConfig() bulk.Config {
	return bulk.Config{
		FirstTeam:      c.Bulk.FirstTeam,
		LastTeam:       c.Bulk.LastTeam,
		TargetYear:     c.Bulk.TargetYear,
		MaxConcurrency: c.Bulk.MaxConcurrency,
	}
}
