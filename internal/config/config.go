// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"` // bearer key for mutating routes; empty disables auth (dev only)
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	DefaultModel    string        `yaml:"default_model"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent completion calls
	CallTimeout     time.Duration `yaml:"call_timeout"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
}

type AgentHostConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

type EnrichmentConfig struct {
	APIKey      string        `yaml:"api_key"` // empty disables enrichment
	BaseURL     string        `yaml:"base_url"`
	ResultCount int           `yaml:"result_count"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"` // empty disables redis-backed rate limiting
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GenerationConfig struct {
	Workers        int `yaml:"workers"`          // worker pool size
	MaxCount       int `yaml:"max_count"`        // max personas per batch request
	PromptTokenCap int `yaml:"prompt_token_cap"` // warn threshold for composed prompts
	// Submission rate limit, per client key, per minute. 0 disables.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type SimulationConfig struct {
	DefaultMaxTurns int `yaml:"default_max_turns"`
	MaxTurnsCap     int `yaml:"max_turns_cap"`
}

type RetentionConfig struct {
	JobTTL        time.Duration `yaml:"job_ttl"`
	RunTTL        time.Duration `yaml:"run_ttl"`
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	AI         AIConfig         `yaml:"ai"`
	AgentHost  AgentHostConfig  `yaml:"agent_host"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Generation GenerationConfig `yaml:"generation"`
	Simulation SimulationConfig `yaml:"simulation"`
	Retention  RetentionConfig  `yaml:"retention"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" {
		return nil, errors.New("ai.openai_key or ai.gemini_key is required")
	}
	if cfg.AgentHost.BaseURL == "" {
		return nil, errors.New("agent_host.base_url is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8001
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.CallTimeout <= 0 {
		cfg.AI.CallTimeout = 60 * time.Second
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 1500
	}
	if cfg.AgentHost.CallTimeout <= 0 {
		cfg.AgentHost.CallTimeout = 120 * time.Second
	}
	if cfg.Enrichment.ResultCount <= 0 {
		cfg.Enrichment.ResultCount = 5
	}
	if cfg.Enrichment.CallTimeout <= 0 {
		cfg.Enrichment.CallTimeout = 15 * time.Second
	}
	if cfg.Generation.Workers <= 0 {
		cfg.Generation.Workers = 8
	}
	if cfg.Generation.MaxCount <= 0 {
		cfg.Generation.MaxCount = 10
	}
	if cfg.Generation.PromptTokenCap <= 0 {
		cfg.Generation.PromptTokenCap = 8000
	}
	if cfg.Simulation.DefaultMaxTurns <= 0 {
		cfg.Simulation.DefaultMaxTurns = 10
	}
	if cfg.Simulation.MaxTurnsCap <= 0 {
		cfg.Simulation.MaxTurnsCap = 50
	}
	if cfg.Retention.JobTTL <= 0 {
		cfg.Retention.JobTTL = time.Hour
	}
	if cfg.Retention.RunTTL <= 0 {
		cfg.Retention.RunTTL = 24 * time.Hour
	}
	if cfg.Retention.PurgeInterval <= 0 {
		cfg.Retention.PurgeInterval = 10 * time.Minute
	}
}
