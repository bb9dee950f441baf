// Package config defines the answer-core configuration, loadable from
// YAML, with defaults and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the answer core.
type Config struct {
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Fallback  FallbackConfig  `json:"fallback" yaml:"fallback"`
	Retriever RetrieverConfig `json:"retriever" yaml:"retriever"`
	Session   SessionConfig   `json:"session" yaml:"session"`
}

// CacheConfig controls the in-memory response cache.
type CacheConfig struct {
	MaxSize              int     `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	BaseTTLSeconds       int     `json:"base_ttl_seconds,omitempty" yaml:"base_ttl_seconds,omitempty"`
	SimilarityThreshold  float64 `json:"similarity_threshold,omitempty" yaml:"similarity_threshold,omitempty"`
	SweepIntervalSeconds int     `json:"sweep_interval_seconds,omitempty" yaml:"sweep_interval_seconds,omitempty"`
}

// LLMConfig defines the generation backend.
type LLMConfig struct {
	Provider       string  `json:"provider" yaml:"provider"` // Available options: openai (and compatible endpoints)
	APIKey         string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL        string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model          string  `json:"model" yaml:"model"`
	Temperature    float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens      int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// FallbackConfig controls the validation/fallback decision layer.
type FallbackConfig struct {
	LowConfidenceThreshold float64 `json:"low_confidence_threshold,omitempty" yaml:"low_confidence_threshold,omitempty"`
}

// RetrieverConfig defines the optional supporting-records backend used
// when the host does not attach records to a request.
type RetrieverConfig struct {
	Provider string       `json:"provider,omitempty" yaml:"provider,omitempty"` // "", "static" or "milvus"
	Limit    int          `json:"limit,omitempty" yaml:"limit,omitempty"`
	Milvus   MilvusConfig `json:"milvus,omitempty" yaml:"milvus,omitempty"`
}

// MilvusConfig holds connection settings for the Milvus-backed retriever.
type MilvusConfig struct {
	Address    string `json:"address,omitempty" yaml:"address,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
}

// SessionConfig bounds the in-memory chat session store.
type SessionConfig struct {
	MaxSessions int `json:"max_sessions,omitempty" yaml:"max_sessions,omitempty"`
}

// Default returns a Config with working defaults for every field that has
// one. LLM credentials have no default and must come from the host.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			MaxSize:              500,
			BaseTTLSeconds:       3600,
			SimilarityThreshold:  0.8,
			SweepIntervalSeconds: 300,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o",
			Temperature:    0.3,
			MaxTokens:      2048,
			TimeoutSeconds: 30,
		},
		Fallback: FallbackConfig{
			LowConfidenceThreshold: 0.3,
		},
		Retriever: RetrieverConfig{
			Limit: 20,
		},
		Session: SessionConfig{
			MaxSessions: 200,
		},
	}
}

// Load parses a YAML document over the defaults.
func Load(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config failed, err: %w", err)
	}
	return cfg, nil
}

// LoadFile reads and parses a YAML config file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed, err: %w", err)
	}
	return Load(data)
}

// BaseTTL returns the configured cache base TTL as a duration.
func (c CacheConfig) BaseTTL() time.Duration {
	return time.Duration(c.BaseTTLSeconds) * time.Second
}

// SweepInterval returns the configured sweep interval as a duration.
func (c CacheConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// Timeout returns the configured LLM call timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
