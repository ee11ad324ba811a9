package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all runtime configuration. It is built once at process start
// (defaults, then config file, then env, then flags) and passed by
// parameter; nothing reads configuration ambiently after that.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" json:"llm"`
	Analysis  AnalysisConfig  `yaml:"analysis" json:"analysis"`
	HTTP      HTTPConfig      `yaml:"http" json:"http"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Batch     BatchConfig     `yaml:"batch" json:"batch"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Output    OutputConfig    `yaml:"output" json:"output"`
}

// LLMConfig configures the inference provider
type LLMConfig struct {
	Provider    string        `yaml:"provider" json:"provider"`                       // openrouter, openai, anthropic, ollama, gemini
	Model       string        `yaml:"model,omitempty" json:"model,omitempty"`         // Empty uses the provider default
	APIKey      string        `yaml:"-" json:"-"`                                     // From env only, never serialized
	BaseURL     string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`   // Override for proxies / OpenRouter / Ollama
	Temperature float32       `yaml:"temperature" json:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"` // Per-call timeout
}

// AnalysisConfig configures the per-run pipeline
type AnalysisConfig struct {
	MaxRetries int      `yaml:"max_retries" json:"max_retries"` // Retries after the first attempt
	Frameworks []string `yaml:"frameworks" json:"frameworks"`   // Default framework set
}

// HTTPConfig configures outbound fetching for URL-provided materials
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodySize   int64         `yaml:"max_body_size" json:"max_body_size"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
}

// CacheConfig configures completion response caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir" json:"dir"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// RateLimitConfig bounds outbound request rates per provider
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// BatchConfig configures the batch command's fan-out
type BatchConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// StorageConfig configures analysis record persistence
type StorageConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "",
			Temperature: 0.2,
			MaxTokens:   8000,
			Timeout:     120 * time.Second,
		},
		Analysis: AnalysisConfig{
			MaxRetries: 1,
			Frameworks: []string{"porter", "systems_dynamics"},
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "krisis/1.0 (+https://github.com/ppiankov/krisis)",
			MaxBodySize:   10 * 1024 * 1024,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     defaultCacheDir(),
			TTL:     24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1.0,
			Burst:             2,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Storage: StorageConfig{
			Dir: "krisis-storage",
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "krisis")
	}
	return ".krisis-cache"
}
