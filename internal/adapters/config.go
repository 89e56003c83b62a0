// Package adapters builds an engine registry from a YAML config file.
// This is the explicit, startup-time replacement for dynamic plugin
// loading: every engine is declared in config and constructed here,
// never discovered at runtime.
package adapters

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mstrand/wavesearch/internal/adapters/memengine"
	"github.com/mstrand/wavesearch/internal/search"
)

// Kind selects the adapter implementation for one engine entry.
type Kind string

const (
	KindHTTP          Kind = "http"
	KindElasticsearch Kind = "elasticsearch"
	KindPostgres      Kind = "postgres"
	KindMemory        Kind = "memory"
)

type Config struct {
	Engines []EngineConfig `yaml:"engines"`
}

type EngineConfig struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Tier string `yaml:"tier"`
	Kind Kind   `yaml:"kind"`

	HTTP          *HTTPConfig          `yaml:"http,omitempty"`
	Elasticsearch *ElasticsearchConfig `yaml:"elasticsearch,omitempty"`
	Postgres      *PostgresConfig      `yaml:"postgres,omitempty"`
	Memory        *MemoryConfig        `yaml:"memory,omitempty"`
}

type HTTPConfig struct {
	BaseURL    string            `yaml:"base_url"`
	Path       string            `yaml:"path"`
	QueryParam string            `yaml:"query_param"`
	LimitParam string            `yaml:"limit_param"`
	Headers    map[string]string `yaml:"headers"`
	TimeoutMs  int               `yaml:"timeout_ms"`
}

func (c *HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses"`
	Index     string   `yaml:"index"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

type PostgresConfig struct {
	ConnStr string `yaml:"conn_str"`
}

type MemoryConfig struct {
	Documents []memengine.Document `yaml:"documents"`
}

// LoadConfig reads and validates a registry config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig validates every engine entry: code, tier and kind must be
// present and the kind-specific section must exist.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse registry config YAML: %w", err)
	}
	if len(cfg.Engines) == 0 {
		return nil, fmt.Errorf("registry config has no engines")
	}

	seen := make(map[string]bool)
	for i, eng := range cfg.Engines {
		if eng.Code == "" {
			return nil, fmt.Errorf("engine at index %d has no code", i)
		}
		if seen[eng.Code] {
			return nil, fmt.Errorf("engine %q declared twice", eng.Code)
		}
		seen[eng.Code] = true

		if _, err := search.ParseTier(eng.Tier); err != nil {
			return nil, fmt.Errorf("engine %q: %w", eng.Code, err)
		}

		switch eng.Kind {
		case KindHTTP:
			if eng.HTTP == nil || eng.HTTP.BaseURL == "" {
				return nil, fmt.Errorf("engine %q: http section with base_url is required", eng.Code)
			}
		case KindElasticsearch:
			if eng.Elasticsearch == nil || len(eng.Elasticsearch.Addresses) == 0 {
				return nil, fmt.Errorf("engine %q: elasticsearch section with addresses is required", eng.Code)
			}
		case KindPostgres:
			if eng.Postgres == nil || eng.Postgres.ConnStr == "" {
				return nil, fmt.Errorf("engine %q: postgres section with conn_str is required", eng.Code)
			}
		case KindMemory:
			if eng.Memory == nil {
				return nil, fmt.Errorf("engine %q: memory section is required", eng.Code)
			}
		default:
			return nil, fmt.Errorf("engine %q: unsupported kind %q", eng.Code, eng.Kind)
		}
	}

	return &cfg, nil
}
