package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures one external model endpoint.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai or ollama
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	KeyEnv    string `yaml:"key_env"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

type RAGConfig struct {
	ChunkSize       int `yaml:"chunk_size"`
	ChunkOverlap    int `yaml:"chunk_overlap"`
	TopK            int `yaml:"top_k"`
	MaxContextChars int `yaml:"max_context_chars"`
	// Ranker selects the similarity backend: linear or chromem.
	Ranker string `yaml:"ranker"`
}

type FSStorageConfig struct {
	Root string `yaml:"root"`
}

type S3StorageConfig struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

type PostgresStorageConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type StorageConfig struct {
	Backend  string                `yaml:"backend"` // fs, s3 or postgres
	IndexKey string                `yaml:"index_key"`
	FS       FSStorageConfig       `yaml:"fs"`
	S3       S3StorageConfig       `yaml:"s3"`
	Postgres PostgresStorageConfig `yaml:"postgres"`
}

type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
	MaxDelayMS  int `yaml:"max_delay_ms"`
}

func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

func (r RetryConfig) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelayMS) * time.Millisecond
}

type Config struct {
	EmbedLLM     LLMConfig     `yaml:"embed_llm"`
	InferenceLLM LLMConfig     `yaml:"inference_llm"`
	RAG          RAGConfig     `yaml:"rag"`
	Storage      StorageConfig `yaml:"storage"`
	Retry        RetryConfig   `yaml:"retry"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that would corrupt the index or the
// query pipeline. Called once at startup, not per document.
func (c *Config) Validate() error {
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be strictly less than chunk_size (%d)", c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must not be negative")
	}
	if c.EmbedLLM.Dimension <= 0 {
		return fmt.Errorf("embed_llm.dimension must be positive")
	}
	switch c.Storage.Backend {
	case "fs", "s3", "postgres":
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	switch c.RAG.Ranker {
	case "linear", "chromem":
	default:
		return fmt.Errorf("unknown ranker: %s", c.RAG.Ranker)
	}
	return nil
}

// APIKey resolves the key, preferring the literal value over the env var.
func (l LLMConfig) APIKey() string {
	if l.Key != "" {
		return l.Key
	}
	if l.KeyEnv != "" {
		return os.Getenv(l.KeyEnv)
	}
	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 100
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.MaxContextChars == 0 {
		cfg.RAG.MaxContextChars = 12000
	}
	if cfg.RAG.Ranker == "" {
		cfg.RAG.Ranker = "linear"
	}
	if cfg.EmbedLLM.Dimension == 0 {
		cfg.EmbedLLM.Dimension = 1536
	}
	if cfg.EmbedLLM.BatchSize == 0 {
		cfg.EmbedLLM.BatchSize = 32
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "fs"
	}
	if cfg.Storage.IndexKey == "" {
		cfg.Storage.IndexKey = "index.json.gz"
	}
	if cfg.Storage.FS.Root == "" {
		cfg.Storage.FS.Root = "./data/index"
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.BaseDelayMS == 0 {
		cfg.Retry.BaseDelayMS = 200
	}
	if cfg.Retry.MaxDelayMS == 0 {
		cfg.Retry.MaxDelayMS = 5000
	}
}
