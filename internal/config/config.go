package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig holds connection details for one hosted model endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	KeyEnv   string `yaml:"key_env"`
	Model    string `yaml:"model"`
}

// GenerationConfig holds sampling parameters for answer generation.
type GenerationConfig struct {
	Temperature     float64 `yaml:"temperature"`
	TopP            float64 `yaml:"top_p"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// RAGConfig holds the chunking and retrieval parameters.
type RAGConfig struct {
	MinChunkLength     int     `yaml:"min_chunk_length"`
	MaxChunkLength     int     `yaml:"max_chunk_length"`
	MaxInputLength     int     `yaml:"max_input_length"`
	TopK               int     `yaml:"top_k"`
	CiteTopK           int     `yaml:"cite_top_k"`
	RelevanceThreshold float32 `yaml:"relevance_threshold"`
	IndexPath          string  `yaml:"index_path"`
}

type Config struct {
	EmbedLLM   LLMConfig        `yaml:"embed_llm"`
	InferLLM   LLMConfig        `yaml:"infer_llm"`
	Generation GenerationConfig `yaml:"generation"`
	RAG        RAGConfig        `yaml:"rag"`
}

// LoadConfig reads the config file at path. A missing file is not an error;
// defaults are returned so the CLI works without any configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "ollama"
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = "nomic-embed-text"
	}
	if cfg.InferLLM.Provider == "" {
		cfg.InferLLM.Provider = "openrouter"
	}
	if cfg.InferLLM.BaseURL == "" {
		cfg.InferLLM.BaseURL = "https://openrouter.ai/api"
	}
	if cfg.InferLLM.Model == "" {
		cfg.InferLLM.Model = "google/gemini-2.0-flash-001"
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 1
	}
	if cfg.Generation.TopP == 0 {
		cfg.Generation.TopP = 0.95
	}
	if cfg.Generation.MaxOutputTokens == 0 {
		cfg.Generation.MaxOutputTokens = 8192
	}
	if cfg.RAG.MinChunkLength == 0 {
		cfg.RAG.MinChunkLength = 50
	}
	if cfg.RAG.MaxChunkLength == 0 {
		cfg.RAG.MaxChunkLength = 500
	}
	if cfg.RAG.MaxInputLength == 0 {
		cfg.RAG.MaxInputLength = 1_000_000
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.CiteTopK == 0 {
		cfg.RAG.CiteTopK = 3
	}
	if cfg.RAG.RelevanceThreshold == 0 {
		cfg.RAG.RelevanceThreshold = 0.6
	}
	if cfg.RAG.IndexPath == "" {
		cfg.RAG.IndexPath = "vector_db_cosine.index"
	}
	resolveKey(&cfg.EmbedLLM)
	resolveKey(&cfg.InferLLM)
}

// resolveKey lets the API key come from the environment, overriding the file.
func resolveKey(llm *LLMConfig) {
	if llm.KeyEnv == "" {
		return
	}
	if v := os.Getenv(llm.KeyEnv); v != "" {
		llm.Key = v
	}
}
