package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// OntologyConfig names the descriptor files to merge, in load order: the
// core ontology first, then plugins. Enabled narrows the plugin set by
// descriptor name; empty means all listed plugins load.
type OntologyConfig struct {
	Core    string   `toml:"core"`
	Plugins []string `toml:"plugins"`
	Enabled []string `toml:"enabled"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type ExtractionPrompts struct {
	Entities string `toml:"entities"`
}

type ConcurrencyConfig struct {
	Ingest    int `toml:"ingest"`
	Reasoning int `toml:"reasoning"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Neo4j       Neo4jConfig       `toml:"neo4j"`
	Ontology    OntologyConfig    `toml:"ontology"`
	LLM         LLMConfig         `toml:"llm"`
	Extraction  ExtractionPrompts `toml:"extraction"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Server      ServerConfig      `toml:"server"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}
