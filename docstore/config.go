package docstore

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds DocumentStore configuration.
type Config struct {
	// CollectionName is the named namespace documents are stored under.
	// One collection per store instance.
	CollectionName string `toml:"collection_name"`

	// StoragePath is the directory for the backend's durable data.
	// Created by Initialize if absent.
	StoragePath string `toml:"storage_path"`

	// SearchLimit is the default maximum number of search results.
	SearchLimit int `toml:"search_limit"`

	// StatsSampleSize bounds the number of documents sampled for content
	// length statistics. Stats cost stays constant on large collections;
	// the aggregates are estimates.
	StatsSampleSize int `toml:"stats_sample_size"`

	// EmbedCharLimit caps the content projection submitted for embedding.
	// The full content is always stored verbatim.
	EmbedCharLimit int `toml:"embed_char_limit"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		CollectionName:  "documents",
		StoragePath:     "./data/docmem",
		SearchLimit:     10,
		StatsSampleSize: 100,
		EmbedCharLimit:  8000,
	}
}

// LoadConfig reads a TOML config file, applying defaults for unset fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero-valued fields so a partially populated Config
// (hand-built or from a sparse TOML file) behaves like DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.CollectionName == "" {
		c.CollectionName = d.CollectionName
	}
	if c.StoragePath == "" {
		c.StoragePath = d.StoragePath
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = d.SearchLimit
	}
	if c.StatsSampleSize <= 0 {
		c.StatsSampleSize = d.StatsSampleSize
	}
	if c.EmbedCharLimit <= 0 {
		c.EmbedCharLimit = d.EmbedCharLimit
	}
}
